package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/willibrandon/tusk-sub001/internal/cli/config"
	"github.com/willibrandon/tusk-sub001/internal/cli/output"
	"github.com/willibrandon/tusk-sub001/internal/runner"
	"github.com/willibrandon/tusk-sub001/pkg/catalog"
	"github.com/willibrandon/tusk-sub001/pkg/complete"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

const (
	replPrompt     = "tusk> "
	replContPrompt = " ...> "
)

var dotCommands = []string{".help", ".tables", ".schema", ".refresh", ".clear", ".quit", ".exit"}

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	var historyFile string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive SQL shell with schema-aware completion",
		Long: `Start an interactive SQL shell against the configured database.

Statements run when a line ends with a semicolon. Tab completes keywords,
tables, columns and functions from the catalog. Type .help for commands.`,
		Example: `  # SQLite shell
  tusk repl --driver sqlite --db-path app.db

  # Postgres shell using a catalog snapshot for completion
  tusk repl --driver postgres --dsn "$DATABASE_URL" --catalog catalog.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd, historyFile)
		},
	}

	cmd.Flags().StringVar(&historyFile, "history", "", "History file (default ~/.tusk_history)")

	return cmd
}

func runRepl(cmd *cobra.Command, historyFile string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	store, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}

	run := runner.New(nil, runner.WithLogger(logger))
	if cfg.Database.Configured() {
		run, err = runner.Open(ctx, cfg.Database.Introspect(), runner.WithLogger(logger))
		if err != nil {
			return err
		}
	}
	defer func() { _ = run.Close() }()

	if historyFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, ".tusk_history")
		}
	}

	s := &replSession{
		cfg:    cfg,
		logger: logger,
		store:  store,
		engine: newEngine(cfg, store, logger),
		runner: run,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    &sqlCompleter{engine: s.engine, pending: s.pendingText},
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          s.out,
		Stderr:          s.errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	target := "not connected"
	if cfg.Database.Configured() {
		target = cfg.Database.Driver
	}
	_, _ = fmt.Fprintf(s.out, "tusk SQL shell (%s)\n", target)
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.pending.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		sqlText, quit := s.feed(ctx, line)
		if quit {
			break
		}
		if sqlText == "" {
			if s.pending.Len() > 0 {
				rl.SetPrompt(replContPrompt)
			} else {
				rl.SetPrompt(replPrompt)
			}
			continue
		}
		rl.SetPrompt(replPrompt)
		s.execute(ctx, sqlText)
	}

	return nil
}

// replSession is the state of one shell.
type replSession struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *catalog.Store
	engine  *complete.Engine
	runner  *runner.Runner
	out     io.Writer
	errOut  io.Writer
	pending strings.Builder
}

func (s *replSession) pendingText() string { return s.pending.String() }

// feed takes one input line. It returns the SQL to run once a statement is
// complete, and quit when the shell should exit.
func (s *replSession) feed(ctx context.Context, line string) (sqlText string, quit bool) {
	trimmed := strings.TrimSpace(line)
	if s.pending.Len() == 0 {
		if trimmed == "" {
			return "", false
		}
		if strings.HasPrefix(trimmed, ".") {
			return "", s.dotCommand(ctx, trimmed)
		}
	}

	s.pending.WriteString(line)
	s.pending.WriteByte('\n')
	if !statementComplete(s.pending.String()) {
		return "", false
	}
	sqlText = strings.TrimSpace(s.pending.String())
	s.pending.Reset()
	return sqlText, false
}

func (s *replSession) execute(ctx context.Context, sqlText string) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	results, err := s.runner.ExecuteAll(ctx, sqlText)
	for _, res := range results {
		if rerr := runner.Render(s.out, res, s.cfg.Output); rerr != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", rerr)
		}
	}
	if err != nil {
		_, _ = fmt.Fprint(s.errOut, formatExecError(sqlText, err))
	}
	_, _ = fmt.Fprintln(s.out)
}

// dotCommand runs a shell command and reports whether the shell should exit.
func (s *replSession) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printReplHelp(s.out)

	case ".tables":
		r := output.NewRenderer(s.out, s.errOut, output.ModeText)
		renderCatalog(r, s.store.Snapshot())

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .schema <table>")
			return false
		}
		tbl, ok := s.store.Current().FindTable(parts[1])
		if !ok {
			_, _ = fmt.Fprintf(s.errOut, "Unknown table: %s\n", parts[1])
			return false
		}
		renderColumns(s.out, tbl)

	case ".refresh":
		if err := s.refresh(ctx); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		_, _ = fmt.Fprintf(s.out, "catalog refreshed (%d tables)\n", len(s.store.Current().AllTables()))

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// refresh reloads the catalog from its file or the database.
func (s *replSession) refresh(ctx context.Context) error {
	store, err := loadCatalog(ctx, s.cfg, s.logger)
	if err != nil {
		return err
	}
	s.store.Swap(store.Snapshot())
	return nil
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List tables and views in the catalog
  .schema <name>  Show the columns of a table or view
  .refresh        Reload the catalog
  .clear          Clear the screen
  .quit / .exit   Exit the shell

Tips:
  - Statements run when a line ends with a semicolon (;)
  - Ctrl+C cancels a running statement or discards the pending one
  - Tab completes keywords, tables, columns and functions
`
	_, _ = fmt.Fprintln(w, help)
}

func renderColumns(w io.Writer, tbl catalog.TableRef) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(tbl.QualifiedName())
	t.AppendHeader(table.Row{"Column", "Type", "Comment"})
	for _, c := range tbl.Columns {
		t.AppendRow(table.Row{c.Name, c.Type, c.Comment})
	}
	t.Render()
}

// statementComplete reports whether the last code token of text is a
// semicolon. Semicolons inside strings and comments do not count.
func statementComplete(text string) bool {
	tokens := highlight.Lex(text)
	runes := []rune(text)
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		if tok.Type == token.Comment {
			continue
		}
		return tok.Type == token.Punctuation && string(runes[tok.Start:tok.End]) == ";"
	}
	return false
}

// formatExecError renders a statement failure with a caret under the
// failing character when the database reported a position.
func formatExecError(sqlText string, err error) string {
	var b strings.Builder
	var execErr *runner.ExecError
	if !errors.As(err, &execErr) {
		fmt.Fprintf(&b, "Error: %v\n", err)
		return b.String()
	}

	fmt.Fprintf(&b, "Error: %s\n", execErr.Message)
	if execErr.Offset >= 0 {
		runes := []rune(sqlText)
		pos := min(execErr.Position(0), len(runes))
		lineStart := pos
		for lineStart > 0 && runes[lineStart-1] != '\n' {
			lineStart--
		}
		lineEnd := pos
		for lineEnd < len(runes) && runes[lineEnd] != '\n' {
			lineEnd++
		}
		fmt.Fprintf(&b, "  %s\n  %s^\n", string(runes[lineStart:lineEnd]), strings.Repeat(" ", pos-lineStart))
	}
	if execErr.Detail != "" {
		fmt.Fprintf(&b, "%s\n", execErr.Detail)
	}
	return b.String()
}

// sqlCompleter adapts the completion engine to readline. Candidates are
// completions whose insert text extends the word being typed.
type sqlCompleter struct {
	engine  *complete.Engine
	pending func() string
}

var _ readline.AutoCompleter = (*sqlCompleter)(nil)

func (c *sqlCompleter) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])
	before := ""
	if c.pending != nil {
		before = c.pending()
	}

	if before == "" && strings.HasPrefix(strings.TrimSpace(head), ".") {
		return completeDotCommand(strings.TrimSpace(head))
	}

	ctx := complete.NewContext(before+head, -1)
	word := []rune(ctx.Word)
	var out [][]rune
	for _, item := range c.engine.Complete(ctx) {
		insert := []rune(item.InsertText)
		if len(insert) < len(word) || !strings.EqualFold(string(insert[:len(word)]), string(word)) {
			continue
		}
		out = append(out, insert[len(word):])
	}
	return out, len(word)
}

func completeDotCommand(prefix string) ([][]rune, int) {
	var out [][]rune
	for _, dc := range dotCommands {
		if strings.HasPrefix(dc, prefix) {
			out = append(out, []rune(dc[len(prefix):]))
		}
	}
	return out, len([]rune(prefix))
}
