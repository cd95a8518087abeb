package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/willibrandon/tusk-sub001/internal/cli/config"
	"github.com/willibrandon/tusk-sub001/internal/cli/output"
	"github.com/willibrandon/tusk-sub001/pkg/buffer"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// HighlightOptions holds options for the highlight command.
type HighlightOptions struct {
	Tokens bool
	Theme  string
}

// NewHighlightCommand creates the highlight command.
func NewHighlightCommand() *cobra.Command {
	opts := &HighlightOptions{}

	cmd := &cobra.Command{
		Use:   "highlight <file>",
		Short: "Highlight a SQL file",
		Long: `Highlight a SQL file with the configured theme.

On a terminal the file is printed in color. With --tokens, or with
--output json, the classified tokens are listed instead. Use - to read
from stdin.`,
		Example: `  # Print a file in color
  tusk highlight query.sql

  # List tokens
  tusk highlight query.sql --tokens

  # Tokens as JSON
  tusk highlight query.sql -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHighlight(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Tokens, "tokens", false, "List tokens instead of printing colored text")

	return cmd
}

// tokenOutput is one token in JSON output.
type tokenOutput struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
	Text  string `json:"text"`
}

func runHighlight(cmd *cobra.Command, path string, opts *HighlightOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	text, err := readSource(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	theme, err := highlight.LoadTheme(cfg.Theme)
	if err != nil {
		return err
	}

	buf := buffer.New(text, bufferOptions(cfg, logger)...)
	defer buf.Close()
	tokens := highlight.NewHighlighter(highlight.WithLogger(logger)).Tokens(buf)

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))
	runes := []rune(text)

	switch {
	case cfg.Output == "json":
		out := make([]tokenOutput, len(tokens))
		for i, tok := range tokens {
			out[i] = tokenOutput{Start: tok.Start, End: tok.End, Type: tok.Type.String(), Text: tok.Text(runes)}
		}
		return r.JSON(out)
	case opts.Tokens:
		renderTokenTable(r, tokens, runes)
		return nil
	}

	_, _ = fmt.Fprint(r.Writer(), colorize(r, theme, tokens, runes))
	return nil
}

func renderTokenTable(r *output.Renderer, tokens []token.Token, runes []rune) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Start", "End", "Type", "Text"})
	for _, tok := range tokens {
		t.AppendRow(table.Row{tok.Start, tok.End, tok.Type.String(), strings.ReplaceAll(tok.Text(runes), "\n", `\n`)})
	}
	t.Render()
	r.Printf("(%d tokens)\n", len(tokens))
}

// colorize renders text with token styles. Gaps between tokens are copied verbatim.
func colorize(r *output.Renderer, theme *highlight.Theme, tokens []token.Token, runes []rune) string {
	var b strings.Builder
	pos := 0
	for _, tok := range tokens {
		if tok.Start > pos {
			b.WriteString(string(runes[pos:tok.Start]))
		}
		style := r.Style(theme.Style(tok.Type))
		// style line by line so lipgloss does not pad multi-line tokens
		for i, part := range strings.Split(string(runes[tok.Start:tok.End]), "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if part != "" {
				b.WriteString(style.Render(part))
			}
		}
		pos = tok.End
	}
	if pos < len(runes) {
		b.WriteString(string(runes[pos:]))
	}
	return b.String()
}
