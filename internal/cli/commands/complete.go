package commands

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/willibrandon/tusk-sub001/internal/cli/config"
	"github.com/willibrandon/tusk-sub001/internal/cli/output"
	"github.com/willibrandon/tusk-sub001/pkg/buffer"
	"github.com/willibrandon/tusk-sub001/pkg/complete"
)

// CompleteOptions holds options for the complete command.
type CompleteOptions struct {
	Line   int
	Column int
	Offset int
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand() *cobra.Command {
	opts := &CompleteOptions{}

	cmd := &cobra.Command{
		Use:   "complete <file>",
		Short: "List completions at a position in a SQL file",
		Long: `List the ranked completions offered at a cursor position.

The position is given either as --line and --col (1-based) or as a
character --offset. Without a position the end of the file is used.
Tables and columns come from the configured catalog file or database.`,
		Example: `  # Completions after "FROM " on line 3
  tusk complete query.sql --line 3 --col 6

  # With a catalog snapshot
  tusk complete query.sql --offset 42 --catalog catalog.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.Line, "line", 0, "Cursor line (1-based)")
	cmd.Flags().IntVar(&opts.Column, "col", 0, "Cursor column (1-based)")
	cmd.Flags().IntVar(&opts.Offset, "offset", -1, "Cursor character offset")

	return cmd
}

// completionOutput is one completion in JSON output.
type completionOutput struct {
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Insert   string `json:"insert_text"`
	Detail   string `json:"detail,omitempty"`
	Priority int    `json:"priority"`
}

func runComplete(cmd *cobra.Command, path string, opts *CompleteOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	text, err := readSource(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	offset, err := cursorOffset(text, opts)
	if err != nil {
		return err
	}

	store, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	engine := newEngine(cfg, store, logger)

	cctx := complete.NewContext(text, offset)
	cls := engine.Classify(cctx)
	items := engine.Complete(cctx)

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))
	if cfg.Output == "json" {
		out := make([]completionOutput, len(items))
		for i, it := range items {
			out[i] = completionOutput{
				Label:    it.Label,
				Kind:     it.Kind.String(),
				Insert:   it.InsertText,
				Detail:   it.Detail,
				Priority: it.SortPriority,
			}
		}
		return r.JSON(out)
	}

	r.Println(r.Styles().Muted.Render(fmt.Sprintf("context: %s  word: %q", cls.Kind, cctx.Word)))
	if len(items) == 0 {
		r.Println("(no completions)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Label", "Kind", "Insert", "Detail"})
	for _, it := range items {
		t.AppendRow(table.Row{it.Label, it.Kind.String(), it.InsertText, it.Detail})
	}
	t.Render()
	r.Printf("(%d completions)\n", len(items))
	return nil
}

// cursorOffset resolves the cursor from the options.
func cursorOffset(text string, opts *CompleteOptions) (int, error) {
	buf := buffer.New(text)
	defer buf.Close()

	switch {
	case opts.Line > 0:
		col := max(opts.Column, 1)
		if opts.Line > buf.LineCount() {
			return 0, fmt.Errorf("line %d is past the end of the file (%d lines)", opts.Line, buf.LineCount())
		}
		return buf.PositionToOffset(buf.ClampPosition(buffer.Pos(opts.Line-1, col-1))), nil
	case opts.Offset >= 0:
		if opts.Offset > buf.Len() {
			return 0, errors.New("offset is past the end of the file")
		}
		return opts.Offset, nil
	}
	return buf.Len(), nil
}
