package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/willibrandon/tusk-sub001/internal/cli/config"
	"github.com/willibrandon/tusk-sub001/internal/cli/output"
	"github.com/willibrandon/tusk-sub001/pkg/catalog"
)

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and snapshot schema catalogs",
		Long: `Inspect and snapshot the schema catalog used by autocomplete.

A catalog snapshot is a YAML file listing schemas, tables, views, columns
and functions. It can be written from a live database with "catalog dump"
and passed to other commands with --catalog.`,
	}

	cmd.AddCommand(newCatalogDumpCommand())
	cmd.AddCommand(newCatalogShowCommand())

	return cmd
}

func newCatalogDumpCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write a catalog snapshot of the configured database",
		Example: `  # Snapshot a SQLite database
  tusk catalog dump --driver sqlite --db-path app.db --out catalog.yaml

  # Snapshot Postgres to stdout
  tusk catalog dump --driver postgres --dsn "$DATABASE_URL"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			logger := config.GetLogger(ctx)

			if !cfg.Database.Configured() {
				return fmt.Errorf("no database configured: set --driver with --dsn or --db-path")
			}

			snap, err := introspectDatabase(ctx, cfg, logger)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return catalog.Write(cmd.OutOrStdout(), snap)
			}
			if err := catalog.SaveFile(out, snap); err != nil {
				return err
			}

			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))
			r.Success(fmt.Sprintf("Wrote %s (%d tables, %d functions)",
				out, len(snap.AllTables()), len(snap.AllFunctions())))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Snapshot file to write (default stdout)")

	return cmd
}

func newCatalogShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "List the tables of a catalog snapshot",
		Long: `List the tables and views of a catalog.

The catalog is read from the given snapshot file, else from --catalog,
else by introspecting the configured database.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			logger := config.GetLogger(ctx)

			var snap *catalog.Snapshot
			if len(args) == 1 {
				s, err := catalog.LoadFile(args[0])
				if err != nil {
					return err
				}
				snap = s
			} else {
				store, err := loadCatalog(ctx, cfg, logger)
				if err != nil {
					return err
				}
				snap = store.Snapshot()
			}

			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))
			if cfg.Output == "json" {
				return r.JSON(snap.Data())
			}
			renderCatalog(r, snap)
			return nil
		},
	}

	return cmd
}

func renderCatalog(r *output.Renderer, snap *catalog.Snapshot) {
	tables := snap.AllTables()

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Schema", "Name", "Kind", "Columns", "Rows"})
	for _, tbl := range tables {
		kind := "table"
		if tbl.IsView {
			kind = "view"
		}
		names := make([]string, len(tbl.Columns))
		for i, c := range tbl.Columns {
			names[i] = c.Name
		}
		rows := ""
		if tbl.RowEstimate > 0 {
			rows = fmt.Sprintf("%d", tbl.RowEstimate)
		}
		t.AppendRow(table.Row{tbl.Schema, tbl.Name, kind, strings.Join(names, ", "), rows})
	}
	t.Render()
	r.Printf("(%d tables, %d functions)\n", len(tables), len(snap.AllFunctions()))
}
