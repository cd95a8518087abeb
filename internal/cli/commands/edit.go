package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/willibrandon/tusk-sub001/internal/cli/config"
	"github.com/willibrandon/tusk-sub001/internal/runner"
	"github.com/willibrandon/tusk-sub001/internal/tui"
	"github.com/willibrandon/tusk-sub001/pkg/catalog"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
)

// NewEditCommand creates the edit command.
func NewEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit SQL in a full-screen terminal editor",
		Long: `Open a SQL file in the terminal editor.

The editor highlights as you type, offers schema-aware completion and can
run the statement under the cursor (ctrl+e) or the whole file (ctrl+g)
against the configured database. A missing file is created on save.
With --watch the catalog snapshot file is reloaded when it changes.`,
		Example: `  # Edit with completion from a snapshot that is kept up to date
  tusk edit query.sql --catalog catalog.yaml --watch

  # Edit and run against SQLite
  tusk edit query.sql --driver sqlite --db-path app.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runEdit(cmd, path)
		},
	}

	return cmd
}

func runEdit(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	text := ""
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // user-provided path is intentional
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("new file", "path", path)
		case err != nil:
			return fmt.Errorf("failed to read %s: %w", path, err)
		default:
			text = string(data)
		}
	}

	theme, err := highlight.LoadTheme(cfg.Theme)
	if err != nil {
		return err
	}

	store, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	engine := newEngine(cfg, store, logger)

	opts := []tui.Option{
		tui.WithTheme(theme),
		tui.WithResultFormat(cfg.Output),
		tui.WithEditorOptions(editorOptions(cfg, engine, logger)...),
		tui.WithLogger(logger),
	}
	if path != "" {
		opts = append(opts,
			tui.WithTitle(filepath.Base(path)),
			tui.WithSave(func(content string) error {
				return os.WriteFile(path, []byte(content), 0o644) //nolint:gosec // SQL files are not secret
			}))
	}

	if cfg.Database.Configured() {
		run, err := runner.Open(ctx, cfg.Database.Introspect(), runner.WithLogger(logger))
		if err != nil {
			return err
		}
		defer func() { _ = run.Close() }()
		opts = append(opts, tui.WithExecutor(run))
	}

	m := tui.New(text, opts...)
	defer m.Controller().Close()

	return runEditSession(ctx, m, cfg, store)
}

// runEditSession runs the editor and, when enabled, the catalog watcher.
// The watcher stops when the editor exits.
func runEditSession(ctx context.Context, m *tui.Model, cfg *config.Config, store *catalog.Store) error {
	logger := config.GetLogger(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, egctx := errgroup.WithContext(ctx)

	if cfg.Catalog.Watch && cfg.Catalog.File != "" {
		eg.Go(func() error {
			return catalog.Watch(egctx, cfg.Catalog.File, store, logger)
		})
	}

	eg.Go(func() error {
		defer cancel()
		return tui.Run(egctx, m)
	})

	return eg.Wait()
}
