package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/willibrandon/tusk-sub001/internal/cli/config"
	"github.com/willibrandon/tusk-sub001/pkg/buffer"
	"github.com/willibrandon/tusk-sub001/pkg/catalog"
	"github.com/willibrandon/tusk-sub001/pkg/catalog/introspect"
	"github.com/willibrandon/tusk-sub001/pkg/complete"
	"github.com/willibrandon/tusk-sub001/pkg/editor"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
	"github.com/willibrandon/tusk-sub001/pkg/syntax/treesitter"
)

// readSource reads a SQL file, or stdin when path is "-".
func readSource(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // user-provided path is intentional
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// bufferOptions builds text buffer options from the config.
func bufferOptions(cfg *config.Config, logger *slog.Logger) []buffer.Option {
	return []buffer.Option{
		buffer.WithParser(treesitter.New(treesitter.WithLogger(logger))),
		buffer.WithHistoryLimit(cfg.Editor.HistoryLimit),
		buffer.WithParseTimeout(cfg.Editor.ParseTimeout),
		buffer.WithLogger(logger),
	}
}

// newEngine builds a completion engine reading from src.
func newEngine(cfg *config.Config, src catalog.Source, logger *slog.Logger) *complete.Engine {
	kc := complete.KeywordUpper
	if strings.EqualFold(cfg.Autocomplete.KeywordCase, string(complete.KeywordLower)) {
		kc = complete.KeywordLower
	}
	return complete.New(
		complete.WithCatalog(src),
		complete.WithKeywordCase(kc),
		complete.WithMaxItems(cfg.Autocomplete.MaxItems),
		complete.WithLogger(logger),
	)
}

// editorOptions builds controller options for an editing session.
func editorOptions(cfg *config.Config, engine *complete.Engine, logger *slog.Logger) []editor.Option {
	return []editor.Option{
		editor.WithBufferOptions(bufferOptions(cfg, logger)...),
		editor.WithCompleter(engine),
		editor.WithHighlighter(highlight.NewHighlighter(highlight.WithLogger(logger))),
		editor.WithTabWidth(cfg.Editor.TabWidth),
		editor.WithLogger(logger),
	}
}

// loadCatalog returns the catalog for a session: the snapshot file when one
// is configured, otherwise an introspection of the configured database,
// otherwise an empty catalog.
func loadCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*catalog.Store, error) {
	switch {
	case cfg.Catalog.File != "":
		snap, err := catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return nil, err
		}
		logger.Debug("catalog loaded", "file", cfg.Catalog.File, "tables", len(snap.AllTables()))
		return catalog.NewStore(snap, logger), nil

	case cfg.Database.Configured():
		snap, err := introspectDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return catalog.NewStore(snap, logger), nil
	}
	return catalog.NewStore(nil, logger), nil
}

// introspectDatabase reads a snapshot from the configured database.
func introspectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*catalog.Snapshot, error) {
	in, err := introspect.Open(ctx, cfg.Database.Introspect(),
		introspect.WithSchemas(cfg.Database.Schemas...),
		introspect.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	snap, err := in.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect database: %w", err)
	}
	return snap, nil
}
