package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/willibrandon/tusk-sub001/pkg/catalog/introspect"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	outputs    = []string{"table", "json", "csv", "md"}
)

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Editor.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("editor.history_limit must not be negative, got %d", c.Editor.HistoryLimit))
	}
	if c.Editor.ParseTimeout < 0 {
		errs = append(errs, fmt.Errorf("editor.parse_timeout must not be negative, got %s", c.Editor.ParseTimeout))
	}
	if c.Editor.TabWidth < 1 {
		errs = append(errs, fmt.Errorf("editor.tab_width must be at least 1, got %d", c.Editor.TabWidth))
	}
	if c.Autocomplete.MaxItems < 0 {
		errs = append(errs, fmt.Errorf("autocomplete.max_items must not be negative, got %d", c.Autocomplete.MaxItems))
	}
	switch strings.ToLower(c.Autocomplete.KeywordCase) {
	case "upper", "lower":
	default:
		errs = append(errs, fmt.Errorf("autocomplete.keyword_case must be upper or lower, got %q", c.Autocomplete.KeywordCase))
	}
	if _, err := highlight.LoadTheme(c.Theme); err != nil {
		errs = append(errs, fmt.Errorf("theme: %w", err))
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level must be one of %s, got %q", strings.Join(logLevels, ", "), c.Log.Level))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format must be one of %s, got %q", strings.Join(logFormats, ", "), c.Log.Format))
	}
	if !slices.Contains(outputs, c.Output) {
		errs = append(errs, fmt.Errorf("output must be one of %s, got %q", strings.Join(outputs, ", "), c.Output))
	}
	if c.Database.Configured() {
		if _, err := introspect.Lookup(c.Database.Driver); err != nil {
			errs = append(errs, fmt.Errorf("database.driver: %w", err))
		}
		if c.Database.Port < 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Errorf("database.port out of range: %d", c.Database.Port))
		}
	}

	return errors.Join(errs...)
}
