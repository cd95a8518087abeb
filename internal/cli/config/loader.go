package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/willibrandon/tusk-sub001/pkg/buffer"
	"github.com/willibrandon/tusk-sub001/pkg/editor"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
)

// EnvPrefix prefixes environment overrides: TUSK_EDITOR_TAB_WIDTH sets editor.tab_width.
const EnvPrefix = "TUSK_"

// Defaults for values not set anywhere else.
const (
	DefaultMaxItems    = 50
	DefaultKeywordCase = "upper"
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
	DefaultOutput      = "table"
)

// configFileNames are searched in the working directory, in order.
var configFileNames = []string{"tusk.yaml", "tusk.yml"}

// sections are the nested config keys; env names are split after them.
var sections = []string{"editor", "autocomplete", "catalog", "database", "log"}

// flagKeys maps CLI flag names to config keys. Flags not listed are not config.
var flagKeys = map[string]string{
	"theme":        "theme",
	"output":       "output",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"catalog":      "catalog.file",
	"watch":        "catalog.watch",
	"driver":       "database.driver",
	"dsn":          "database.dsn",
	"db-path":      "database.path",
	"max-items":    "autocomplete.max_items",
	"keyword-case": "autocomplete.keyword_case",
	"tab-width":    "editor.tab_width",
}

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// configKey is used to store the config in context.
type configKey struct{}

// findConfigFile finds the config file to use.
// Priority: explicit path > tusk.yaml > tusk.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// defaults returns the base layer.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"editor.history_limit":      buffer.DefaultHistoryLimit,
		"editor.parse_timeout":      buffer.DefaultParseTimeout.String(),
		"editor.tab_width":          editor.DefaultTabWidth,
		"autocomplete.max_items":    DefaultMaxItems,
		"autocomplete.keyword_case": DefaultKeywordCase,
		"theme":                     highlight.DefaultTheme,
		"catalog.watch":             true,
		"log.level":                 DefaultLogLevel,
		"log.format":                DefaultLogFormat,
		"output":                    DefaultOutput,
	}
}

// envKey turns TUSK_DATABASE_DSN into database.dsn.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

// Load loads configuration from defaults, the config file, environment
// variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Load environment variables (TUSK_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	// 6. Resolve paths from the config file relative to it
	if used != "" {
		base := filepath.Dir(used)
		cfg.Catalog.File = resolvePathRelativeTo(cfg.Catalog.File, base, flagChanged(flags, "catalog"))
		cfg.Database.Path = resolvePathRelativeTo(cfg.Database.Path, base, flagChanged(flags, "db-path"))
	}

	expandDatabaseEnvVars(&cfg.Database)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	if flags == nil {
		return false
	}
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not
// absolute. Paths given as flags are already relative to the working directory.
func resolvePathRelativeTo(path, baseDir string, fromFlag bool) string {
	if path == "" || fromFlag || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandDatabaseEnvVars expands environment variables in sensitive database fields.
func expandDatabaseEnvVars(d *DatabaseConfig) {
	d.DSN = expandEnvVars(d.DSN)
	d.Host = expandEnvVars(d.Host)
	d.User = expandEnvVars(d.User)
	d.Password = expandEnvVars(d.Password)
	d.Name = expandEnvVars(d.Name)
}

// NewLogger builds the process logger from c, writing to w.
func NewLogger(c LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level)}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// WithLogger returns ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.New(slog.DiscardHandler)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	cfg, err := Load("", nil)
	if err != nil {
		return &Config{
			Editor:       EditorConfig{HistoryLimit: buffer.DefaultHistoryLimit, ParseTimeout: buffer.DefaultParseTimeout, TabWidth: editor.DefaultTabWidth},
			Autocomplete: AutocompleteConfig{MaxItems: DefaultMaxItems, KeywordCase: DefaultKeywordCase},
			Theme:        highlight.DefaultTheme,
			Catalog:      CatalogConfig{Watch: true},
			Log:          LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
			Output:       DefaultOutput,
		}
	}
	return cfg
}

// WithConfig returns ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from the command context, falling back
// to the defaults.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c
		}
	}
	return Default()
}
