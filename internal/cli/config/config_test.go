package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to a fresh directory so no tusk.yaml is picked up by accident.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("theme", "", "")
	flags.StringP("output", "o", "", "")
	flags.String("log-level", "", "")
	flags.String("catalog", "", "")
	flags.Bool("watch", true, "")
	flags.String("driver", "", "")
	flags.String("dsn", "", "")
	flags.Int("tab-width", 0, "")
	flags.Bool("verbose", false, "")
	return flags
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Editor.HistoryLimit)
	assert.Equal(t, 40*time.Millisecond, cfg.Editor.ParseTimeout)
	assert.Equal(t, 4, cfg.Editor.TabWidth)
	assert.Equal(t, DefaultMaxItems, cfg.Autocomplete.MaxItems)
	assert.Equal(t, "upper", cfg.Autocomplete.KeywordCase)
	assert.Equal(t, "monokai", cfg.Theme)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "table", cfg.Output)
	assert.False(t, cfg.Database.Configured())
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	dir := chdir(t)
	writeConfig(t, dir, "tusk.yaml", `
editor:
  history_limit: 50
  parse_timeout: 100ms
  tab_width: 2
autocomplete:
  max_items: 10
  keyword_case: lower
theme: dracula
catalog:
  file: catalog.yaml
  watch: false
database:
  driver: sqlite
  path: data/app.db
  schemas: [main]
log:
  level: debug
  format: json
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "tusk.yaml", cfg.File)
	assert.Equal(t, 50, cfg.Editor.HistoryLimit)
	assert.Equal(t, 100*time.Millisecond, cfg.Editor.ParseTimeout)
	assert.Equal(t, 2, cfg.Editor.TabWidth)
	assert.Equal(t, 10, cfg.Autocomplete.MaxItems)
	assert.Equal(t, "lower", cfg.Autocomplete.KeywordCase)
	assert.Equal(t, "dracula", cfg.Theme)
	assert.Equal(t, "catalog.yaml", cfg.Catalog.File)
	assert.False(t, cfg.Catalog.Watch)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join("data", "app.db"), cfg.Database.Path)
	assert.Equal(t, []string{"main"}, cfg.Database.Schemas)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadExplicitFileResolvesPaths(t *testing.T) {
	chdir(t)
	other := t.TempDir()
	path := writeConfig(t, other, "custom.yml", "catalog:\n  file: snap.yaml\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, filepath.Join(other, "snap.yaml"), cfg.Catalog.File)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t)
	_, err := Load("nope.yaml", nil)
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdir(t)
	writeConfig(t, dir, "tusk.yaml", "editor:\n  tab_width: 2\ntheme: dracula\n")
	t.Setenv("TUSK_EDITOR_TAB_WIDTH", "8")
	t.Setenv("TUSK_THEME", "github")
	t.Setenv("TUSK_AUTOCOMPLETE_MAX_ITEMS", "7")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Editor.TabWidth)
	assert.Equal(t, "github", cfg.Theme)
	assert.Equal(t, 7, cfg.Autocomplete.MaxItems)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	chdir(t)
	t.Setenv("TUSK_THEME", "github")
	t.Setenv("TUSK_EDITOR_TAB_WIDTH", "8")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--theme", "dracula", "--watch=false", "--verbose"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "dracula", cfg.Theme)
	assert.False(t, cfg.Catalog.Watch)
	// unchanged flags keep lower layers
	assert.Equal(t, 8, cfg.Editor.TabWidth)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	dir := chdir(t)
	writeConfig(t, dir, "tusk.yaml", `
database:
  driver: postgres
  host: localhost
  user: ${TUSK_TEST_USER}
  password: ${TUSK_TEST_PASSWORD}
  name: ${TUSK_TEST_UNSET}
`)
	t.Setenv("TUSK_TEST_USER", "ada")
	t.Setenv("TUSK_TEST_PASSWORD", "s3cret")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "ada", cfg.Database.User)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "${TUSK_TEST_UNSET}", cfg.Database.Name)

	ic := cfg.Database.Introspect()
	assert.Equal(t, "postgres", ic.Driver)
	assert.Equal(t, "localhost", ic.Host)
	assert.Equal(t, "ada", ic.User)
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TUSK_EDITOR_HISTORY_LIMIT", "editor.history_limit"},
		{"TUSK_DATABASE_DSN", "database.dsn"},
		{"TUSK_LOG_LEVEL", "log.level"},
		{"TUSK_THEME", "theme"},
		{"TUSK_OUTPUT", "output"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.in))
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Editor:       EditorConfig{HistoryLimit: 10, TabWidth: 4},
			Autocomplete: AutocompleteConfig{MaxItems: 5, KeywordCase: "upper"},
			Theme:        "monokai",
			Log:          LogConfig{Level: "info", Format: "text"},
			Output:       "table",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "negative history", mutate: func(c *Config) { c.Editor.HistoryLimit = -1 }, errSubstr: "history_limit"},
		{name: "zero tab width", mutate: func(c *Config) { c.Editor.TabWidth = 0 }, errSubstr: "tab_width"},
		{name: "keyword case", mutate: func(c *Config) { c.Autocomplete.KeywordCase = "title" }, errSubstr: "keyword_case"},
		{name: "unknown theme", mutate: func(c *Config) { c.Theme = "no-such-theme" }, errSubstr: "theme"},
		{name: "log level", mutate: func(c *Config) { c.Log.Level = "loud" }, errSubstr: "log.level"},
		{name: "log format", mutate: func(c *Config) { c.Log.Format = "xml" }, errSubstr: "log.format"},
		{name: "output", mutate: func(c *Config) { c.Output = "html" }, errSubstr: "output"},
		{name: "driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, errSubstr: "database.driver"},
		{name: "port", mutate: func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.Port = 70000
		}, errSubstr: "database.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := chdir(t)
	writeConfig(t, dir, "tusk.yaml", "editor:\n  tab_width: 0\n")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Format: "json"}, &buf)
	logger.Debug("hidden")
	logger.Info("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger = NewLogger(LogConfig{Level: "bogus", Format: "text"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept")

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.NotNil(t, GetLogger(context.Background()))
}
