// Package config provides configuration management for the tusk CLI.
package config

import (
	"time"

	"github.com/willibrandon/tusk-sub001/pkg/catalog/introspect"
)

// Config holds all CLI configuration options.
type Config struct {
	Editor       EditorConfig       `koanf:"editor"`
	Autocomplete AutocompleteConfig `koanf:"autocomplete"`
	Theme        string             `koanf:"theme"`
	Catalog      CatalogConfig      `koanf:"catalog"`
	Database     DatabaseConfig     `koanf:"database"`
	Log          LogConfig          `koanf:"log"`
	Output       string             `koanf:"output"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// EditorConfig configures the text buffer and controller.
type EditorConfig struct {
	HistoryLimit int           `koanf:"history_limit"`
	ParseTimeout time.Duration `koanf:"parse_timeout"`
	TabWidth     int           `koanf:"tab_width"`
}

// AutocompleteConfig configures the completion engine.
type AutocompleteConfig struct {
	MaxItems    int    `koanf:"max_items"`
	KeywordCase string `koanf:"keyword_case"`
}

// CatalogConfig points at a catalog snapshot file.
type CatalogConfig struct {
	File  string `koanf:"file"`
	Watch bool   `koanf:"watch"`
}

// DatabaseConfig describes the database used for introspection and
// statement execution. An empty driver means no database.
type DatabaseConfig struct {
	Driver   string            `koanf:"driver"`
	DSN      string            `koanf:"dsn"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Name     string            `koanf:"name"`
	Path     string            `koanf:"path"`
	Schemas  []string          `koanf:"schemas"`
	Options  map[string]string `koanf:"options"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Configured reports whether a database driver is set.
func (d DatabaseConfig) Configured() bool {
	return d.Driver != ""
}

// Introspect converts d to a connection config.
func (d DatabaseConfig) Introspect() introspect.Config {
	return introspect.Config{
		Driver:   d.Driver,
		DSN:      d.DSN,
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: d.Name,
		Path:     d.Path,
		Options:  d.Options,
	}
}
