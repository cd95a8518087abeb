package introspect

import (
	"fmt"
)

// Config describes a database connection.
type Config struct {
	// Driver is the dialect name: postgres, duckdb or sqlite.
	Driver string
	// DSN, when set, is passed to the driver verbatim.
	DSN string

	Host     string
	Port     int
	User     string
	Password string
	Database string

	// Path is the database file for duckdb and sqlite. Empty means in-memory.
	Path string

	// Options are extra connection options such as sslmode.
	Options map[string]string
}

// buildPostgresDSN constructs a PostgreSQL key=value connection string.
func buildPostgresDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, cfg.Database, sslmode)
	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return dsn
}

// buildFileDSN returns the DSN for file databases.
func buildFileDSN(cfg Config) string {
	switch {
	case cfg.DSN != "":
		return cfg.DSN
	case cfg.Path != "":
		return cfg.Path
	}
	return ":memory:"
}
