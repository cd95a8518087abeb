package introspect

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	_ "modernc.org/sqlite"              // sqlite driver
)

// ErrUnsupportedDriver is returned for driver names without a registration.
var ErrUnsupportedDriver = errors.New("unsupported driver")

// Queries are the catalog queries of one database. Every query returns
// rows in the column order documented on its field. An empty query is skipped.
type Queries struct {
	// Schemas returns (schema_name).
	Schemas string
	// Tables returns (schema, table, table_type).
	Tables string
	// Columns returns (schema, table, column, data_type) in ordinal order.
	Columns string
	// Functions returns (schema, name, arguments, result_type).
	Functions string
	// RowEstimates returns (schema, table, estimate).
	RowEstimates string
}

// Driver binds a dialect name to a database/sql driver and its queries.
type Driver struct {
	Name      string // dialect name
	SQLDriver string // database/sql driver name
	DSN       func(Config) string
	Queries   Queries
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register adds a driver.
func Register(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[d.Name] = d
}

// Lookup returns the driver registered under name.
func Lookup(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return Driver{}, fmt.Errorf("%w %q (available: %v)", ErrUnsupportedDriver, name, listLocked())
	}
	return d, nil
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	return listLocked()
}

func listLocked() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(Driver{
		Name:      "postgres",
		SQLDriver: "pgx",
		DSN:       buildPostgresDSN,
		Queries: Queries{
			Schemas: `
				SELECT schema_name
				FROM information_schema.schemata
				WHERE schema_name NOT IN ('pg_catalog', 'information_schema')
				  AND schema_name NOT LIKE 'pg_toast%'
				  AND schema_name NOT LIKE 'pg_temp%'
				ORDER BY schema_name`,
			Tables: `
				SELECT table_schema, table_name, table_type
				FROM information_schema.tables
				WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
				ORDER BY table_schema, table_name`,
			Columns: `
				SELECT table_schema, table_name, column_name, data_type
				FROM information_schema.columns
				WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
				ORDER BY table_schema, table_name, ordinal_position`,
			Functions: `
				SELECT n.nspname, p.proname,
				       pg_get_function_identity_arguments(p.oid),
				       COALESCE(pg_get_function_result(p.oid), '')
				FROM pg_proc p
				JOIN pg_namespace n ON n.oid = p.pronamespace
				WHERE n.nspname NOT IN ('pg_catalog', 'information_schema')
				ORDER BY n.nspname, p.proname`,
			RowEstimates: `
				SELECT n.nspname, c.relname, GREATEST(c.reltuples, 0)::bigint
				FROM pg_class c
				JOIN pg_namespace n ON n.oid = c.relnamespace
				WHERE c.relkind IN ('r', 'p', 'm')
				  AND n.nspname NOT IN ('pg_catalog', 'information_schema')`,
		},
	})

	Register(Driver{
		Name:      "duckdb",
		SQLDriver: "duckdb",
		DSN:       buildFileDSN,
		Queries: Queries{
			Schemas: `
				SELECT DISTINCT schema_name
				FROM information_schema.schemata
				WHERE catalog_name = current_database()
				  AND schema_name NOT IN ('information_schema', 'pg_catalog')
				ORDER BY schema_name`,
			Tables: `
				SELECT table_schema, table_name, table_type
				FROM information_schema.tables
				WHERE table_catalog = current_database()
				ORDER BY table_schema, table_name`,
			Columns: `
				SELECT table_schema, table_name, column_name, data_type
				FROM information_schema.columns
				WHERE table_catalog = current_database()
				ORDER BY table_schema, table_name, ordinal_position`,
			Functions: `
				SELECT schema_name, function_name,
				       array_to_string(parameters, ', '),
				       COALESCE(return_type, '')
				FROM duckdb_functions()
				WHERE NOT internal
				ORDER BY schema_name, function_name`,
			RowEstimates: `
				SELECT schema_name, table_name, estimated_size
				FROM duckdb_tables()
				WHERE database_name = current_database()`,
		},
	})

	Register(Driver{
		Name:      "sqlite",
		SQLDriver: "sqlite",
		DSN:       buildFileDSN,
		Queries: Queries{
			Schemas: `SELECT name FROM pragma_database_list WHERE name <> 'temp' ORDER BY seq`,
			Tables: `
				SELECT 'main', name, type
				FROM sqlite_master
				WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
				ORDER BY name`,
			Columns: `
				SELECT 'main', m.name, p.name, p.type
				FROM sqlite_master m
				JOIN pragma_table_info(m.name) p
				WHERE m.type IN ('table', 'view') AND m.name NOT LIKE 'sqlite_%'
				ORDER BY m.name, p.cid`,
		},
	})
}
