// Package introspect builds catalog snapshots from live databases.
//
// Each supported database registers a Driver carrying its database/sql
// driver name and the queries that list schemas, tables, columns, functions
// and row estimates. Snapshot runs those queries concurrently and assembles
// the result into a catalog.Snapshot.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/willibrandon/tusk-sub001/pkg/catalog"
	"github.com/willibrandon/tusk-sub001/pkg/dialect"
)

// Connect opens and pings a database.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	drv, err := Lookup(cfg.Driver)
	if err != nil {
		return nil, err
	}

	logger.Debug("connecting to database",
		slog.String("driver", drv.Name),
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
		slog.String("path", cfg.Path))

	db, err := sql.Open(drv.SQLDriver, drv.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", drv.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", drv.Name, err)
	}
	return db, nil
}

// Introspector reads catalogs from one database.
type Introspector struct {
	db      *sql.DB
	driver  Driver
	schemas map[string]bool
	logger  *slog.Logger
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithSchemas limits snapshots to the named schemas.
func WithSchemas(names ...string) Option {
	return func(i *Introspector) {
		for _, name := range names {
			if name == "" {
				continue
			}
			if i.schemas == nil {
				i.schemas = make(map[string]bool)
			}
			i.schemas[name] = true
		}
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Introspector) {
		i.logger = logger
	}
}

// New wraps an open database handle for the named driver.
func New(db *sql.DB, driver string, opts ...Option) (*Introspector, error) {
	drv, err := Lookup(driver)
	if err != nil {
		return nil, err
	}
	i := &Introspector{db: db, driver: drv}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = slog.New(slog.DiscardHandler)
	}
	return i, nil
}

// Open connects using cfg and returns an Introspector owning the connection.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Introspector, error) {
	settings := &Introspector{}
	for _, opt := range opts {
		opt(settings)
	}
	db, err := Connect(ctx, cfg, settings.logger)
	if err != nil {
		return nil, err
	}
	return New(db, cfg.Driver, opts...)
}

// DB returns the underlying handle.
func (i *Introspector) DB() *sql.DB { return i.db }

// Close closes the database connection.
func (i *Introspector) Close() error {
	if i.db == nil {
		return nil
	}
	i.logger.Debug("closing database connection")
	return i.db.Close()
}

type tableKey struct{ schema, name string }

// Snapshot queries the database and returns its catalog.
func (i *Introspector) Snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	if i.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	start := time.Now()
	q := i.driver.Queries

	var (
		schemas   []string
		tables    [][]string
		columns   [][]string
		functions [][]string
		estimates map[tableKey]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		schemas, err = i.querySchemas(gctx, q.Schemas)
		return err
	})
	g.Go(func() (err error) {
		tables, err = queryStrings(gctx, i.db, q.Tables, "tables", 3)
		return err
	})
	g.Go(func() (err error) {
		columns, err = queryStrings(gctx, i.db, q.Columns, "columns", 4)
		return err
	})
	g.Go(func() (err error) {
		functions, err = queryStrings(gctx, i.db, q.Functions, "functions", 4)
		return err
	})
	g.Go(func() (err error) {
		estimates, err = i.queryEstimates(gctx, q.RowEstimates)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := catalog.Data{
		Dialect:     i.driver.Name,
		GeneratedAt: time.Now().UTC(),
	}
	if d, ok := dialect.Get(i.driver.Name); ok {
		data.DefaultSchema = d.DefaultSchema
	}

	for _, s := range schemas {
		if i.keep(s) {
			data.Schemas = append(data.Schemas, s)
		}
	}

	index := make(map[tableKey]int)
	for _, row := range tables {
		key := tableKey{row[0], row[1]}
		if !i.keep(key.schema) {
			continue
		}
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = len(data.Tables)
		data.Tables = append(data.Tables, catalog.TableRef{
			Name:        key.name,
			Schema:      key.schema,
			IsView:      strings.Contains(strings.ToUpper(row[2]), "VIEW"),
			RowEstimate: estimates[key],
		})
	}
	for _, row := range columns {
		idx, ok := index[tableKey{row[0], row[1]}]
		if !ok {
			continue
		}
		data.Tables[idx].Columns = append(data.Tables[idx].Columns, catalog.Column{Name: row[2], Type: row[3]})
	}

	for _, row := range functions {
		if !i.keep(row[0]) {
			continue
		}
		fn := catalog.FunctionRef{Schema: row[0], Name: row[1], ReturnType: row[3]}
		fn.Signature = fmt.Sprintf("%s(%s)", row[1], row[2])
		if fn.ReturnType != "" {
			fn.Signature += " -> " + fn.ReturnType
		}
		data.Functions = append(data.Functions, fn)
	}

	snap := catalog.NewSnapshot(data)
	i.logger.Debug("introspected catalog",
		slog.String("driver", i.driver.Name),
		slog.Int("schemas", len(snap.SchemaNames())),
		slog.Int("tables", len(data.Tables)),
		slog.Int("functions", len(data.Functions)),
		slog.Duration("elapsed", time.Since(start)))
	return snap, nil
}

func (i *Introspector) keep(schema string) bool {
	return i.schemas == nil || i.schemas[schema]
}

func (i *Introspector) querySchemas(ctx context.Context, query string) ([]string, error) {
	rows, err := queryStrings(ctx, i.db, query, "schemas", 1)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(rows))
	for k, row := range rows {
		names[k] = row[0]
	}
	return names, nil
}

func (i *Introspector) queryEstimates(ctx context.Context, query string) (map[tableKey]int64, error) {
	estimates := make(map[tableKey]int64)
	if query == "" {
		return estimates, nil
	}

	rows, err := i.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query row estimates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key tableKey
		var n sql.NullInt64
		if err := rows.Scan(&key.schema, &key.name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan row estimates: %w", err)
		}
		estimates[key] = n.Int64
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating row estimates: %w", err)
	}
	return estimates, nil
}

// queryStrings runs query and scans every row into width strings.
// NULLs scan as "".
func queryStrings(ctx context.Context, db *sql.DB, query, what string, width int) ([][]string, error) {
	if query == "" {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer func() { _ = rows.Close() }()

	var out [][]string
	for rows.Next() {
		cols := make([]sql.NullString, width)
		dest := make([]any, width)
		for k := range cols {
			dest[k] = &cols[k]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		row := make([]string, width)
		for k := range cols {
			row[k] = cols[k].String
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}
	return out, nil
}
