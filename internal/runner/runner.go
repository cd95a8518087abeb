// Package runner executes SQL sent by the editor against a database/sql
// connection and maps database errors back to document offsets.
package runner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/willibrandon/tusk-sub001/pkg/catalog/introspect"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// DefaultMaxRows bounds how many rows a Result keeps.
const DefaultMaxRows = 1000

var (
	// ErrNotConnected is returned when the runner has no database.
	ErrNotConnected = errors.New("not connected to a database")
	// ErrNoStatement is returned for blank SQL.
	ErrNoStatement = errors.New("no statement to execute")
)

// queryWords start statements that return rows.
var queryWords = map[string]bool{
	"select":    true,
	"with":      true,
	"values":    true,
	"table":     true,
	"show":      true,
	"explain":   true,
	"pragma":    true,
	"describe":  true,
	"summarize": true,
	"from":      true,
}

// Result is the outcome of one statement.
type Result struct {
	SQL          string
	Columns      []string
	Rows         [][]any
	RowsAffected int64
	Truncated    bool
	Duration     time.Duration
}

// IsQuery reports whether the statement returned a row set.
func (r *Result) IsQuery() bool { return r.Columns != nil }

// Runner executes statements one at a time. Cancel may be called from any
// goroutine.
type Runner struct {
	db      *sql.DB
	maxRows int
	logger  *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxRows bounds the rows kept per result. Zero or less keeps all rows.
func WithMaxRows(n int) Option {
	return func(r *Runner) {
		r.maxRows = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner over db. A nil db yields ErrNotConnected on execute.
func New(db *sql.DB, opts ...Option) *Runner {
	r := &Runner{db: db, maxRows: DefaultMaxRows}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Open connects with cfg and returns a Runner owning the connection.
func Open(ctx context.Context, cfg introspect.Config, opts ...Option) (*Runner, error) {
	r := New(nil, opts...)
	db, err := introspect.Connect(ctx, cfg, r.logger)
	if err != nil {
		return nil, err
	}
	r.db = db
	return r, nil
}

// DB returns the underlying connection.
func (r *Runner) DB() *sql.DB { return r.db }

// Close closes the connection.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Running reports whether a statement is executing.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Cancel cancels the running statement. It reports whether there was one.
func (r *Runner) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.logger.Debug("cancelling statement")
	r.cancel()
	return true
}

func (r *Runner) begin(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.running = true
	r.mu.Unlock()
	return ctx, func() {
		r.mu.Lock()
		r.cancel = nil
		r.running = false
		r.mu.Unlock()
		cancel()
	}
}

// Execute runs one statement. Database failures are returned as *ExecError
// with offsets relative to sqlText.
func (r *Runner) Execute(ctx context.Context, sqlText string) (*Result, error) {
	if r.db == nil {
		return nil, ErrNotConnected
	}
	if strings.TrimSpace(sqlText) == "" {
		return nil, ErrNoStatement
	}

	ctx, done := r.begin(ctx)
	defer done()
	return r.execute(ctx, sqlText)
}

// ExecuteAll runs every statement in sqlText in order and stops at the
// first failure. The results of the statements that ran are returned with
// the error, whose offset is relative to sqlText.
func (r *Runner) ExecuteAll(ctx context.Context, sqlText string) ([]*Result, error) {
	if r.db == nil {
		return nil, ErrNotConnected
	}

	runes := []rune(sqlText)
	var results []*Result
	ctx, done := r.begin(ctx)
	defer done()

	for _, span := range highlight.SplitStatements(sqlText, nil) {
		stmt := string(runes[span.Start:span.End])
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		res, err := r.execute(ctx, stmt)
		if err != nil {
			var execErr *ExecError
			if errors.As(err, &execErr) {
				execErr.Base = span.Start
			}
			return results, err
		}
		results = append(results, res)
	}
	if len(results) == 0 {
		return nil, ErrNoStatement
	}
	return results, nil
}

func (r *Runner) execute(ctx context.Context, sqlText string) (*Result, error) {
	start := time.Now()
	res := &Result{SQL: sqlText}

	var err error
	if returnsRows(sqlText) {
		err = r.query(ctx, res)
	} else {
		err = r.exec(ctx, res)
	}
	res.Duration = time.Since(start)

	if err != nil {
		r.logger.Debug("statement failed", "duration", res.Duration, "error", err)
		return nil, newExecError(sqlText, err)
	}
	r.logger.Debug("statement executed",
		"duration", res.Duration,
		"rows", len(res.Rows),
		"affected", res.RowsAffected)
	return res, nil
}

func (r *Runner) query(ctx context.Context, res *Result) error {
	rows, err := r.db.QueryContext(ctx, res.SQL)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	res.Columns = append([]string{}, cols...)

	for rows.Next() {
		if r.maxRows > 0 && len(res.Rows) >= r.maxRows {
			res.Truncated = true
			break
		}
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, values)
	}
	return rows.Err()
}

func (r *Runner) exec(ctx context.Context, res *Result) error {
	out, err := r.db.ExecContext(ctx, res.SQL)
	if err != nil {
		return err
	}
	if n, err := out.RowsAffected(); err == nil {
		res.RowsAffected = n
	}
	return nil
}

// returnsRows guesses from the first word whether a statement yields rows.
func returnsRows(sqlText string) bool {
	runes := []rune(sqlText)
	for _, tok := range highlight.Lex(sqlText) {
		switch tok.Type {
		case token.Comment:
			continue
		case token.Punctuation:
			return runes[tok.Start] == '('
		}
		return queryWords[strings.ToLower(tok.Text(runes))]
	}
	return false
}

// Summary describes a result in one line.
func (r *Result) Summary() string {
	if !r.IsQuery() {
		return fmt.Sprintf("OK, %d rows affected (%s)", r.RowsAffected, r.Duration.Round(time.Millisecond))
	}
	more := ""
	if r.Truncated {
		more = "+"
	}
	return fmt.Sprintf("%d%s rows (%s)", len(r.Rows), more, r.Duration.Round(time.Millisecond))
}
