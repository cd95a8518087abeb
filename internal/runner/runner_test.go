package runner

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/tusk-sub001/internal/testutil"
	"github.com/willibrandon/tusk-sub001/pkg/catalog/introspect"
)

func newMock(t *testing.T, opts ...Option) (*Runner, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t))}, opts...)
	r := New(db, opts...)
	t.Cleanup(func() { _ = r.Close() })
	return r, mock
}

func TestExecuteQuery(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM users")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, []byte("ada")).
			AddRow(2, nil))

	res, err := r.Execute(context.Background(), "SELECT id, name FROM users")
	require.NoError(t, err)
	assert.True(t, res.IsQuery())
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "ada", res.Rows[0][1])
	assert.Nil(t, res.Rows[1][1])
	assert.False(t, res.Truncated)
	assert.False(t, r.Running())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteStatement(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = 'x'")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	res, err := r.Execute(context.Background(), "-- rename\nUPDATE users SET name = 'x'")
	require.NoError(t, err)
	assert.False(t, res.IsQuery())
	assert.Equal(t, int64(3), res.RowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteTruncates(t *testing.T) {
	r, mock := newMock(t, WithMaxRows(2))
	mock.ExpectQuery("SELECT n").WillReturnRows(
		sqlmock.NewRows([]string{"n"}).AddRow(1).AddRow(2).AddRow(3))

	res, err := r.Execute(context.Background(), "SELECT n FROM numbers")
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.True(t, res.Truncated)
}

func TestExecuteRejects(t *testing.T) {
	_, err := New(nil).Execute(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = New(nil).ExecuteAll(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)

	r, _ := newMock(t)
	_, err = r.Execute(context.Background(), "  \n ")
	assert.ErrorIs(t, err, ErrNoStatement)

	_, err = r.ExecuteAll(context.Background(), " ; ;")
	assert.ErrorIs(t, err, ErrNoStatement)
}

func TestExecutePostgresError(t *testing.T) {
	r, mock := newMock(t)
	pgErr := &pgconn.PgError{
		Severity: "ERROR",
		Code:     "42601",
		Message:  `syntax error at or near "FORM"`,
		Hint:     "check the FROM clause",
		Position: 10,
	}
	mock.ExpectQuery("FORM").WillReturnError(pgErr)

	_, err := r.Execute(context.Background(), "SELECT * FORM users")
	require.Error(t, err)

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, `syntax error at or near "FORM"`, execErr.Message)
	assert.Equal(t, "HINT: check the FROM clause", execErr.Detail)
	assert.Equal(t, 9, execErr.Offset)
	assert.Equal(t, 29, execErr.Position(20))
	assert.ErrorIs(t, err, pgErr)
}

func TestExecuteGenericError(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec("DROP").WillReturnError(errors.New("permission denied"))

	_, err := r.Execute(context.Background(), "DROP TABLE users")
	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "permission denied", execErr.Message)
	assert.Equal(t, -1, execErr.Offset)
	assert.Equal(t, 20, execErr.Position(20))
}

func TestExecuteAll(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	results, err := r.ExecuteAll(context.Background(), "CREATE TABLE t (a int);\nSELECT 1;\n")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].IsQuery())
	assert.True(t, results[1].IsQuery())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteAllStopsAtFirstError(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("FORM").WillReturnError(&pgconn.PgError{Message: "syntax error", Position: 11})

	text := "SELECT 1;\nSELECT * FORM t;\nSELECT 2"
	results, err := r.ExecuteAll(context.Background(), text)
	require.Error(t, err)
	assert.Len(t, results, 1)

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, 9, execErr.Base)
	assert.Equal(t, 10, execErr.Offset)
	assert.Equal(t, "F", string([]rune(text)[execErr.Position(0)]))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery("pg_sleep").
		WillDelayFor(5 * time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"pg_sleep"}).AddRow(nil))

	assert.False(t, r.Cancel())

	errc := make(chan error, 1)
	go func() {
		_, err := r.Execute(context.Background(), "SELECT pg_sleep(10)")
		errc <- err
	}()

	require.Eventually(t, r.Running, time.Second, 5*time.Millisecond)
	assert.True(t, r.Cancel())

	select {
	case err := <-errc:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("statement was not cancelled")
	}
	assert.False(t, r.Running())
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT 1", true},
		{"select 1", true},
		{"  WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"(SELECT 1) UNION (SELECT 2)", true},
		{"/* c */ -- d\nVALUES (1)", true},
		{"EXPLAIN SELECT 1", true},
		{"SHOW search_path", true},
		{"PRAGMA table_info(t)", true},
		{"INSERT INTO t VALUES (1)", false},
		{"CREATE TABLE t (a int)", false},
		{"", false},
		{"-- only a comment", false},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.want, returnsRows(tt.sql))
		})
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), introspect.Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	r := New((*sql.DB)(nil))
	assert.Equal(t, DefaultMaxRows, r.maxRows)
	assert.NotNil(t, r.logger)
	assert.Nil(t, r.DB())
	assert.NoError(t, r.Close())
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	r, err := Open(ctx, introspect.Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "runner.db"),
	}, WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	results, err := r.ExecuteAll(ctx, `
		CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT);
		INSERT INTO notes (body) VALUES ('one'), ('two');
		SELECT id, body FROM notes ORDER BY id;`)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(2), results[1].RowsAffected)
	assert.Equal(t, []string{"id", "body"}, results[2].Columns)
	require.Len(t, results[2].Rows, 2)
	assert.Equal(t, "two", FormatValue(results[2].Rows[1][1]))

	_, err = r.Execute(ctx, "SELECT missing FROM notes")
	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Contains(t, execErr.Message, "missing")
}
