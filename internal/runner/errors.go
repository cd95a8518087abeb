package runner

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ExecError is a failed statement. Offset is the character offset of the
// failure inside the statement, or -1 when the database did not report one.
type ExecError struct {
	SQL     string
	Offset  int
	Base    int
	Message string
	Detail  string
	Err     error
}

func (e *ExecError) Error() string {
	return e.Message
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Position returns the failure offset in a document where the statement
// starts at stmtStart. Without a reported position the statement start is used.
func (e *ExecError) Position(stmtStart int) int {
	if e.Offset < 0 {
		return stmtStart + e.Base
	}
	return stmtStart + e.Base + e.Offset
}

func newExecError(sqlText string, err error) *ExecError {
	e := &ExecError{
		SQL:     sqlText,
		Offset:  -1,
		Message: err.Error(),
		Err:     err,
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		e.Message = pgErr.Message
		var detail []string
		if pgErr.Detail != "" {
			detail = append(detail, pgErr.Detail)
		}
		if pgErr.Hint != "" {
			detail = append(detail, "HINT: "+pgErr.Hint)
		}
		e.Detail = strings.Join(detail, "\n")
		if pgErr.Position > 0 {
			// postgres positions are 1-based characters
			e.Offset = min(int(pgErr.Position)-1, len([]rune(sqlText)))
		}
	}
	return e
}
