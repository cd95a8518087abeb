package highlight

import (
	"github.com/willibrandon/tusk-sub001/pkg/dialect"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// Span is a half-open character range.
type Span struct {
	Start int
	End   int
}

// Len returns the span length.
func (s Span) Len() int { return s.End - s.Start }

// SplitStatements returns the segments of src between semicolons, in
// character offsets and without the semicolons. Semicolons inside strings,
// comments and quoted identifiers do not split. There is always at least one
// segment and the last one ends at the end of src.
func SplitStatements(src string, d *dialect.Dialect) []Span {
	runes := []rune(src)
	var spans []Span
	start := 0
	for _, tok := range LexWithDialect(src, d) {
		if tok.Type == token.Punctuation && runes[tok.Start] == ';' {
			spans = append(spans, Span{Start: start, End: tok.Start})
			start = tok.End
		}
	}
	return append(spans, Span{Start: start, End: len(runes)})
}

// StatementIndex returns the index of the span containing offset. An offset
// right after a semicolon belongs to the following span.
func StatementIndex(spans []Span, offset int) int {
	for i, s := range spans {
		if offset <= s.End {
			return i
		}
	}
	return len(spans) - 1
}
