package editor

import (
	"strings"
	"unicode"

	"github.com/willibrandon/tusk-sub001/pkg/highlight"
)

// CurrentStatement returns the statement around the primary cursor with
// surrounding whitespace trimmed. When the cursor sits in an empty segment
// after the last semicolon, the statement before it is used.
func (c *Controller) CurrentStatement() string {
	start, end := c.CurrentStatementRange()
	return c.buf.Slice(start, end)
}

// CurrentStatementRange returns the character range of CurrentStatement.
// start == end when there is no statement.
func (c *Controller) CurrentStatementRange() (start, end int) {
	text := c.buf.Text()
	runes := []rune(text)
	cursor := c.buf.PositionToOffset(c.sels.Primary().Head)

	spans := highlight.SplitStatements(text, c.dialect)
	i := highlight.StatementIndex(spans, cursor)
	start, end = trimSpan(runes, spans[i])
	if start == end && i > 0 {
		start, end = trimSpan(runes, spans[i-1])
	}
	return start, end
}

func trimSpan(runes []rune, s highlight.Span) (int, int) {
	start, end := s.Start, s.End
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	return start, end
}

// executeStatement emits Execute for the primary selection, or for the
// current statement when nothing is selected.
func (c *Controller) executeStatement() bool {
	if text, ok := c.SelectedText(); ok && strings.TrimSpace(text) != "" {
		start, _ := c.selectionOffsets(c.sels.Primary())
		c.emit(Execute{SQL: text, IsSelection: true, Offset: start})
		return true
	}

	start, end := c.CurrentStatementRange()
	if start == end {
		return false
	}
	c.emit(Execute{SQL: c.buf.Slice(start, end), Offset: start})
	return true
}

func (c *Controller) executeAll() bool {
	text := c.buf.Text()
	if strings.TrimSpace(text) == "" {
		return false
	}
	c.emit(ExecuteAll{SQL: text})
	return true
}
