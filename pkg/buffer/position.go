package buffer

import "fmt"

// Position points into the document by zero-based line and column.
// Columns count characters.
type Position struct {
	Line   int
	Column int
}

// Pos is shorthand for Position{Line: line, Column: col}.
func Pos(line, col int) Position {
	return Position{Line: line, Column: col}
}

// Compare orders positions line-major. It returns -1, 0 or 1.
func (p Position) Compare(o Position) int {
	switch {
	case p.Line < o.Line:
		return -1
	case p.Line > o.Line:
		return 1
	case p.Column < o.Column:
		return -1
	case p.Column > o.Column:
		return 1
	}
	return 0
}

// Less reports whether p sorts before o.
func (p Position) Less(o Position) bool {
	return p.Compare(o) < 0
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Line, p.Column)
}

// MinPos returns the earlier of two positions.
func MinPos(a, b Position) Position {
	if b.Less(a) {
		return b
	}
	return a
}

// MaxPos returns the later of two positions.
func MaxPos(a, b Position) Position {
	if a.Less(b) {
		return b
	}
	return a
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
