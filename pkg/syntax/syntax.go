// Package syntax defines the incremental parsing capability used by the
// editor buffer and the highlighter.
//
// A Parser turns source bytes into a Tree. When a previous tree is supplied,
// it must already have been told about every edit via Tree.Edit so that the
// parser can reuse unchanged subtrees. Implementations live in subpackages;
// a nil Parser is valid and means "no syntax tree", which callers handle by
// falling back to lexical tokenization.
package syntax

import "context"

// Point is a row/column location in the source. Column counts bytes.
type Point struct {
	Row    int
	Column int
}

// InputEdit describes one edit in byte offsets and points, as required to
// update a previous tree before reparsing.
type InputEdit struct {
	StartByte   int
	OldEndByte  int
	NewEndByte  int
	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

// Node is a node of a concrete syntax tree. Offsets are byte offsets.
type Node interface {
	Type() string
	StartByte() int
	EndByte() int
	ChildCount() int
	Child(i int) Node
	IsNamed() bool
	IsMissing() bool
}

// Tree is a parse result for one version of a document.
type Tree interface {
	Root() Node
	Edit(edit InputEdit)
	Close()
}

// Parser produces trees, reusing old when it is non-nil.
type Parser interface {
	Parse(ctx context.Context, src []byte, old Tree) (Tree, error)
	Close()
}

// AdvancePoint returns the point reached after writing text at p.
func AdvancePoint(p Point, text string) Point {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			p.Row++
			p.Column = 0
		} else {
			p.Column++
		}
	}
	return p
}

// Leaves calls fn for every leaf of the tree rooted at n, in source order.
// Leaves are nodes without children.
func Leaves(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	count := n.ChildCount()
	if count == 0 {
		fn(n)
		return
	}
	for i := 0; i < count; i++ {
		Leaves(n.Child(i), fn)
	}
}

// LeavesInRange is Leaves restricted to leaves whose byte range intersects
// [start, end); an empty range visits nothing. Subtrees that end before
// start or begin at or after end are skipped without visiting their children.
func LeavesInRange(n Node, start, end int, fn func(Node)) {
	if n == nil || start >= end || n.EndByte() <= start || n.StartByte() >= end {
		return
	}
	count := n.ChildCount()
	if count == 0 {
		fn(n)
		return
	}
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child.StartByte() >= end {
			return
		}
		LeavesInRange(child, start, end, fn)
	}
}
