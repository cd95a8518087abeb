package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeNode struct {
	typ        string
	start, end int
	children   []*fakeNode
}

func (n *fakeNode) Type() string    { return n.typ }
func (n *fakeNode) StartByte() int  { return n.start }
func (n *fakeNode) EndByte() int    { return n.end }
func (n *fakeNode) ChildCount() int { return len(n.children) }
func (n *fakeNode) IsNamed() bool   { return true }
func (n *fakeNode) IsMissing() bool { return false }
func (n *fakeNode) Child(i int) Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func TestAdvancePoint(t *testing.T) {
	tests := []struct {
		name  string
		start Point
		text  string
		want  Point
	}{
		{"empty", Point{1, 4}, "", Point{1, 4}},
		{"same line", Point{0, 3}, "abc", Point{0, 6}},
		{"newline", Point{2, 5}, "ab\ncd", Point{3, 2}},
		{"trailing newline", Point{0, 0}, "x\n", Point{1, 0}},
		{"multibyte counts bytes", Point{0, 0}, "é", Point{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdvancePoint(tt.start, tt.text))
		})
	}
}

func TestLeavesInOrder(t *testing.T) {
	root := &fakeNode{typ: "program", start: 0, end: 9, children: []*fakeNode{
		{typ: "statement", start: 0, end: 8, children: []*fakeNode{
			{typ: "keyword_select", start: 0, end: 6},
			{typ: "literal", start: 7, end: 8},
		}},
		{typ: ";", start: 8, end: 9},
	}}

	var got []string
	Leaves(root, func(n Node) { got = append(got, n.Type()) })

	assert.Equal(t, []string{"keyword_select", "literal", ";"}, got)
}

func TestLeavesNil(t *testing.T) {
	called := false
	Leaves(nil, func(Node) { called = true })
	assert.False(t, called)
}

// tracedNode records every node whose children are listed.
type tracedNode struct {
	*fakeNode
	expanded *[]string
}

func (n tracedNode) ChildCount() int {
	if len(n.children) > 0 {
		*n.expanded = append(*n.expanded, n.typ)
	}
	return n.fakeNode.ChildCount()
}

func (n tracedNode) Child(i int) Node {
	return tracedNode{fakeNode: n.children[i], expanded: n.expanded}
}

func TestLeavesInRange(t *testing.T) {
	// SELECT 1;\nSELECT 2;\nSELECT 3;
	stmt := func(name string, start int) *fakeNode {
		return &fakeNode{typ: name, start: start, end: start + 8, children: []*fakeNode{
			{typ: "keyword_select", start: start, end: start + 6},
			{typ: "literal", start: start + 7, end: start + 8},
		}}
	}
	root := &fakeNode{typ: "program", start: 0, end: 29, children: []*fakeNode{
		stmt("first", 0), {typ: ";", start: 8, end: 9},
		stmt("second", 10), {typ: ";", start: 18, end: 19},
		stmt("third", 20), {typ: ";", start: 28, end: 29},
	}}

	tests := []struct {
		name       string
		start, end int
		want       []int
		expanded   []string
	}{
		{"middle statement", 10, 19, []int{10, 17, 18}, []string{"program", "second"}},
		{"partial leaf is included", 12, 13, []int{10}, []string{"program", "second"}},
		{"spans two statements", 17, 21, []int{17, 18, 20}, []string{"program", "second", "third"}},
		{"whole tree", 0, 29, []int{0, 7, 8, 10, 17, 18, 20, 27, 28}, []string{"program", "first", "second", "third"}},
		{"empty range", 5, 5, nil, nil},
		{"past the end", 40, 50, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var expanded []string
			var got []int
			LeavesInRange(tracedNode{fakeNode: root, expanded: &expanded}, tt.start, tt.end, func(n Node) {
				got = append(got, n.StartByte())
			})
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.expanded, expanded, "subtrees outside the range are not expanded")
		})
	}
}
