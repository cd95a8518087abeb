package editor

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/willibrandon/tusk-sub001/pkg/buffer"
	"github.com/willibrandon/tusk-sub001/pkg/selection"
)

const commentPrefix = "-- "

// textEdit replaces [start, end) with text. Offsets refer to the content
// before the edit group is applied.
type textEdit struct {
	start int
	end   int
	text  string
}

// span is a selection as character offsets.
type span struct {
	anchor int
	head   int
}

// applyEdits applies edits as one undo step, last offset first, so every
// edit's offsets stay valid. Edits overlapping an earlier one are dropped.
// It returns the applied edits in ascending order, or nil when the content
// did not change.
func (c *Controller) applyEdits(edits []textEdit) []textEdit {
	n := c.buf.Len()
	for i := range edits {
		e := &edits[i]
		e.start = max(0, min(e.start, n))
		e.end = max(0, min(e.end, n))
		if e.start > e.end {
			e.start, e.end = e.end, e.start
		}
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	kept := make([]textEdit, 0, len(edits))
	for _, e := range edits {
		if len(kept) > 0 && e.start < kept[len(kept)-1].end {
			continue
		}
		kept = append(kept, e)
	}

	ops := make([]buffer.EditOperation, 0, len(kept))
	for i := len(kept) - 1; i >= 0; i-- {
		if op := c.buf.Op(kept[i].start, kept[i].end, kept[i].text); op != nil {
			ops = append(ops, op)
		}
	}
	if !c.buf.Apply(ops...) {
		return nil
	}
	return kept
}

// mapOffset moves a pre-edit offset through ascending edits. Offsets inside
// a replaced range land at the end of its replacement.
func mapOffset(p int, edits []textEdit) int {
	shift := 0
	for _, e := range edits {
		switch {
		case p >= e.end:
			shift += utf8.RuneCountInString(e.text) - (e.end - e.start)
		case p > e.start:
			return e.start + shift + utf8.RuneCountInString(e.text)
		default:
			return p + shift
		}
	}
	return p + shift
}

func (c *Controller) spans() []span {
	sels := c.sels.All()
	out := make([]span, len(sels))
	for i, sel := range sels {
		out[i] = span{anchor: c.buf.PositionToOffset(sel.Anchor), head: c.buf.PositionToOffset(sel.Head)}
	}
	return out
}

// restoreSpans rebuilds the selections from pre-edit spans. With collapse
// each selection becomes a cursor after its own edit.
func (c *Controller) restoreSpans(spans []span, edits []textEdit, primary int, collapse bool) {
	sels := make([]selection.Selection, len(spans))
	for i, s := range spans {
		if collapse {
			p := c.buf.OffsetToPosition(mapOffset(max(s.anchor, s.head), edits))
			sels[i] = selection.Cursor(p)
			continue
		}
		sels[i] = selection.Range(
			c.buf.OffsetToPosition(mapOffset(s.anchor, edits)),
			c.buf.OffsetToPosition(mapOffset(s.head, edits)),
		)
	}
	c.sels.Replace(sels, primary)
}

// editSelections computes one edit per selection against the current
// content, applies them as a group and leaves a cursor after each edit.
// fn receives the selection's start and end offsets.
func (c *Controller) editSelections(fn func(start, end int) (textEdit, bool)) bool {
	spans := c.spans()
	primary := c.sels.PrimaryIndex()

	edits := make([]textEdit, 0, len(spans))
	for _, s := range spans {
		if e, ok := fn(min(s.anchor, s.head), max(s.anchor, s.head)); ok {
			edits = append(edits, e)
		}
	}
	applied := c.applyEdits(edits)
	if applied == nil {
		return false
	}
	c.restoreSpans(spans, applied, primary, true)
	c.mutated()
	return true
}

func (c *Controller) insertText(text string) bool {
	return c.editSelections(func(start, end int) (textEdit, bool) {
		return textEdit{start: start, end: end, text: text}, true
	})
}

func (c *Controller) deleteBackward() bool {
	return c.editSelections(func(start, end int) (textEdit, bool) {
		switch {
		case start < end:
			return textEdit{start: start, end: end}, true
		case start > 0:
			return textEdit{start: start - 1, end: start}, true
		}
		return textEdit{}, false
	})
}

func (c *Controller) deleteForward() bool {
	n := c.buf.Len()
	return c.editSelections(func(start, end int) (textEdit, bool) {
		switch {
		case start < end:
			return textEdit{start: start, end: end}, true
		case start < n:
			return textEdit{start: start, end: start + 1}, true
		}
		return textEdit{}, false
	})
}

// selectedLines returns the lines touched by any selection, ascending. A
// range ending at column 0 does not include that last line.
func (c *Controller) selectedLines() []int {
	seen := make(map[int]bool)
	var lines []int
	for _, sel := range c.sels.All() {
		first, last := sel.Start().Line, sel.End().Line
		if !sel.IsCursor() && last > first && sel.End().Column == 0 {
			last--
		}
		for l := first; l <= last; l++ {
			if !seen[l] {
				seen[l] = true
				lines = append(lines, l)
			}
		}
	}
	sort.Ints(lines)
	return lines
}

// toggleComment comments the selected non-blank lines by inserting "-- " at
// their smallest indentation, or uncomments them when every one of them
// already starts with "--".
func (c *Controller) toggleComment() bool {
	var lines []int
	for _, l := range c.selectedLines() {
		if strings.TrimSpace(c.buf.LineText(l)) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return false
	}

	uncomment := true
	for _, l := range lines {
		if !strings.HasPrefix(strings.TrimLeft(c.buf.LineText(l), " \t"), "--") {
			uncomment = false
			break
		}
	}

	minIndent := -1
	for _, l := range lines {
		indent := leadingBlanks([]rune(c.buf.LineText(l)))
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}

	edits := make([]textEdit, 0, len(lines))
	for _, l := range lines {
		start := c.buf.LineStart(l)
		if !uncomment {
			at := start + minIndent
			edits = append(edits, textEdit{start: at, end: at, text: commentPrefix})
			continue
		}
		text := []rune(c.buf.LineText(l))
		indent := leadingBlanks(text)
		n := 2
		if indent+2 < len(text) && text[indent+2] == ' ' {
			n = 3
		}
		edits = append(edits, textEdit{start: start + indent, end: start + indent + n})
	}

	spans := c.spans()
	primary := c.sels.PrimaryIndex()
	applied := c.applyEdits(edits)
	if applied == nil {
		return false
	}
	c.restoreSpans(spans, applied, primary, false)
	c.mutated()
	return true
}

func leadingBlanks(text []rune) int {
	n := 0
	for n < len(text) && (text[n] == ' ' || text[n] == '\t') {
		n++
	}
	return n
}

func (c *Controller) selectAll() bool {
	end := c.buf.OffsetToPosition(c.buf.Len())
	c.sels.Replace([]selection.Selection{selection.Range(buffer.Position{}, end)}, 0)
	return true
}

// addCursor adds a cursor on the line above the topmost selection (dir < 0)
// or below the bottommost one (dir > 0), keeping the column where possible.
func (c *Controller) addCursor(dir int) bool {
	sels := c.sels.All()
	from := sels[0]
	if dir > 0 {
		from = sels[len(sels)-1]
	}
	line := from.Head.Line + dir
	if line < 0 || line >= c.buf.LineCount() {
		return false
	}
	goal := from.GoalColumn
	if goal == selection.NoGoal {
		goal = from.Head.Column
	}
	p := buffer.Position{Line: line, Column: min(goal, c.buf.LineLen(line))}
	c.sels.Add(selection.Selection{Anchor: p, Head: p, GoalColumn: goal})
	return true
}

func (c *Controller) undo() bool {
	if !c.buf.Undo() {
		return false
	}
	c.cursorsAfter(c.buf.LastApplied())
	c.mutated()
	return true
}

func (c *Controller) redo() bool {
	if !c.buf.Redo() {
		return false
	}
	c.cursorsAfter(c.buf.LastApplied())
	c.mutated()
	return true
}

// cursorsAfter places a cursor at the end of every operation of the last
// mutation, following later operations' shifts.
func (c *Controller) cursorsAfter(ops []buffer.EditOperation) {
	var offsets []int
	for _, op := range ops {
		start := op.Start()
		removedEnd := start + utf8.RuneCountInString(op.Removed())
		for i, o := range offsets {
			switch {
			case o >= removedEnd:
				offsets[i] = o + buffer.Delta(op)
			case o > start:
				offsets[i] = buffer.End(op)
			}
		}
		offsets = append(offsets, buffer.End(op))
	}

	sels := make([]selection.Selection, len(offsets))
	for i, o := range offsets {
		sels[i] = selection.Cursor(c.buf.OffsetToPosition(o))
	}
	c.sels.Replace(sels, len(sels)-1)
}
