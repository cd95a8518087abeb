package buffer

import (
	"fmt"
	"unicode/utf8"

	"github.com/willibrandon/tusk-sub001/pkg/syntax"
)

// EditOperation is one reversible change to the buffer. The set of
// implementations is closed: Insert, Delete and Replace.
type EditOperation interface {
	// Invert returns the operation that undoes this one.
	Invert() EditOperation
	// Start is the character offset the operation applies at.
	Start() int
	// Removed is the text taken out of the document.
	Removed() string
	// Inserted is the text put into the document.
	Inserted() string

	isEditOperation()
}

// Insert puts Text at Offset.
type Insert struct {
	Offset int
	Text   string
}

// Delete removes Text, which starts at Offset.
type Delete struct {
	Offset int
	Text   string
}

// Replace swaps OldText at Offset for NewText.
type Replace struct {
	Offset  int
	OldText string
	NewText string
}

func (op Insert) Invert() EditOperation  { return Delete(op) }
func (op Delete) Invert() EditOperation  { return Insert(op) }
func (op Replace) Invert() EditOperation { return Replace{Offset: op.Offset, OldText: op.NewText, NewText: op.OldText} }

func (op Insert) Start() int  { return op.Offset }
func (op Delete) Start() int  { return op.Offset }
func (op Replace) Start() int { return op.Offset }

func (op Insert) Removed() string  { return "" }
func (op Delete) Removed() string  { return op.Text }
func (op Replace) Removed() string { return op.OldText }

func (op Insert) Inserted() string  { return op.Text }
func (op Delete) Inserted() string  { return "" }
func (op Replace) Inserted() string { return op.NewText }

func (Insert) isEditOperation()  {}
func (Delete) isEditOperation()  {}
func (Replace) isEditOperation() {}

func (op Insert) String() string { return fmt.Sprintf("Insert{%d, %q}", op.Offset, op.Text) }
func (op Delete) String() string { return fmt.Sprintf("Delete{%d, %q}", op.Offset, op.Text) }
func (op Replace) String() string {
	return fmt.Sprintf("Replace{%d, %q -> %q}", op.Offset, op.OldText, op.NewText)
}

// End returns the character offset just past the inserted text once op is applied.
func End(op EditOperation) int {
	return op.Start() + utf8.RuneCountInString(op.Inserted())
}

// Delta returns the change in document length caused by op.
func Delta(op EditOperation) int {
	return utf8.RuneCountInString(op.Inserted()) - utf8.RuneCountInString(op.Removed())
}

// makeOp builds the operation replacing [start, end) of r with text.
// It returns nil when the edit would not change the content.
func makeOp(r Rope, start, end int, text string) EditOperation {
	start, end = r.clamp(start), r.clamp(end)
	if start > end {
		start, end = end, start
	}
	old := r.Slice(start, end)
	switch {
	case old == text:
		return nil
	case old == "":
		return Insert{Offset: start, Text: text}
	case text == "":
		return Delete{Offset: start, Text: old}
	default:
		return Replace{Offset: start, OldText: old, NewText: text}
	}
}

// normalize re-derives op against the actual content of r so that its
// recorded removed text is exactly what applying it takes out. Offsets are
// clamped; the removed length is kept.
func normalize(r Rope, op EditOperation) EditOperation {
	start := r.clamp(op.Start())
	end := r.clamp(start + utf8.RuneCountInString(op.Removed()))
	return makeOp(r, start, end, op.Inserted())
}

// applyOp applies a normalized op and returns the new rope together with the
// byte-level description of the change for incremental reparsing.
func applyOp(r Rope, op EditOperation) (Rope, syntax.InputEdit) {
	start := op.Start()
	removed, inserted := op.Removed(), op.Inserted()

	startByte := r.ByteOffset(start)
	line, _ := r.OffsetToLineCol(start)
	startPoint := syntax.Point{Row: line, Column: startByte - r.ByteOffset(r.LineStart(line))}

	edit := syntax.InputEdit{
		StartByte:   startByte,
		OldEndByte:  startByte + len(removed),
		NewEndByte:  startByte + len(inserted),
		StartPoint:  startPoint,
		OldEndPoint: syntax.AdvancePoint(startPoint, removed),
		NewEndPoint: syntax.AdvancePoint(startPoint, inserted),
	}

	next := r
	if removed != "" {
		next = next.Delete(start, start+utf8.RuneCountInString(removed))
	}
	if inserted != "" {
		next = next.Insert(start, inserted)
	}
	return next, edit
}
