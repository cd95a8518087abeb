// Package buffer implements the editor's versioned text buffer.
//
// A Buffer stores its content in a Rope addressed by character offset, keeps
// bounded undo/redo history made of reversible EditOperations, and keeps an
// optional syntax tree in step with the content by reparsing incrementally
// after every mutation. Offsets and ranges outside the content are clamped;
// no buffer operation panics or returns an error.
package buffer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/willibrandon/tusk-sub001/pkg/syntax"
)

// DefaultParseTimeout bounds a single reparse.
const DefaultParseTimeout = 40 * time.Millisecond

// Buffer is a versioned document. It is not safe for concurrent use.
type Buffer struct {
	id      string
	rope    Rope
	version uint64
	hist    *history

	parser       syntax.Parser
	tree         syntax.Tree
	parseTimeout time.Duration

	// applied holds the operations of the most recent mutation.
	applied []EditOperation

	text        string
	textVersion uint64
	textValid   bool

	logger *slog.Logger
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithParser enables syntax trees. A nil parser keeps the buffer tree-less.
func WithParser(p syntax.Parser) Option {
	return func(b *Buffer) {
		b.parser = p
	}
}

// WithHistoryLimit bounds the number of undo entries.
func WithHistoryLimit(limit int) Option {
	return func(b *Buffer) {
		b.hist = newHistory(limit)
	}
}

// WithParseTimeout bounds a single reparse.
func WithParseTimeout(d time.Duration) Option {
	return func(b *Buffer) {
		if d > 0 {
			b.parseTimeout = d
		}
	}
}

// WithID sets the buffer id instead of a random one.
func WithID(id string) Option {
	return func(b *Buffer) {
		b.id = id
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Buffer) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a buffer holding text.
func New(text string, opts ...Option) *Buffer {
	b := &Buffer{
		id:           uuid.NewString(),
		rope:         NewRope(text),
		hist:         newHistory(DefaultHistoryLimit),
		parseTimeout: DefaultParseTimeout,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.reparse(nil)
	return b
}

// ID returns the buffer identifier.
func (b *Buffer) ID() string { return b.id }

// Version returns the content version. It increases on every mutation.
func (b *Buffer) Version() uint64 { return b.version }

// Rope returns the current content as an immutable rope.
func (b *Buffer) Rope() Rope { return b.rope }

// Len returns the content length in characters.
func (b *Buffer) Len() int { return b.rope.Len() }

// Text returns the whole content.
func (b *Buffer) Text() string {
	if !b.textValid || b.textVersion != b.version {
		b.text = b.rope.String()
		b.textVersion = b.version
		b.textValid = true
	}
	return b.text
}

// Slice returns the content in [start, end), clamped.
func (b *Buffer) Slice(start, end int) string { return b.rope.Slice(start, end) }

// Tree returns the syntax tree for the current version, or nil.
func (b *Buffer) Tree() syntax.Tree { return b.tree }

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int { return b.rope.LineCount() }

// LineLen returns the number of characters on line, excluding the newline.
func (b *Buffer) LineLen(line int) int {
	return b.rope.LineEnd(line) - b.rope.LineStart(line)
}

// LineStart returns the offset of the first character of line.
func (b *Buffer) LineStart(line int) int { return b.rope.LineStart(line) }

// LineText returns the text of line without its newline.
func (b *Buffer) LineText(line int) string {
	return b.rope.Slice(b.rope.LineStart(line), b.rope.LineEnd(line))
}

// LineColToOffset converts a zero-based line and column to an offset.
func (b *Buffer) LineColToOffset(line, col int) int { return b.rope.LineColToOffset(line, col) }

// OffsetToLineCol converts an offset to a zero-based line and column.
func (b *Buffer) OffsetToLineCol(offset int) (int, int) { return b.rope.OffsetToLineCol(offset) }

// PositionToOffset converts a Position to an offset.
func (b *Buffer) PositionToOffset(p Position) int { return b.rope.LineColToOffset(p.Line, p.Column) }

// OffsetToPosition converts an offset to a Position.
func (b *Buffer) OffsetToPosition(offset int) Position {
	line, col := b.rope.OffsetToLineCol(offset)
	return Position{Line: line, Column: col}
}

// ClampPosition returns the nearest valid position to p.
func (b *Buffer) ClampPosition(p Position) Position {
	return b.OffsetToPosition(b.PositionToOffset(p))
}

// Op builds the operation that replaces [start, end) with text against the
// current content. It returns nil when nothing would change.
func (b *Buffer) Op(start, end int, text string) EditOperation {
	return makeOp(b.rope, start, end, text)
}

// Insert inserts text at offset.
func (b *Buffer) Insert(offset int, text string) bool {
	return b.Apply(b.Op(offset, offset, text))
}

// Delete removes [start, end).
func (b *Buffer) Delete(start, end int) bool {
	return b.Apply(b.Op(start, end, ""))
}

// Replace replaces [start, end) with text.
func (b *Buffer) Replace(start, end int, text string) bool {
	return b.Apply(b.Op(start, end, text))
}

// Apply applies ops in order as a single undo step. Each op is interpreted
// against the content left by the previous one. Nil ops are skipped. It
// returns false when nothing changed.
func (b *Buffer) Apply(ops ...EditOperation) bool {
	c, edits := b.applyOps(ops)
	if len(c) == 0 {
		return false
	}
	b.hist.record(c)
	b.commit(c, edits)
	return true
}

func (b *Buffer) applyOps(ops []EditOperation) (change, []syntax.InputEdit) {
	var (
		c     change
		edits []syntax.InputEdit
	)
	for _, op := range ops {
		if op == nil {
			continue
		}
		op = normalize(b.rope, op)
		if op == nil {
			continue
		}
		var edit syntax.InputEdit
		b.rope, edit = applyOp(b.rope, op)
		c = append(c, op)
		edits = append(edits, edit)
	}
	return c, edits
}

func (b *Buffer) commit(c change, edits []syntax.InputEdit) {
	b.version++
	b.applied = c
	b.reparse(edits)
}

// CanUndo reports whether Undo would do anything.
func (b *Buffer) CanUndo() bool { return len(b.hist.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (b *Buffer) CanRedo() bool { return len(b.hist.redo) > 0 }

// Undo reverts the most recent undo step.
func (b *Buffer) Undo() bool {
	c, ok := b.hist.popUndo()
	if !ok {
		return false
	}
	applied, edits := b.applyOps(c.inverse())
	b.hist.redo = append(b.hist.redo, c)
	b.commit(applied, edits)
	return true
}

// Redo reapplies the most recently undone step.
func (b *Buffer) Redo() bool {
	c, ok := b.hist.popRedo()
	if !ok {
		return false
	}
	applied, edits := b.applyOps(c)
	b.hist.pushUndo(c)
	b.commit(applied, edits)
	return true
}

// LastApplied returns the operations of the most recent mutation, undo and
// redo included, in application order.
func (b *Buffer) LastApplied() []EditOperation {
	return b.applied
}

// Reset replaces the whole content and clears history.
func (b *Buffer) Reset(text string) {
	b.rope = NewRope(text)
	b.hist.reset()
	b.applied = nil
	b.version++
	if b.tree != nil {
		b.tree.Close()
		b.tree = nil
	}
	b.reparse(nil)
}

// Close releases the syntax tree.
func (b *Buffer) Close() {
	if b.tree != nil {
		b.tree.Close()
		b.tree = nil
	}
}

// reparse brings the tree up to the current version. With edits and a
// previous tree the parse is incremental; otherwise it is a full parse.
// Any failure leaves the tree nil.
func (b *Buffer) reparse(edits []syntax.InputEdit) {
	if b.parser == nil {
		return
	}

	old := b.tree
	if old != nil {
		if edits == nil {
			old.Close()
			old = nil
		} else {
			for _, e := range edits {
				old.Edit(e)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.parseTimeout)
	defer cancel()

	tree, err := b.parser.Parse(ctx, []byte(b.Text()), old)
	if old != nil && old != tree {
		old.Close()
	}
	if err != nil {
		b.logger.Debug("reparse failed, using lexical fallback",
			slog.String("buffer", b.id),
			slog.Uint64("version", b.version),
			slog.String("error", err.Error()))
		b.tree = nil
		return
	}
	b.tree = tree
}
