// Package editor implements the editing controller that ties a buffer, a
// multi-cursor selection set, the highlighter and the completion engine
// together behind a small input API.
//
// A Controller is driven by TypeText, Key and Run (or Handle, which
// dispatches all three). It owns its Buffer and selections exclusively and
// reports what hosts need to act on through Events: content changes,
// statements to execute, cancel and save requests. The controller performs
// no I/O; executing SQL and reporting failures back through ShowError is the
// host's job.
package editor

import (
	"log/slog"

	"github.com/willibrandon/tusk-sub001/pkg/buffer"
	"github.com/willibrandon/tusk-sub001/pkg/complete"
	"github.com/willibrandon/tusk-sub001/pkg/dialect"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
	"github.com/willibrandon/tusk-sub001/pkg/selection"
	"github.com/willibrandon/tusk-sub001/pkg/syntax"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// DefaultTabWidth is the number of spaces Tab inserts.
const DefaultTabWidth = 4

// State is the controller's input mode.
type State int

// Controller states.
const (
	Normal State = iota
	AutocompleteActive
)

func (s State) String() string {
	if s == AutocompleteActive {
		return "AutocompleteActive"
	}
	return "Normal"
}

// Completer produces completions for a cursor context.
type Completer interface {
	Complete(ctx complete.Context) []complete.Completion
}

// Controller is the editing state machine. It is not safe for concurrent use.
type Controller struct {
	buf  *buffer.Buffer
	sels *selection.Set

	state       State
	completions []complete.Completion
	compIndex   int

	errors []EditorError

	completer   Completer
	highlighter *highlight.Highlighter
	dialect     *dialect.Dialect
	tabWidth    int
	onEvent     func(Event)
	bufOpts     []buffer.Option
	logger      *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithParser keeps a syntax tree for the buffer.
func WithParser(p syntax.Parser) Option {
	return func(c *Controller) {
		c.bufOpts = append(c.bufOpts, buffer.WithParser(p))
	}
}

// WithBufferOptions passes options through to the buffer.
func WithBufferOptions(opts ...buffer.Option) Option {
	return func(c *Controller) {
		c.bufOpts = append(c.bufOpts, opts...)
	}
}

// WithCompleter sets the completion source. Without one a default engine
// with no catalog is used.
func WithCompleter(comp Completer) Option {
	return func(c *Controller) {
		c.completer = comp
	}
}

// WithHighlighter sets the highlighter used by Tokens.
func WithHighlighter(h *highlight.Highlighter) Option {
	return func(c *Controller) {
		c.highlighter = h
	}
}

// WithDialect sets the dialect used to split statements and, for defaults,
// to highlight and complete.
func WithDialect(d *dialect.Dialect) Option {
	return func(c *Controller) {
		if d != nil {
			c.dialect = d
		}
	}
}

// WithTabWidth sets how many spaces Tab inserts.
func WithTabWidth(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.tabWidth = n
		}
	}
}

// WithEventHandler sets the function events are delivered to. It is called
// synchronously from the input method that caused the event.
func WithEventHandler(fn func(Event)) Option {
	return func(c *Controller) {
		c.onEvent = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a Controller editing text with a cursor at the origin.
func New(text string, opts ...Option) *Controller {
	c := &Controller{
		dialect:  dialect.Default(),
		tabWidth: DefaultTabWidth,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.completer == nil {
		c.completer = complete.New(complete.WithDialect(c.dialect), complete.WithLogger(c.logger))
	}
	if c.highlighter == nil {
		c.highlighter = highlight.NewHighlighter(highlight.WithDialect(c.dialect), highlight.WithLogger(c.logger))
	}

	bufOpts := append([]buffer.Option{buffer.WithLogger(c.logger)}, c.bufOpts...)
	c.buf = buffer.New(text, bufOpts...)
	c.sels = selection.New(buffer.Position{})
	return c
}

// Buffer returns the edited buffer. Mutating it directly bypasses selection
// bookkeeping and events.
func (c *Controller) Buffer() *buffer.Buffer { return c.buf }

// Content returns the buffer text.
func (c *Controller) Content() string { return c.buf.Text() }

// Version returns the buffer version.
func (c *Controller) Version() uint64 { return c.buf.Version() }

// State returns the input mode.
func (c *Controller) State() State { return c.state }

// Selections returns the current selections in document order.
func (c *Controller) Selections() []selection.Selection { return c.sels.All() }

// PrimarySelection returns the primary selection.
func (c *Controller) PrimarySelection() selection.Selection { return c.sels.Primary() }

// PrimaryIndex returns the index of the primary selection.
func (c *Controller) PrimaryIndex() int { return c.sels.PrimaryIndex() }

// SetSelections replaces the selections. Positions are clamped to the document.
func (c *Controller) SetSelections(sels []selection.Selection, primary int) {
	c.sels.Replace(sels, primary)
	c.sels.ClampTo(c.buf)
	c.closeCompletion()
}

// SetCursor places a single cursor at offset.
func (c *Controller) SetCursor(offset int) {
	c.SetSelections([]selection.Selection{selection.Cursor(c.buf.OffsetToPosition(offset))}, 0)
}

// Tokens returns the highlight tokens for the current version.
func (c *Controller) Tokens() []token.Token {
	return c.highlighter.Tokens(c.buf)
}

// TokensInRange returns the highlight tokens that intersect the character
// range [start, end), highlighting only what the cache does not hold yet.
func (c *Controller) TokensInRange(start, end int) []token.Token {
	return c.highlighter.TokensInRange(c.buf, start, end)
}

// SetContent replaces the whole document, clears history and errors and
// puts a single cursor at the origin.
func (c *Controller) SetContent(text string) {
	c.buf.Reset(text)
	c.sels = selection.New(buffer.Position{})
	c.closeCompletion()
	c.errors = nil
	c.emit(Changed{Content: c.buf.Text(), Version: c.buf.Version()})
}

// SelectedText returns the text of the primary selection. ok is false when
// the primary selection is a plain cursor.
func (c *Controller) SelectedText() (string, bool) {
	sel := c.sels.Primary()
	if sel.IsCursor() {
		return "", false
	}
	start, end := c.selectionOffsets(sel)
	return c.buf.Slice(start, end), true
}

// Close releases the buffer's syntax tree.
func (c *Controller) Close() {
	c.buf.Close()
}

func (c *Controller) selectionOffsets(sel selection.Selection) (int, int) {
	return c.buf.PositionToOffset(sel.Start()), c.buf.PositionToOffset(sel.End())
}

func (c *Controller) emit(ev Event) {
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}

// mutated runs after every successful buffer change.
func (c *Controller) mutated() {
	if len(c.errors) > 0 {
		c.logger.Debug("clearing error markers", "count", len(c.errors))
		c.errors = nil
	}
	c.emit(Changed{Content: c.buf.Text(), Version: c.buf.Version()})
}
