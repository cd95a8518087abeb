package editor

import (
	"unicode/utf8"

	"github.com/willibrandon/tusk-sub001/pkg/complete"
)

// Completions returns the open candidate list, or nil in Normal state.
func (c *Controller) Completions() []complete.Completion {
	if c.state != AutocompleteActive {
		return nil
	}
	out := make([]complete.Completion, len(c.completions))
	copy(out, c.completions)
	return out
}

// CompletionIndex returns the selected candidate, or -1 in Normal state.
func (c *Controller) CompletionIndex() int {
	if c.state != AutocompleteActive {
		return -1
	}
	return c.compIndex
}

// CompletionContext returns the completion context at the primary cursor.
func (c *Controller) CompletionContext() complete.Context {
	return complete.NewContext(c.buf.Text(), c.buf.PositionToOffset(c.sels.Primary().Head))
}

// updateCompletion recomputes candidates at the primary cursor. The list
// opens when there is a word being typed, after a '.', or when forced, and
// there is at least one candidate.
func (c *Controller) updateCompletion(trigger rune, force bool) {
	ctx := c.CompletionContext()
	ctx.Trigger = trigger
	if ctx.Word == "" && trigger != '.' && !force {
		c.closeCompletion()
		return
	}

	items := c.completer.Complete(ctx)
	if len(items) == 0 {
		c.closeCompletion()
		return
	}
	c.completions = items
	c.compIndex = 0
	c.state = AutocompleteActive
}

func (c *Controller) moveCompletion(delta int) {
	c.compIndex = max(0, min(c.compIndex+delta, len(c.completions)-1))
}

func (c *Controller) closeCompletion() {
	c.state = Normal
	c.completions = nil
	c.compIndex = 0
}

// acceptCompletion replaces the word before the primary cursor with the
// selected candidate and moves the cursor after it. Other selections keep
// their ranges.
func (c *Controller) acceptCompletion() bool {
	if c.state != AutocompleteActive || len(c.completions) == 0 {
		return false
	}
	item := c.completions[c.compIndex]
	c.closeCompletion()

	ctx := c.CompletionContext()
	end := ctx.Offset
	start := end - utf8.RuneCountInString(ctx.Word)

	spans := c.spans()
	primary := c.sels.PrimaryIndex()
	applied := c.applyEdits([]textEdit{{start: start, end: end, text: item.InsertText}})
	if applied == nil {
		return true
	}
	c.restoreSpans(spans, applied, primary, false)
	c.mutated()
	return true
}
