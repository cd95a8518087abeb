package buffer

// DefaultHistoryLimit is the number of undo entries kept when no limit is configured.
const DefaultHistoryLimit = 1000

// change is one undo step: the operations applied, in application order.
type change []EditOperation

// history holds bounded undo and redo stacks. Oldest undo entries are evicted
// first once the limit is reached.
type history struct {
	undo  []change
	redo  []change
	limit int
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &history{limit: limit}
}

// record pushes a fresh edit and invalidates redo.
func (h *history) record(c change) {
	h.pushUndo(c)
	h.redo = nil
}

func (h *history) pushUndo(c change) {
	h.undo = append(h.undo, c)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
}

func (h *history) popUndo() (change, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	i := len(h.undo) - 1
	c := h.undo[i]
	h.undo[i] = nil
	h.undo = h.undo[:i]
	return c, true
}

func (h *history) popRedo() (change, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	i := len(h.redo) - 1
	c := h.redo[i]
	h.redo[i] = nil
	h.redo = h.redo[:i]
	return c, true
}

func (h *history) reset() {
	h.undo = nil
	h.redo = nil
}

// inverse returns the operations that undo c, in application order.
func (c change) inverse() change {
	inv := make(change, len(c))
	for i, op := range c {
		inv[len(c)-1-i] = op.Invert()
	}
	return inv
}
