package editor

// EditorError marks a failed statement at a character offset.
type EditorError struct {
	Offset  int
	Message string
	Detail  string
}

// ShowError adds an error marker. The offset is clamped to the document.
// Markers are cleared by the next change to the buffer.
func (c *Controller) ShowError(offset int, message, detail string) {
	offset = max(0, min(offset, c.buf.Len()))
	c.errors = append(c.errors, EditorError{Offset: offset, Message: message, Detail: detail})
	c.logger.Debug("error marker", "offset", offset, "message", message)
}

// ClearErrors removes all error markers.
func (c *Controller) ClearErrors() {
	c.errors = nil
}

// Errors returns the active error markers.
func (c *Controller) Errors() []EditorError {
	if len(c.errors) == 0 {
		return nil
	}
	out := make([]EditorError, len(c.errors))
	copy(out, c.errors)
	return out
}
