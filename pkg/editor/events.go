package editor

// Event is something the host should act on.
type Event interface {
	isEvent()
}

// Changed reports new buffer content.
type Changed struct {
	Content string
	Version uint64
}

// Execute asks the host to run one statement or the selected text.
type Execute struct {
	SQL         string
	IsSelection bool
	// Offset is the character offset of SQL in the buffer, for mapping
	// error positions back to the document.
	Offset int
}

// ExecuteAll asks the host to run the whole buffer.
type ExecuteAll struct {
	SQL string
}

// Cancel asks the host to cancel running statements.
type Cancel struct{}

// Save asks the host to persist the buffer.
type Save struct {
	Content string
}

func (Changed) isEvent()    {}
func (Execute) isEvent()    {}
func (ExecuteAll) isEvent() {}
func (Cancel) isEvent()     {}
func (Save) isEvent()       {}
