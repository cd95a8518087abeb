package editor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/willibrandon/tusk-sub001/pkg/selection"
)

// Key is a non-character key.
type Key int

// Keys.
const (
	KeyEnter Key = iota + 1
	KeyTab
	KeyBackspace
	KeyDelete
	KeyEscape
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
)

var keyNames = map[Key]string{
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyEscape:    "esc",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyHome:      "home",
	KeyEnd:       "end",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("key(%d)", int(k))
}

// KeyModifiers is a set of held modifier keys.
type KeyModifiers uint8

// Modifiers.
const (
	ModShift KeyModifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether every modifier in o is held.
func (m KeyModifiers) Has(o KeyModifiers) bool { return m&o == o }

func (m KeyModifiers) String() string {
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	return strings.Join(parts, "+")
}

// Input is one host input event: TextInput, KeyInput or CommandInput.
type Input interface {
	isInput()
}

// TextInput is typed or pasted text.
type TextInput struct {
	Text string
}

// KeyInput is a key press.
type KeyInput struct {
	Key  Key
	Mods KeyModifiers
}

// CommandInput is a controller command.
type CommandInput struct {
	Command Command
}

func (TextInput) isInput()    {}
func (KeyInput) isInput()     {}
func (CommandInput) isInput() {}

// Handle dispatches in and reports whether it did anything.
func (c *Controller) Handle(in Input) bool {
	switch in := in.(type) {
	case TextInput:
		return c.TypeText(in.Text)
	case KeyInput:
		return c.Key(in.Key, in.Mods)
	case CommandInput:
		return c.Run(in.Command)
	}
	return false
}

// TypeText inserts text at every selection, replacing selected ranges, then
// updates completions for the primary cursor.
func (c *Controller) TypeText(text string) bool {
	if text == "" {
		return false
	}
	if !c.insertText(text) {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	c.updateCompletion(r, false)
	return true
}

// Key handles a key press. In AutocompleteActive Up and Down move through
// the candidates, Enter and Tab commit the selected one and Escape closes the
// list; other keys close it and act as in Normal.
func (c *Controller) Key(k Key, mods KeyModifiers) bool {
	if c.state == AutocompleteActive && mods == 0 {
		switch k {
		case KeyUp:
			c.moveCompletion(-1)
			return true
		case KeyDown:
			c.moveCompletion(1)
			return true
		case KeyEnter, KeyTab:
			return c.acceptCompletion()
		case KeyEscape:
			c.closeCompletion()
			return true
		case KeyBackspace:
			if !c.deleteBackward() {
				return false
			}
			c.updateCompletion(0, false)
			return true
		}
	}
	c.closeCompletion()

	switch k {
	case KeyEnter:
		switch {
		case mods.Has(ModCtrl | ModShift):
			return c.Run(CommandExecuteAll)
		case mods.Has(ModCtrl):
			return c.Run(CommandExecuteStatement)
		}
		return c.insertText("\n")
	case KeyTab:
		return c.insertText(strings.Repeat(" ", c.tabWidth))
	case KeyBackspace:
		return c.deleteBackward()
	case KeyDelete:
		return c.deleteForward()
	case KeyEscape:
		if c.sels.Len() == 1 {
			return false
		}
		c.sels.ClearSecondary()
		return true
	case KeyUp, KeyDown:
		if mods.Has(ModCtrl | ModAlt) {
			if k == KeyUp {
				return c.Run(CommandAddCursorAbove)
			}
			return c.Run(CommandAddCursorBelow)
		}
	}

	m, ok := motionFor(k, mods)
	if !ok {
		return false
	}
	c.sels.Move(c.buf, m, mods.Has(ModShift))
	return true
}

func motionFor(k Key, mods KeyModifiers) (selection.Motion, bool) {
	switch k {
	case KeyLeft:
		return selection.MoveLeft, true
	case KeyRight:
		return selection.MoveRight, true
	case KeyUp:
		return selection.MoveUp, true
	case KeyDown:
		return selection.MoveDown, true
	case KeyHome:
		if mods.Has(ModCtrl) {
			return selection.MoveDocStart, true
		}
		return selection.MoveLineStart, true
	case KeyEnd:
		if mods.Has(ModCtrl) {
			return selection.MoveDocEnd, true
		}
		return selection.MoveLineEnd, true
	}
	return 0, false
}
