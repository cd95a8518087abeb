package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/willibrandon/tusk-sub001/pkg/editor"
)

// KeyMap binds key chords to editor commands.
//
// Terminals do not report ctrl+enter or ctrl+/ consistently, so every
// binding carries a portable fallback.
type KeyMap struct {
	Quit key.Binding

	ExecuteStatement key.Binding
	ExecuteAll       key.Binding
	Cancel           key.Binding
	Save             key.Binding
	Undo             key.Binding
	Redo             key.Binding
	SelectAll        key.Binding
	ToggleComment    key.Binding
	Complete         key.Binding
	AddCursorAbove   key.Binding
	AddCursorBelow   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "quit")),

		ExecuteStatement: key.NewBinding(key.WithKeys("ctrl+e", "f5"), key.WithHelp("ctrl+e", "run statement")),
		ExecuteAll:       key.NewBinding(key.WithKeys("ctrl+g", "f6"), key.WithHelp("ctrl+g", "run all")),
		Cancel:           key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		Save:             key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Undo:             key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Redo:             key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "redo")),
		SelectAll:        key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
		// ctrl+/ arrives as ctrl+_ on most terminals
		ToggleComment:  key.NewBinding(key.WithKeys("ctrl+_", "ctrl+/"), key.WithHelp("ctrl+/", "comment")),
		Complete:       key.NewBinding(key.WithKeys("ctrl+@", "ctrl+ "), key.WithHelp("ctrl+space", "complete")),
		AddCursorAbove: key.NewBinding(key.WithKeys("alt+ctrl+up", "alt+up"), key.WithHelp("alt+↑", "cursor above")),
		AddCursorBelow: key.NewBinding(key.WithKeys("alt+ctrl+down", "alt+down"), key.WithHelp("alt+↓", "cursor below")),
	}
}

// ShortHelp implements help.KeyMap.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.ExecuteStatement, km.ExecuteAll, km.Save, km.Complete, km.Quit}
}

// FullHelp implements help.KeyMap.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.ExecuteStatement, km.ExecuteAll, km.Cancel, km.Save},
		{km.Undo, km.Redo, km.SelectAll, km.ToggleComment},
		{km.Complete, km.AddCursorAbove, km.AddCursorBelow, km.Quit},
	}
}

// Command returns the editor command bound to msg.
func (km KeyMap) Command(msg tea.KeyMsg) (editor.Command, bool) {
	switch {
	case key.Matches(msg, km.ExecuteStatement):
		return editor.CommandExecuteStatement, true
	case key.Matches(msg, km.ExecuteAll):
		return editor.CommandExecuteAll, true
	case key.Matches(msg, km.Cancel):
		return editor.CommandCancel, true
	case key.Matches(msg, km.Save):
		return editor.CommandSave, true
	case key.Matches(msg, km.Undo):
		return editor.CommandUndo, true
	case key.Matches(msg, km.Redo):
		return editor.CommandRedo, true
	case key.Matches(msg, km.SelectAll):
		return editor.CommandSelectAll, true
	case key.Matches(msg, km.ToggleComment):
		return editor.CommandToggleComment, true
	case key.Matches(msg, km.Complete):
		return editor.CommandTriggerCompletion, true
	case key.Matches(msg, km.AddCursorAbove):
		return editor.CommandAddCursorAbove, true
	case key.Matches(msg, km.AddCursorBelow):
		return editor.CommandAddCursorBelow, true
	}
	return 0, false
}

type keyChord struct {
	key  editor.Key
	mods editor.KeyModifiers
}

var keyTypes = map[tea.KeyType]keyChord{
	tea.KeyEnter:     {editor.KeyEnter, 0},
	tea.KeyTab:       {editor.KeyTab, 0},
	tea.KeyBackspace: {editor.KeyBackspace, 0},
	tea.KeyDelete:    {editor.KeyDelete, 0},
	tea.KeyEsc:       {editor.KeyEscape, 0},

	tea.KeyLeft:  {editor.KeyLeft, 0},
	tea.KeyRight: {editor.KeyRight, 0},
	tea.KeyUp:    {editor.KeyUp, 0},
	tea.KeyDown:  {editor.KeyDown, 0},
	tea.KeyHome:  {editor.KeyHome, 0},
	tea.KeyEnd:   {editor.KeyEnd, 0},

	tea.KeyShiftLeft:  {editor.KeyLeft, editor.ModShift},
	tea.KeyShiftRight: {editor.KeyRight, editor.ModShift},
	tea.KeyShiftUp:    {editor.KeyUp, editor.ModShift},
	tea.KeyShiftDown:  {editor.KeyDown, editor.ModShift},
	tea.KeyShiftHome:  {editor.KeyHome, editor.ModShift},
	tea.KeyShiftEnd:   {editor.KeyEnd, editor.ModShift},

	tea.KeyCtrlLeft:  {editor.KeyLeft, editor.ModCtrl},
	tea.KeyCtrlRight: {editor.KeyRight, editor.ModCtrl},
	tea.KeyCtrlUp:    {editor.KeyUp, editor.ModCtrl},
	tea.KeyCtrlDown:  {editor.KeyDown, editor.ModCtrl},
	tea.KeyCtrlHome:  {editor.KeyHome, editor.ModCtrl},
	tea.KeyCtrlEnd:   {editor.KeyEnd, editor.ModCtrl},

	tea.KeyCtrlShiftHome: {editor.KeyHome, editor.ModCtrl | editor.ModShift},
	tea.KeyCtrlShiftEnd:  {editor.KeyEnd, editor.ModCtrl | editor.ModShift},
}

// Input translates a key press into controller input.
func Input(msg tea.KeyMsg) (editor.Input, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 || (msg.Alt && !msg.Paste) {
			return nil, false
		}
		return editor.TextInput{Text: string(msg.Runes)}, true
	case tea.KeySpace:
		return editor.TextInput{Text: " "}, true
	}

	chord, ok := keyTypes[msg.Type]
	if !ok {
		return nil, false
	}
	if msg.Alt {
		chord.mods |= editor.ModAlt
	}
	return editor.KeyInput{Key: chord.key, Mods: chord.mods}, true
}
