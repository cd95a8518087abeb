package editor

import (
	"fmt"
	"strings"
)

// Command is a controller-level operation bound to a key chord by the host.
type Command int

// Commands.
const (
	CommandExecuteStatement Command = iota + 1
	CommandExecuteAll
	CommandCancel
	CommandSave
	CommandUndo
	CommandRedo
	CommandSelectAll
	CommandToggleComment
	CommandTriggerCompletion
	CommandAddCursorAbove
	CommandAddCursorBelow
	CommandClearSecondary
)

var commandNames = map[Command]string{
	CommandExecuteStatement:  "execute-statement",
	CommandExecuteAll:        "execute-all",
	CommandCancel:            "cancel",
	CommandSave:              "save",
	CommandUndo:              "undo",
	CommandRedo:              "redo",
	CommandSelectAll:         "select-all",
	CommandToggleComment:     "toggle-comment",
	CommandTriggerCompletion: "trigger-completion",
	CommandAddCursorAbove:    "add-cursor-above",
	CommandAddCursorBelow:    "add-cursor-below",
	CommandClearSecondary:    "clear-secondary",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// ParseCommand returns the command named name, as printed by String.
func ParseCommand(name string) (Command, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for cmd, n := range commandNames {
		if n == name {
			return cmd, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}

// Run performs cmd and reports whether it did anything.
func (c *Controller) Run(cmd Command) bool {
	c.logger.Debug("command", "command", cmd.String(), "state", c.state.String())

	if cmd != CommandTriggerCompletion {
		c.closeCompletion()
	}

	switch cmd {
	case CommandExecuteStatement:
		return c.executeStatement()
	case CommandExecuteAll:
		return c.executeAll()
	case CommandCancel:
		c.emit(Cancel{})
		return true
	case CommandSave:
		c.emit(Save{Content: c.buf.Text()})
		return true
	case CommandUndo:
		return c.undo()
	case CommandRedo:
		return c.redo()
	case CommandSelectAll:
		return c.selectAll()
	case CommandToggleComment:
		return c.toggleComment()
	case CommandTriggerCompletion:
		c.updateCompletion(0, true)
		return c.state == AutocompleteActive
	case CommandAddCursorAbove:
		return c.addCursor(-1)
	case CommandAddCursorBelow:
		return c.addCursor(1)
	case CommandClearSecondary:
		if c.sels.Len() == 1 {
			return false
		}
		c.sels.ClearSecondary()
		return true
	}
	return false
}
