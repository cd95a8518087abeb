package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/tusk-sub001/internal/testutil"
	"github.com/willibrandon/tusk-sub001/pkg/buffer"
	"github.com/willibrandon/tusk-sub001/pkg/catalog"
	"github.com/willibrandon/tusk-sub001/pkg/complete"
	"github.com/willibrandon/tusk-sub001/pkg/selection"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

type recorder struct {
	events []Event
}

func (r *recorder) handle(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) last() Event {
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

func newController(t *testing.T, text string, opts ...Option) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t)), WithEventHandler(rec.handle)}, opts...)
	c := New(text, opts...)
	t.Cleanup(c.Close)
	return c, rec
}

func usersCompleter() *complete.Engine {
	return complete.New(complete.WithCatalog(catalog.NewSnapshot(catalog.Data{
		DefaultSchema: "public",
		Tables: []catalog.TableRef{{
			Name:    "users",
			Schema:  "public",
			Columns: []catalog.Column{{Name: "id", Type: "integer"}, {Name: "email", Type: "text"}},
		}},
	})))
}

func cursors(positions ...buffer.Position) []selection.Selection {
	out := make([]selection.Selection, len(positions))
	for i, p := range positions {
		out[i] = selection.Cursor(p)
	}
	return out
}

func TestTypeText(t *testing.T) {
	c, rec := newController(t, "SELECT * FROM users")
	c.SetCursor(7)

	require.True(t, c.TypeText("id, name "))
	assert.Equal(t, "SELECT id, name * FROM users", c.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 16)), c.Selections())
	assert.Equal(t, Changed{Content: c.Content(), Version: c.Version()}, rec.last())

	require.True(t, c.Run(CommandUndo))
	assert.Equal(t, "SELECT * FROM users", c.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 7)), c.Selections())

	assert.False(t, c.TypeText(""))
}

func TestTypeReplacesSelection(t *testing.T) {
	tests := []struct {
		name string
		sel  selection.Selection
	}{
		{"forward", selection.Range(buffer.Pos(0, 0), buffer.Pos(0, 6))},
		{"reversed", selection.Range(buffer.Pos(0, 6), buffer.Pos(0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, "SELECT 1")
			c.SetSelections([]selection.Selection{tt.sel}, 0)

			require.True(t, c.TypeText("select"))
			assert.Equal(t, "select 1", c.Content())
			assert.Equal(t, cursors(buffer.Pos(0, 6)), c.Selections())
		})
	}
}

func TestMultiCursorFanOut(t *testing.T) {
	c, _ := newController(t, "a\nb\nc")
	c.SetSelections(cursors(buffer.Pos(0, 0), buffer.Pos(1, 0), buffer.Pos(2, 0)), 0)

	require.True(t, c.TypeText("x"))
	assert.Equal(t, "xa\nxb\nxc", c.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 1), buffer.Pos(1, 1), buffer.Pos(2, 1)), c.Selections())

	require.True(t, c.Key(KeyBackspace, 0))
	assert.Equal(t, "a\nb\nc", c.Content())

	// one keystroke is one undo step
	require.True(t, c.Run(CommandUndo))
	assert.Equal(t, "xa\nxb\nxc", c.Content())
	require.True(t, c.Run(CommandUndo))
	assert.Equal(t, "a\nb\nc", c.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 0), buffer.Pos(1, 0), buffer.Pos(2, 0)), c.Selections())
	assert.False(t, c.Buffer().CanUndo())

	require.True(t, c.Run(CommandRedo))
	assert.Equal(t, "xa\nxb\nxc", c.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 1), buffer.Pos(1, 1), buffer.Pos(2, 1)), c.Selections())
}

func TestMultiCursorSameLine(t *testing.T) {
	c, _ := newController(t, "ab")
	c.SetSelections(cursors(buffer.Pos(0, 0), buffer.Pos(0, 1), buffer.Pos(0, 2)), 2)

	require.True(t, c.TypeText("-"))
	assert.Equal(t, "-a-b-", c.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 1), buffer.Pos(0, 3), buffer.Pos(0, 5)), c.Selections())
	assert.Equal(t, 2, c.PrimaryIndex())
}

func TestDeleteKeys(t *testing.T) {
	c, _ := newController(t, "a\nb")
	c.SetCursor(2)

	require.True(t, c.Key(KeyBackspace, 0))
	assert.Equal(t, "ab", c.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 1)), c.Selections())

	require.True(t, c.Key(KeyDelete, 0))
	assert.Equal(t, "a", c.Content())
	assert.False(t, c.Key(KeyDelete, 0), "nothing after the cursor")

	c.SetCursor(0)
	assert.False(t, c.Key(KeyBackspace, 0), "nothing before the cursor")
}

func TestEnterAndTab(t *testing.T) {
	c, _ := newController(t, "ab", WithTabWidth(2))
	c.SetCursor(1)

	require.True(t, c.Key(KeyEnter, 0))
	assert.Equal(t, "a\nb", c.Content())
	assert.Equal(t, cursors(buffer.Pos(1, 0)), c.Selections())

	require.True(t, c.Key(KeyTab, 0))
	assert.Equal(t, "a\n  b", c.Content())
}

func TestErrorsClearedOnMutation(t *testing.T) {
	c, _ := newController(t, "SELECT * FROM users")
	c.SetCursor(c.Buffer().Len())

	c.ShowError(12, "syntax error", "")
	require.Equal(t, []EditorError{{Offset: 12, Message: "syntax error"}}, c.Errors())

	assert.False(t, c.Key(KeyDelete, 0))
	assert.Len(t, c.Errors(), 1, "no mutation, markers stay")

	require.True(t, c.TypeText(" "))
	assert.Empty(t, c.Errors())

	c.ShowError(500, "far", "detail")
	assert.Equal(t, c.Buffer().Len(), c.Errors()[0].Offset)
	c.ShowError(-3, "near", "")
	assert.Equal(t, 0, c.Errors()[1].Offset)

	c.ClearErrors()
	assert.Nil(t, c.Errors())

	c.ShowError(1, "x", "")
	require.True(t, c.Run(CommandUndo))
	assert.Empty(t, c.Errors(), "undo is a mutation")
}

func TestCurrentStatement(t *testing.T) {
	text := "SELECT 1;\nSELECT 2;  "
	tests := []struct {
		name      string
		offset    int
		want      string
		wantStart int
	}{
		{"first", 3, "SELECT 1", 0},
		{"before semicolon", 8, "SELECT 1", 0},
		{"after semicolon", 9, "SELECT 2", 10},
		{"second", 12, "SELECT 2", 10},
		{"trailing whitespace falls back", 21, "SELECT 2", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, text)
			c.SetCursor(tt.offset)
			assert.Equal(t, tt.want, c.CurrentStatement())
			start, end := c.CurrentStatementRange()
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantStart+len(tt.want), end)
		})
	}

	c, _ := newController(t, "SELECT ';' AS x; SELECT 2")
	c.SetCursor(3)
	assert.Equal(t, "SELECT ';' AS x", c.CurrentStatement())

	c, _ = newController(t, "   ")
	assert.Equal(t, "", c.CurrentStatement())
}

func TestExecute(t *testing.T) {
	c, rec := newController(t, "SELECT 1;\nSELECT 2;")

	c.SetCursor(12)
	require.True(t, c.Run(CommandExecuteStatement))
	assert.Equal(t, Execute{SQL: "SELECT 2", Offset: 10}, rec.last())

	c.SetSelections([]selection.Selection{selection.Range(buffer.Pos(0, 0), buffer.Pos(0, 8))}, 0)
	require.True(t, c.Key(KeyEnter, ModCtrl))
	assert.Equal(t, Execute{SQL: "SELECT 1", IsSelection: true, Offset: 0}, rec.last())

	require.True(t, c.Key(KeyEnter, ModCtrl|ModShift))
	assert.Equal(t, ExecuteAll{SQL: "SELECT 1;\nSELECT 2;"}, rec.last())
	assert.Equal(t, "SELECT 1;\nSELECT 2;", c.Content(), "executing does not edit")

	empty, rec := newController(t, " \n ")
	assert.False(t, empty.Run(CommandExecuteStatement))
	assert.False(t, empty.Run(CommandExecuteAll))
	assert.Empty(t, rec.events)
}

func TestCancelAndSave(t *testing.T) {
	c, rec := newController(t, "SELECT 1")

	require.True(t, c.Run(CommandCancel))
	assert.Equal(t, Cancel{}, rec.last())

	require.True(t, c.Run(CommandSave))
	assert.Equal(t, Save{Content: "SELECT 1"}, rec.last())
}

func TestToggleComment(t *testing.T) {
	text := "SELECT 1\n  FROM t\n\nWHERE x"
	c, _ := newController(t, text)
	require.True(t, c.Run(CommandSelectAll))

	require.True(t, c.Run(CommandToggleComment))
	assert.Equal(t, "-- SELECT 1\n--   FROM t\n\n-- WHERE x", c.Content())

	require.True(t, c.Run(CommandSelectAll))
	require.True(t, c.Run(CommandToggleComment))
	assert.Equal(t, text, c.Content())

	require.True(t, c.Run(CommandUndo))
	assert.Equal(t, "-- SELECT 1\n--   FROM t\n\n-- WHERE x", c.Content())
}

func TestToggleCommentCursor(t *testing.T) {
	c, _ := newController(t, "SELECT 1\nFROM t")
	c.SetCursor(3)

	require.True(t, c.Run(CommandToggleComment))
	assert.Equal(t, "-- SELECT 1\nFROM t", c.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 6)), c.Selections())

	require.True(t, c.Run(CommandToggleComment))
	assert.Equal(t, "SELECT 1\nFROM t", c.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 3)), c.Selections())

	blank, _ := newController(t, "\n")
	assert.False(t, blank.Run(CommandToggleComment))
}

func TestToggleCommentIndentedBlock(t *testing.T) {
	text := "  SELECT 1\n    FROM t\n\n  WHERE x"
	c, _ := newController(t, text)
	require.True(t, c.Run(CommandSelectAll))

	require.True(t, c.Run(CommandToggleComment))
	assert.Equal(t, "  -- SELECT 1\n  --   FROM t\n\n  -- WHERE x", c.Content(), "prefix goes at the smallest indentation")

	require.True(t, c.Run(CommandSelectAll))
	require.True(t, c.Run(CommandToggleComment))
	assert.Equal(t, text, c.Content())

	tabbed, _ := newController(t, "\tSELECT 1")
	tabbed.SetCursor(4)
	require.True(t, tabbed.Run(CommandToggleComment))
	assert.Equal(t, "\t-- SELECT 1", tabbed.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 7)), tabbed.Selections())
}

func TestToggleCommentMixedLines(t *testing.T) {
	c, _ := newController(t, "-- a\nb")
	c.SetSelections([]selection.Selection{selection.Range(buffer.Pos(0, 0), buffer.Pos(1, 1))}, 0)

	require.True(t, c.Run(CommandToggleComment))
	assert.Equal(t, "-- -- a\n-- b", c.Content(), "not every line is commented, so all get a prefix")
}

func TestToggleCommentRangeEndingAtColumnZero(t *testing.T) {
	c, _ := newController(t, "a\nb\nc")
	c.SetSelections([]selection.Selection{selection.Range(buffer.Pos(0, 0), buffer.Pos(2, 0))}, 0)

	require.True(t, c.Run(CommandToggleComment))
	assert.Equal(t, "-- a\n-- b\nc", c.Content())
}

func TestSelectAll(t *testing.T) {
	c, _ := newController(t, "SELECT 1\nFROM t")
	_, ok := c.SelectedText()
	assert.False(t, ok)

	require.True(t, c.Run(CommandSelectAll))
	text, ok := c.SelectedText()
	require.True(t, ok)
	assert.Equal(t, "SELECT 1\nFROM t", text)
}

func TestMotions(t *testing.T) {
	c, _ := newController(t, "abc\ndef")

	require.True(t, c.Key(KeyRight, ModShift))
	require.True(t, c.Key(KeyRight, ModShift))
	text, ok := c.SelectedText()
	require.True(t, ok)
	assert.Equal(t, "ab", text)

	require.True(t, c.Key(KeyRight, 0))
	assert.Equal(t, buffer.Pos(0, 3), c.PrimarySelection().Head)
	assert.True(t, c.PrimarySelection().IsCursor())

	require.True(t, c.Key(KeyDown, 0))
	assert.Equal(t, buffer.Pos(1, 3), c.PrimarySelection().Head)

	require.True(t, c.Key(KeyHome, ModCtrl))
	assert.Equal(t, buffer.Pos(0, 0), c.PrimarySelection().Head)

	require.True(t, c.Key(KeyEnd, ModCtrl))
	assert.Equal(t, buffer.Pos(1, 3), c.PrimarySelection().Head)

	require.True(t, c.Key(KeyHome, 0))
	assert.Equal(t, buffer.Pos(1, 0), c.PrimarySelection().Head)
}

func TestAddCursors(t *testing.T) {
	c, _ := newController(t, "abc\ndef\nghi")
	c.SetCursor(1)

	require.True(t, c.Run(CommandAddCursorBelow))
	require.True(t, c.Key(KeyDown, ModCtrl|ModAlt))
	assert.False(t, c.Run(CommandAddCursorBelow), "no line below")
	assert.False(t, c.Run(CommandAddCursorAbove), "no line above")
	require.Len(t, c.Selections(), 3)

	require.True(t, c.TypeText("X"))
	assert.Equal(t, "aXbc\ndXef\ngXhi", c.Content())

	require.True(t, c.Run(CommandClearSecondary))
	assert.Equal(t, cursors(buffer.Pos(2, 2)), c.Selections())
	assert.False(t, c.Run(CommandClearSecondary))
}

func TestEscapeClearsSecondary(t *testing.T) {
	c, _ := newController(t, "abc\ndef")
	c.SetCursor(0)
	require.True(t, c.Run(CommandAddCursorBelow))

	require.True(t, c.Key(KeyEscape, 0))
	assert.Len(t, c.Selections(), 1)
	assert.False(t, c.Key(KeyEscape, 0))
}

func TestAutocompleteAccept(t *testing.T) {
	c, _ := newController(t, "", WithCompleter(usersCompleter()))

	require.True(t, c.TypeText("SELECT * FROM u"))
	require.Equal(t, AutocompleteActive, c.State())
	items := c.Completions()
	require.Len(t, items, 1)
	assert.Equal(t, "users", items[0].Label)
	assert.Equal(t, 0, c.CompletionIndex())

	require.True(t, c.Key(KeyEnter, 0))
	assert.Equal(t, Normal, c.State())
	assert.Nil(t, c.Completions())
	assert.Equal(t, -1, c.CompletionIndex())
	assert.Equal(t, "SELECT * FROM users", c.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 19)), c.Selections())

	require.True(t, c.Run(CommandUndo))
	assert.Equal(t, "SELECT * FROM u", c.Content())
}

func TestAutocompleteEscape(t *testing.T) {
	c, _ := newController(t, "", WithCompleter(usersCompleter()))
	require.True(t, c.TypeText("SELECT * FROM u"))
	require.Equal(t, AutocompleteActive, c.State())
	version := c.Version()

	require.True(t, c.Key(KeyEscape, 0))
	assert.Equal(t, Normal, c.State())
	assert.Equal(t, version, c.Version())
	assert.Equal(t, "SELECT * FROM u", c.Content())
}

func TestAutocompleteNavigation(t *testing.T) {
	c, _ := newController(t, "")
	require.True(t, c.TypeText("sel"))
	require.Equal(t, AutocompleteActive, c.State())
	n := len(c.Completions())
	require.Equal(t, 4, n)

	for i := 0; i < 10; i++ {
		c.Key(KeyDown, 0)
	}
	assert.Equal(t, n-1, c.CompletionIndex())
	for i := 0; i < 10; i++ {
		c.Key(KeyUp, 0)
	}
	assert.Equal(t, 0, c.CompletionIndex())

	require.True(t, c.Key(KeyTab, 0))
	assert.Equal(t, "SELECT *\nFROM ", c.Content())
	assert.Equal(t, cursors(buffer.Pos(1, 5)), c.Selections())
}

func TestAutocompleteClosesOnContextChange(t *testing.T) {
	c, _ := newController(t, "")
	require.True(t, c.TypeText("sel"))
	require.Equal(t, AutocompleteActive, c.State())
	require.True(t, c.TypeText(" "))
	assert.Equal(t, Normal, c.State())

	require.True(t, c.TypeText("se"))
	require.Equal(t, AutocompleteActive, c.State())
	require.True(t, c.Key(KeyLeft, 0))
	assert.Equal(t, Normal, c.State())
	assert.Equal(t, "sel se", c.Content())
}

func TestAutocompleteBackspace(t *testing.T) {
	c, _ := newController(t, "")
	require.True(t, c.TypeText("sel"))

	require.True(t, c.Key(KeyBackspace, 0))
	assert.Equal(t, AutocompleteActive, c.State(), "se still matches")
	require.True(t, c.Key(KeyBackspace, 0))
	require.True(t, c.Key(KeyBackspace, 0))
	assert.Equal(t, "", c.Content())
	assert.Equal(t, Normal, c.State())
}

func TestAutocompleteDotTrigger(t *testing.T) {
	c, _ := newController(t, "", WithCompleter(usersCompleter()))
	require.True(t, c.TypeText("SELECT * FROM public"))
	require.True(t, c.TypeText("."))

	require.Equal(t, AutocompleteActive, c.State())
	assert.Equal(t, "users", c.Completions()[0].Label)
}

func TestTriggerCompletion(t *testing.T) {
	c, _ := newController(t, "SELECT * FROM ", WithCompleter(usersCompleter()))
	c.SetCursor(14)

	require.True(t, c.Run(CommandTriggerCompletion))
	assert.Equal(t, AutocompleteActive, c.State())
	labels := make([]string, 0)
	for _, it := range c.Completions() {
		labels = append(labels, it.Label)
	}
	assert.Equal(t, []string{"users", "public"}, labels)

	require.True(t, c.Run(CommandSave))
	assert.Equal(t, Normal, c.State(), "other commands close the list")
}

func TestSetContent(t *testing.T) {
	c, rec := newController(t, "SELECT 1")
	c.SetCursor(5)
	c.ShowError(2, "bad", "")
	require.True(t, c.TypeText("x"))
	c.ShowError(2, "bad", "")

	c.SetContent("SELECT 2")
	assert.Equal(t, "SELECT 2", c.Content())
	assert.Equal(t, cursors(buffer.Pos(0, 0)), c.Selections())
	assert.Empty(t, c.Errors())
	assert.False(t, c.Buffer().CanUndo())
	assert.Equal(t, Changed{Content: "SELECT 2", Version: c.Version()}, rec.last())
}

func TestSetSelectionsClamps(t *testing.T) {
	c, _ := newController(t, "ab\ncd")
	c.SetSelections(cursors(buffer.Pos(7, 9)), 0)
	assert.Equal(t, cursors(buffer.Pos(1, 2)), c.Selections())

	c.SetCursor(-4)
	assert.Equal(t, cursors(buffer.Pos(0, 0)), c.Selections())
}

func TestTokens(t *testing.T) {
	c, _ := newController(t, "SELECT 1")
	tokens := c.Tokens()
	require.Len(t, tokens, 2)
	assert.Equal(t, token.Token{Start: 0, End: 6, Type: token.Keyword}, tokens[0])
	assert.Equal(t, token.Token{Start: 7, End: 8, Type: token.Number}, tokens[1])

	require.True(t, c.TypeText("-- "))
	assert.Equal(t, token.Comment, c.Tokens()[0].Type)
}

func TestTokensInRange(t *testing.T) {
	c, _ := newController(t, "SELECT 1\nFROM t")
	got := c.TokensInRange(9, 15)
	assert.Equal(t, []token.Token{
		{Start: 9, End: 13, Type: token.Keyword},
		{Start: 14, End: 15, Type: token.Identifier},
	}, got)
	assert.Equal(t, c.Tokens()[2:], got)
}

func TestHandle(t *testing.T) {
	c, _ := newController(t, "")

	assert.True(t, c.Handle(TextInput{Text: "ab"}))
	assert.True(t, c.Handle(KeyInput{Key: KeyBackspace}))
	assert.Equal(t, "a", c.Content())
	assert.True(t, c.Handle(CommandInput{Command: CommandUndo}))
	assert.Equal(t, "ab", c.Content())
	assert.False(t, c.Handle(nil))
}

func TestParseCommand(t *testing.T) {
	for cmd, name := range commandNames {
		got, err := ParseCommand(name)
		require.NoError(t, err)
		assert.Equal(t, cmd, got)
		assert.Equal(t, name, cmd.String())
	}

	_, err := ParseCommand("explode")
	assert.Error(t, err)
	assert.Equal(t, "command(99)", Command(99).String())
}

func TestMapOffset(t *testing.T) {
	edits := []textEdit{{start: 2, end: 2, text: "xx"}, {start: 5, end: 7}}
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{2, 4},
		{4, 6},
		{6, 7},
		{8, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapOffset(tt.in, edits), "offset %d", tt.in)
	}
}

func TestKeyNames(t *testing.T) {
	assert.Equal(t, "enter", KeyEnter.String())
	assert.Equal(t, "ctrl+shift", (ModCtrl | ModShift).String())
	assert.True(t, (ModCtrl | ModAlt).Has(ModAlt))
	assert.False(t, ModCtrl.Has(ModCtrl|ModShift))
	assert.Equal(t, "AutocompleteActive", AutocompleteActive.String())
}
