package tui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/willibrandon/tusk-sub001/internal/runner"
	"github.com/willibrandon/tusk-sub001/pkg/complete"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// maxPopupRows bounds the completion list.
const maxPopupRows = 8

type span struct {
	start, end int
}

func inSpans(spans []span, off int) bool {
	for _, s := range spans {
		if s.start <= off && off < s.end {
			return true
		}
	}
	return false
}

// cell is the styling state of one character.
type cell struct {
	typ      token.TokenType
	typed    bool
	selected bool
	cursor   bool
	err      bool
}

// frame is everything one View call needs from the controller.
type frame struct {
	tokens   []token.Token
	selected []span
	errors   []span
	heads    map[int]bool
	gutter   int
}

// View implements tea.Model.
func (m *Model) View() string {
	buf := m.ctrl.Buffer()
	primary := m.ctrl.PrimarySelection().Head

	results := m.resultsView()
	footer := []string{m.statusView(), m.help.View(m.keys)}

	lines := buf.LineCount()
	first, last := 0, lines
	if m.height > 0 {
		avail := max(1, m.height-len(footer)-lipgloss.Height(results))
		if results != "" && avail < 3 {
			results = ""
			avail = max(1, m.height-len(footer))
		}
		m.scrollTo(primary.Line, avail)
		first = m.scroll
		last = min(lines, first+avail)
	}
	f := m.frame(buf.LineStart(first), buf.LineStart(last-1)+buf.LineLen(last-1))

	var b strings.Builder
	for line := first; line < last; line++ {
		b.WriteString(m.renderLine(f, line, line == primary.Line))
		b.WriteByte('\n')
		if line == primary.Line {
			for _, row := range m.popupRows(f.gutter + 1 + primary.Column) {
				b.WriteString(row)
				b.WriteByte('\n')
			}
		}
	}
	if results != "" {
		b.WriteString(results)
		b.WriteByte('\n')
	}
	b.WriteString(strings.Join(footer, "\n"))
	return b.String()
}

func (m *Model) scrollTo(line, height int) {
	switch {
	case line < m.scroll:
		m.scroll = line
	case line >= m.scroll+height:
		m.scroll = line - height + 1
	}
}

// frame collects the styling inputs for the characters in [start, end).
func (m *Model) frame(start, end int) frame {
	buf := m.ctrl.Buffer()
	f := frame{
		tokens: m.ctrl.TokensInRange(start, end),
		heads:  make(map[int]bool),
		gutter: len(strconv.Itoa(buf.LineCount())),
	}
	for _, sel := range m.ctrl.Selections() {
		head := buf.PositionToOffset(sel.Head)
		f.heads[head] = true
		if !sel.IsCursor() {
			f.selected = append(f.selected, span{
				start: buf.PositionToOffset(sel.Start()),
				end:   buf.PositionToOffset(sel.End()),
			})
		}
	}
	for _, e := range m.ctrl.Errors() {
		s := span{start: e.Offset, end: e.Offset + 1}
		if tok, ok := highlight.At(f.tokens, e.Offset); ok {
			s = span{start: tok.Start, end: tok.End}
		}
		f.errors = append(f.errors, s)
	}
	return f
}

func (m *Model) renderLine(f frame, line int, active bool) string {
	buf := m.ctrl.Buffer()
	start := buf.LineStart(line)
	text := []rune(buf.LineText(line))
	end := start + len(text)

	var b strings.Builder
	b.WriteString(m.gutterView(f, line, start, end, active))

	tokens := highlight.Overlapping(f.tokens, start, end)
	ti := 0
	var run []rune
	var cur cell
	flush := func() {
		if len(run) > 0 {
			b.WriteString(m.cellStyle(cur).Render(string(run)))
			run = run[:0]
		}
	}
	for i, r := range text {
		off := start + i
		for ti < len(tokens) && tokens[ti].End <= off {
			ti++
		}
		c := cell{
			selected: inSpans(f.selected, off),
			cursor:   f.heads[off],
			err:      inSpans(f.errors, off),
		}
		if ti < len(tokens) && tokens[ti].Start <= off {
			c.typ, c.typed = tokens[ti].Type, true
		}
		if c != cur {
			flush()
			cur = c
		}
		if r == '\t' {
			r = ' '
		}
		run = append(run, r)
	}
	flush()

	if f.heads[end] {
		b.WriteString(m.styles.Cursor.Render(" "))
	}
	return b.String()
}

func (m *Model) gutterView(f frame, line, start, end int, active bool) string {
	num := fmt.Sprintf("%*d ", f.gutter, line+1)
	for _, e := range f.errors {
		if (e.start <= end && e.end > start) || e.start == start {
			return m.styles.GutterError.Render(num)
		}
	}
	if active {
		return m.styles.GutterActive.Render(num)
	}
	return m.styles.Gutter.Render(num)
}

func (m *Model) cellStyle(c cell) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c.typed {
		s = m.theme.Style(c.typ)
	}
	if c.selected {
		s = s.Background(m.styles.Selection.GetBackground())
	}
	if c.err {
		s = s.Underline(true).Foreground(m.styles.ErrorMark.GetForeground())
	}
	if c.cursor {
		s = s.Reverse(true)
	}
	return s
}

// popupRows renders the completion list indented to column indent.
func (m *Model) popupRows(indent int) []string {
	items := m.ctrl.Completions()
	if len(items) == 0 {
		return nil
	}
	selected := m.ctrl.CompletionIndex()
	first := 0
	if selected >= maxPopupRows {
		first = selected - maxPopupRows + 1
	}
	last := min(len(items), first+maxPopupRows)

	labelWidth := 0
	for _, it := range items[first:last] {
		labelWidth = max(labelWidth, lipgloss.Width(it.Label))
	}

	if m.width > 0 {
		indent = min(indent, max(0, m.width-labelWidth-12))
	}
	pad := strings.Repeat(" ", indent)

	rows := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		it := items[i]
		style := m.styles.Popup
		if i == selected {
			style = m.styles.PopupSelected
		}
		label := style.Render(fmt.Sprintf(" %-*s ", labelWidth, it.Label))
		rows = append(rows, pad+label+m.styles.PopupDetail.Render(" "+popupDetail(it)+" "))
	}
	return rows
}

func popupDetail(c complete.Completion) string {
	if c.Detail != "" {
		return c.Detail
	}
	return c.Kind.String()
}

func (m *Model) resultsView() string {
	if len(m.results) == 0 {
		return ""
	}
	var out bytes.Buffer
	if err := runner.Render(&out, m.results[len(m.results)-1], m.format); err != nil {
		return ""
	}
	text := strings.TrimRight(out.String(), "\n")
	if m.height > 0 {
		limit := max(2, m.height/3)
		lines := strings.Split(text, "\n")
		if len(lines) > limit {
			lines = append(lines[:limit-1], fmt.Sprintf("... %d more lines", len(lines)-limit+1))
		}
		text = strings.Join(lines, "\n")
	}
	return m.styles.Results.Render(text)
}

func (m *Model) statusView() string {
	pos := m.ctrl.PrimarySelection().Head
	left := m.title
	if m.dirty {
		left += " [+]"
	}
	left += fmt.Sprintf("  Ln %d, Col %d", pos.Line+1, pos.Column+1)
	if n := len(m.ctrl.Selections()); n > 1 {
		left += fmt.Sprintf("  %d cursors", n)
	}

	style := m.styles.Status
	if m.failed {
		style = m.styles.StatusError
	}
	right := m.status
	gap := 2
	if m.width > 0 {
		gap = max(2, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	}
	return style.Render(left + strings.Repeat(" ", gap) + right)
}
