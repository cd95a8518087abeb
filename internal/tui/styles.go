package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/willibrandon/tusk-sub001/pkg/highlight"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// Styles controls the editor chrome. Token colors come from the theme.
type Styles struct {
	Gutter        lipgloss.Style
	GutterActive  lipgloss.Style
	GutterError   lipgloss.Style
	Selection     lipgloss.Style
	Cursor        lipgloss.Style
	ErrorMark     lipgloss.Style
	Popup         lipgloss.Style
	PopupSelected lipgloss.Style
	PopupDetail   lipgloss.Style
	Status        lipgloss.Style
	StatusError   lipgloss.Style
	Results       lipgloss.Style
}

// DefaultStyles returns styles that fit t.
func DefaultStyles(t *highlight.Theme) Styles {
	gutter := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	popup := lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252"))
	status := lipgloss.NewStyle().Background(lipgloss.Color("235")).Foreground(lipgloss.Color("250"))
	return Styles{
		Gutter:        gutter,
		GutterActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		GutterError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Selection:     lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Cursor:        lipgloss.NewStyle().Reverse(true),
		ErrorMark:     t.Style(token.Error).Underline(true),
		Popup:         popup,
		PopupSelected: popup.Background(lipgloss.Color("24")).Bold(true),
		PopupDetail:   popup.Foreground(lipgloss.Color("244")),
		Status:        status,
		StatusError:   status.Foreground(lipgloss.Color("9")),
		Results:       lipgloss.NewStyle().BorderTop(true).BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")),
	}
}
