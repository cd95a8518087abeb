package output

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{ModeText, false, ModeText},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRendererPlainWithoutTTY(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	r := NewRendererWithTTY(out, errOut, false, ModeText)

	r.Success("done")
	r.Muted("quiet")
	r.Header(1, "Title")
	r.Println(r.Style(lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000"))).Render("red"))
	r.Warning("careful")
	r.Error("broken")

	assert.Equal(t, "✓ done\nquiet\nTitle\nred\n", out.String())
	assert.Equal(t, "! careful\n✗ broken\n", errOut.String())
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestRendererMarkdownHeader(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, out, false, ModeAuto)
	r.Header(2, "Tables")
	assert.Equal(t, "## Tables\n", out.String())
	assert.Equal(t, "- **Rows**: 3", FormatKeyValue("Rows", "3"))
	assert.Equal(t, "# x", FormatHeader(0, "x"))
}

func TestRendererJSON(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, out, false, ModeJSON)
	require.NoError(t, r.JSON(map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, out.String())
	assert.False(t, IsTerminal(out))
}
