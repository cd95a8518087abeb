package highlight

import (
	"errors"
	"fmt"
	"sort"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// DefaultTheme is the theme used when none is configured.
const DefaultTheme = "monokai"

// ErrUnknownTheme is returned by LoadTheme for names without a style.
var ErrUnknownTheme = errors.New("unknown theme")

// chromaTypes maps highlight tokens to the chroma categories styles define.
var chromaTypes = map[token.TokenType]chroma.TokenType{
	token.Keyword:          chroma.Keyword,
	token.KeywordDDL:       chroma.KeywordDeclaration,
	token.DataType:         chroma.KeywordType,
	token.BuiltinFunction:  chroma.NameBuiltin,
	token.String:           chroma.LiteralString,
	token.Number:           chroma.LiteralNumber,
	token.Identifier:       chroma.Name,
	token.QuotedIdentifier: chroma.NameTag,
	token.Comment:          chroma.Comment,
	token.Operator:         chroma.Operator,
	token.Punctuation:      chroma.Punctuation,
	token.Parameter:        chroma.NameVariableMagic,
	token.Variable:         chroma.NameVariable,
	token.Error:            chroma.Error,
}

// Theme maps token types to colors. A Theme is immutable; hosts pass it
// around as a value instead of consulting global state.
type Theme struct {
	name  string
	style *chroma.Style
}

// LoadTheme returns the chroma style registered under name.
func LoadTheme(name string) (*Theme, error) {
	if name == "" {
		name = DefaultTheme
	}
	style, ok := styles.Registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	return &Theme{name: name, style: style}, nil
}

// MustLoadTheme is LoadTheme that falls back to the chroma fallback style.
func MustLoadTheme(name string) *Theme {
	t, err := LoadTheme(name)
	if err != nil {
		return &Theme{name: styles.Fallback.Name, style: styles.Fallback}
	}
	return t
}

// ThemeNames lists the available themes, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(styles.Registry))
	for name := range styles.Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name returns the theme name.
func (t *Theme) Name() string { return t.name }

func (t *Theme) entry(tt token.TokenType) chroma.StyleEntry {
	ct, ok := chromaTypes[tt]
	if !ok {
		ct = chroma.Text
	}
	return t.style.Get(ct)
}

// Color returns the foreground color of tt as "#rrggbb", or "" when the
// theme leaves it unset.
func (t *Theme) Color(tt token.TokenType) string {
	c := t.entry(tt).Colour
	if !c.IsSet() {
		return ""
	}
	return c.String()
}

// Background returns the theme background as "#rrggbb", or "".
func (t *Theme) Background() string {
	bg := t.style.Get(chroma.Background).Background
	if !bg.IsSet() {
		return ""
	}
	return bg.String()
}

// Style returns a terminal style for tt.
func (t *Theme) Style(tt token.TokenType) lipgloss.Style {
	e := t.entry(tt)
	s := lipgloss.NewStyle()
	if e.Colour.IsSet() {
		s = s.Foreground(lipgloss.Color(e.Colour.String()))
	}
	if e.Bold == chroma.Yes {
		s = s.Bold(true)
	}
	if e.Italic == chroma.Yes {
		s = s.Italic(true)
	}
	if e.Underline == chroma.Yes || tt == token.Error {
		s = s.Underline(true)
	}
	return s
}
