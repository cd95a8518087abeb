package complete

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Context is the cursor situation completions are computed for.
type Context struct {
	// Prefix is the text on the current line before the cursor.
	Prefix string
	// Word is the identifier fragment being typed, a suffix of Prefix.
	Word string
	// Trigger is the character whose input requested completion, or 0.
	Trigger rune
	// FullText is the whole document.
	FullText string
	// Offset is the cursor's character offset in FullText. Negative means
	// the end of FullText.
	Offset int
}

// NewContext derives a Context from a document and a character offset.
func NewContext(fullText string, offset int) Context {
	runes := []rune(fullText)
	if offset < 0 || offset > len(runes) {
		offset = len(runes)
	}

	lineStart := offset
	for lineStart > 0 && runes[lineStart-1] != '\n' {
		lineStart--
	}
	prefix := string(runes[lineStart:offset])

	return Context{
		Prefix:   prefix,
		Word:     trailingWord(prefix),
		FullText: fullText,
		Offset:   offset,
	}
}

func isWordChar(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// trailingWord returns the identifier characters at the end of s.
func trailingWord(s string) string {
	end := len(s)
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if !isWordChar(r) {
			break
		}
		start -= size
	}
	return s[start:end]
}

// ident is a possibly quoted identifier.
type ident struct {
	name   string
	quoted bool
}

// variants returns the names to try for a catalog lookup: quoted names are
// exact, unquoted names are tried as written and then folded to lowercase.
func (id ident) variants() []string {
	if id.quoted {
		return []string{id.name}
	}
	lower := strings.ToLower(id.name)
	if lower == id.name {
		return []string{id.name}
	}
	return []string{id.name, lower}
}

// matches compares identifiers the way unquoted SQL names compare.
func (id ident) matches(other ident) bool {
	if id.quoted || other.quoted {
		return id.name == other.name
	}
	return strings.EqualFold(id.name, other.name)
}

// trailingIdent splits a trailing identifier off s. It understands
// "quoted ""names""" and returns ok=false when s does not end in one.
func trailingIdent(s string) (id ident, rest string, ok bool) {
	if strings.HasSuffix(s, `"`) {
		// walk back to the opening quote, stepping over doubled quotes
		i := len(s) - 2
		for i >= 0 {
			if s[i] == '"' {
				if i > 0 && s[i-1] == '"' {
					i -= 2
					continue
				}
				break
			}
			i--
		}
		if i < 0 {
			return ident{}, s, false
		}
		name := strings.ReplaceAll(s[i+1:len(s)-1], `""`, `"`)
		return ident{name: name, quoted: true}, s[:i], name != ""
	}

	word := trailingWord(s)
	if word == "" || unicode.IsDigit([]rune(word)[0]) {
		return ident{}, s, false
	}
	return ident{name: word}, s[:len(s)-len(word)], true
}

// qualifiers returns the dotted identifier chain ending right before a
// trailing dot, outermost first: "public.users." yields [public users].
func qualifiers(s string) []ident {
	var chain []ident
	for strings.HasSuffix(s, ".") {
		id, rest, ok := trailingIdent(s[:len(s)-1])
		if !ok {
			break
		}
		chain = append([]ident{id}, chain...)
		s = rest
	}
	return chain
}
