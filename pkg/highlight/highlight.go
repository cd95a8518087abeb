// Package highlight turns SQL source into highlight tokens.
//
// With a syntax tree the leaves of the tree are classified by node kind, with
// list lookups resolving identifiers that name data types or built-in
// functions. Without a tree the fallback Lexer tokenizes the text directly.
// Both paths return tokens sorted by start and pairwise non-overlapping, in
// character offsets.
package highlight

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/willibrandon/tusk-sub001/pkg/dialect"
	"github.com/willibrandon/tusk-sub001/pkg/syntax"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// Node kinds produced by the SQL grammar that get special treatment.
const (
	kindError      = "ERROR"
	kindIdentifier = "identifier"
	kindComment    = "comment"
	kindMarginalia = "marginalia"
	kindParameter  = "parameter"
	keywordPrefix  = "keyword_"
)

// Highlight classifies source using tree, or the fallback lexer when tree is nil.
func Highlight(tree syntax.Tree, source string) []token.Token {
	return HighlightWithDialect(tree, source, nil)
}

// HighlightWithDialect is Highlight with explicit word lists.
func HighlightWithDialect(tree syntax.Tree, source string, d *dialect.Dialect) []token.Token {
	if d == nil {
		d = dialect.Default()
	}
	if tree == nil || tree.Root() == nil {
		return LexWithDialect(source, d)
	}

	c := newClassifier(source, d)
	syntax.Leaves(tree.Root(), c.leaf)
	return normalizeTokens(c.tokens)
}

// HighlightRange returns the tokens of the leaves that intersect the
// character range [start, end). Tokens keep their full extent and may reach
// past either end of the range. Subtrees outside the range are not walked.
// Without a tree the whole source is lexed, since a lexer cannot start in
// the middle of a string or comment, and the overlapping tokens are returned.
func HighlightRange(tree syntax.Tree, source string, d *dialect.Dialect, start, end int) []token.Token {
	if d == nil {
		d = dialect.Default()
	}
	if tree == nil || tree.Root() == nil {
		return Overlapping(LexWithDialect(source, d), start, end)
	}

	c := newClassifier(source, d)
	startByte, endByte := c.offsets.byteOffset(start), c.offsets.byteOffset(end)
	syntax.LeavesInRange(tree.Root(), startByte, endByte, c.leaf)
	return normalizeTokens(c.tokens)
}

type classifier struct {
	src     string
	dialect *dialect.Dialect
	offsets offsetMap
	tokens  []token.Token
}

func newClassifier(source string, d *dialect.Dialect) *classifier {
	return &classifier{src: source, dialect: d, offsets: newOffsetMap(source)}
}

func (c *classifier) leaf(n syntax.Node) {
	start, end := n.StartByte(), n.EndByte()
	if start < 0 {
		start = 0
	}
	if end > len(c.src) {
		end = len(c.src)
	}
	if n.IsMissing() || end <= start {
		return
	}

	text := c.src[start:end]
	runeStart := c.offsets.rune(start)
	runeEnd := c.offsets.rune(end)
	emit := func(t token.TokenType) {
		c.tokens = append(c.tokens, token.Token{Start: runeStart, End: runeEnd, Type: t})
	}

	kind := n.Type()
	switch {
	case kind == kindError:
		emit(token.Error)
	case kind == kindComment || kind == kindMarginalia:
		emit(token.Comment)
	case kind == kindParameter:
		emit(token.Parameter)
	case strings.HasPrefix(kind, keywordPrefix):
		emit(c.classifyKeyword(text))
	case kind == kindIdentifier:
		emit(c.classifyIdentifier(text))
	default:
		// literals, operators and punctuation: let the lexer decide
		for _, tok := range LexWithDialect(text, c.dialect) {
			tok.Start += runeStart
			tok.End += runeStart
			c.tokens = append(c.tokens, tok)
		}
	}
}

func (c *classifier) classifyKeyword(text string) token.TokenType {
	switch {
	case c.dialect.IsDataType(text):
		return token.DataType
	case c.dialect.IsDDLKeyword(text):
		return token.KeywordDDL
	}
	return token.Keyword
}

func (c *classifier) classifyIdentifier(text string) token.TokenType {
	switch {
	case strings.HasPrefix(text, `"`) || strings.HasPrefix(text, "`"):
		return token.QuotedIdentifier
	case c.dialect.IsDataType(text):
		return token.DataType
	case c.dialect.IsBuiltinFunction(text):
		return token.BuiltinFunction
	}
	return token.Identifier
}

// offsetMap converts byte offsets of one string to character offsets.
// Characters are counted the way the buffer counts them: every byte of an
// invalid UTF-8 sequence is one character. A nil map means every character
// is one byte and offsets are identical.
type offsetMap struct {
	chars []int // by byte offset; continuation bytes map to the next character
	bytes []int // by character offset
}

func newOffsetMap(s string) offsetMap {
	if utf8.RuneCountInString(s) == len(s) {
		return offsetMap{}
	}
	m := offsetMap{
		chars: make([]int, len(s)+1),
		bytes: make([]int, 0, utf8.RuneCountInString(s)+1),
	}
	n := 0
	for i := 0; i < len(s); {
		_, w := utf8.DecodeRuneInString(s[i:])
		m.chars[i] = n
		m.bytes = append(m.bytes, i)
		for k := 1; k < w; k++ {
			m.chars[i+k] = n + 1
		}
		i += w
		n++
	}
	m.chars[len(s)] = n
	m.bytes = append(m.bytes, len(s))
	return m
}

func (m offsetMap) rune(b int) int {
	if m.chars == nil {
		return b
	}
	return m.chars[clamp(b, 0, len(m.chars)-1)]
}

func (m offsetMap) byteOffset(r int) int {
	if m.bytes == nil {
		return r
	}
	return m.bytes[clamp(r, 0, len(m.bytes)-1)]
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// normalizeTokens sorts tokens by start and trims overlaps so each token
// starts at or after the end of the previous one. Empty tokens are dropped.
func normalizeTokens(tokens []token.Token) []token.Token {
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Start < tokens[j].Start
	})

	out := tokens[:0]
	cursor := 0
	for _, tok := range tokens {
		if tok.Start < cursor {
			tok.Start = cursor
		}
		if tok.End <= tok.Start {
			continue
		}
		out = append(out, tok)
		cursor = tok.End
	}
	return out
}
