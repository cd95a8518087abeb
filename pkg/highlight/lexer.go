package highlight

import (
	"sort"
	"strings"
	"unicode"

	"github.com/willibrandon/tusk-sub001/pkg/dialect"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// operatorsByLength is the multi-character operator table, longest first.
var operatorsByLength = func() [][]rune {
	ops := make([][]rune, 0, len(dialect.MultiCharOperators))
	for _, op := range dialect.MultiCharOperators {
		ops = append(ops, []rune(op))
	}
	sort.SliceStable(ops, func(i, j int) bool { return len(ops[i]) > len(ops[j]) })
	return ops
}()

// Lexer tokenizes SQL for highlighting when no syntax tree is available.
// It works on characters so token offsets are character offsets.
type Lexer struct {
	input   []rune
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current char under examination

	dialect *dialect.Dialect
}

// NewLexer creates a Lexer for input using the given dialect's word lists.
// A nil dialect selects the default one.
func NewLexer(input string, d *dialect.Dialect) *Lexer {
	if d == nil {
		d = dialect.Default()
	}
	l := &Lexer{input: []rune(input), dialect: d}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	if l.readPos <= len(l.input) {
		l.readPos++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() rune {
	return l.peekAt(1)
}

func (l *Lexer) peekAt(n int) rune {
	i := l.pos + n
	if i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

// advanceTo moves the read head to absolute position i.
func (l *Lexer) advanceTo(i int) {
	for l.pos < i && !l.eof() {
		l.readChar()
	}
}

// Next returns the next token. ok is false at end of input.
//
// The first matching rule wins: line comment, block comment, string,
// quoted identifier, dollar-quoted string, number, positional parameter,
// named variable, word, operator, punctuation. Anything else becomes a
// one-character Error token, so every call consumes input.
func (l *Lexer) Next() (tok token.Token, ok bool) {
	for !l.eof() && unicode.IsSpace(l.ch) {
		l.readChar()
	}
	if l.eof() {
		return token.Token{}, false
	}

	start := l.pos
	typ := l.scan()
	if l.pos == start {
		// never stall
		l.readChar()
		typ = token.Error
	}
	return token.Token{Start: start, End: l.pos, Type: typ}, true
}

func (l *Lexer) scan() token.TokenType {
	switch {
	case l.ch == '-' && l.peekChar() == '-':
		l.skipLineComment()
		return token.Comment
	case l.ch == '/' && l.peekChar() == '*':
		l.skipBlockComment()
		return token.Comment
	case l.ch == '\'':
		l.readQuoted('\'')
		return token.String
	case l.ch == '"':
		l.readQuoted('"')
		return token.QuotedIdentifier
	}

	if l.ch == '$' {
		if tag, ok := l.dollarTag(); ok {
			l.readDollarString(tag)
			return token.String
		}
	}

	switch {
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		l.readNumber()
		return token.Number
	case l.ch == '$' && isDigit(l.peekChar()):
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		return token.Parameter
	case l.ch == ':' && isIdentStart(l.peekChar()):
		l.readChar()
		l.readIdentifier()
		return token.Variable
	case isIdentStart(l.ch):
		return l.classifyWord(l.readIdentifier())
	}

	if n := l.matchOperator(); n > 0 {
		l.advanceTo(l.pos + n)
		return token.Operator
	}

	switch {
	case strings.ContainsRune(dialect.SingleCharOperators, l.ch):
		l.readChar()
		return token.Operator
	case strings.ContainsRune(dialect.PunctuationChars, l.ch):
		l.readChar()
		return token.Punctuation
	}

	l.readChar()
	return token.Error
}

// skipLineComment consumes -- up to, not including, the newline.
func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && !l.eof() {
		l.readChar()
	}
}

// skipBlockComment consumes /* ... */; an unterminated comment runs to the end.
func (l *Lexer) skipBlockComment() {
	l.readChar() // skip '/'
	l.readChar() // skip '*'
	for !l.eof() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

// readQuoted consumes a quoted run where a doubled quote is an escape:
// 'it''s' and "col""name". An unterminated run ends at the end of input.
func (l *Lexer) readQuoted(quote rune) {
	l.readChar() // skip opening quote
	for !l.eof() {
		if l.ch == quote {
			if l.peekChar() == quote {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return
		}
		l.readChar()
	}
}

// dollarTag reports whether a dollar quote opens here and returns its tag:
// "" for $$, "fn" for $fn$. Tags never start with a digit.
func (l *Lexer) dollarTag() (string, bool) {
	i := l.pos + 1
	if i < len(l.input) && l.input[i] == '$' {
		return "", true
	}
	if i >= len(l.input) || !isIdentStart(l.input[i]) {
		return "", false
	}
	j := i
	for j < len(l.input) && (isIdentStart(l.input[j]) || isDigit(l.input[j])) {
		j++
	}
	if j < len(l.input) && l.input[j] == '$' {
		return string(l.input[i:j]), true
	}
	return "", false
}

// readDollarString consumes $tag$ ... $tag$; unterminated runs to the end.
func (l *Lexer) readDollarString(tag string) {
	delim := []rune("$" + tag + "$")
	l.advanceTo(l.pos + len(delim))
	for !l.eof() {
		if l.ch == '$' && l.hasPrefixAt(l.pos, delim) {
			l.advanceTo(l.pos + len(delim))
			return
		}
		l.readChar()
	}
}

func (l *Lexer) hasPrefixAt(i int, s []rune) bool {
	if i+len(s) > len(l.input) {
		return false
	}
	for k, r := range s {
		if l.input[i+k] != r {
			return false
		}
	}
	return true
}

// readNumber reads digits with at most one '.', then an optional exponent.
func (l *Lexer) readNumber() {
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		switch {
		case isDigit(next):
			l.readChar()
		case (next == '+' || next == '-') && isDigit(l.peekAt(2)):
			l.readChar()
			l.readChar()
		default:
			return
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
}

// readIdentifier reads an unquoted identifier and returns it.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isIdentStart(l.ch) || isDigit(l.ch) || l.ch == '$' {
		l.readChar()
	}
	return string(l.input[start:l.pos])
}

func (l *Lexer) classifyWord(word string) token.TokenType {
	switch {
	case l.dialect.IsDDLKeyword(word):
		return token.KeywordDDL
	case l.dialect.IsKeyword(word):
		return token.Keyword
	case l.dialect.IsDataType(word):
		return token.DataType
	case l.dialect.IsBuiltinFunction(word):
		return token.BuiltinFunction
	}
	return token.Identifier
}

// matchOperator returns the length of the longest operator at the current position.
func (l *Lexer) matchOperator() int {
	for _, op := range operatorsByLength {
		if l.hasPrefixAt(l.pos, op) {
			return len(op)
		}
	}
	return 0
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// Lex tokenizes src with the default dialect.
func Lex(src string) []token.Token {
	return LexWithDialect(src, nil)
}

// LexWithDialect tokenizes src. The result is sorted and non-overlapping.
func LexWithDialect(src string, d *dialect.Dialect) []token.Token {
	l := NewLexer(src, d)
	var tokens []token.Token
	for {
		tok, ok := l.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}
