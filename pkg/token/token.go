// Package token defines the highlight token types produced for SQL source.
//
// The tag set is closed: every classified span of a document carries exactly
// one of the TokenType constants below. Gaps between tokens are plain text.
package token

import (
	"fmt"
	"strings"
)

// TokenType represents the classification of a highlighted span.
//
//nolint:revive // Accept stutter as token.TokenType reads clearly at call sites
type TokenType int32

const (
	Keyword TokenType = iota
	KeywordDDL
	DataType
	BuiltinFunction
	String
	Number
	Identifier
	QuotedIdentifier
	Comment
	Operator
	Punctuation
	Parameter
	Variable
	Error

	numTypes
)

// tokenNames maps token types to their string representations.
var tokenNames = [...]string{
	Keyword:          "Keyword",
	KeywordDDL:       "KeywordDDL",
	DataType:         "DataType",
	BuiltinFunction:  "BuiltinFunction",
	String:           "String",
	Number:           "Number",
	Identifier:       "Identifier",
	QuotedIdentifier: "QuotedIdentifier",
	Comment:          "Comment",
	Operator:         "Operator",
	Punctuation:      "Punctuation",
	Parameter:        "Parameter",
	Variable:         "Variable",
	Error:            "Error",
}

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if t >= 0 && t < numTypes {
		return tokenNames[t]
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// Types returns every token type in declaration order.
func Types() []TokenType {
	types := make([]TokenType, 0, numTypes)
	for t := Keyword; t < numTypes; t++ {
		types = append(types, t)
	}
	return types
}

// ParseType returns the token type with the given name (case-insensitive).
func ParseType(name string) (TokenType, bool) {
	for t := Keyword; t < numTypes; t++ {
		if strings.EqualFold(tokenNames[t], name) {
			return t, true
		}
	}
	return 0, false
}

// IsKeyword returns true for both keyword flavours.
func IsKeyword(t TokenType) bool {
	return t == Keyword || t == KeywordDDL
}

// Token is a classified span [Start, End) in character offsets.
type Token struct {
	Start int
	End   int
	Type  TokenType
}

// Len returns the number of characters covered by the token.
func (t Token) Len() int {
	return t.End - t.Start
}

// Contains reports whether offset lies inside the token.
func (t Token) Contains(offset int) bool {
	return offset >= t.Start && offset < t.End
}

// Text returns the token text from the character slice of the document.
func (t Token) Text(src []rune) string {
	start, end := t.Start, t.End
	if start < 0 {
		start = 0
	}
	if end > len(src) {
		end = len(src)
	}
	if start >= end {
		return ""
	}
	return string(src[start:end])
}
