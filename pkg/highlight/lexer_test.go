package highlight

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/tusk-sub001/pkg/dialect"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

type lexed struct {
	typ  token.TokenType
	text string
}

func lexAll(src string) []lexed {
	runes := []rune(src)
	var out []lexed
	for _, tok := range Lex(src) {
		out = append(out, lexed{tok.Type, tok.Text(runes)})
	}
	return out
}

func TestLexPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []lexed
	}{
		{
			name:  "line comment wins over operator",
			input: "a -- b * c\nd",
			want: []lexed{
				{token.Identifier, "a"},
				{token.Comment, "-- b * c"},
				{token.Identifier, "d"},
			},
		},
		{
			name:  "block comment",
			input: "/* x\ny */1",
			want:  []lexed{{token.Comment, "/* x\ny */"}, {token.Number, "1"}},
		},
		{
			name:  "unterminated block comment",
			input: "/* open",
			want:  []lexed{{token.Comment, "/* open"}},
		},
		{
			name:  "string with doubled quote",
			input: "'it''s' x",
			want:  []lexed{{token.String, "'it''s'"}, {token.Identifier, "x"}},
		},
		{
			name:  "unterminated string runs to end",
			input: "'abc def",
			want:  []lexed{{token.String, "'abc def"}},
		},
		{
			name:  "quoted identifier",
			input: `"My ""Col"""`,
			want:  []lexed{{token.QuotedIdentifier, `"My ""Col"""`}},
		},
		{
			name:  "dollar string with tag",
			input: "$fn$ select '$$' $fn$;",
			want:  []lexed{{token.String, "$fn$ select '$$' $fn$"}, {token.Punctuation, ";"}},
		},
		{
			name:  "empty dollar tag",
			input: "$$a$$",
			want:  []lexed{{token.String, "$$a$$"}},
		},
		{
			name:  "numbers",
			input: "1 2.5 .5 1e10 3.2E-4 1.2.3",
			want: []lexed{
				{token.Number, "1"},
				{token.Number, "2.5"},
				{token.Number, ".5"},
				{token.Number, "1e10"},
				{token.Number, "3.2E-4"},
				{token.Number, "1.2"},
				{token.Number, ".3"},
			},
		},
		{
			name:  "exponent without digits is not consumed",
			input: "1e",
			want:  []lexed{{token.Number, "1"}, {token.Identifier, "e"}},
		},
		{
			name:  "positional parameter",
			input: "$1 + $23",
			want:  []lexed{{token.Parameter, "$1"}, {token.Operator, "+"}, {token.Parameter, "$23"}},
		},
		{
			name:  "named variable and cast",
			input: ":name::int",
			want:  []lexed{{token.Variable, ":name"}, {token.Operator, "::"}, {token.DataType, "int"}},
		},
		{
			name:  "words",
			input: "SELECT count CREATE varchar users",
			want: []lexed{
				{token.Keyword, "SELECT"},
				{token.BuiltinFunction, "count"},
				{token.KeywordDDL, "CREATE"},
				{token.DataType, "varchar"},
				{token.Identifier, "users"},
			},
		},
		{
			name:  "longest operator",
			input: "a->>'k' <> b",
			want: []lexed{
				{token.Identifier, "a"},
				{token.Operator, "->>"},
				{token.String, "'k'"},
				{token.Operator, "<>"},
				{token.Identifier, "b"},
			},
		},
		{
			name:  "punctuation",
			input: "f(a, b);",
			want: []lexed{
				{token.Identifier, "f"},
				{token.Punctuation, "("},
				{token.Identifier, "a"},
				{token.Punctuation, ","},
				{token.Identifier, "b"},
				{token.Punctuation, ")"},
				{token.Punctuation, ";"},
			},
		},
		{
			name:  "unknown characters are single errors",
			input: "\\\\",
			want:  []lexed{{token.Error, "\\"}, {token.Error, "\\"}},
		},
		{
			name:  "multibyte identifier",
			input: "café ☃",
			want:  []lexed{{token.Identifier, "café"}, {token.Error, "☃"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexAll(tt.input))
		})
	}
}

func TestLexOffsetsAreCharacters(t *testing.T) {
	toks := Lex("'é' x")
	require.Len(t, toks, 2)
	assert.Equal(t, token.Token{Start: 0, End: 3, Type: token.String}, toks[0])
	assert.Equal(t, token.Token{Start: 4, End: 5, Type: token.Identifier}, toks[1])
}

func TestLexEmptyAndWhitespace(t *testing.T) {
	assert.Empty(t, Lex(""))
	assert.Empty(t, Lex(" \n\t "))
}

func TestLexDialectWords(t *testing.T) {
	sqlite, ok := dialect.Get("sqlite")
	require.True(t, ok)

	toks := LexWithDialect("ilike", sqlite)
	require.Len(t, toks, 1)
	assert.Equal(t, token.Identifier, toks[0].Type)

	toks = Lex("ilike")
	require.Len(t, toks, 1)
	assert.Equal(t, token.Keyword, toks[0].Type)
}

func TestLexAlwaysTerminatesAndCovers(t *testing.T) {
	alphabet := []rune("sel ct'\"$:.-/*\n1e9;()<>=!~#@?\\é")
	rng := rand.New(rand.NewSource(11))

	for round := 0; round < 500; round++ {
		n := rng.Intn(40)
		src := make([]rune, n)
		for i := range src {
			src[i] = alphabet[rng.Intn(len(alphabet))]
		}

		toks := Lex(string(src))
		prevEnd := 0
		for _, tok := range toks {
			require.Less(t, tok.Start, tok.End, "round %d: empty token in %q", round, string(src))
			require.GreaterOrEqual(t, tok.Start, prevEnd, "round %d: overlap in %q", round, string(src))
			require.LessOrEqual(t, tok.End, len(src))
			prevEnd = tok.End
		}
	}
}
