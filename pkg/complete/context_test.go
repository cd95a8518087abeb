package complete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContext(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		offset     int
		wantPrefix string
		wantWord   string
		wantOffset int
	}{
		{"end of text", "SELECT na", -1, "SELECT na", "na", 9},
		{"middle of word", "SELECT name", 9, "SELECT na", "na", 9},
		{"second line", "SELECT id,\n  em", -1, "  em", "em", 15},
		{"start of line", "SELECT\n", 7, "", "", 7},
		{"after dot", "u.", -1, "u.", "", 2},
		{"dollar in word", "x$1", -1, "x$1", "x$1", 3},
		{"multibyte", "SELECT é", -1, "SELECT é", "é", 8},
		{"offset past end", "ab", 10, "ab", "ab", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext(tt.text, tt.offset)
			assert.Equal(t, tt.wantPrefix, ctx.Prefix)
			assert.Equal(t, tt.wantWord, ctx.Word)
			assert.Equal(t, tt.wantOffset, ctx.Offset)
			assert.Equal(t, tt.text, ctx.FullText)
			assert.Zero(t, ctx.Trigger)
		})
	}
}

func TestTrailingIdent(t *testing.T) {
	tests := []struct {
		in       string
		want     ident
		wantRest string
		wantOK   bool
	}{
		{"FROM users", ident{name: "users"}, "FROM ", true},
		{`FROM "My Table"`, ident{name: "My Table", quoted: true}, "FROM ", true},
		{`"a""b"`, ident{name: `a"b`, quoted: true}, "", true},
		{"x 12", ident{}, "x 12", false},
		{"x ", ident{}, "x ", false},
		{`""`, ident{}, "", false},
		{`abc"`, ident{}, `abc"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, rest, ok := trailingIdent(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, id)
				assert.Equal(t, tt.wantRest, rest)
			}
		})
	}
}

func TestQualifiers(t *testing.T) {
	tests := []struct {
		in   string
		want []ident
	}{
		{"SELECT u.", []ident{{name: "u"}}},
		{"FROM public.users.", []ident{{name: "public"}, {name: "users"}}},
		{`FROM "Sales".orders.`, []ident{{name: "Sales", quoted: true}, {name: "orders"}}},
		{"SELECT 1.", nil},
		{"SELECT u", nil},
		{"SELECT .", nil},
		{"a..", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, qualifiers(tt.in))
		})
	}
}

func TestIdentMatching(t *testing.T) {
	assert.Equal(t, []string{"users"}, ident{name: "users"}.variants())
	assert.Equal(t, []string{"Users", "users"}, ident{name: "Users"}.variants())
	assert.Equal(t, []string{"Users"}, ident{name: "Users", quoted: true}.variants())

	require.True(t, ident{name: "U"}.matches(ident{name: "u"}))
	assert.False(t, ident{name: "U", quoted: true}.matches(ident{name: "u"}))
	assert.True(t, ident{name: "u", quoted: true}.matches(ident{name: "u"}))
}
