package treesitter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/tusk-sub001/internal/testutil"
	"github.com/willibrandon/tusk-sub001/pkg/syntax"
)

func leafTypes(tree syntax.Tree) []string {
	var types []string
	syntax.Leaves(tree.Root(), func(n syntax.Node) {
		types = append(types, n.Type())
	})
	return types
}

func TestParseFull(t *testing.T) {
	p := New(WithLogger(testutil.NewTestLogger(t)))
	defer p.Close()

	tree, err := p.Parse(context.Background(), []byte("SELECT id FROM users;"), nil)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.Root()
	require.NotNil(t, root)
	assert.Equal(t, 0, root.StartByte())

	types := leafTypes(tree)
	assert.Contains(t, types, "keyword_select")
	assert.Contains(t, types, "keyword_from")
	assert.Contains(t, types, "identifier")
}

func TestParseIncremental(t *testing.T) {
	p := New()
	defer p.Close()

	src := "SELECT id FROM users"
	tree, err := p.Parse(context.Background(), []byte(src), nil)
	require.NoError(t, err)

	// insert ", name" after "id"
	insert := ", name"
	edit := syntax.InputEdit{
		StartByte:   9,
		OldEndByte:  9,
		NewEndByte:  9 + len(insert),
		StartPoint:  syntax.Point{Row: 0, Column: 9},
		OldEndPoint: syntax.Point{Row: 0, Column: 9},
		NewEndPoint: syntax.AdvancePoint(syntax.Point{Row: 0, Column: 9}, insert),
	}
	tree.Edit(edit)
	updated := src[:9] + insert + src[9:]

	next, err := p.Parse(context.Background(), []byte(updated), tree)
	require.NoError(t, err)
	defer next.Close()
	tree.Close()

	assert.Equal(t, len(updated), next.Root().EndByte())

	var idents []string
	syntax.Leaves(next.Root(), func(n syntax.Node) {
		if n.Type() == "identifier" {
			idents = append(idents, updated[n.StartByte():n.EndByte()])
		}
	})
	assert.Equal(t, "id name users", strings.Join(idents, " "))
}

type otherTree struct{}

func (otherTree) Root() syntax.Node        { return nil }
func (otherTree) Edit(_ syntax.InputEdit) {}
func (otherTree) Close()                   {}

func TestParseRejectsForeignTree(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse(context.Background(), []byte("SELECT 1"), otherTree{})
	assert.ErrorIs(t, err, ErrForeignTree)
}
