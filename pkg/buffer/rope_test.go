package buffer

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRopeEmpty(t *testing.T) {
	var r Rope
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 1, r.LineCount())
	assert.Equal(t, "", r.String())
	assert.Equal(t, "", r.Slice(0, 10))

	line, col := r.OffsetToLineCol(5)
	assert.Equal(t, 0, line)
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, r.LineColToOffset(3, 3))
}

func TestRopeInsertDeleteSlice(t *testing.T) {
	r := NewRope("SELECT * FROM users")
	r = r.Insert(7, "id, name ")
	assert.Equal(t, "SELECT id, name * FROM users", r.String())

	r = r.Delete(7, 16)
	assert.Equal(t, "SELECT * FROM users", r.String())
	assert.Equal(t, "FROM", r.Slice(9, 13))
	assert.Equal(t, "FROM", r.Slice(13, 9), "inverted range is normalized")
	assert.Equal(t, "users", r.Slice(14, 999), "end is clamped")
}

func TestRopeMultibyte(t *testing.T) {
	r := NewRope("héllo\nwörld")
	assert.Equal(t, 11, r.Len())
	assert.Equal(t, 13, r.ByteLen())
	assert.Equal(t, 1, r.ByteOffset(1))
	assert.Equal(t, 3, r.ByteOffset(2))
	assert.Equal(t, 4, r.ByteOffset(3))
	assert.Equal(t, 3, r.CharOffset(4))
	assert.Equal(t, 1, r.CharOffset(2), "inside a multi-byte rune rounds down")

	line, col := r.OffsetToLineCol(8)
	assert.Equal(t, 1, line)
	assert.Equal(t, 2, col)
	assert.Equal(t, "wö", r.Slice(6, 8))
}

func TestRopeLines(t *testing.T) {
	r := NewRope("line1\nline2\nline3")
	assert.Equal(t, 3, r.LineCount())
	assert.Equal(t, 0, r.LineStart(0))
	assert.Equal(t, 6, r.LineStart(1))
	assert.Equal(t, 12, r.LineStart(2))
	assert.Equal(t, 5, r.LineEnd(0))
	assert.Equal(t, 17, r.LineEnd(2))
	assert.Equal(t, 12, r.LineStart(99), "line is clamped")

	assert.Equal(t, 15, r.LineColToOffset(2, 3))
	line, col := r.OffsetToLineCol(15)
	assert.Equal(t, 2, line)
	assert.Equal(t, 3, col)

	// column clamps to the line length
	assert.Equal(t, 11, r.LineColToOffset(1, 99))
	// one past the end is valid
	line, col = r.OffsetToLineCol(17)
	assert.Equal(t, 2, line)
	assert.Equal(t, 5, col)
}

func TestRopeTrailingNewline(t *testing.T) {
	r := NewRope("a\n")
	assert.Equal(t, 2, r.LineCount())
	line, col := r.OffsetToLineCol(2)
	assert.Equal(t, 1, line)
	assert.Equal(t, 0, col)
	assert.Equal(t, 2, r.LineColToOffset(1, 0))
}

func TestRopeLargeStaysBalanced(t *testing.T) {
	var sb strings.Builder
	r := Rope{}
	for i := 0; i < 20000; i++ {
		s := "select 1;\n"
		r = r.Insert(r.Len(), s)
		sb.WriteString(s)
	}
	require.Equal(t, sb.String(), r.String())
	assert.Equal(t, 20001, r.LineCount())
	assert.Less(t, r.Height(), 40)
}

func TestRopeRandomEditsMatchString(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abc xyz\nçé;")

	model := []rune{}
	r := Rope{}

	for i := 0; i < 3000; i++ {
		switch rng.Intn(3) {
		case 0, 1:
			n := rng.Intn(40) + 1
			ins := make([]rune, n)
			for j := range ins {
				ins[j] = alphabet[rng.Intn(len(alphabet))]
			}
			at := rng.Intn(len(model) + 1)
			model = append(model[:at], append(ins, model[at:]...)...)
			r = r.Insert(at, string(ins))
		case 2:
			if len(model) == 0 {
				continue
			}
			a := rng.Intn(len(model))
			b := a + rng.Intn(min(30, len(model)-a)+1)
			model = append(model[:a], model[b:]...)
			r = r.Delete(a, b)
		}

		if i%100 == 0 {
			require.Equal(t, string(model), r.String(), "iteration %d", i)
		}
	}
	require.Equal(t, string(model), r.String())
	require.Equal(t, len(model), r.Len())

	// offset/position bijection over the whole document
	for o := 0; o <= r.Len(); o++ {
		line, col := r.OffsetToLineCol(o)
		require.Equal(t, o, r.LineColToOffset(line, col), "offset %d", o)
	}
}
