package runner

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		SQL:     "SELECT id, name FROM users",
		Columns: []string{"id", "name"},
		Rows: [][]any{
			{int64(1), "ada, countess"},
			{int64(2), nil},
		},
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{
			format: FormatCSV,
			want:   "id,name\n1,\"ada, countess\"\n2,NULL\n",
		},
		{
			format: FormatMarkdown,
			want:   "| id | name |\n| --- | --- |\n| 1 | ada, countess |\n| 2 | NULL |\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, sampleResult(), tt.format))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(), FormatTable))
	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "ada, countess")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")

	res := sampleResult()
	res.Truncated = true
	buf.Reset()
	require.NoError(t, Render(&buf, res, "unknown"))
	assert.Contains(t, buf.String(), "(2 rows, truncated)")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(), FormatJSON))
	assert.JSONEq(t, `[{"id":1,"name":"ada, countess"},{"id":2,"name":null}]`, buf.String())
}

func TestRenderEmptyAndExec(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &Result{Columns: []string{"a"}}, FormatTable))
	assert.Equal(t, "(0 rows)\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, &Result{RowsAffected: 3}, FormatTable))
	assert.Equal(t, "OK, 3 rows affected (0s)\n", buf.String())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", FormatValue(nil))
	assert.Equal(t, "abc", FormatValue([]byte("abc")))
	assert.Equal(t, "42", FormatValue(42))
	assert.Equal(t, "true", FormatValue(true))
}
