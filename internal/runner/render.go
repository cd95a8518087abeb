package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Output formats accepted by Render.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "md"
)

// Render writes res to w in the given format. Unknown formats render a table.
func Render(w io.Writer, res *Result, format string) error {
	if !res.IsQuery() {
		_, _ = fmt.Fprintln(w, res.Summary())
		return nil
	}

	switch format {
	case FormatJSON:
		return renderJSON(w, res)
	case FormatCSV:
		return renderCSV(w, res)
	case FormatMarkdown, "markdown":
		return renderMarkdown(w, res)
	default:
		return renderTable(w, res)
	}
}

func renderTable(w io.Writer, res *Result) error {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, values := range res.Rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintln(w, rowCount(res))
	return nil
}

func renderJSON(w io.Writer, res *Result) error {
	records := make([]map[string]any, 0, len(res.Rows))
	for _, values := range res.Rows {
		record := make(map[string]any, len(res.Columns))
		for i, col := range res.Columns {
			record[col] = values[i]
		}
		records = append(records, record)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func renderCSV(w io.Writer, res *Result) error {
	header := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = escapeCSV(col)
	}
	_, _ = fmt.Fprintln(w, strings.Join(header, ","))

	for _, values := range res.Rows {
		fields := make([]string, len(values))
		for i, v := range values {
			fields[i] = escapeCSV(FormatValue(v))
		}
		_, _ = fmt.Fprintln(w, strings.Join(fields, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, res *Result) error {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(res.Columns, " | "))
	seps := make([]string, len(res.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, values := range res.Rows {
		fields := make([]string, len(values))
		for i, v := range values {
			fields[i] = strings.ReplaceAll(FormatValue(v), "|", `\|`)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(fields, " | "))
	}
	return nil
}

func rowCount(res *Result) string {
	if res.Truncated {
		return fmt.Sprintf("(%d rows, truncated)", len(res.Rows))
	}
	return fmt.Sprintf("(%d rows)", len(res.Rows))
}

// FormatValue renders one cell the way result tables show it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
