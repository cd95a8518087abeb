package complete

import (
	"fmt"
	"strings"

	"github.com/willibrandon/tusk-sub001/pkg/catalog"
	"github.com/willibrandon/tusk-sub001/pkg/dialect"
)

// Snippet is a named statement template.
type Snippet struct {
	Trigger     string
	Body        string
	Description string
}

// DefaultSnippets are offered in the general context.
var DefaultSnippets = []Snippet{
	{Trigger: "sel", Body: "SELECT *\nFROM ", Description: "select all columns"},
	{Trigger: "selw", Body: "SELECT *\nFROM \nWHERE ", Description: "select with filter"},
	{Trigger: "selc", Body: "SELECT count(*)\nFROM ", Description: "count rows"},
	{Trigger: "ins", Body: "INSERT INTO  ()\nVALUES ();", Description: "insert a row"},
	{Trigger: "upd", Body: "UPDATE \nSET \nWHERE ;", Description: "update rows"},
	{Trigger: "del", Body: "DELETE FROM \nWHERE ;", Description: "delete rows"},
	{Trigger: "cte", Body: "WITH cte AS (\n  \n)\nSELECT *\nFROM cte;", Description: "common table expression"},
	{Trigger: "ctab", Body: "CREATE TABLE  (\n  id bigint PRIMARY KEY\n);", Description: "create a table"},
}

func snippetCompletions(snippets []Snippet) []Completion {
	items := make([]Completion, 0, len(snippets))
	for _, s := range snippets {
		items = append(items, Completion{
			Label:         s.Trigger,
			InsertText:    s.Body,
			Kind:          KindSnippet,
			Detail:        s.Description,
			Documentation: s.Body,
			SortPriority:  PrioritySnippet,
			FilterText:    strings.ToLower(s.Trigger),
		})
	}
	return items
}

func (e *Engine) keywordCompletions() []Completion {
	words := e.dialect.Keywords()
	items := make([]Completion, 0, len(words))
	for _, kw := range words {
		text := e.caseKeyword(kw)
		items = append(items, Completion{
			Label:        text,
			InsertText:   text,
			Kind:         KindKeyword,
			SortPriority: PriorityKeyword,
			FilterText:   strings.ToLower(kw),
		})
	}
	return items
}

func (e *Engine) typeCompletions() []Completion {
	types := e.dialect.DataTypes()
	items := make([]Completion, 0, len(types))
	for _, t := range types {
		items = append(items, Completion{
			Label:        t,
			InsertText:   t,
			Kind:         KindType,
			SortPriority: PriorityType,
			FilterText:   strings.ToLower(t),
		})
	}
	return items
}

func (e *Engine) builtinFunctionCompletions() []Completion {
	funcs := e.dialect.Functions()
	items := make([]Completion, 0, len(funcs))
	for _, fn := range funcs {
		detail := fn.Signature
		if fn.IsAggregate {
			detail += " (aggregate)"
		}
		items = append(items, Completion{
			Label:         fn.Name,
			InsertText:    fn.Name + "(",
			Kind:          KindFunction,
			Detail:        detail,
			Documentation: fn.Description,
			SortPriority:  PriorityFunction,
			FilterText:    strings.ToLower(fn.Name),
		})
	}
	return items
}

func catalogFunctionCompletions(funcs []catalog.FunctionRef, qualify bool) []Completion {
	items := make([]Completion, 0, len(funcs))
	for _, fn := range funcs {
		insert := quoteIdent(fn.Name)
		if qualify && fn.Schema != "" {
			insert = quoteIdent(fn.Schema) + "." + insert
		}
		detail := fn.Signature
		if detail == "" {
			detail = fn.Name + "()"
		}
		items = append(items, Completion{
			Label:         fn.Name,
			InsertText:    insert + "(",
			Kind:          KindFunction,
			Detail:        detail,
			Documentation: fn.Comment,
			SortPriority:  PriorityFunction,
			FilterText:    strings.ToLower(fn.Name),
		})
	}
	return items
}

func schemaCompletions(names []string) []Completion {
	items := make([]Completion, 0, len(names))
	for _, name := range names {
		items = append(items, Completion{
			Label:        name,
			InsertText:   quoteIdent(name),
			Kind:         KindSchema,
			Detail:       "schema",
			SortPriority: PrioritySchema,
			FilterText:   strings.ToLower(name),
		})
	}
	return items
}

// tableCompletions lists tables and views. Tables outside defaultSchema are
// inserted schema-qualified unless defaultSchema is empty.
func tableCompletions(tables []catalog.TableRef, defaultSchema string) []Completion {
	items := make([]Completion, 0, len(tables))
	for _, t := range tables {
		kind := KindTable
		if t.IsView {
			kind = KindView
		}
		insert := quoteIdent(t.Name)
		if defaultSchema != "" && t.Schema != "" && t.Schema != defaultSchema {
			insert = quoteIdent(t.Schema) + "." + insert
		}
		items = append(items, Completion{
			Label:         t.Name,
			InsertText:    insert,
			Kind:          kind,
			Detail:        tableDetail(t),
			Documentation: t.Comment,
			SortPriority:  PriorityTable,
			FilterText:    strings.ToLower(t.Name),
		})
	}
	return items
}

func tableDetail(t catalog.TableRef) string {
	kind := "table"
	if t.IsView {
		kind = "view"
	}
	detail := fmt.Sprintf("%s %s", kind, t.QualifiedName())
	if t.RowEstimate > 0 {
		detail += fmt.Sprintf(" (~%d rows)", t.RowEstimate)
	}
	return detail
}

func columnCompletions(t catalog.TableRef) []Completion {
	items := make([]Completion, 0, len(t.Columns))
	for _, c := range t.Columns {
		detail := t.Name
		if c.Type != "" {
			detail = c.Type + " " + t.Name
		}
		items = append(items, Completion{
			Label:         c.Name,
			InsertText:    quoteIdent(c.Name),
			Kind:          KindColumn,
			Detail:        detail,
			Documentation: c.Comment,
			SortPriority:  PriorityColumn,
			FilterText:    strings.ToLower(c.Name),
		})
	}
	return items
}

// defaultSchema is the catalog's default schema, or the dialect's.
func defaultSchema(cat catalog.SchemaCatalog, d *dialect.Dialect) string {
	if s, ok := cat.(interface{ DefaultSchema() string }); ok && s.DefaultSchema() != "" {
		return s.DefaultSchema()
	}
	return d.DefaultSchema
}

// quoteIdent quotes names that would not survive as unquoted identifiers.
func quoteIdent(name string) string {
	if name == "" {
		return `""`
	}
	plain := true
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z'):
		case i > 0 && (r >= '0' && r <= '9' || r == '$'):
		default:
			plain = false
		}
	}
	if plain && !dialect.Default().IsKeyword(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
