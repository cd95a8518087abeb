package complete

import (
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/willibrandon/tusk-sub001/pkg/catalog"
	"github.com/willibrandon/tusk-sub001/pkg/dialect"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// KeywordCase controls how keyword completions are spelled.
type KeywordCase string

// Keyword cases.
const (
	KeywordUpper KeywordCase = "upper"
	KeywordLower KeywordCase = "lower"
)

// Engine computes completions. It is safe for concurrent use; the catalog
// is read through its Source on every request.
type Engine struct {
	source      catalog.Source
	dialect     *dialect.Dialect
	keywordCase KeywordCase
	maxItems    int
	snippets    []Snippet
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog sets the catalog source. Without one, or while the source
// reports no catalog, only keywords, snippets and cast types are offered.
func WithCatalog(src catalog.Source) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithDialect selects keyword, type and function lists.
func WithDialect(d *dialect.Dialect) Option {
	return func(e *Engine) {
		if d != nil {
			e.dialect = d
		}
	}
}

// WithKeywordCase sets keyword spelling.
func WithKeywordCase(c KeywordCase) Option {
	return func(e *Engine) {
		e.keywordCase = c
	}
}

// WithMaxItems caps the number of completions returned. Zero means no cap.
func WithMaxItems(n int) Option {
	return func(e *Engine) {
		e.maxItems = n
	}
}

// WithSnippets adds snippets to the defaults.
func WithSnippets(snippets ...Snippet) Option {
	return func(e *Engine) {
		e.snippets = append(e.snippets, snippets...)
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		dialect:     dialect.Default(),
		keywordCase: KeywordUpper,
		snippets:    append([]Snippet(nil), DefaultSnippets...),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Dialect returns the engine's dialect.
func (e *Engine) Dialect() *dialect.Dialect { return e.dialect }

func (e *Engine) catalog() catalog.SchemaCatalog {
	if e.source == nil {
		return nil
	}
	return e.source.Current()
}

// Classify determines the completion context.
func (e *Engine) Classify(ctx Context) Classification {
	return e.classify(ctx, e.catalog())
}

func (e *Engine) classify(ctx Context, cat catalog.SchemaCatalog) Classification {
	before := strings.TrimSuffix(ctx.Prefix, ctx.Word)

	if chain := qualifiers(before); len(chain) > 0 {
		if len(chain) == 1 && cat != nil {
			if schema, ok := lookupSchema(cat, chain[0]); ok {
				return Classification{Kind: SchemaQualified, Qualifier: schema}
			}
		}
		names := make([]string, len(chain))
		for i, id := range chain {
			names[i] = id.name
		}
		return Classification{Kind: TableQualified, Qualifier: strings.Join(names, ".")}
	}

	if strings.HasSuffix(strings.TrimRight(before, " \t"), "::") {
		return Classification{Kind: TypeCast}
	}

	kw := e.lastKeyword(before)
	if kw == "" {
		kw = e.lastKeyword(e.statementBefore(ctx))
	}
	switch kw {
	case "from", "join", "into":
		return Classification{Kind: AfterFrom, Keyword: kw}
	case "select", "distinct":
		return Classification{Kind: AfterSelect, Keyword: kw}
	case "where", "and", "or", "not":
		return Classification{Kind: AfterWhere, Keyword: kw}
	case "on":
		return Classification{Kind: AfterOn, Keyword: kw}
	}
	return Classification{Kind: General, Keyword: kw}
}

// lastKeyword returns the last keyword in text, lowercased.
func (e *Engine) lastKeyword(text string) string {
	tokens := highlight.LexWithDialect(text, e.dialect)
	runes := []rune(text)
	for i := len(tokens) - 1; i >= 0; i-- {
		if token.IsKeyword(tokens[i].Type) {
			return strings.ToLower(tokens[i].Text(runes))
		}
	}
	return ""
}

// statement returns the statement around the cursor and the cursor offset
// within it.
func (e *Engine) statement(ctx Context) (string, int) {
	runes := []rune(ctx.FullText)
	offset := ctx.Offset
	if offset < 0 || offset > len(runes) {
		offset = len(runes)
	}
	spans := highlight.SplitStatements(ctx.FullText, e.dialect)
	span := spans[highlight.StatementIndex(spans, offset)]
	return string(runes[span.Start:span.End]), offset - span.Start
}

// statementBefore returns the statement text before the cursor, without
// the word being typed.
func (e *Engine) statementBefore(ctx Context) string {
	stmt, cursor := e.statement(ctx)
	before := string([]rune(stmt)[:cursor])
	return strings.TrimSuffix(before, ctx.Word)
}

// Complete returns ranked completions for ctx.
func (e *Engine) Complete(ctx Context) []Completion {
	cat := e.catalog()
	cls := e.classify(ctx, cat)

	items := e.filter(e.candidates(ctx, cls, cat), ctx.Word)
	if len(items) == 0 && cls.Kind != General && cls.Kind != SchemaQualified && cls.Kind != TableQualified {
		// nothing fits the clause; fall back to everything
		items = e.filter(e.candidates(ctx, Classification{Kind: General}, cat), ctx.Word)
	}

	sortCompletions(items)
	if e.maxItems > 0 && len(items) > e.maxItems {
		items = items[:e.maxItems]
	}

	e.logger.Debug("completions",
		"context", cls.Kind.String(),
		"qualifier", cls.Qualifier,
		"word", ctx.Word,
		"items", len(items))
	return items
}

func (e *Engine) candidates(ctx Context, cls Classification, cat catalog.SchemaCatalog) []Completion {
	var items []Completion

	switch cls.Kind {
	case SchemaQualified:
		items = append(items, tableCompletions(cat.TablesInSchema(cls.Qualifier), "")...)
		items = append(items, catalogFunctionCompletions(cat.FunctionsInSchema(cls.Qualifier), false)...)

	case TableQualified:
		if cat == nil {
			return nil
		}
		if t, ok := e.qualifiedTable(ctx, cat); ok {
			items = append(items, columnCompletions(t)...)
		}

	case TypeCast:
		items = append(items, e.typeCompletions()...)

	case AfterFrom:
		if cat != nil {
			items = append(items, schemaCompletions(cat.SchemaNames())...)
			items = append(items, tableCompletions(cat.AllTables(), defaultSchema(cat, e.dialect))...)
		}

	case AfterSelect, AfterWhere, AfterOn:
		// without a schema only keywords and snippets are offered
		if cat != nil {
			stmt, _ := e.statement(ctx)
			for _, t := range scopeTables(cat, scanScope(stmt, e.dialect)) {
				items = append(items, columnCompletions(t)...)
			}
			items = append(items, e.builtinFunctionCompletions()...)
		}

	default:
		items = append(items, e.keywordCompletions()...)
		if cat != nil {
			items = append(items, schemaCompletions(cat.SchemaNames())...)
			items = append(items, tableCompletions(cat.AllTables(), defaultSchema(cat, e.dialect))...)
			items = append(items, catalogFunctionCompletions(cat.AllFunctions(), true)...)
			items = append(items, e.builtinFunctionCompletions()...)
		}
		items = append(items, snippetCompletions(e.snippets)...)
	}
	return items
}

// qualifiedTable resolves "alias", "table" or "schema.table" before a dot.
func (e *Engine) qualifiedTable(ctx Context, cat catalog.SchemaCatalog) (catalog.TableRef, bool) {
	chain := qualifiers(strings.TrimSuffix(ctx.Prefix, ctx.Word))
	if len(chain) == 0 {
		return catalog.TableRef{}, false
	}
	last := chain[len(chain)-1]

	if len(chain) == 1 {
		stmt, _ := e.statement(ctx)
		if st, ok := resolve(scanScope(stmt, e.dialect), last); ok {
			if t, ok := lookupTable(cat, st.schema, st.name); ok {
				return t, true
			}
		}
		return lookupTable(cat, ident{}, last)
	}
	return lookupTable(cat, chain[len(chain)-2], last)
}

func (e *Engine) filter(items []Completion, word string) []Completion {
	prefix := strings.ToLower(word)
	out := items[:0]
	seen := make(map[Completion]bool, len(items))
	for _, it := range items {
		if !strings.HasPrefix(it.FilterText, prefix) || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func sortCompletions(items []Completion) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.SortPriority != b.SortPriority {
			return a.SortPriority < b.SortPriority
		}
		if a.FilterText != b.FilterText {
			return a.FilterText < b.FilterText
		}
		return a.Label < b.Label
	})
}

func (e *Engine) caseKeyword(kw string) string {
	if e.keywordCase == KeywordLower {
		return cases.Lower(language.Und).String(kw)
	}
	return cases.Upper(language.Und).String(kw)
}
