package complete

import (
	"strings"

	"github.com/willibrandon/tusk-sub001/pkg/catalog"
	"github.com/willibrandon/tusk-sub001/pkg/dialect"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// scopeTable is a table reference found in a statement.
type scopeTable struct {
	schema ident
	name   ident
	alias  ident
}

// clauseKeywords introduce table references.
var clauseKeywords = map[string]bool{
	"from":   true,
	"join":   true,
	"into":   true,
	"update": true,
}

// scanScope lists the tables referenced by FROM, JOIN, INTO and UPDATE
// clauses of stmt. The scan is lexical: subqueries are skipped and a name
// followed by a parenthesis is still recorded.
func scanScope(stmt string, d *dialect.Dialect) []scopeTable {
	s := &scanner{src: []rune(stmt)}
	for _, tok := range highlight.LexWithDialect(stmt, d) {
		if tok.Type != token.Comment {
			s.toks = append(s.toks, tok)
		}
	}

	var tables []scopeTable
	for s.pos < len(s.toks) {
		tok := s.toks[s.pos]
		s.pos++
		if !token.IsKeyword(tok.Type) {
			continue
		}
		kw := strings.ToLower(s.text(tok))
		if !clauseKeywords[kw] {
			continue
		}
		for {
			t, ok := s.tableRef()
			if !ok {
				break
			}
			tables = append(tables, t)
			if kw != "from" || !s.punct(",") {
				break
			}
		}
	}
	return tables
}

type scanner struct {
	src  []rune
	toks []token.Token
	pos  int
}

func (s *scanner) text(tok token.Token) string {
	return tok.Text(s.src)
}

func (s *scanner) peek() (token.Token, bool) {
	if s.pos >= len(s.toks) {
		return token.Token{}, false
	}
	return s.toks[s.pos], true
}

// punct consumes the punctuation p if it is next.
func (s *scanner) punct(p string) bool {
	tok, ok := s.peek()
	if ok && tok.Type == token.Punctuation && s.text(tok) == p {
		s.pos++
		return true
	}
	return false
}

// name consumes an identifier-like token.
func (s *scanner) name() (ident, bool) {
	tok, ok := s.peek()
	if !ok {
		return ident{}, false
	}
	switch tok.Type {
	case token.Identifier, token.DataType, token.BuiltinFunction:
		s.pos++
		return ident{name: s.text(tok)}, true
	case token.QuotedIdentifier:
		s.pos++
		return unquote(s.text(tok)), true
	}
	return ident{}, false
}

// tableRef parses name[.name[.name]] [[AS] alias].
func (s *scanner) tableRef() (scopeTable, bool) {
	first, ok := s.name()
	if !ok {
		return scopeTable{}, false
	}
	parts := []ident{first}
	for {
		mark := s.pos
		if !s.punct(".") {
			break
		}
		next, ok := s.name()
		if !ok {
			s.pos = mark
			break
		}
		parts = append(parts, next)
	}

	var t scopeTable
	switch len(parts) {
	case 1:
		t.name = parts[0]
	default:
		// database.schema.table keeps the last two parts
		t.schema = parts[len(parts)-2]
		t.name = parts[len(parts)-1]
	}

	if tok, ok := s.peek(); ok && token.IsKeyword(tok.Type) && strings.EqualFold(s.text(tok), "as") {
		s.pos++
	}
	if tok, ok := s.peek(); ok && (tok.Type == token.Identifier || tok.Type == token.QuotedIdentifier) {
		t.alias, _ = s.name()
	}
	return t, true
}

func unquote(text string) ident {
	text = strings.TrimPrefix(text, `"`)
	text = strings.TrimSuffix(text, `"`)
	return ident{name: strings.ReplaceAll(text, `""`, `"`), quoted: true}
}

// resolve finds the scope entry whose alias or table name is q.
func resolve(scope []scopeTable, q ident) (scopeTable, bool) {
	for _, t := range scope {
		if t.alias.name != "" && t.alias.matches(q) {
			return t, true
		}
	}
	for _, t := range scope {
		if t.name.matches(q) {
			return t, true
		}
	}
	return scopeTable{}, false
}

// lookupTable finds a table in the catalog, trying exact names first and
// lowercase names for unquoted identifiers.
func lookupTable(cat catalog.SchemaCatalog, schema, name ident) (catalog.TableRef, bool) {
	for _, n := range name.variants() {
		if schema.name == "" {
			if t, ok := cat.FindTable(n); ok {
				return t, true
			}
			continue
		}
		for _, sc := range schema.variants() {
			if t, ok := cat.FindTable(sc + "." + n); ok {
				return t, true
			}
		}
	}
	return catalog.TableRef{}, false
}

// lookupSchema returns the stored name of schema q.
func lookupSchema(cat catalog.SchemaCatalog, q ident) (string, bool) {
	for _, n := range q.variants() {
		if cat.HasSchema(n) {
			return n, true
		}
	}
	return "", false
}

// scopeTables resolves every scope entry present in the catalog, once each.
func scopeTables(cat catalog.SchemaCatalog, scope []scopeTable) []catalog.TableRef {
	seen := make(map[string]bool)
	var out []catalog.TableRef
	for _, st := range scope {
		t, ok := lookupTable(cat, st.schema, st.name)
		if !ok || seen[t.QualifiedName()] {
			continue
		}
		seen[t.QualifiedName()] = true
		out = append(out, t)
	}
	return out
}
