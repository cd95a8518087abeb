// Package dialect provides the fixed word lists used to classify SQL text:
// keywords, DDL keywords, data types, operators and built-in functions.
//
// Lists are case-insensitive. Dialects are composed with a Builder and
// registered by name; the postgres dialect is the default.
package dialect

import (
	"sort"
	"strings"
)

// Dialect is an immutable set of word lists for one SQL flavour.
type Dialect struct {
	Name          string
	DefaultSchema string

	keywords  map[string]struct{}
	ddl       map[string]struct{}
	dataTypes map[string]struct{}
	functions map[string]FunctionInfo

	// sorted views for completion
	keywordList  []string
	typeList     []string
	functionList []FunctionInfo
}

// IsKeyword returns true if word is any keyword, DDL keywords included.
func (d *Dialect) IsKeyword(word string) bool {
	w := strings.ToLower(word)
	if _, ok := d.keywords[w]; ok {
		return true
	}
	_, ok := d.ddl[w]
	return ok
}

// IsDDLKeyword returns true if word belongs to the DDL keyword set.
func (d *Dialect) IsDDLKeyword(word string) bool {
	_, ok := d.ddl[strings.ToLower(word)]
	return ok
}

// IsDataType returns true if word is a built-in type name.
func (d *Dialect) IsDataType(word string) bool {
	_, ok := d.dataTypes[strings.ToLower(word)]
	return ok
}

// IsBuiltinFunction returns true if word names a built-in function.
func (d *Dialect) IsBuiltinFunction(word string) bool {
	_, ok := d.functions[strings.ToLower(word)]
	return ok
}

// Function returns the catalog entry for a built-in function.
func (d *Dialect) Function(name string) (FunctionInfo, bool) {
	f, ok := d.functions[strings.ToLower(name)]
	return f, ok
}

// Keywords returns all keywords (DDL included), lowercase and sorted.
func (d *Dialect) Keywords() []string {
	return d.keywordList
}

// DataTypes returns all type names, lowercase and sorted.
func (d *Dialect) DataTypes() []string {
	return d.typeList
}

// Functions returns the built-in function catalog sorted by name.
func (d *Dialect) Functions() []FunctionInfo {
	return d.functionList
}

// Builder composes a Dialect.
type Builder struct {
	name          string
	defaultSchema string
	keywords      []string
	ddl           []string
	dataTypes     []string
	functions     []FunctionInfo
	exclude       map[string]struct{}
}

// NewDialect starts a builder for the named dialect.
func NewDialect(name string) *Builder {
	return &Builder{name: name, exclude: make(map[string]struct{})}
}

// DefaultSchema sets the schema unqualified names resolve against.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.defaultSchema = schema
	return b
}

// Keywords adds non-DDL keywords.
func (b *Builder) Keywords(words ...string) *Builder {
	b.keywords = append(b.keywords, words...)
	return b
}

// DDLKeywords adds keywords that start or shape schema changes.
func (b *Builder) DDLKeywords(words ...string) *Builder {
	b.ddl = append(b.ddl, words...)
	return b
}

// DataTypes adds built-in type names.
func (b *Builder) DataTypes(types ...string) *Builder {
	b.dataTypes = append(b.dataTypes, types...)
	return b
}

// Functions adds built-in functions.
func (b *Builder) Functions(funcs ...FunctionInfo) *Builder {
	b.functions = append(b.functions, funcs...)
	return b
}

// Without removes words from every list. Useful when a dialect does not
// reserve a word the standard lists carry.
func (b *Builder) Without(words ...string) *Builder {
	for _, w := range words {
		b.exclude[strings.ToLower(w)] = struct{}{}
	}
	return b
}

// Build freezes the builder into a Dialect.
func (b *Builder) Build() *Dialect {
	d := &Dialect{
		Name:          b.name,
		DefaultSchema: b.defaultSchema,
		keywords:      make(map[string]struct{}),
		ddl:           make(map[string]struct{}),
		dataTypes:     make(map[string]struct{}),
		functions:     make(map[string]FunctionInfo),
	}

	add := func(set map[string]struct{}, words []string) {
		for _, w := range words {
			w = strings.ToLower(w)
			if _, skip := b.exclude[w]; skip {
				continue
			}
			set[w] = struct{}{}
		}
	}
	add(d.ddl, b.ddl)
	add(d.keywords, b.keywords)
	add(d.dataTypes, b.dataTypes)

	// A DDL keyword is never also listed as a plain keyword.
	for w := range d.ddl {
		delete(d.keywords, w)
	}

	for _, f := range b.functions {
		key := strings.ToLower(f.Name)
		if _, skip := b.exclude[key]; skip {
			continue
		}
		d.functions[key] = f
	}

	d.keywordList = make([]string, 0, len(d.keywords)+len(d.ddl))
	for w := range d.keywords {
		d.keywordList = append(d.keywordList, w)
	}
	for w := range d.ddl {
		d.keywordList = append(d.keywordList, w)
	}
	sort.Strings(d.keywordList)

	d.typeList = make([]string, 0, len(d.dataTypes))
	for w := range d.dataTypes {
		d.typeList = append(d.typeList, w)
	}
	sort.Strings(d.typeList)

	d.functionList = make([]FunctionInfo, 0, len(d.functions))
	for _, f := range d.functions {
		d.functionList = append(d.functionList, f)
	}
	sort.Slice(d.functionList, func(i, j int) bool {
		return d.functionList[i].Name < d.functionList[j].Name
	})

	return d
}
