package catalog

import (
	"sort"
	"strings"
	"time"
)

// Data is the content of a snapshot, as stored in snapshot files.
type Data struct {
	Dialect       string        `yaml:"dialect,omitempty"`
	DefaultSchema string        `yaml:"default_schema,omitempty"`
	GeneratedAt   time.Time     `yaml:"generated_at,omitempty"`
	Schemas       []string      `yaml:"schemas,omitempty"`
	Tables        []TableRef    `yaml:"tables,omitempty"`
	Functions     []FunctionRef `yaml:"functions,omitempty"`
}

// Snapshot is an immutable catalog. The zero value is an empty catalog.
type Snapshot struct {
	data Data

	schemas   []string
	tables    map[string][]TableRef    // by schema
	functions map[string][]FunctionRef // by schema
	byName    map[string][]TableRef    // by bare table name
}

var _ SchemaCatalog = (*Snapshot)(nil)

// NewSnapshot indexes data. Schemas referenced by tables or functions are
// added to the schema list. The input slices are copied.
func NewSnapshot(data Data) *Snapshot {
	s := &Snapshot{
		tables:    make(map[string][]TableRef),
		functions: make(map[string][]FunctionRef),
		byName:    make(map[string][]TableRef),
	}

	seen := make(map[string]bool)
	addSchema := func(name string) {
		if !seen[name] {
			seen[name] = true
			s.schemas = append(s.schemas, name)
		}
	}
	for _, name := range data.Schemas {
		addSchema(name)
	}

	tables := make([]TableRef, len(data.Tables))
	copy(tables, data.Tables)
	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].Schema != tables[j].Schema {
			return tables[i].Schema < tables[j].Schema
		}
		return tables[i].Name < tables[j].Name
	})
	for _, t := range tables {
		addSchema(t.Schema)
		s.tables[t.Schema] = append(s.tables[t.Schema], t)
		s.byName[t.Name] = append(s.byName[t.Name], t)
	}

	functions := make([]FunctionRef, len(data.Functions))
	copy(functions, data.Functions)
	sort.SliceStable(functions, func(i, j int) bool {
		if functions[i].Schema != functions[j].Schema {
			return functions[i].Schema < functions[j].Schema
		}
		return functions[i].Name < functions[j].Name
	})
	for _, f := range functions {
		addSchema(f.Schema)
		s.functions[f.Schema] = append(s.functions[f.Schema], f)
	}

	sort.Strings(s.schemas)
	data.Schemas = s.schemas
	data.Tables = tables
	data.Functions = functions
	s.data = data
	return s
}

// Current makes a Snapshot usable as a static Source.
func (s *Snapshot) Current() SchemaCatalog {
	if s == nil {
		return nil
	}
	return s
}

// Data returns the snapshot content, normalized and sorted.
func (s *Snapshot) Data() Data { return s.data }

// DefaultSchema returns the schema unqualified names resolve against first.
func (s *Snapshot) DefaultSchema() string { return s.data.DefaultSchema }

// HasSchema reports whether the schema exists.
func (s *Snapshot) HasSchema(name string) bool {
	i := sort.SearchStrings(s.schemas, name)
	return i < len(s.schemas) && s.schemas[i] == name
}

// SchemaNames returns the schema names, sorted.
func (s *Snapshot) SchemaNames() []string {
	return append([]string(nil), s.schemas...)
}

// TablesInSchema returns the tables and views of schema.
func (s *Snapshot) TablesInSchema(schema string) []TableRef {
	return append([]TableRef(nil), s.tables[schema]...)
}

// AllTables returns every table and view ordered by schema and name.
func (s *Snapshot) AllTables() []TableRef {
	return append([]TableRef(nil), s.data.Tables...)
}

// FindTable resolves "schema.table" exactly, or a bare table name. A bare
// name present in several schemas resolves to the default schema's table,
// then to the first schema in order.
func (s *Snapshot) FindTable(name string) (TableRef, bool) {
	if schema, table, ok := strings.Cut(name, "."); ok {
		for _, t := range s.tables[schema] {
			if t.Name == table {
				return t, true
			}
		}
		return TableRef{}, false
	}

	candidates := s.byName[name]
	if len(candidates) == 0 {
		return TableRef{}, false
	}
	for _, t := range candidates {
		if t.Schema == s.data.DefaultSchema {
			return t, true
		}
	}
	return candidates[0], true
}

// FunctionsInSchema returns the functions of schema.
func (s *Snapshot) FunctionsInSchema(schema string) []FunctionRef {
	return append([]FunctionRef(nil), s.functions[schema]...)
}

// AllFunctions returns every function ordered by schema and name.
func (s *Snapshot) AllFunctions() []FunctionRef {
	return append([]FunctionRef(nil), s.data.Functions...)
}
