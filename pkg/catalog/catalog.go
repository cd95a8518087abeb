// Package catalog describes the database objects offered by autocomplete.
//
// A SchemaCatalog is a read-only view of schemas, tables, views and
// functions. Snapshot is the immutable implementation; Store holds the
// current Snapshot and lets a refresher swap in a new one without readers
// ever taking a lock. Lookups are case-sensitive on stored names.
package catalog

// Column describes one column of a table or view.
type Column struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type,omitempty"`
	Comment string `yaml:"comment,omitempty"`
}

// TableRef describes a table or view.
type TableRef struct {
	Name        string   `yaml:"name"`
	Schema      string   `yaml:"schema"`
	Columns     []Column `yaml:"columns,omitempty"`
	RowEstimate int64    `yaml:"rows,omitempty"`
	IsView      bool     `yaml:"view,omitempty"`
	Comment     string   `yaml:"comment,omitempty"`
}

// QualifiedName returns schema.name, or name when the schema is empty.
func (t TableRef) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Column returns the column with the given name.
func (t TableRef) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// FunctionRef describes a user-defined function.
type FunctionRef struct {
	Name       string `yaml:"name"`
	Schema     string `yaml:"schema"`
	Signature  string `yaml:"signature,omitempty"`
	ReturnType string `yaml:"returns,omitempty"`
	Comment    string `yaml:"comment,omitempty"`
}

// SchemaCatalog is the read-only catalog interface consumed by autocomplete.
type SchemaCatalog interface {
	HasSchema(name string) bool
	SchemaNames() []string
	TablesInSchema(schema string) []TableRef
	AllTables() []TableRef
	// FindTable resolves "table" or "schema.table".
	FindTable(name string) (TableRef, bool)
	FunctionsInSchema(schema string) []FunctionRef
	AllFunctions() []FunctionRef
}

// Source hands out the catalog to use for one request.
type Source interface {
	Current() SchemaCatalog
}
