// Package complete produces ranked SQL completions for a cursor position.
//
// The engine classifies the text before the cursor into a completion
// context (after a schema-qualifying dot, after FROM, in a select list, ...),
// gathers candidates for that context from the dialect's fixed lists and the
// current schema catalog, filters them by the word being typed and ranks
// them by priority band. It never fails: contexts it cannot resolve degrade
// to general completions.
package complete

import "fmt"

// Kind is the kind of object a completion inserts.
type Kind int

// Completion kinds.
const (
	KindKeyword Kind = iota
	KindSchema
	KindTable
	KindView
	KindColumn
	KindFunction
	KindType
	KindSnippet
)

var kindNames = [...]string{
	KindKeyword:  "keyword",
	KindSchema:   "schema",
	KindTable:    "table",
	KindView:     "view",
	KindColumn:   "column",
	KindFunction: "function",
	KindType:     "type",
	KindSnippet:  "snippet",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Priority bands. Lower sorts first.
const (
	PriorityColumn   = 5
	PriorityTable    = 10
	PrioritySchema   = 20
	PriorityFunction = 30
	PriorityType     = 40
	PrioritySnippet  = 50
	PriorityKeyword  = 100
)

// Completion is one candidate.
type Completion struct {
	Label         string
	InsertText    string
	Kind          Kind
	Detail        string
	Documentation string
	SortPriority  int
	// FilterText is lowercase and is the only field matched against the typed word.
	FilterText string
}

// ContextKind is the syntactic situation at the cursor.
type ContextKind int

// Completion contexts, in classification order.
const (
	General ContextKind = iota
	SchemaQualified
	TableQualified
	TypeCast
	AfterFrom
	AfterSelect
	AfterWhere
	AfterOn
)

var contextNames = [...]string{
	General:         "General",
	SchemaQualified: "SchemaQualified",
	TableQualified:  "TableQualified",
	TypeCast:        "TypeCast",
	AfterFrom:       "AfterFrom",
	AfterSelect:     "AfterSelect",
	AfterWhere:      "AfterWhere",
	AfterOn:         "AfterOn",
}

func (c ContextKind) String() string {
	if c >= 0 && int(c) < len(contextNames) {
		return contextNames[c]
	}
	return fmt.Sprintf("context(%d)", int(c))
}

// Classification is the result of classifying a Context.
type Classification struct {
	Kind ContextKind
	// Qualifier is the schema or table/alias before the dot, without quotes.
	Qualifier string
	// Keyword is the lowercase keyword that selected a clause context.
	Keyword string
}
