package dialect

// StandardKeywords are the non-DDL keywords shared by every dialect.
var StandardKeywords = []string{
	"all", "analyze", "and", "any", "as", "asc", "begin", "between", "by",
	"case", "cast", "collate", "commit", "conflict", "copy", "cross", "current",
	"delete", "desc", "distinct", "do", "else", "end", "escape", "except",
	"exists", "explain", "false", "fetch", "filter", "first", "following", "for",
	"from", "full", "group", "having", "ilike", "in", "inner", "insert",
	"intersect", "into", "is", "isnull", "join", "last", "lateral", "left",
	"like", "limit", "lock", "natural", "next", "not", "nothing", "notnull",
	"null", "nulls", "offset", "on", "only", "or", "order", "outer", "over",
	"partition", "preceding", "range", "recursive", "returning", "right",
	"rollback", "row", "rows", "savepoint", "select", "set", "show", "similar",
	"some", "then", "to", "transaction", "true", "unbounded", "union", "update",
	"using", "vacuum", "values", "when", "where", "window", "with", "within",
}

// StandardDDLKeywords are keywords that create, alter or remove schema objects.
var StandardDDLKeywords = []string{
	"add", "alter", "always", "cascade", "check", "column", "comment",
	"constraint", "create", "database", "default", "domain", "drop",
	"extension", "foreign", "function", "generated", "grant", "identity", "if",
	"index", "key", "language", "materialized", "owner", "policy", "primary",
	"privileges", "procedure", "references", "rename", "replace", "restrict",
	"returns", "revoke", "role", "schema", "sequence", "table", "tablespace",
	"temp", "temporary", "trigger", "truncate", "type", "unique", "view",
}

// StandardDataTypes are the built-in type names shared by every dialect.
var StandardDataTypes = []string{
	"bigint", "bit", "boolean", "bool", "char", "character", "date", "decimal",
	"double", "float", "int", "integer", "interval", "numeric", "precision",
	"real", "smallint", "text", "time", "timestamp", "varchar", "varying",
}

// MultiCharOperators is the operator table the lexer matches longest-first.
var MultiCharOperators = []string{
	"->>", "#>>", "!~*", "!~~",
	"::", "<=", ">=", "<>", "!=", "||", "->", "#>", "@>", "<@", "&&",
	"~*", "!~", "~~", "<<", ">>", "=>", "@@", "#-", "?|", "?&", ":=",
}

// SingleCharOperators are operator characters that stand alone.
const SingleCharOperators = "+-*/%=<>~!@#&|^?:"

// PunctuationChars are the structural characters of SQL.
const PunctuationChars = "(),;.[]{}"
