package dialect

// builtinPostgres is the default dialect.
var builtinPostgres = NewDialect("postgres").
	DefaultSchema("public").
	Keywords(StandardKeywords...).
	Keywords("listen", "notify", "reset", "share", "nowait", "skip", "locked", "verbose").
	DDLKeywords(StandardDDLKeywords...).
	DDLKeywords("owned", "inherits", "partitioned", "unlogged", "cluster", "reindex").
	DataTypes(StandardDataTypes...).
	DataTypes(
		"int2", "int4", "int8", "float4", "float8",
		"serial", "bigserial", "smallserial", "money",
		"bytea", "timestamptz", "timetz", "uuid", "json", "jsonb", "xml",
		"inet", "cidr", "macaddr", "point", "polygon", "box", "circle",
		"tsvector", "tsquery", "varbit", "oid", "regclass",
	).
	Functions(StandardFunctions...).
	Functions(PostgresFunctions...).
	Build()

// builtinDuckDB carries DuckDB types and functions.
var builtinDuckDB = NewDialect("duckdb").
	DefaultSchema("main").
	Keywords(StandardKeywords...).
	Keywords("qualify", "pivot", "unpivot", "describe", "summarize", "attach", "detach", "install", "load", "pragma").
	DDLKeywords(StandardDDLKeywords...).
	DataTypes(StandardDataTypes...).
	DataTypes(
		"tinyint", "utinyint", "usmallint", "uinteger", "ubigint", "hugeint", "uhugeint",
		"blob", "uuid", "json", "struct", "map", "union", "enum", "timestamptz",
	).
	Functions(StandardFunctions...).
	Functions(DuckDBFunctions...).
	Build()

// builtinSQLite carries SQLite types and functions.
var builtinSQLite = NewDialect("sqlite").
	DefaultSchema("main").
	Keywords(StandardKeywords...).
	Keywords("pragma", "attach", "detach", "glob", "regexp", "abort", "fail", "ignore", "autoincrement").
	Without("ilike", "lateral").
	DDLKeywords(StandardDDLKeywords...).
	DataTypes(StandardDataTypes...).
	DataTypes("blob", "none").
	Functions(StandardFunctions...).
	Functions(SQLiteFunctions...).
	Build()

func init() {
	Register(builtinPostgres)
	Register(builtinDuckDB)
	Register(builtinSQLite)
	SetDefault(builtinPostgres)
}
