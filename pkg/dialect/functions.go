package dialect

import "strings"

// FunctionCategory classifies SQL functions by their purpose.
type FunctionCategory string

// FunctionCategory constants for SQL function classification.
const (
	CategoryAggregate   FunctionCategory = "aggregate"
	CategoryWindow      FunctionCategory = "window"
	CategoryNumeric     FunctionCategory = "numeric"
	CategoryString      FunctionCategory = "string"
	CategoryDate        FunctionCategory = "date"
	CategoryConversion  FunctionCategory = "conversion"
	CategoryConditional FunctionCategory = "conditional"
	CategoryJSON        FunctionCategory = "json"
	CategoryList        FunctionCategory = "list"
	CategorySystem      FunctionCategory = "system"
)

// FunctionInfo describes a built-in SQL function for completion and highlighting.
type FunctionInfo struct {
	Name        string           // Function name, lowercase (e.g., "count")
	Signature   string           // Full signature (e.g., "count(expr) -> bigint")
	Description string           // Brief description
	Category    FunctionCategory // Function category
	IsAggregate bool             // True if this is an aggregate function
}

func agg(name, sig, desc string) FunctionInfo {
	return FunctionInfo{Name: name, Signature: sig, Description: desc, Category: CategoryAggregate, IsAggregate: true}
}

func fn(cat FunctionCategory, name, sig, desc string) FunctionInfo {
	return FunctionInfo{Name: name, Signature: sig, Description: desc, Category: cat}
}

// StandardFunctions are available in every dialect.
var StandardFunctions = []FunctionInfo{
	// ==================== AGGREGATE FUNCTIONS ====================
	agg("count", "count(expr) -> bigint", "Count non-null values"),
	agg("sum", "sum(expr) -> numeric", "Sum of all values"),
	agg("avg", "avg(expr) -> double", "Average of all values"),
	agg("min", "min(expr) -> same", "Minimum value"),
	agg("max", "max(expr) -> same", "Maximum value"),
	agg("stddev", "stddev(expr) -> double", "Sample standard deviation"),
	agg("variance", "variance(expr) -> double", "Sample variance"),

	// ==================== WINDOW FUNCTIONS ====================
	fn(CategoryWindow, "row_number", "row_number() -> bigint", "Row number within the partition"),
	fn(CategoryWindow, "rank", "rank() -> bigint", "Rank with gaps"),
	fn(CategoryWindow, "dense_rank", "dense_rank() -> bigint", "Rank without gaps"),
	fn(CategoryWindow, "ntile", "ntile(n) -> integer", "Bucket number from 1 to n"),
	fn(CategoryWindow, "lag", "lag(expr [, offset [, default]]) -> same", "Value from a preceding row"),
	fn(CategoryWindow, "lead", "lead(expr [, offset [, default]]) -> same", "Value from a following row"),
	fn(CategoryWindow, "first_value", "first_value(expr) -> same", "First value in the window frame"),
	fn(CategoryWindow, "last_value", "last_value(expr) -> same", "Last value in the window frame"),

	// ==================== NUMERIC FUNCTIONS ====================
	fn(CategoryNumeric, "abs", "abs(x) -> same", "Absolute value"),
	fn(CategoryNumeric, "ceil", "ceil(x) -> numeric", "Round up"),
	fn(CategoryNumeric, "floor", "floor(x) -> numeric", "Round down"),
	fn(CategoryNumeric, "round", "round(x [, digits]) -> numeric", "Round to digits"),
	fn(CategoryNumeric, "mod", "mod(x, y) -> same", "Remainder of x / y"),
	fn(CategoryNumeric, "power", "power(x, y) -> double", "x raised to y"),
	fn(CategoryNumeric, "sqrt", "sqrt(x) -> double", "Square root"),
	fn(CategoryNumeric, "random", "random() -> double", "Random value in [0, 1)"),

	// ==================== STRING FUNCTIONS ====================
	fn(CategoryString, "length", "length(str) -> integer", "Number of characters"),
	fn(CategoryString, "lower", "lower(str) -> text", "Convert to lowercase"),
	fn(CategoryString, "upper", "upper(str) -> text", "Convert to uppercase"),
	fn(CategoryString, "trim", "trim(str) -> text", "Remove surrounding whitespace"),
	fn(CategoryString, "substring", "substring(str, start [, len]) -> text", "Extract a substring"),
	fn(CategoryString, "replace", "replace(str, from, to) -> text", "Replace all occurrences"),
	fn(CategoryString, "concat", "concat(str, ...) -> text", "Concatenate, ignoring nulls"),
	fn(CategoryString, "position", "position(sub in str) -> integer", "Location of substring"),

	// ==================== DATE FUNCTIONS ====================
	fn(CategoryDate, "now", "now() -> timestamptz", "Current transaction timestamp"),
	fn(CategoryDate, "current_date", "current_date -> date", "Current date"),
	fn(CategoryDate, "current_timestamp", "current_timestamp -> timestamptz", "Current timestamp"),
	fn(CategoryDate, "date_trunc", "date_trunc(field, source) -> timestamp", "Truncate to precision"),
	fn(CategoryDate, "extract", "extract(field from source) -> numeric", "Get a date/time field"),

	// ==================== CONDITIONAL FUNCTIONS ====================
	fn(CategoryConditional, "coalesce", "coalesce(value, ...) -> same", "First non-null argument"),
	fn(CategoryConditional, "nullif", "nullif(a, b) -> same", "Null if a equals b"),
	fn(CategoryConditional, "greatest", "greatest(value, ...) -> same", "Largest argument"),
	fn(CategoryConditional, "least", "least(value, ...) -> same", "Smallest argument"),
}

// PostgresFunctions are specific to PostgreSQL.
var PostgresFunctions = []FunctionInfo{
	agg("array_agg", "array_agg(expr) -> array", "Collect values into an array"),
	agg("string_agg", "string_agg(expr, sep) -> text", "Concatenate strings with separator"),
	agg("jsonb_agg", "jsonb_agg(expr) -> jsonb", "Collect values into a JSONB array"),
	agg("json_agg", "json_agg(expr) -> json", "Collect values into a JSON array"),
	agg("bool_and", "bool_and(expr) -> boolean", "True if all values are true"),
	agg("bool_or", "bool_or(expr) -> boolean", "True if any value is true"),
	agg("percentile_cont", "percentile_cont(fraction) within group (order by expr) -> double", "Continuous percentile"),
	fn(CategoryDate, "age", "age(ts [, ts]) -> interval", "Interval between timestamps"),
	fn(CategoryDate, "to_char", "to_char(value, format) -> text", "Format a value as text"),
	fn(CategoryDate, "to_date", "to_date(text, format) -> date", "Parse a date"),
	fn(CategoryDate, "to_timestamp", "to_timestamp(text, format) -> timestamptz", "Parse a timestamp"),
	fn(CategoryDate, "generate_series", "generate_series(start, stop [, step]) -> setof", "Series of values"),
	fn(CategoryString, "regexp_replace", "regexp_replace(str, pattern, replacement [, flags]) -> text", "Replace regex matches"),
	fn(CategoryString, "split_part", "split_part(str, delim, n) -> text", "Nth field of a split string"),
	fn(CategoryString, "format", "format(fmt, ...) -> text", "Format a string"),
	fn(CategoryJSON, "jsonb_build_object", "jsonb_build_object(key, value, ...) -> jsonb", "Build a JSONB object"),
	fn(CategoryJSON, "jsonb_extract_path_text", "jsonb_extract_path_text(json, path...) -> text", "Extract a JSON value as text"),
	fn(CategoryJSON, "to_jsonb", "to_jsonb(value) -> jsonb", "Convert a value to JSONB"),
	fn(CategoryList, "unnest", "unnest(array) -> setof", "Expand an array to rows"),
	fn(CategoryList, "array_length", "array_length(array, dim) -> integer", "Length of an array dimension"),
	fn(CategorySystem, "gen_random_uuid", "gen_random_uuid() -> uuid", "Random version 4 UUID"),
	fn(CategorySystem, "current_schema", "current_schema() -> name", "Schema first in the search path"),
	fn(CategorySystem, "pg_size_pretty", "pg_size_pretty(bigint) -> text", "Human readable size"),
	fn(CategorySystem, "pg_total_relation_size", "pg_total_relation_size(regclass) -> bigint", "Disk space used by a table"),
	fn(CategorySystem, "version", "version() -> text", "Server version string"),
}

// DuckDBFunctions are specific to DuckDB.
var DuckDBFunctions = []FunctionInfo{
	agg("list", "list(expr) -> list", "Collect values into a list"),
	agg("string_agg", "string_agg(expr, sep) -> varchar", "Concatenate strings with separator"),
	agg("any_value", "any_value(expr) -> same", "First non-null value"),
	agg("median", "median(expr) -> same", "Middle value"),
	agg("approx_count_distinct", "approx_count_distinct(expr) -> bigint", "Approximate distinct count"),
	agg("histogram", "histogram(expr) -> map", "Returns bucket counts as a map"),
	fn(CategoryDate, "strftime", "strftime(ts, format) -> varchar", "Format a timestamp"),
	fn(CategoryDate, "strptime", "strptime(text, format) -> timestamp", "Parse a timestamp"),
	fn(CategoryDate, "epoch", "epoch(ts) -> bigint", "Seconds since the epoch"),
	fn(CategoryList, "list_value", "list_value(any, ...) -> list", "Create a list"),
	fn(CategoryList, "unnest", "unnest(list) -> setof", "Expand a list to rows"),
	fn(CategoryString, "regexp_matches", "regexp_matches(str, pattern) -> boolean", "Whether the pattern matches"),
	fn(CategoryConversion, "try_cast", "try_cast(expr AS type) -> type", "Cast returning null on failure"),
	fn(CategorySystem, "read_csv", "read_csv(path, ...) -> table", "Read a CSV file"),
	fn(CategorySystem, "read_parquet", "read_parquet(path, ...) -> table", "Read a Parquet file"),
}

// SQLiteFunctions are specific to SQLite.
var SQLiteFunctions = []FunctionInfo{
	agg("group_concat", "group_concat(expr [, sep]) -> text", "Concatenate strings"),
	agg("total", "total(expr) -> real", "Sum as floating point, 0.0 for no rows"),
	fn(CategoryConditional, "ifnull", "ifnull(a, b) -> same", "b when a is null"),
	fn(CategoryConditional, "iif", "iif(cond, a, b) -> same", "a when cond is true, else b"),
	fn(CategoryString, "instr", "instr(str, sub) -> integer", "Position of substring"),
	fn(CategoryString, "printf", "printf(fmt, ...) -> text", "Format a string"),
	fn(CategoryDate, "datetime", "datetime(value, modifier...) -> text", "Date and time as text"),
	fn(CategoryDate, "julianday", "julianday(value, modifier...) -> real", "Julian day number"),
	fn(CategorySystem, "last_insert_rowid", "last_insert_rowid() -> integer", "Rowid of the last insert"),
	fn(CategoryJSON, "json_extract", "json_extract(json, path...) -> any", "Extract a JSON value"),
}

// SearchFunctions returns functions whose name starts with prefix (case-insensitive).
func (d *Dialect) SearchFunctions(prefix string) []FunctionInfo {
	prefix = strings.ToLower(prefix)
	var out []FunctionInfo
	for _, f := range d.functionList {
		if strings.HasPrefix(f.Name, prefix) {
			out = append(out, f)
		}
	}
	return out
}
