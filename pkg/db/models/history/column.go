package history

import (
	"fmt"
	"strings"
)

// ColumnDef defines a single column for a history table.
// This is the single source of truth for column definitions, used by:
// - CREATE TABLE statements (pkg/db/history)
// - INSERT column order
// - sort_by resolution for the query API
type ColumnDef struct {
	// Name is the column name in the table
	Name string

	// Type is the ClickHouse data type (e.g., "Int64", "Float64", "LowCardinality(String)")
	Type string

	// Codec is the optional compression codec (e.g., "Delta, ZSTD(1)")
	Codec string

	// JSON is the field name used in API responses and upstream payloads.
	JSON string
}

// SQL returns the full column definition for CREATE TABLE statements.
// Example: "asset_depth Int64 CODEC(ZSTD(1))"
func (c ColumnDef) SQL() string {
	if c.Codec != "" {
		return fmt.Sprintf("%s %s CODEC(%s)", c.Name, c.Type, c.Codec)
	}
	return fmt.Sprintf("%s %s", c.Name, c.Type)
}

// ColumnsToSchemaSQL converts a list of ColumnDef to a CREATE TABLE schema string.
func ColumnsToSchemaSQL(columns []ColumnDef) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, col.SQL())
	}
	return strings.Join(parts, ",\n\t\t\t")
}

// ColumnsToNameList extracts just the column names from a list of ColumnDef.
// Useful for INSERT statements.
func ColumnsToNameList(columns []ColumnDef) []string {
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		names = append(names, col.Name)
	}
	return names
}

// ResolveColumn finds a column by its table name or its JSON name.
func ResolveColumn(columns []ColumnDef, name string) (ColumnDef, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ColumnDef{}, false
	}
	for _, col := range columns {
		if col.Name == name || col.JSON == name {
			return col, true
		}
	}
	return ColumnDef{}, false
}

// timeColumns are shared by every bucket kind.
var timeColumns = []ColumnDef{
	{Name: "start_time", Type: "Int64", Codec: "Delta, ZSTD(1)", JSON: "startTime"},
	{Name: "end_time", Type: "Int64", Codec: "Delta, ZSTD(1)", JSON: "endTime"},
}

func withTime(prefix []ColumnDef, rest ...ColumnDef) []ColumnDef {
	out := make([]ColumnDef, 0, len(prefix)+len(timeColumns)+len(rest))
	out = append(out, prefix...)
	out = append(out, timeColumns...)
	return append(out, rest...)
}
