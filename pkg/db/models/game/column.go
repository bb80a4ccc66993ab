package game

import (
	"fmt"
	"strings"
)

// ColumnDef defines a single column for a replicated table.
// The per-entity column lists are the single source of truth used for
// CREATE TABLE, upsert, delete and region-load SQL generation.
type ColumnDef struct {
	// Name is the column name in the materialized table
	Name string

	// Type is the PostgreSQL data type (e.g., "BIGINT", "TEXT", "JSONB")
	Type string
}

// SQL returns the column definition for CREATE TABLE statements.
// Example: "entity_id BIGINT NOT NULL"
func (c ColumnDef) SQL() string {
	return fmt.Sprintf("%s %s NOT NULL", c.Name, c.Type)
}

// ColumnsToSchemaSQL converts a list of ColumnDef to a CREATE TABLE schema string.
func ColumnsToSchemaSQL(columns []ColumnDef) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, col.SQL())
	}
	return strings.Join(parts, ",\n\t\t\t")
}

// ColumnNames extracts just the column names from a list of ColumnDef.
func ColumnNames(columns []ColumnDef) []string {
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		names = append(names, col.Name)
	}
	return names
}

// Placeholders returns "$1, $2, ..., $n".
func Placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}
