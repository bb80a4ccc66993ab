package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is the canonical primary key of a record within its entity type.
// Composite keys join their parts with ':'.
type Key string

// KeyOf builds a Key from one or more integer parts.
func KeyOf(parts ...uint64) Key {
	if len(parts) == 1 {
		return Key(strconv.FormatUint(parts[0], 10))
	}
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strconv.FormatUint(p, 10)
	}
	return Key(strings.Join(s, ":"))
}

// Entity is implemented by every replicated record type. Equality is
// structural over all columns including the region tag.
type Entity[T any] interface {
	PrimaryKey() Key
	Region() string
	Equal(other T) bool
}

// Table describes one replicated entity type: its materialized table name, its
// full column list, the primary key columns and the enumerated mutable columns
// that participate in conflict updates. Each entity type declares exactly one
// Table value; the generic pipeline worker and the store are parameterized
// over it.
type Table[T Entity[T]] struct {
	// Name is the materialized table name, e.g. "building_state".
	Name string

	// Columns lists every column, in the order Values and ScanDest use.
	Columns []ColumnDef

	// KeyColumns are the primary key column names, a subset of Columns.
	KeyColumns []string

	// Mutable are the columns an upsert overwrites on primary-key conflict.
	// Primary key and identity columns (region) are excluded.
	Mutable []string

	// Values returns the row's column values ordered as Columns.
	Values func(row T) []any

	// ScanDest returns scan targets into row, ordered as Columns.
	ScanDest func(row *T) []any

	// KeyValues returns the row's primary key values ordered as KeyColumns.
	KeyValues func(row T) []any
}

// DDL returns the CREATE TABLE and index statements for this table.
// Every table carries an indexed region column for snapshot reconciliation.
func (t Table[T]) DDL() []string {
	create := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s,
			PRIMARY KEY (%s)
		)`, t.Name, ColumnsToSchemaSQL(t.Columns), strings.Join(t.KeyColumns, ", "))
	index := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS idx_%s_region ON %s (region)`, t.Name, t.Name)
	return []string{create, index}
}

// UpsertSQL returns the single-row upsert statement: insert all columns, and
// on primary-key conflict overwrite only the enumerated mutable columns.
func (t Table[T]) UpsertSQL() string {
	names := ColumnNames(t.Columns)
	sets := make([]string, 0, len(t.Mutable))
	for _, m := range t.Mutable {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", m, m))
	}
	return fmt.Sprintf(`
		INSERT INTO %s (%s) VALUES (%s)
		ON CONFLICT (%s) DO UPDATE SET
			%s`,
		t.Name,
		strings.Join(names, ", "),
		Placeholders(len(names)),
		strings.Join(t.KeyColumns, ", "),
		strings.Join(sets, ",\n\t\t\t"))
}

// DeleteSQL returns the single-row delete statement keyed by the primary key.
func (t Table[T]) DeleteSQL() string {
	preds := make([]string, len(t.KeyColumns))
	for i, k := range t.KeyColumns {
		preds[i] = fmt.Sprintf("%s = $%d", k, i+1)
	}
	return fmt.Sprintf(`DELETE FROM %s WHERE %s`, t.Name, strings.Join(preds, " AND "))
}

// SelectByRegionSQL returns the statement loading every persisted row for one
// region, used by the snapshot reconciler.
func (t Table[T]) SelectByRegionSQL() string {
	return fmt.Sprintf(`SELECT %s FROM %s WHERE region = $1`,
		strings.Join(ColumnNames(t.Columns), ", "), t.Name)
}
