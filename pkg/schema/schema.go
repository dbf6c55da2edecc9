// Package schema extracts table metadata from `po:"..."` struct tags.
package schema

import "reflect"

// TableMetadata describes a table derived from a Go struct.
type TableMetadata struct {
	Name       string
	GoType     reflect.Type
	Columns    []ColumnMetadata
	PrimaryKey *PrimaryKeyMetadata
	Indexes    []IndexMetadata
}

// ColumnMetadata describes a single column.
type ColumnMetadata struct {
	Name     string
	GoField  string
	GoType   reflect.Type
	SQLType  string
	Nullable bool
	Default  *string
	Unique   bool
	Position int
}

// PrimaryKeyMetadata describes the primary key of a table.
type PrimaryKeyMetadata struct {
	Name    string
	Columns []string
}

// IndexMetadata describes a secondary index.
type IndexMetadata struct {
	Name    string
	Columns []string
	Unique  bool
	// Type is the access method, e.g. "btree" or "gin".
	Type string
}

// GetColumnByName returns the column with the given name, or nil.
func (t *TableMetadata) GetColumnByName(name string) *ColumnMetadata {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// IsPrimaryKey reports whether the column is part of the primary key.
func (t *TableMetadata) IsPrimaryKey(column string) bool {
	if t.PrimaryKey == nil {
		return false
	}
	for _, c := range t.PrimaryKey.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// ColumnNames returns column names in declaration order.
func (t *TableMetadata) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
