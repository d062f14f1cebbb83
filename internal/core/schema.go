// Package core contains the data model shared by every stage of a migration:
// parsed records, flattened records, column profiles, and the synthesized
// table schema that is rendered to DDL.
package core

import (
	"fmt"
	"strings"
)

// Default table options for synthesized tables.
const (
	DefaultEngine  = "InnoDB"
	DefaultCharset = "utf8mb4"
)

// Table represents a synthesized destination table.
type Table struct {
	Name    string       `json:"name"`
	Columns []*Column    `json:"columns"`
	Options TableOptions `json:"options"`
}

// TableOptions represents the options for a table in the schema.
type TableOptions struct {
	Engine  string `json:"engine,omitempty"`
	Charset string `json:"charset,omitempty"`
}

// Column represents a column in the schema.
type Column struct {
	Name          string     `json:"name"`
	Type          ColumnType `json:"type"`
	MaxLength     int        `json:"maxLength,omitempty"`
	Nullable      bool       `json:"nullable"`
	PrimaryKey    bool       `json:"primaryKey,omitempty"`
	AutoIncrement bool       `json:"autoIncrement,omitempty"`
	Unique        bool       `json:"unique,omitempty"`
}

// Index is a secondary key derived from a column flag at render time.
type Index struct {
	Name    string
	Columns []IndexColumn
	Unique  bool
}

// IndexColumn is a key part; Length is a prefix length for text columns.
type IndexColumn struct {
	Name   string
	Length int
}

// FindColumn returns the column with the given name, or nil.
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if c != nil && strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the primary key column, or nil when none is set.
func (t *Table) PrimaryKey() *Column {
	for _, c := range t.Columns {
		if c != nil && c.PrimaryKey {
			return c
		}
	}
	return nil
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c != nil {
			names = append(names, c.Name)
		}
	}
	return names
}

// UniqueIndexes returns one unique index per column flagged Unique.
// TEXT columns get a prefix length, as MySQL cannot index them whole.
func (t *Table) UniqueIndexes() []*Index {
	var out []*Index
	for _, c := range t.Columns {
		if c == nil || !c.Unique || c.PrimaryKey {
			continue
		}
		col := IndexColumn{Name: c.Name}
		if c.Type == TypeText {
			col.Length = VarcharLength
		}
		out = append(out, &Index{
			Name:    "uq_" + c.Name,
			Columns: []IndexColumn{col},
			Unique:  true,
		})
	}
	return out
}

func (t *Table) String() string {
	return fmt.Sprintf("Table: %s (%d columns)", t.Name, len(t.Columns))
}
