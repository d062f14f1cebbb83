package core

import (
	"fmt"
	"strings"
)

// SchemaError represents a structural problem in a synthesized table.
type SchemaError struct {
	Entity  string
	Name    string
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema error in %s %q field %q: %s", e.Entity, e.Name, e.Field, e.Message)
	}
	return fmt.Sprintf("schema error in %s %q: %s", e.Entity, e.Name, e.Message)
}

// Validate checks if the Table definition is valid and returns an error if not.
// A valid table has a name, at least one column, unique column names and
// exactly one primary key.
func (t *Table) Validate() error {
	if t == nil {
		return &SchemaError{Entity: "table", Message: "table is nil"}
	}
	if strings.TrimSpace(t.Name) == "" {
		return &SchemaError{Entity: "table", Name: "(empty)", Message: "table name is empty"}
	}
	if len(t.Columns) == 0 {
		return &SchemaError{Entity: "table", Name: t.Name, Message: "table has no columns"}
	}

	seen := make(map[string]bool, len(t.Columns))
	primaryKeys := 0
	for i, c := range t.Columns {
		if c == nil {
			return &SchemaError{Entity: "table", Name: t.Name, Message: fmt.Sprintf("column at index %d is nil", i)}
		}
		if err := c.validate(); err != nil {
			return err
		}
		lower := strings.ToLower(c.Name)
		if seen[lower] {
			return &SchemaError{Entity: "table", Name: t.Name, Message: fmt.Sprintf("duplicate column name %q", c.Name)}
		}
		seen[lower] = true
		if c.PrimaryKey {
			primaryKeys++
		}
	}

	if primaryKeys != 1 {
		return &SchemaError{
			Entity:  "table",
			Name:    t.Name,
			Field:   "PrimaryKey",
			Message: fmt.Sprintf("expected exactly one primary key, found %d", primaryKeys),
		}
	}
	return nil
}

func (c *Column) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &SchemaError{Entity: "column", Name: "(empty)", Message: "column name is empty"}
	}
	if c.AutoIncrement && !c.Type.IsInteger() {
		return &SchemaError{Entity: "column", Name: c.Name, Field: "AutoIncrement", Message: "auto_increment requires an integer column"}
	}
	return nil
}
