// Package dialect provides a unified interface for rendering a synthesized
// table and its records for a destination store. Implementations register
// themselves with RegisterDialect from an init function.
package dialect

import (
	"datamigrator/internal/core"
)

type Type string

const (
	MySQL Type = "mysql"
)

// Generator renders DDL and data statements for one SQL dialect.
type Generator interface {
	// GenerateDDL returns the ordered statements that (re)create the table.
	GenerateDDL(table *core.Table) []string
	GenerateCreateTable(table *core.Table) string
	GenerateDropTable(table *core.Table) string
	// GenerateInsert renders records as multi-row INSERT statements with
	// literal values, at most batchSize rows per statement.
	GenerateInsert(table *core.Table, records []core.FlatRecord, batchSize int) []string
	QuoteIdentifier(name string) string
	QuoteString(value string) string
}

// Dialect interface creates a way to interact with a specific SQL dialect.
type Dialect interface {
	Name() Type
	Generator() Generator
}

var registry = map[Type]func() Dialect{}

// RegisterDialect creates a new registry entry for the specified dialect.
func RegisterDialect(d Type, ctor func() Dialect) {
	registry[d] = ctor
}

// GetDialect returns the dialect for the specified type from the registry.
// An empty type selects MySQL. Unknown types return nil.
func GetDialect(d Type) Dialect {
	if d == "" {
		d = MySQL
	}
	if ctor, ok := registry[d]; ok {
		return ctor()
	}
	return nil
}

// Registered reports the dialects available in this binary.
func Registered() []Type {
	out := make([]Type, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	return out
}
