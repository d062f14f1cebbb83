// Package migration provides a way to define and execute database migrations.
// It is designed to be used with the datamigrator/internal/core package.
package migration

import (
	"strings"

	"datamigrator/internal/core"
)

// Migration struct contains all operations that need to be performed
// to create and fill a destination table.
type Migration struct {
	Operations []core.Operation
}

// Plan returns the list of operations that needs to be performed.
func (m *Migration) Plan() []core.Operation {
	return m.Operations
}

// SQLStatements returns the SQL statements in execution order.
func (m *Migration) SQLStatements() []string {
	return m.filter(func(op core.Operation) bool { return op.Kind == core.OperationSQL })
}

// DestructiveStatements returns the statements that discard existing data.
func (m *Migration) DestructiveStatements() []string {
	return m.filter(func(op core.Operation) bool {
		return op.Kind == core.OperationSQL && op.Risk == core.RiskDestructive
	})
}

// InfoNotes returns the notes recorded while synthesizing the schema.
func (m *Migration) InfoNotes() []string {
	return m.filter(func(op core.Operation) bool { return op.Kind == core.OperationNote })
}

// AddStatement appends a SQL statement with the given risk; an empty risk
// means core.RiskInfo. Blank statements are ignored.
func (m *Migration) AddStatement(stmt string, risk core.OperationRisk) {
	if stmt = strings.TrimSpace(stmt); stmt == "" {
		return
	}
	if risk == "" {
		risk = core.RiskInfo
	}
	m.Operations = append(m.Operations, core.Operation{Kind: core.OperationSQL, SQL: stmt, Risk: risk})
}

// AddNote appends an informational note. Blank notes are ignored.
func (m *Migration) AddNote(msg string) {
	if msg = strings.TrimSpace(msg); msg == "" {
		return
	}
	m.Operations = append(m.Operations, core.Operation{Kind: core.OperationNote, SQL: msg, Risk: core.RiskInfo})
}

// Dedupe drops repeated notes, keeping the first occurrence. Statements are
// never deduplicated.
func (m *Migration) Dedupe() {
	if len(m.Operations) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(m.Operations))
	out := make([]core.Operation, 0, len(m.Operations))
	for _, op := range m.Operations {
		if op.Kind == core.OperationNote {
			if _, ok := seen[op.SQL]; ok {
				continue
			}
			seen[op.SQL] = struct{}{}
		}
		out = append(out, op)
	}
	m.Operations = out
}

func (m *Migration) filter(keep func(core.Operation) bool) []string {
	out := make([]string, 0, len(m.Operations))
	for _, op := range m.Operations {
		if !keep(op) {
			continue
		}
		if s := strings.TrimSpace(op.SQL); s != "" {
			out = append(out, s)
		}
	}
	return out
}
