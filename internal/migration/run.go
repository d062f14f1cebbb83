package migration

import (
	"errors"
	"fmt"
	"strings"

	"datamigrator/internal/core"
	"datamigrator/internal/dialect"
	"datamigrator/internal/infer"
	"datamigrator/internal/schema"
	"datamigrator/internal/validate"
)

var (
	// ErrNoRecords is returned when there is nothing to migrate.
	ErrNoRecords = errors.New("no records to migrate")
	// ErrNoColumns is returned when no record has any field.
	ErrNoColumns = errors.New("records have no columns")
)

// Options configures a single-table migration.
type Options struct {
	// Dialect selects the DDL generator; empty means MySQL.
	Dialect dialect.Type
	// PrimaryKey names the key candidate; empty means the first column.
	PrimaryKey string
	// UniqueColumns lists columns checked for duplicates and given unique
	// keys. Nil means the primary key candidate alone.
	UniqueColumns []string
	// NegativeExempt overrides the columns allowed to be negative.
	NegativeExempt []string
}

// Result is the outcome of Run: the synthesized table, its DDL, and the
// records split into accepted rows and an error log.
type Result struct {
	Migration

	Table        *core.Table
	Profiles     []core.ColumnProfile
	DDL          string
	ValidRecords []core.FlatRecord
	ErrorLog     []core.ValidationError
}

// Processed returns the number of input records.
func (r *Result) Processed() int {
	return len(r.ValidRecords) + len(r.ErrorLog)
}

// Run infers column types, validates every record and synthesizes the DDL
// for tableName. Records are not modified.
func Run(tableName string, records []core.FlatRecord, opts Options) (*Result, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	profiles := infer.Infer(records)
	if len(profiles) == 0 {
		return nil, ErrNoColumns
	}

	pk := schema.PrimaryKeyCandidate(profiles, opts.PrimaryKey)
	unique := opts.UniqueColumns
	if unique == nil {
		unique = []string{pk}
	}

	valid, errLog := validate.Validate(records, validate.Options{
		UniqueColumns:  unique,
		NegativeExempt: opts.NegativeExempt,
	})

	table := schema.Synthesize(tableName, profiles, records, schema.Options{
		PrimaryKey:    pk,
		UniqueColumns: unique,
	})
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("synthesized schema for %q: %w", tableName, err)
	}

	d := dialect.GetDialect(opts.Dialect)
	if d == nil {
		return nil, fmt.Errorf("unsupported dialect: %s", opts.Dialect)
	}
	gen := d.Generator()

	res := &Result{
		Table:        table,
		Profiles:     profiles,
		ValidRecords: valid,
		ErrorLog:     errLog,
	}
	res.AddStatement(gen.GenerateDropTable(table), core.RiskDestructive)
	res.AddStatement(gen.GenerateCreateTable(table), core.RiskInfo)
	addSchemaNotes(&res.Migration, table)
	res.Dedupe()

	res.DDL = strings.Join(res.SQLStatements(), "\n\n")
	return res, nil
}

func addSchemaNotes(m *Migration, t *core.Table) {
	if pk := t.PrimaryKey(); pk != nil {
		note := fmt.Sprintf("primary key %s (%s)", pk.Name, pk.Type.SQL())
		if pk.AutoIncrement {
			note += " with AUTO_INCREMENT"
		}
		m.AddNote(note)
	}
	for _, c := range t.Columns {
		switch {
		case c.Type == core.TypeText:
			m.AddNote(fmt.Sprintf("column %s stored as TEXT (longest value %d characters)", c.Name, c.MaxLength))
		case c.Type == core.TypeVarchar && c.MaxLength == 0:
			m.AddNote(fmt.Sprintf("column %s never held a value; defaulting to %s", c.Name, c.Type.SQL()))
		}
		if c.Unique {
			m.AddNote(fmt.Sprintf("unique key on %s", c.Name))
		}
	}
}
