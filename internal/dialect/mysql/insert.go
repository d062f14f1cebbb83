package mysql

import (
	"fmt"
	"strings"

	"datamigrator/internal/core"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 500

// MaxPlaceholders is the most parameters MySQL accepts in one prepared
// statement.
const MaxPlaceholders = 65535

// RowsPerBatch returns how many rows of t fit in one INSERT: batchSize
// (DefaultBatchSize when not positive), lowered so the statement binds at
// most MaxPlaceholders parameters. It is always at least 1.
func RowsPerBatch(t *core.Table, batchSize int) int {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if cols := len(t.Columns); cols > 0 {
		batchSize = min(batchSize, max(1, MaxPlaceholders/cols))
	}
	return batchSize
}

// GenerateInsert renders records as multi-row INSERT statements with literal
// values, following the table's column order. Missing fields become NULL.
func (g *Generator) GenerateInsert(t *core.Table, records []core.FlatRecord, batchSize int) []string {
	if len(records) == 0 || len(t.Columns) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	cols := t.ColumnNames()
	prefix := fmt.Sprintf("INSERT INTO %s %s VALUES", g.QuoteIdentifier(t.Name), g.formatColumns(cols))

	var stmts []string
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))

		rows := make([]string, 0, end-start)
		for _, rec := range records[start:end] {
			vals := make([]string, len(cols))
			for i, c := range cols {
				v, ok := rec.Get(c)
				if !ok {
					v = core.Null()
				}
				vals[i] = g.formatValue(v)
			}
			rows = append(rows, "  ("+strings.Join(vals, ", ")+")")
		}
		stmts = append(stmts, prefix+"\n"+strings.Join(rows, ",\n")+";")
	}
	return stmts
}

// InsertTemplate returns a multi-row INSERT with "?" placeholders for rows
// rows of t.
func (g *Generator) InsertTemplate(t *core.Table, rows int) string {
	cols := t.ColumnNames()
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s %s VALUES ", g.QuoteIdentifier(t.Name), g.formatColumns(cols))
	for i := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(row)
	}
	return b.String()
}

// InsertArgs flattens records into placeholder arguments matching
// InsertTemplate, converted with StoreValue.
func InsertArgs(t *core.Table, records []core.FlatRecord) []any {
	cols := t.ColumnNames()
	args := make([]any, 0, len(cols)*len(records))
	for _, rec := range records {
		for _, c := range cols {
			v, ok := rec.Get(c)
			if !ok {
				args = append(args, nil)
				continue
			}
			args = append(args, StoreValue(v))
		}
	}
	return args
}
