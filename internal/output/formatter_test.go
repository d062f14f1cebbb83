package output

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datamigrator/internal/core"
)

func sampleReport() *TableReport {
	rec := core.NewFlatRecord(2)
	rec.Set("id", core.String("2"))
	rec.Set("age", core.String("-5"))

	return &TableReport{
		RunID:     "run-1",
		Table:     "people",
		Source:    "people.csv",
		Duration:  1500 * time.Millisecond,
		Processed: 3,
		Valid:     2,
		Inserted:  2,
		DDL:       "DROP TABLE IF EXISTS `people`;\n\nCREATE TABLE `people` (\n  `id` INT NOT NULL\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;",
		Notes:     []string{"primary key id (INT) with AUTO_INCREMENT"},
		Errors: []core.ValidationError{{
			RowIndex: 2,
			Record:   rec,
			Reasons:  []string{"value out of range: negative number (-5) in column 'age'"},
		}},
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name string
		want Formatter
	}{
		{"", markdownFormatter{}},
		{"markdown", markdownFormatter{}},
		{"  MD ", markdownFormatter{}},
		{"text", textFormatter{}},
		{"TXT", textFormatter{}},
		{"json", jsonFormatter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.name)
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}

	f, err := NewFormatter("invalid")
	assert.Nil(t, f)
	assert.ErrorContains(t, err, "unsupported format: invalid")
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, "md", FormatMarkdown.Extension())
	assert.Equal(t, "txt", FormatText.Extension())
	assert.Equal(t, "json", FormatJSON.Extension())
	assert.Equal(t, "md", Format("").Extension())
}

func TestTableReportStatus(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "partial success with errors", r.Status())
	r.Errors = nil
	assert.Equal(t, "success", r.Status())
}

func TestMarkdownTable(t *testing.T) {
	out, err := markdownFormatter{}.FormatTable(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, out, "# Migration Report - PEOPLE")
	assert.Contains(t, out, "**Status:** partial success with errors")
	assert.Contains(t, out, "**Duration:** 1.50 seconds")
	assert.Contains(t, out, "| Records processed | 3 |")
	assert.Contains(t, out, "| Records inserted | 2 |")
	assert.Contains(t, out, "```sql\nDROP TABLE IF EXISTS `people`;")
	assert.Contains(t, out, "## Validation Errors (1 records)")
	assert.Contains(t, out, "### Row 2")
	assert.Contains(t, out, "**Problems:** value out of range: negative number (-5) in column 'age'")
	assert.Contains(t, out, "**Data:** `{\"id\":\"2\",\"age\":\"-5\"}`")
}

func TestMarkdownTableWithoutErrors(t *testing.T) {
	r := sampleReport()
	r.Errors = nil
	out, err := markdownFormatter{}.FormatTable(r)
	require.NoError(t, err)
	assert.Contains(t, out, "No validation errors were found.")
}

func TestTextTable(t *testing.T) {
	out, err := textFormatter{}.FormatTable(sampleReport())
	require.NoError(t, err)
	assert.Contains(t, out, "--- MIGRATION REPORT: people ---")
	assert.Contains(t, out, "Processed: 3, Valid: 2, Inserted: 2, Errors: 1")
	assert.Contains(t, out, "DROP TABLE IF EXISTS `people`;\nCREATE TABLE")
	assert.Contains(t, out, "  Row:    2\n")
}

func TestJSONTable(t *testing.T) {
	out, err := jsonFormatter{}.FormatTable(sampleReport())
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "json", payload["format"])
	assert.Equal(t, "partial success with errors", payload["status"])
	assert.InDelta(t, 1.5, payload["durationSeconds"], 0.001)
	assert.Len(t, payload["sql"], 2)

	summary := payload["summary"].(map[string]any)
	assert.EqualValues(t, 3, summary["processed"])
	assert.EqualValues(t, 1, summary["errors"])

	errs := payload["errors"].([]any)
	first := errs[0].(map[string]any)
	assert.EqualValues(t, 2, first["rowIndex"])
	assert.Equal(t, map[string]any{"id": "2", "age": "-5"}, first["record"])
}

func TestNilReports(t *testing.T) {
	for _, f := range []Formatter{markdownFormatter{}, textFormatter{}} {
		out, err := f.FormatTable(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
		out, err = f.FormatPlan(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	}

	out, err := jsonFormatter{}.FormatPlan(nil)
	require.NoError(t, err)
	assert.Contains(t, out, `"tables": []`)
}

func TestPlanStatus(t *testing.T) {
	ok := TableOutcome{Table: "a", Status: TableSuccess}
	partial := TableOutcome{Table: "b", Status: TablePartial, Errors: 3}
	fatal := FatalOutcome("c", "c.csv", errors.New("boom"))

	tests := []struct {
		name   string
		tables []TableOutcome
		want   PlanStatus
	}{
		{"all success", []TableOutcome{ok, ok}, PlanTotalSuccess},
		{"empty", nil, PlanTotalSuccess},
		{"some errors", []TableOutcome{ok, partial}, PlanPartialSuccess},
		{"fatal", []TableOutcome{ok, partial, fatal}, PlanGlobalFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PlanReport{Tables: tt.tables}
			assert.Equal(t, tt.want, p.Status())
		})
	}

	assert.Equal(t, "PARTIAL (3 validation errors)", partial.Label())
	assert.Equal(t, "FATAL FAILURE", fatal.Label())
	assert.Equal(t, "boom", fatal.Fatal)
}

func TestOutcomeFromReport(t *testing.T) {
	o := OutcomeFromReport(sampleReport())
	assert.Equal(t, TablePartial, o.Status)
	assert.Equal(t, 1, o.Errors)
	assert.Equal(t, int64(2), o.Inserted)
	assert.Equal(t, "people.csv", o.Source)
}

func TestPlanFormats(t *testing.T) {
	p := &PlanReport{
		Database: "shop",
		Duration: 2 * time.Second,
		Planned:  3,
		Tables: []TableOutcome{
			OutcomeFromReport(sampleReport()),
			FatalOutcome("orders", "orders.json", errors.New("parse orders.json: file contains no records")),
		},
	}

	md, err := markdownFormatter{}.FormatPlan(p)
	require.NoError(t, err)
	assert.Contains(t, md, "**Status:** GLOBAL FAILURE")
	assert.Contains(t, md, "**Destination:** MySQL (shop)")
	assert.Contains(t, md, "| Planned | 3 |")
	assert.Contains(t, md, "| `people` | people.csv | PARTIAL (1 validation errors) | 3 | 2 | 1 |")
	assert.Contains(t, md, "Fatal error in `orders`")

	txt, err := textFormatter{}.FormatPlan(p)
	require.NoError(t, err)
	assert.Contains(t, txt, "Tables succeeded:  1")
	assert.Contains(t, txt, "Tables failed:     1")
	assert.Contains(t, txt, "  - Table: orders (FATAL FAILURE)")
	assert.Contains(t, txt, "later tables were not processed")

	js, err := jsonFormatter{}.FormatPlan(p)
	require.NoError(t, err)
	var payload planPayload
	require.NoError(t, json.Unmarshal([]byte(js), &payload))
	assert.Equal(t, PlanGlobalFailure, payload.Status)
	assert.Equal(t, 1, payload.Failed)
	require.Len(t, payload.Tables, 2)
}

func TestExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := NewExporter(dir, FormatMarkdown)
	e.Now = func() time.Time { return time.UnixMilli(1700000000123) }

	files, err := e.ExportTable(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "people_1700000000123_schema.sql", files.DDL)
	assert.Equal(t, "people_1700000000123_report.md", files.Report)
	assert.True(t, IsExportName(files.DDL))
	assert.True(t, IsExportName(files.Report))

	ddl, err := os.ReadFile(e.Path(files.DDL))
	require.NoError(t, err)
	assert.Contains(t, string(ddl), "CREATE TABLE `people`")

	report, err := os.ReadFile(e.Path(files.Report))
	require.NoError(t, err)
	assert.Contains(t, string(report), "# Migration Report - PEOPLE")

	e.Format = FormatJSON
	name, err := e.ExportPlan(&PlanReport{Planned: 1})
	require.NoError(t, err)
	assert.Equal(t, "consolidated_1700000000123_report.json", name)
	assert.True(t, IsExportName(name))
}

func TestIsExportName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"people_1700000000_schema.sql", true},
		{"people_1700000000_report.md", true},
		{"people_1700000000_report.txt", true},
		{"people_1700000000_report.json", true},
		{"People_1700000000_report.md", false},
		{"../etc_1_schema.sql", false},
		{"people_schema.sql", false},
		{"people_1700000000_report.html", false},
		{"people_17x_schema.sql", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExportName(tt.name))
		})
	}
}
