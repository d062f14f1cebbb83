package output

import (
	"fmt"
	"strings"
	"time"

	"datamigrator/internal/core"
	"datamigrator/internal/migration"
)

// TableReport describes the migration of one source file into one table.
type TableReport struct {
	RunID     string                 `json:"runId,omitempty"`
	Table     string                 `json:"table"`
	Source    string                 `json:"source,omitempty"`
	Database  string                 `json:"database,omitempty"`
	Duration  time.Duration          `json:"-"`
	Processed int                    `json:"processed"`
	Valid     int                    `json:"valid"`
	Inserted  int64                  `json:"inserted"`
	Loaded    bool                   `json:"loaded"`
	DDL       string                 `json:"ddl"`
	Notes     []string               `json:"notes,omitempty"`
	Errors    []core.ValidationError `json:"errors,omitempty"`
}

// NewTableReport fills a report from a migration result. Inserted and
// Loaded stay zero until the records are written to a database.
func NewTableReport(res *migration.Result) *TableReport {
	if res == nil {
		return &TableReport{}
	}
	r := &TableReport{
		Processed: res.Processed(),
		Valid:     len(res.ValidRecords),
		DDL:       res.DDL,
		Notes:     res.InfoNotes(),
		Errors:    res.ErrorLog,
	}
	if res.Table != nil {
		r.Table = res.Table.Name
	}
	return r
}

// ErrorCount returns the number of rejected records.
func (r *TableReport) ErrorCount() int {
	return len(r.Errors)
}

// Status returns "success" when every record was accepted and
// "partial success with errors" otherwise.
func (r *TableReport) Status() string {
	if len(r.Errors) > 0 {
		return "partial success with errors"
	}
	return "success"
}

// TableStatus is the outcome of one table within a plan.
type TableStatus string

const (
	TableSuccess TableStatus = "SUCCESS"
	TablePartial TableStatus = "PARTIAL"
	TableFatal   TableStatus = "FATAL FAILURE"
)

// PlanStatus is the overall outcome of a plan.
type PlanStatus string

const (
	PlanTotalSuccess   PlanStatus = "TOTAL SUCCESS"
	PlanPartialSuccess PlanStatus = "PARTIAL SUCCESS"
	PlanGlobalFailure  PlanStatus = "GLOBAL FAILURE"
)

// TableOutcome is one table's line in a plan report.
type TableOutcome struct {
	Table     string      `json:"table"`
	Source    string      `json:"source"`
	Status    TableStatus `json:"status"`
	Processed int         `json:"processed"`
	Inserted  int64       `json:"inserted"`
	Errors    int         `json:"errors"`
	Fatal     string      `json:"fatal,omitempty"`
}

// Label renders the status with its error count, e.g. "PARTIAL (3 errors)".
func (o TableOutcome) Label() string {
	if o.Status == TablePartial {
		return fmt.Sprintf("%s (%d validation errors)", o.Status, o.Errors)
	}
	return string(o.Status)
}

// OutcomeFromReport summarizes a finished table report.
func OutcomeFromReport(r *TableReport) TableOutcome {
	o := TableOutcome{
		Table:     r.Table,
		Source:    r.Source,
		Status:    TableSuccess,
		Processed: r.Processed,
		Inserted:  r.Inserted,
		Errors:    r.ErrorCount(),
	}
	if o.Errors > 0 {
		o.Status = TablePartial
	}
	return o
}

// FatalOutcome records a table that aborted the plan.
func FatalOutcome(table, source string, err error) TableOutcome {
	o := TableOutcome{Table: table, Source: source, Status: TableFatal}
	if err != nil {
		o.Fatal = err.Error()
	}
	return o
}

// PlanReport consolidates the outcomes of a multi-table plan. Planned is
// the number of targets in the plan; it exceeds len(Tables) when a fatal
// error stopped the run early.
type PlanReport struct {
	RunID    string         `json:"runId,omitempty"`
	Database string         `json:"database,omitempty"`
	Duration time.Duration  `json:"-"`
	Planned  int            `json:"planned"`
	Tables   []TableOutcome `json:"tables"`
}

// Status returns GLOBAL FAILURE if any table failed fatally, PARTIAL
// SUCCESS if any table rejected records, and TOTAL SUCCESS otherwise.
func (p *PlanReport) Status() PlanStatus {
	partial := false
	for _, t := range p.Tables {
		switch t.Status {
		case TableFatal:
			return PlanGlobalFailure
		case TablePartial:
			partial = true
		}
	}
	if partial {
		return PlanPartialSuccess
	}
	return PlanTotalSuccess
}

// Succeeded counts tables that finished, with or without rejected records.
func (p *PlanReport) Succeeded() int {
	n := 0
	for _, t := range p.Tables {
		if t.Status != TableFatal {
			n++
		}
	}
	return n
}

// Failed counts tables that failed fatally.
func (p *PlanReport) Failed() int {
	return len(p.Tables) - p.Succeeded()
}

func destination(database string) string {
	if strings.TrimSpace(database) == "" {
		return "none (schema only)"
	}
	return "MySQL (" + database + ")"
}
