package output

import (
	"encoding/json"

	"datamigrator/internal/core"
)

type jsonFormatter struct{}

type tableSummary struct {
	Processed int   `json:"processed"`
	Valid     int   `json:"valid"`
	Inserted  int64 `json:"inserted"`
	Errors    int   `json:"errors"`
}

type tablePayload struct {
	Format   string                 `json:"format"`
	RunID    string                 `json:"runId,omitempty"`
	Table    string                 `json:"table"`
	Source   string                 `json:"source,omitempty"`
	Status   string                 `json:"status"`
	Duration float64                `json:"durationSeconds"`
	Summary  tableSummary           `json:"summary"`
	SQL      []string               `json:"sql,omitempty"`
	Notes    []string               `json:"notes,omitempty"`
	Errors   []core.ValidationError `json:"errors,omitempty"`
}

type planPayload struct {
	Format    string         `json:"format"`
	RunID     string         `json:"runId,omitempty"`
	Status    PlanStatus     `json:"status"`
	Duration  float64        `json:"durationSeconds"`
	Database  string         `json:"database,omitempty"`
	Planned   int            `json:"planned"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Tables    []TableOutcome `json:"tables"`
}

type Payload interface {
	tablePayload | planPayload
}

func (jsonFormatter) FormatTable(r *TableReport) (string, error) {
	payload := tablePayload{Format: string(FormatJSON)}
	if r != nil {
		payload.RunID = r.RunID
		payload.Table = r.Table
		payload.Source = r.Source
		payload.Status = r.Status()
		payload.Duration = r.Duration.Seconds()
		payload.SQL = normalizeStatements(splitDDL(r.DDL))
		payload.Notes = r.Notes
		payload.Errors = r.Errors
		payload.Summary = tableSummary{
			Processed: r.Processed,
			Valid:     r.Valid,
			Inserted:  r.Inserted,
			Errors:    r.ErrorCount(),
		}
	}
	return marshalJSON(payload)
}

func (jsonFormatter) FormatPlan(p *PlanReport) (string, error) {
	payload := planPayload{Format: string(FormatJSON), Tables: []TableOutcome{}}
	if p != nil {
		payload.RunID = p.RunID
		payload.Status = p.Status()
		payload.Duration = p.Duration.Seconds()
		payload.Database = p.Database
		payload.Planned = p.Planned
		payload.Succeeded = p.Succeeded()
		payload.Failed = p.Failed()
		if p.Tables != nil {
			payload.Tables = p.Tables
		}
	}
	return marshalJSON(payload)
}

func marshalJSON[T Payload](payload T) (string, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
