package output

import (
	"fmt"
	"strings"
)

type textFormatter struct{}

// FormatTable formats a table report as plain text.
// Example output:
//
//	--- MIGRATION REPORT: people ---
//	Status:    partial success with errors
//	Processed: 3, Valid: 1, Inserted: 1, Errors: 2
func (textFormatter) FormatTable(r *TableReport) (string, error) {
	if r == nil {
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- MIGRATION REPORT: %s ---\n", r.Table)
	fmt.Fprintf(&sb, "Status:    %s\n", r.Status())
	if r.Source != "" {
		fmt.Fprintf(&sb, "Source:    %s\n", r.Source)
	}
	fmt.Fprintf(&sb, "Duration:  %s\n", seconds(r.Duration))
	fmt.Fprintf(&sb, "Processed: %d, Valid: %d, Inserted: %d, Errors: %d\n",
		r.Processed, r.Valid, r.Inserted, r.ErrorCount())

	sb.WriteString("\n--- DDL ---\n")
	for _, stmt := range normalizeStatements(splitDDL(r.DDL)) {
		sb.WriteString(stmt)
		sb.WriteString("\n")
	}

	if len(r.Notes) > 0 {
		sb.WriteString("\n--- NOTES ---\n")
		for _, n := range r.Notes {
			fmt.Fprintf(&sb, "  - %s\n", n)
		}
	}

	if len(r.Errors) > 0 {
		sb.WriteString("\n--- INVALID RECORDS ---\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&sb, "  Row:    %d\n", e.RowIndex)
			fmt.Fprintf(&sb, "  Errors: %s\n", strings.Join(e.Reasons, ", "))
			fmt.Fprintf(&sb, "  Data:   %s\n\n", e.Record.String())
		}
	}
	return sb.String(), nil
}

// FormatPlan formats a plan report as plain text.
func (textFormatter) FormatPlan(p *PlanReport) (string, error) {
	if p == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("--- CONSOLIDATED MIGRATION REPORT ---\n")
	fmt.Fprintf(&sb, "Status:      %s\n", p.Status())
	fmt.Fprintf(&sb, "Duration:    %s\n", seconds(p.Duration))
	fmt.Fprintf(&sb, "Destination: %s\n\n", destination(p.Database))

	fmt.Fprintf(&sb, "Tables planned:    %d\n", p.Planned)
	fmt.Fprintf(&sb, "Tables succeeded:  %d\n", p.Succeeded())
	fmt.Fprintf(&sb, "Tables failed:     %d\n", p.Failed())

	sb.WriteString("\n--- TABLES ---\n")
	for _, t := range p.Tables {
		fmt.Fprintf(&sb, "  - Table: %s (%s)\n", t.Table, t.Label())
		fmt.Fprintf(&sb, "    Source: %s\n", t.Source)
		fmt.Fprintf(&sb, "    Processed: %d, Inserted: %d, Errors: %d\n", t.Processed, t.Inserted, t.Errors)
		if t.Fatal != "" {
			fmt.Fprintf(&sb, "    Fatal: %s\n", t.Fatal)
		}
	}

	if p.Status() == PlanGlobalFailure {
		sb.WriteString("\nThe run stopped at the first fatal failure; later tables were not processed.\n")
	}
	return sb.String(), nil
}
