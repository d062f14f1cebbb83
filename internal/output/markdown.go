package output

import (
	"fmt"
	"strings"
)

type markdownFormatter struct{}

// FormatTable renders a table report as a Markdown document with a record
// summary, the generated DDL and one section per rejected row.
func (markdownFormatter) FormatTable(r *TableReport) (string, error) {
	if r == nil {
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Migration Report - %s\n\n", strings.ToUpper(r.Table))
	fmt.Fprintf(&sb, "**Status:** %s\n", r.Status())
	fmt.Fprintf(&sb, "**Target table:** `%s`\n", r.Table)
	if r.Source != "" {
		fmt.Fprintf(&sb, "**Source:** `%s`\n", r.Source)
	}
	fmt.Fprintf(&sb, "**Duration:** %s\n", seconds(r.Duration))
	if r.RunID != "" {
		fmt.Fprintf(&sb, "**Run:** %s\n", r.RunID)
	}

	sb.WriteString("\n---\n\n## Record Summary\n")
	sb.WriteString("| Metric | Value |\n| :--- | :--- |\n")
	fmt.Fprintf(&sb, "| Records processed | %d |\n", r.Processed)
	fmt.Fprintf(&sb, "| Valid records | %d |\n", r.Valid)
	fmt.Fprintf(&sb, "| Records inserted | %d |\n", r.Inserted)
	fmt.Fprintf(&sb, "| Records with validation errors | %d |\n", r.ErrorCount())

	sb.WriteString("\n---\n\n## Generated DDL\n\n```sql\n")
	sb.WriteString(strings.TrimSpace(r.DDL))
	sb.WriteString("\n```\n")

	if len(r.Notes) > 0 {
		sb.WriteString("\n## Notes\n\n")
		for _, n := range r.Notes {
			fmt.Fprintf(&sb, "- %s\n", n)
		}
	}

	fmt.Fprintf(&sb, "\n---\n\n## Validation Errors (%d records)\n\n", r.ErrorCount())
	if len(r.Errors) == 0 {
		sb.WriteString("No validation errors were found.\n")
		return sb.String(), nil
	}
	for i, e := range r.Errors {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "### Row %d\n\n", e.RowIndex)
		fmt.Fprintf(&sb, "**Problems:** %s\n", strings.Join(e.Reasons, ", "))
		fmt.Fprintf(&sb, "**Data:** `%s`\n", e.Record.String())
	}
	return sb.String(), nil
}

// FormatPlan renders a plan report as Markdown.
func (markdownFormatter) FormatPlan(p *PlanReport) (string, error) {
	if p == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("# Consolidated Migration Report\n\n")
	fmt.Fprintf(&sb, "**Status:** %s\n", p.Status())
	fmt.Fprintf(&sb, "**Duration:** %s\n", seconds(p.Duration))
	fmt.Fprintf(&sb, "**Destination:** %s\n", destination(p.Database))
	if p.RunID != "" {
		fmt.Fprintf(&sb, "**Run:** %s\n", p.RunID)
	}

	sb.WriteString("\n| Tables | Count |\n| :--- | :--- |\n")
	fmt.Fprintf(&sb, "| Planned | %d |\n", p.Planned)
	fmt.Fprintf(&sb, "| Succeeded or partial | %d |\n", p.Succeeded())
	fmt.Fprintf(&sb, "| Failed | %d |\n", p.Failed())

	sb.WriteString("\n## Tables\n\n")
	sb.WriteString("| Table | Source | Status | Processed | Inserted | Errors |\n")
	sb.WriteString("| :--- | :--- | :--- | ---: | ---: | ---: |\n")
	for _, t := range p.Tables {
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %d | %d | %d |\n",
			t.Table, t.Source, t.Label(), t.Processed, t.Inserted, t.Errors)
	}

	for _, t := range p.Tables {
		if t.Status == TableFatal {
			fmt.Fprintf(&sb, "\n> Fatal error in `%s`: %s. Remaining tables were not processed.\n", t.Table, t.Fatal)
		}
	}
	return sb.String(), nil
}
