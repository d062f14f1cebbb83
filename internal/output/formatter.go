// Package output renders migration reports. It is extendable and for now
// provides three formats: Markdown, plain text and JSON.
package output

import (
	"fmt"
	"strings"
	"time"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// Formatter renders a single-table report and a consolidated plan report.
type Formatter interface {
	FormatTable(*TableReport) (string, error)
	FormatPlan(*PlanReport) (string, error)
}

// ParseFormat resolves a format name. "md" and "txt" are accepted as
// aliases; an empty name selects Markdown.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatText, "txt":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s; use 'markdown', 'text', or 'json'", name)
	}
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to Markdown.
func NewFormatter(name string) (Formatter, error) {
	format, err := ParseFormat(name)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatText:
		return textFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return markdownFormatter{}, nil
	}
}

// Extension returns the file extension used for reports in format f.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return "txt"
	case FormatJSON:
		return "json"
	default:
		return "md"
	}
}

func normalizeStatements(stmts []string) []string {
	var out []string
	for _, stmt := range stmts {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if !strings.HasSuffix(stmt, ";") {
			stmt += ";"
		}
		out = append(out, stmt)
	}
	return out
}

// splitDDL splits a DDL script into its blank-line separated statements.
func splitDDL(ddl string) []string {
	return strings.Split(ddl, "\n\n")
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.2f seconds", d.Seconds())
}
