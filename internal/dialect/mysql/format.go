package mysql

import (
	"fmt"
	"strings"

	"datamigrator/internal/core"
	"datamigrator/internal/infer"
)

// DateTimeLayout is the text form MySQL accepts for DATETIME values.
const DateTimeLayout = "2006-01-02 15:04:05"

func (g *Generator) formatColumns(cols []string) string {
	var quoted []string
	for _, c := range cols {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		quoted = append(quoted, g.QuoteIdentifier(c))
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

func (g *Generator) formatIndexColumns(cols []core.IndexColumn) string {
	var quoted []string
	for _, c := range cols {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		qname := g.QuoteIdentifier(name)
		if c.Length > 0 {
			qname = fmt.Sprintf("%s(%d)", qname, c.Length)
		}
		quoted = append(quoted, qname)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// StoreValue converts a record value to the form written to the store:
// nil for empty values, the DATETIME text for strings that parse as dates,
// and the value's text otherwise.
func StoreValue(v core.Value) any {
	if v.IsEmpty() {
		return nil
	}
	text := v.Text()
	if v.Kind == core.KindString {
		if dt, ok := infer.ParseDateTime(text); ok {
			return dt.Time.Format(DateTimeLayout)
		}
	}
	return text
}

// formatValue renders v as a SQL literal.
func (g *Generator) formatValue(v core.Value) string {
	stored := StoreValue(v)
	if stored == nil {
		return "NULL"
	}
	text := stored.(string)
	if v.Kind == core.KindNumber {
		return text
	}
	return g.QuoteString(text)
}
