// Package mysql renders synthesized tables and records as MySQL DDL and
// INSERT statements.
package mysql

import (
	"fmt"
	"strings"

	"datamigrator/internal/core"
	"datamigrator/internal/dialect"
)

func init() {
	dialect.RegisterDialect(dialect.MySQL, func() dialect.Dialect {
		return NewMySQLDialect()
	})
}

// Dialect represents the MySQL dialect.
type Dialect struct {
	generator *Generator
}

// NewMySQLDialect initializes a new MySQL dialect instance.
func NewMySQLDialect() *Dialect {
	return &Dialect{generator: NewMySQLGenerator()}
}

// Name returns the name of the MySQL dialect.
func (d *Dialect) Name() dialect.Type {
	return dialect.MySQL
}

// Generator returns the statement generator for the MySQL dialect.
func (d *Dialect) Generator() dialect.Generator {
	return d.generator
}

// Generator is a stateless struct for generating MySQL statements.
type Generator struct{}

// NewMySQLGenerator initializes a new MySQL generator instance.
func NewMySQLGenerator() *Generator {
	return &Generator{}
}

// GenerateDDL returns the drop-if-exists and create statements for t.
func (g *Generator) GenerateDDL(t *core.Table) []string {
	return []string{g.GenerateDropTable(t), g.GenerateCreateTable(t)}
}

// GenerateCreateTable generate an SQL statement to create a table, depending on Table struct representation.
func (g *Generator) GenerateCreateTable(t *core.Table) string {
	name := g.QuoteIdentifier(t.Name)

	var lines []string
	for _, c := range t.Columns {
		if c == nil {
			continue
		}
		lines = append(lines, "  "+g.columnDefinition(c))
	}

	for _, idx := range t.UniqueIndexes() {
		if line := g.indexDefinitionInline(idx); line != "" {
			lines = append(lines, "  "+line)
		}
	}

	options := g.tableOptions(t)
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)%s;", name, strings.Join(lines, ",\n"), options)
}

// GenerateDropTable generate an SQL statement to drop a table if it exists.
func (g *Generator) GenerateDropTable(t *core.Table) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", g.QuoteIdentifier(t.Name))
}

// QuoteIdentifier is a function used for quote identification inside an SQL dialect.
func (g *Generator) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "`", "``")
	return "`" + name + "`"
}

// QuoteString is a function used for quote string inside an SQL dialect.
func (g *Generator) QuoteString(value string) string {
	var b strings.Builder
	b.Grow(len(value) + len(value)/10 + 2)

	b.WriteByte('\'')
	for _, char := range value {
		switch char {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		case '\x00':
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\x1A': // Ctrl+Z
			b.WriteString(`\Z`)
		default:
			b.WriteRune(char)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
