package mysql

import (
	"fmt"
	"strings"

	"datamigrator/internal/core"
)

func (g *Generator) tableOptions(t *core.Table) string {
	var parts []string
	o := t.Options

	if engine := strings.TrimSpace(o.Engine); engine != "" {
		parts = append(parts, "ENGINE="+engine)
	}
	if charset := strings.TrimSpace(o.Charset); charset != "" {
		parts = append(parts, "DEFAULT CHARSET="+charset)
	}

	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

// columnDefinition renders name, type, then NOT NULL, AUTO_INCREMENT and
// PRIMARY KEY as they apply. Nullable columns carry no nullability keyword.
func (g *Generator) columnDefinition(c *core.Column) string {
	parts := []string{g.QuoteIdentifier(c.Name), c.Type.SQL()}
	parts = g.addNullability(parts, c)
	parts = g.addKeyAttributes(parts, c)
	return strings.Join(parts, " ")
}

func (g *Generator) addNullability(parts []string, c *core.Column) []string {
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	return parts
}

func (g *Generator) addKeyAttributes(parts []string, c *core.Column) []string {
	if c.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if c.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	return parts
}

func (g *Generator) indexDefinitionInline(idx *core.Index) string {
	name := strings.TrimSpace(idx.Name)
	if name == "" || len(idx.Columns) == 0 {
		return ""
	}

	cols := g.formatIndexColumns(idx.Columns)
	if idx.Unique {
		return fmt.Sprintf("UNIQUE KEY %s %s", g.QuoteIdentifier(name), cols)
	}
	return fmt.Sprintf("KEY %s %s", g.QuoteIdentifier(name), cols)
}
