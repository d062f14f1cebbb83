package diff

import (
	"fmt"
	"strings"
)

// Summary returns one line per difference, suitable for report notes.
func (td *TableDiff) Summary() []string {
	if td == nil || td.IsEmpty() {
		return nil
	}

	var lines []string
	for _, c := range td.AddedColumns {
		lines = append(lines, fmt.Sprintf("unexpected column %s (%s)", c.Name, c.Type.SQL()))
	}
	for _, c := range td.RemovedColumns {
		lines = append(lines, fmt.Sprintf("missing column %s (%s)", c.Name, c.Type.SQL()))
	}
	for _, mc := range td.ModifiedColumns {
		for _, ch := range mc.Changes {
			lines = append(lines, fmt.Sprintf("column %s %s: %s -> %s", mc.Name, ch.Field, ch.Old, ch.New))
		}
	}
	for _, ch := range td.ModifiedOptions {
		lines = append(lines, fmt.Sprintf("table %s: %s -> %s", ch.Field, ch.Old, ch.New))
	}
	return lines
}

// String returns a string representation of all differences.
func (td *TableDiff) String() string {
	lines := td.Summary()
	if len(lines) == 0 {
		return "No differences detected."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Table %s differs:\n", td.Name)
	for _, l := range lines {
		fmt.Fprintf(&sb, "  - %s\n", l)
	}
	return sb.String()
}
