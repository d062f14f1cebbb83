// Package schema synthesizes a destination table from column profiles and
// the full record set they were computed from.
package schema

import (
	"datamigrator/internal/core"
)

// Options selects keys for the synthesized table.
type Options struct {
	// PrimaryKey names the key candidate. When empty or unknown, the first
	// column is used.
	PrimaryKey string
	// UniqueColumns receive a unique key, except the primary key column.
	UniqueColumns []string
}

// Synthesize builds the table for profiles. Columns keep profile order.
// A column is NOT NULL only when every record holds a non-empty value for
// it. Exactly one column is the primary key; it auto-increments when its
// type is INT or BIGINT.
func Synthesize(name string, profiles []core.ColumnProfile, records []core.FlatRecord, opts Options) *core.Table {
	t := &core.Table{
		Name: name,
		Options: core.TableOptions{
			Engine:  core.DefaultEngine,
			Charset: core.DefaultCharset,
		},
	}
	if len(profiles) == 0 {
		return t
	}

	pk := PrimaryKeyCandidate(profiles, opts.PrimaryKey)
	nullable := nullableColumns(profiles, records)
	unique := make(map[string]struct{}, len(opts.UniqueColumns))
	for _, c := range opts.UniqueColumns {
		unique[c] = struct{}{}
	}

	for _, p := range profiles {
		col := &core.Column{
			Name:      p.Name,
			Type:      p.Type,
			MaxLength: p.MaxLength,
			Nullable:  nullable[p.Name],
		}
		if col.Type == core.TypeUnset {
			col.Type = core.TypeVarchar
		}
		if p.Name == pk {
			col.PrimaryKey = true
			col.AutoIncrement = col.Type.IsInteger()
		} else if _, ok := unique[p.Name]; ok {
			col.Unique = true
		}
		t.Columns = append(t.Columns, col)
	}
	return t
}

// PrimaryKeyCandidate returns want when it names a profiled column, and the
// first column otherwise.
func PrimaryKeyCandidate(profiles []core.ColumnProfile, want string) string {
	if len(profiles) == 0 {
		return ""
	}
	if want != "" {
		for _, p := range profiles {
			if p.Name == want {
				return want
			}
		}
	}
	return profiles[0].Name
}

func nullableColumns(profiles []core.ColumnProfile, records []core.FlatRecord) map[string]bool {
	out := make(map[string]bool, len(profiles))
	for _, rec := range records {
		for _, p := range profiles {
			if out[p.Name] {
				continue
			}
			if v, ok := rec.Get(p.Name); !ok || v.IsEmpty() {
				out[p.Name] = true
			}
		}
	}
	return out
}
