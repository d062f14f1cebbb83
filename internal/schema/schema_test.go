package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datamigrator/internal/core"
)

func rec(kv ...string) core.FlatRecord {
	r := core.NewFlatRecord(len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "<null>" {
			r.Set(kv[i], core.Null())
			continue
		}
		r.Set(kv[i], core.String(kv[i+1]))
	}
	return r
}

func TestSynthesize(t *testing.T) {
	profiles := []core.ColumnProfile{
		{Name: "id", Type: core.TypeInt, MaxLength: 1},
		{Name: "email", Type: core.TypeVarchar, MaxLength: 8},
		{Name: "note", Type: core.TypeText, MaxLength: 400},
		{Name: "score", Type: core.TypeDecimal, MaxLength: 4},
	}
	records := []core.FlatRecord{
		rec("id", "1", "email", "a@x.io", "note", "n", "score", "1.5"),
		rec("id", "2", "email", "b@x.io", "note", "", "score", "2.5"),
		rec("id", "3", "email", "c@x.io", "note", "n"),
	}

	t.Run("single file defaults", func(t *testing.T) {
		tbl := Synthesize("users", profiles, records, Options{})
		require.NoError(t, tbl.Validate())

		assert.Equal(t, []string{"id", "email", "note", "score"}, tbl.ColumnNames())
		assert.Equal(t, core.TableOptions{Engine: "InnoDB", Charset: "utf8mb4"}, tbl.Options)

		id := tbl.FindColumn("id")
		assert.True(t, id.PrimaryKey)
		assert.True(t, id.AutoIncrement)
		assert.False(t, id.Nullable)

		assert.False(t, tbl.FindColumn("email").Nullable)
		assert.True(t, tbl.FindColumn("note").Nullable, "empty value makes the column nullable")
		assert.True(t, tbl.FindColumn("score").Nullable, "missing value makes the column nullable")
		assert.False(t, tbl.FindColumn("email").Unique)
	})

	t.Run("explicit keys", func(t *testing.T) {
		tbl := Synthesize("users", profiles, records, Options{
			PrimaryKey:    "email",
			UniqueColumns: []string{"id", "email", "note"},
		})
		require.NoError(t, tbl.Validate())

		email := tbl.FindColumn("email")
		assert.True(t, email.PrimaryKey)
		assert.False(t, email.AutoIncrement, "VARCHAR keys do not auto increment")
		assert.False(t, email.Unique)

		id := tbl.FindColumn("id")
		assert.False(t, id.PrimaryKey)
		assert.False(t, id.AutoIncrement)
		assert.True(t, id.Unique)
		assert.True(t, tbl.FindColumn("note").Unique)
	})

	t.Run("unknown key candidate falls back to first column", func(t *testing.T) {
		tbl := Synthesize("users", profiles, records, Options{PrimaryKey: "nope"})
		assert.Equal(t, "id", tbl.PrimaryKey().Name)
	})

	t.Run("bigint key auto increments", func(t *testing.T) {
		tbl := Synthesize("t", []core.ColumnProfile{{Name: "k", Type: core.TypeBigInt}}, nil, Options{})
		assert.True(t, tbl.PrimaryKey().AutoIncrement)
	})

	t.Run("datetime key does not auto increment", func(t *testing.T) {
		tbl := Synthesize("t", []core.ColumnProfile{{Name: "k", Type: core.TypeDateTime}}, nil, Options{})
		assert.False(t, tbl.PrimaryKey().AutoIncrement)
	})

	t.Run("no profiles", func(t *testing.T) {
		tbl := Synthesize("t", nil, nil, Options{})
		assert.Empty(t, tbl.Columns)
		assert.Error(t, tbl.Validate())
	})
}

func TestNullColumnIsNullable(t *testing.T) {
	profiles := []core.ColumnProfile{{Name: "id", Type: core.TypeInt}, {Name: "x", Type: core.TypeUnset}}
	tbl := Synthesize("t", profiles, []core.FlatRecord{rec("id", "1", "x", "<null>")}, Options{})
	x := tbl.FindColumn("x")
	assert.True(t, x.Nullable)
	assert.Equal(t, core.TypeVarchar, x.Type)
}
