package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datamigrator/internal/core"
)

func table(cols ...*core.Column) *core.Table {
	return &core.Table{
		Name:    "people",
		Columns: cols,
		Options: core.TableOptions{Engine: core.DefaultEngine, Charset: core.DefaultCharset},
	}
}

func withOptions(t *core.Table, engine, charset string) *core.Table {
	t.Options = core.TableOptions{Engine: engine, Charset: charset}
	return t
}

func pk() *core.Column {
	return &core.Column{Name: "id", Type: core.TypeInt, PrimaryKey: true, AutoIncrement: true, Unique: true}
}

func TestTablesEqual(t *testing.T) {
	tests := []struct {
		name     string
		old, new *core.Table
	}{
		{
			name: "identical",
			old:  table(pk(), &core.Column{Name: "name", Type: core.TypeVarchar, MaxLength: 12}),
			new:  table(pk(), &core.Column{Name: "name", Type: core.TypeVarchar, MaxLength: 255}),
		},
		{
			name: "unset column created as varchar",
			old:  table(pk(), &core.Column{Name: "note", Type: core.TypeUnset, Nullable: true}),
			new:  table(pk(), &core.Column{Name: "NOTE", Type: core.TypeVarchar, Nullable: true}),
		},
		{
			name: "primary key uniqueness is implied",
			old:  table(pk()),
			new:  table(&core.Column{Name: "id", Type: core.TypeInt, PrimaryKey: true, AutoIncrement: true}),
		},
		{
			name: "option case",
			old:  table(pk()),
			new:  withOptions(table(pk()), "innodb", "UTF8MB4"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Tables(tt.old, tt.new))
		})
	}
}

func TestTablesDifferences(t *testing.T) {
	oldT := table(
		pk(),
		&core.Column{Name: "email", Type: core.TypeVarchar, Unique: true},
		&core.Column{Name: "joined", Type: core.TypeDateTime},
		&core.Column{Name: "score", Type: core.TypeInt},
	)
	newT := table(
		pk(),
		&core.Column{Name: "email", Type: core.TypeVarchar},
		&core.Column{Name: "joined", Type: core.TypeVarchar, Nullable: true},
		&core.Column{Name: "extra", Type: core.TypeText},
	)
	newT.Options.Engine = "MyISAM"

	td := Tables(oldT, newT)
	require.NotNil(t, td)

	require.Len(t, td.AddedColumns, 1)
	assert.Equal(t, "extra", td.AddedColumns[0].Name)
	require.Len(t, td.RemovedColumns, 1)
	assert.Equal(t, "score", td.RemovedColumns[0].Name)
	require.Len(t, td.ModifiedColumns, 2)
	assert.Equal(t, "email", td.ModifiedColumns[0].Name)
	assert.Equal(t, "joined", td.ModifiedColumns[1].Name)

	assert.Equal(t, []string{
		"unexpected column extra (TEXT)",
		"missing column score (INT)",
		"column email unique: true -> false",
		"column joined type: DATETIME -> VARCHAR(255)",
		"column joined nullable: false -> true",
		"table ENGINE: InnoDB -> MyISAM",
	}, td.Summary())

	s := td.String()
	assert.Contains(t, s, "Table people differs:")
	assert.Contains(t, s, "  - missing column score (INT)")
}

func TestTablesNil(t *testing.T) {
	assert.Nil(t, Tables(nil, table()))
	var td *TableDiff
	assert.Nil(t, td.Summary())
	assert.Equal(t, "No differences detected.", td.String())
}
