package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datamigrator/internal/core"
	"datamigrator/internal/dialect"
	"datamigrator/internal/introspect"
)

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		raw  string
		want core.ColumnType
	}{
		{"int", core.TypeInt},
		{"int(11)", core.TypeInt},
		{"INT UNSIGNED", core.TypeInt},
		{"bigint(20)", core.TypeBigInt},
		{"decimal(10,2)", core.TypeDecimal},
		{"datetime", core.TypeDateTime},
		{"text", core.TypeText},
		{"longtext", core.TypeText},
		{"varchar(255)", core.TypeVarchar},
		{"json", core.TypeVarchar},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseColumnType(tt.raw))
		})
	}
}

func TestFlavorFromComment(t *testing.T) {
	assert.Equal(t, FlavorMySQL, flavorFromComment("MySQL Community Server - GPL"))
	assert.Equal(t, FlavorMariaDB, flavorFromComment("mariadb.org binary distribution"))
	assert.Equal(t, FlavorTiDB, flavorFromComment("TiDB Server (Apache License 2.0)"))
}

func TestRegistered(t *testing.T) {
	i, err := introspect.NewIntrospecter(dialect.MySQL)
	require.NoError(t, err)
	assert.NotNil(t, i)

	i, err = introspect.NewIntrospecter("")
	require.NoError(t, err)
	assert.NotNil(t, i)

	_, err = introspect.NewIntrospecter("oracle")
	assert.ErrorContains(t, err, "unsupported dialect")
}
