package mysql

import (
	"database/sql"
	"strings"

	"datamigrator/internal/core"
)

func introspectColumns(ic *introspectCtx, t *core.Table) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.extra,
			c.column_key,
			c.character_maximum_length
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE() AND c.table_name = ?
		ORDER BY c.ordinal_position
	`, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, colType, nullable, extra, colKey sql.NullString
		var maxLen sql.NullInt64
		if err := rows.Scan(&name, &colType, &nullable, &extra, &colKey, &maxLen); err != nil {
			return err
		}

		col := &core.Column{
			Name:          name.String,
			Type:          ParseColumnType(colType.String),
			Nullable:      nullable.String == "YES",
			PrimaryKey:    colKey.String == "PRI",
			AutoIncrement: strings.Contains(strings.ToLower(extra.String), "auto_increment"),
		}
		if maxLen.Valid && col.Type == core.TypeVarchar {
			col.MaxLength = int(maxLen.Int64)
		}

		t.Columns = append(t.Columns, col)
	}

	return rows.Err()
}

// ParseColumnType maps a MySQL column_type such as "int", "bigint(20)",
// "decimal(10,2)" or "varchar(255)" to the matching ColumnType. Types
// outside the synthesized set map to VARCHAR.
func ParseColumnType(raw string) core.ColumnType {
	base := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.IndexAny(base, "( "); idx >= 0 {
		base = base[:idx]
	}

	switch base {
	case "int", "integer", "mediumint", "smallint", "tinyint":
		return core.TypeInt
	case "bigint":
		return core.TypeBigInt
	case "decimal", "numeric":
		return core.TypeDecimal
	case "datetime", "timestamp":
		return core.TypeDateTime
	case "text", "mediumtext", "longtext", "tinytext":
		return core.TypeText
	default:
		return core.TypeVarchar
	}
}
