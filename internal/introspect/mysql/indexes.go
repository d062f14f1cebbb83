package mysql

import (
	"database/sql"
	"strings"

	"datamigrator/internal/core"
)

// introspectIndexes marks columns covered by a single-column unique key.
func introspectIndexes(ic *introspectCtx, t *core.Table) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			i.index_name,
			GROUP_CONCAT(i.column_name ORDER BY i.seq_in_index SEPARATOR ',')
		FROM information_schema.statistics i
		WHERE i.table_schema = DATABASE() AND i.table_name = ?
			AND i.non_unique = 0 AND i.index_name <> 'PRIMARY'
		GROUP BY i.index_name
	`, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var indexName, columns sql.NullString
		if err := rows.Scan(&indexName, &columns); err != nil {
			return err
		}

		parts := strings.Split(columns.String, ",")
		if len(parts) != 1 {
			continue
		}
		if col := t.FindColumn(parts[0]); col != nil && !col.PrimaryKey {
			col.Unique = true
		}
	}

	return rows.Err()
}
