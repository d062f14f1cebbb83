// Package mysql describes tables of a MySQL-compatible server (MySQL, MariaDB
// or TiDB) from information_schema.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"datamigrator/internal/core"
	"datamigrator/internal/dialect"
	"datamigrator/internal/introspect"
)

func init() {
	introspect.Register(dialect.MySQL, New)
}

type introspecter struct{}

type introspectCtx struct {
	db  *sql.DB
	ctx context.Context
}

func New() introspect.Introspecter {
	return &introspecter{}
}

// DescribeTable reads the columns, unique keys and table options of name in
// the connection's current database.
func (i *introspecter) DescribeTable(ctx context.Context, db *sql.DB, name string) (*core.Table, error) {
	ic := &introspectCtx{db: db, ctx: ctx}
	t := &core.Table{Name: name}

	if err := introspectTableOptions(ic, t); err != nil {
		return nil, err
	}
	if err := introspectColumns(ic, t); err != nil {
		return nil, fmt.Errorf("describe columns of %q: %w", name, err)
	}
	if err := introspectIndexes(ic, t); err != nil {
		return nil, fmt.Errorf("describe indexes of %q: %w", name, err)
	}
	return t, nil
}

func introspectTableOptions(ic *introspectCtx, t *core.Table) error {
	row := ic.db.QueryRowContext(ic.ctx, `
		SELECT engine, table_collation
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ? AND table_type = 'BASE TABLE'
	`, t.Name)

	var engine, collate sql.NullString
	if err := row.Scan(&engine, &collate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", introspect.ErrTableNotFound, t.Name)
		}
		return err
	}

	charset := collate.String
	if idx := strings.Index(charset, "_"); idx > 0 {
		charset = charset[:idx]
	}

	t.Options = core.TableOptions{
		Engine:  engine.String,
		Charset: charset,
	}
	return nil
}
