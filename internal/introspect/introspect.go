// Package introspect reads the state of a table that was created in a live
// database, so a load can report what the store actually holds.
package introspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"datamigrator/internal/core"
	"datamigrator/internal/dialect"
)

// ErrTableNotFound is returned when the requested table does not exist in
// the current database.
var ErrTableNotFound = errors.New("table not found")

type Introspecter interface {
	DescribeTable(ctx context.Context, db *sql.DB, name string) (*core.Table, error)
}

var (
	registry = make(map[dialect.Type]func() Introspecter)
	mu       sync.RWMutex
)

func Register(d dialect.Type, fn func() Introspecter) {
	mu.Lock()
	defer mu.Unlock()
	registry[d] = fn
}

// NewIntrospecter returns the introspecter registered for d. An empty type
// selects MySQL.
func NewIntrospecter(d dialect.Type) (Introspecter, error) {
	if d == "" {
		d = dialect.MySQL
	}

	mu.RLock()
	fn, ok := registry[d]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported dialect %v", d)
	}

	return fn(), nil
}
