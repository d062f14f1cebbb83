// Package diff compares two definitions of the same table. It is used to
// check the table a server actually created against the synthesized one,
// which catches server settings (sql_mode, default engine, charset) that
// silently alter a CREATE TABLE.
package diff

import (
	"sort"
	"strconv"
	"strings"

	"datamigrator/internal/core"
)

// TableDiff holds the differences between an old and a new table
// definition. Old is the expected table, New the observed one.
type TableDiff struct {
	Name string

	AddedColumns    []*core.Column
	RemovedColumns  []*core.Column
	ModifiedColumns []*ColumnChange
	ModifiedOptions []*FieldChange
}

// ColumnChange describes a column present in both tables with different
// attributes.
type ColumnChange struct {
	Name    string
	Old     *core.Column
	New     *core.Column
	Changes []*FieldChange
}

// FieldChange is one differing attribute.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

func (cc *ColumnChange) GetName() string { return cc.Name }

// Tables compares oldT with newT and returns nil when they match. Column
// names and option values are compared case-insensitively.
func Tables(oldT, newT *core.Table) *TableDiff {
	if oldT == nil || newT == nil {
		return nil
	}

	td := &TableDiff{Name: newT.Name}
	compareColumns(oldT.Columns, newT.Columns, td)
	compareOptions(oldT.Options, newT.Options, td)

	if td.IsEmpty() {
		return nil
	}
	td.sort()
	return td
}

// IsEmpty reports whether no difference was recorded.
func (td *TableDiff) IsEmpty() bool {
	return len(td.AddedColumns) == 0 && len(td.RemovedColumns) == 0 &&
		len(td.ModifiedColumns) == 0 && len(td.ModifiedOptions) == 0
}

func compareColumns(oldItems, newItems []*core.Column, td *TableDiff) {
	oldMap := mapColumnsByName(oldItems)
	newMap := mapColumnsByName(newItems)

	for name, newItem := range newMap {
		oldItem, exists := oldMap[name]
		if !exists {
			td.AddedColumns = append(td.AddedColumns, newItem)
			continue
		}
		if changes := columnFieldChanges(oldItem, newItem); len(changes) > 0 {
			td.ModifiedColumns = append(td.ModifiedColumns, &ColumnChange{
				Name:    newItem.Name,
				Old:     oldItem,
				New:     newItem,
				Changes: changes,
			})
		}
	}

	for name, oldItem := range oldMap {
		if _, exists := newMap[name]; !exists {
			td.RemovedColumns = append(td.RemovedColumns, oldItem)
		}
	}
}

// columnFieldChanges compares the attributes that survive a round trip
// through the server. Types are compared as rendered SQL, so an unset
// column matches the VARCHAR it was created as. Uniqueness is not compared
// on the primary key, which is unique by definition.
func columnFieldChanges(oldC, newC *core.Column) []*FieldChange {
	c := &fieldChangeCollector{}

	c.Add("type", oldC.Type.SQL(), newC.Type.SQL())
	c.Add("nullable", strconv.FormatBool(oldC.Nullable), strconv.FormatBool(newC.Nullable))
	c.Add("primary_key", strconv.FormatBool(oldC.PrimaryKey), strconv.FormatBool(newC.PrimaryKey))
	c.Add("auto_increment", strconv.FormatBool(oldC.AutoIncrement), strconv.FormatBool(newC.AutoIncrement))
	if !oldC.PrimaryKey && !newC.PrimaryKey {
		c.Add("unique", strconv.FormatBool(oldC.Unique), strconv.FormatBool(newC.Unique))
	}

	return c.Changes
}

func compareOptions(oldO, newO core.TableOptions, td *TableDiff) {
	c := &fieldChangeCollector{fold: true}
	c.Add("ENGINE", oldO.Engine, newO.Engine)
	c.Add("CHARSET", oldO.Charset, newO.Charset)
	td.ModifiedOptions = c.Changes
}

type fieldChangeCollector struct {
	fold    bool
	Changes []*FieldChange
}

func (c *fieldChangeCollector) Add(field, oldV, newV string) {
	oldV, newV = strings.TrimSpace(oldV), strings.TrimSpace(newV)
	if oldV == newV || (c.fold && strings.EqualFold(oldV, newV)) {
		return
	}
	c.Changes = append(c.Changes, &FieldChange{Field: field, Old: oldV, New: newV})
}

func mapColumnsByName(cols []*core.Column) map[string]*core.Column {
	m := make(map[string]*core.Column, len(cols))
	for _, c := range cols {
		if c == nil {
			continue
		}
		m[strings.ToLower(c.Name)] = c
	}
	return m
}

func (td *TableDiff) sort() {
	sortByName(td.AddedColumns, func(c *core.Column) string { return c.Name })
	sortByName(td.RemovedColumns, func(c *core.Column) string { return c.Name })
	sortByName(td.ModifiedColumns, (*ColumnChange).GetName)
}

func sortByName[T any](items []T, name func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(name(items[i])) < strings.ToLower(name(items[j]))
	})
}
