// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"strings"
)

// columnIndex maps upper cased column names to positions. One index is
// shared by every row of a result and is read only after construction.
type columnIndex struct {
	names     []string
	positions map[string]int
}

// newColumnIndex indexes names in result order. When two columns share a
// name the later one wins.
func newColumnIndex(names []string) *columnIndex {
	positions := make(map[string]int, len(names))
	for i, name := range names {
		positions[strings.ToUpper(name)] = i
	}
	return &columnIndex{names: names, positions: positions}
}

func (ci *columnIndex) lookup(name string) (int, bool) {
	i, ok := ci.positions[strings.ToUpper(name)]
	return i, ok
}

// SnowflakeRow is one row of a query result. Cells hold the text the
// service sent, nil for SQL NULL. Columns are looked up case-insensitively.
type SnowflakeRow struct {
	cells   []*string
	columns *columnIndex
}

func newRows(cells [][]*string, columns *columnIndex) []*SnowflakeRow {
	rows := make([]*SnowflakeRow, len(cells))
	for i, c := range cells {
		rows[i] = &SnowflakeRow{cells: c, columns: columns}
	}
	return rows
}

// Len returns the number of columns.
func (r *SnowflakeRow) Len() int {
	return len(r.cells)
}

// ColumnNames returns the column names in result order.
func (r *SnowflakeRow) ColumnNames() []string {
	names := make([]string, len(r.columns.names))
	copy(names, r.columns.names)
	return names
}

// Raw returns the wire text of column i, nil for NULL or an index out of range.
func (r *SnowflakeRow) Raw(i int) *string {
	if i < 0 || i >= len(r.cells) {
		return nil
	}
	return r.cells[i]
}

// IsNull reports whether the named column is NULL.
func (r *SnowflakeRow) IsNull(column string) (bool, error) {
	cell, err := r.cell(column)
	if err != nil {
		return false, err
	}
	return cell == nil, nil
}

func (r *SnowflakeRow) cell(column string) (*string, error) {
	i, ok := r.columns.lookup(column)
	if !ok || i >= len(r.cells) {
		return nil, ErrColumnNotFound.withCause(nil, column)
	}
	return r.cells[i], nil
}
