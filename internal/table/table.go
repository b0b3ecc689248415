// Package table is the tabular payload passed between plugins. The core
// treats a Table as opaque; only plugins and previews look inside.
package table

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Table is a column-oriented set of rows whose cells are cty values.
type Table struct {
	Columns []string
	Rows    [][]cty.Value
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Append adds a row. The row must have one cell per column.
func (t *Table) Append(row ...cty.Value) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns every cell of the named column.
func (t *Table) Column(name string) ([]cty.Value, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]cty.Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Crop returns a copy holding at most limit rows. A non-positive limit
// keeps every row.
func (t *Table) Crop(limit int) *Table {
	if t == nil {
		return nil
	}
	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := New(t.Columns...)
	out.Rows = make([][]cty.Value, len(rows))
	for i, row := range rows {
		out.Rows[i] = append([]cty.Value(nil), row...)
	}
	return out
}

// Concat stacks tables vertically. The result has the union of all columns
// in first-seen order; cells a table lacks are null strings. Nil inputs are
// ignored, and a single input is returned as a copy.
func Concat(tables ...*Table) *Table {
	var columns []string
	seen := map[string]bool{}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	out := New(columns...)
	for _, t := range tables {
		if t == nil {
			continue
		}
		idx := make([]int, len(columns))
		for i, c := range columns {
			idx[i] = t.ColumnIndex(c)
		}
		for _, row := range t.Rows {
			merged := make([]cty.Value, len(columns))
			for i, j := range idx {
				if j < 0 {
					merged[i] = cty.NullVal(cty.String)
				} else {
					merged[i] = row[j]
				}
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

// ToCty converts the table into a tuple of objects keyed by column name,
// suitable for cty/json encoding.
func (t *Table) ToCty() cty.Value {
	if t.Len() == 0 {
		return cty.EmptyTupleVal
	}
	rows := make([]cty.Value, len(t.Rows))
	for i, row := range t.Rows {
		attrs := make(map[string]cty.Value, len(t.Columns))
		for j, c := range t.Columns {
			attrs[c] = row[j]
		}
		rows[i] = cty.ObjectVal(attrs)
	}
	return cty.TupleVal(rows)
}
