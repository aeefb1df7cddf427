// Package dataset provides the read-only tabular data model consumed by the
// chart pipeline. A Dataset is an ordered set of named columns over rows of
// mixed string/numeric values. All frame operations return new Dataset values
// sharing row storage; nothing in this package mutates an existing dataset.
package dataset

import (
	"fmt"
	"sort"
)

// Dataset is an immutable rows-by-named-columns table.
type Dataset struct {
	cols     []string
	colIndex map[string]int
	rows     [][]any
}

// New creates a Dataset from column names and row values. Every row must
// have exactly one value per column.
func New(columns []string, rows [][]any) (*Dataset, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		idx[c] = i
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(r), len(columns))
		}
	}
	return &Dataset{cols: columns, colIndex: idx, rows: rows}, nil
}

// Columns returns the column names in order. The returned slice is a copy.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.cols))
	copy(out, d.cols)
	return out
}

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int {
	return len(d.rows)
}

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.colIndex[name]
	return ok
}

// Column returns the values of the named column in row order.
func (d *Dataset) Column(name string) ([]any, error) {
	i, ok := d.colIndex[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]any, len(d.rows))
	for j, r := range d.rows {
		out[j] = r[i]
	}
	return out, nil
}

// Row returns the values of row i in column order. The returned slice is
// the internal row storage and must not be modified.
func (d *Dataset) Row(i int) []any {
	return d.rows[i]
}

// Value returns the value at (row, column name).
func (d *Dataset) Value(row int, col string) (any, error) {
	i, ok := d.colIndex[col]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", col)
	}
	return d.rows[row][i], nil
}

// Head returns a dataset with the first n rows (all rows if n exceeds the
// row count, no rows if n <= 0).
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d.rows) {
		n = len(d.rows)
	}
	return &Dataset{cols: d.cols, colIndex: d.colIndex, rows: d.rows[:n]}
}

// Tail returns a dataset with the last n rows.
func (d *Dataset) Tail(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d.rows) {
		n = len(d.rows)
	}
	return &Dataset{cols: d.cols, colIndex: d.colIndex, rows: d.rows[len(d.rows)-n:]}
}

// SortValues returns a dataset with rows ordered by the named column.
// Numeric values sort numerically, everything else lexically; numbers sort
// before strings in mixed columns.
func (d *Dataset) SortValues(col string, ascending bool) (*Dataset, error) {
	i, ok := d.colIndex[col]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", col)
	}
	sorted := make([][]any, len(d.rows))
	copy(sorted, d.rows)
	sort.SliceStable(sorted, func(a, b int) bool {
		less := valueLess(sorted[a][i], sorted[b][i])
		if ascending {
			return less
		}
		return valueLess(sorted[b][i], sorted[a][i])
	})
	return &Dataset{cols: d.cols, colIndex: d.colIndex, rows: sorted}, nil
}

// Filter returns a dataset containing the rows for which keep returns true.
func (d *Dataset) Filter(keep func(row []any) bool) *Dataset {
	var rows [][]any
	for _, r := range d.rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return &Dataset{cols: d.cols, colIndex: d.colIndex, rows: rows}
}

// Unique returns the distinct values of the named column in first-seen order.
func (d *Dataset) Unique(col string) ([]any, error) {
	i, ok := d.colIndex[col]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", col)
	}
	seen := make(map[any]bool)
	var out []any
	for _, r := range d.rows {
		if !seen[r[i]] {
			seen[r[i]] = true
			out = append(out, r[i])
		}
	}
	return out, nil
}

// valueLess orders two cell values: numbers numerically, strings lexically,
// numbers before strings, nil last.
func valueLess(a, b any) bool {
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	switch {
	case aNum && bNum:
		return af < bf
	case aNum:
		return true
	case bNum:
		return false
	}
	as, aStr := a.(string)
	bs, bStr := b.(string)
	switch {
	case aStr && bStr:
		return as < bs
	case aStr:
		return true
	default:
		_ = bs
		return false
	}
}

// asFloat converts numeric cell values to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
