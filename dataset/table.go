// Package dataset provides the in-memory tabular representation of C-MAPSS
// sensor logs together with ingestion from raw archives and RUL labeling.
package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// Table is a column-ordered numeric table. Missing values are represented
// as NaN. Pipeline stages treat tables as immutable and produce new tables;
// Column returns the backing slice and must not be written through.
type Table struct {
	cols []string
	data [][]float64 // column-major, all columns have equal length
}

// NewTable creates an empty table with the given column names.
func NewTable(cols []string) *Table {
	t := &Table{
		cols: append([]string(nil), cols...),
		data: make([][]float64, len(cols)),
	}
	return t
}

// FromColumns creates a table from column names and column-major data.
func FromColumns(cols []string, data [][]float64) (*Table, error) {
	if len(cols) != len(data) {
		return nil, errors.NewDimensionError("dataset.FromColumns", len(cols), len(data), 1)
	}
	n := -1
	for i, col := range data {
		if n == -1 {
			n = len(col)
		}
		if len(col) != n {
			return nil, errors.NewDimensionError("dataset.FromColumns", n, len(col), 0)
		}
		data[i] = append([]float64(nil), col...)
	}
	return &Table{cols: append([]string(nil), cols...), data: data}, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if len(t.data) == 0 {
		return 0
	}
	return len(t.data[0])
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	return t.columnIndex(name) >= 0
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the named column. The returned slice is the
// table's backing storage; callers must not modify it.
func (t *Table) Column(name string) ([]float64, error) {
	i := t.columnIndex(name)
	if i < 0 {
		return nil, errors.NewSchemaError("Table.Column", name)
	}
	return t.data[i], nil
}

// AppendRow appends one row of values, matching the column order.
func (t *Table) AppendRow(vals []float64) error {
	if len(vals) != len(t.cols) {
		return errors.NewDimensionError("Table.AppendRow", len(t.cols), len(vals), 1)
	}
	for i, v := range vals {
		t.data[i] = append(t.data[i], v)
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	data := make([][]float64, len(t.data))
	for i, col := range t.data {
		data[i] = append([]float64(nil), col...)
	}
	return &Table{cols: append([]string(nil), t.cols...), data: data}
}

// Select returns a new table containing only the named columns, in the
// given order. Missing columns yield a SchemaError.
func (t *Table) Select(names []string) (*Table, error) {
	data := make([][]float64, 0, len(names))
	var missing []string
	for _, name := range names {
		i := t.columnIndex(name)
		if i < 0 {
			missing = append(missing, name)
			continue
		}
		data = append(data, append([]float64(nil), t.data[i]...))
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaError("Table.Select", missing...)
	}
	return &Table{cols: append([]string(nil), names...), data: data}, nil
}

// Drop returns a new table without the named columns. Unknown names are
// ignored.
func (t *Table) Drop(names ...string) *Table {
	dropped := make(map[string]bool, len(names))
	for _, n := range names {
		dropped[n] = true
	}
	var cols []string
	var data [][]float64
	for i, c := range t.cols {
		if dropped[c] {
			continue
		}
		cols = append(cols, c)
		data = append(data, append([]float64(nil), t.data[i]...))
	}
	return &Table{cols: cols, data: data}
}

// WithColumn returns a new table with the named column set to vals,
// replacing an existing column of the same name or appending a new one.
func (t *Table) WithColumn(name string, vals []float64) (*Table, error) {
	if t.NumCols() > 0 && len(vals) != t.NumRows() {
		return nil, errors.NewDimensionError("Table.WithColumn", t.NumRows(), len(vals), 0)
	}
	out := t.Clone()
	if i := out.columnIndex(name); i >= 0 {
		out.data[i] = append([]float64(nil), vals...)
		return out, nil
	}
	out.cols = append(out.cols, name)
	out.data = append(out.data, append([]float64(nil), vals...))
	return out, nil
}

// TakeRows returns a new table containing the rows at the given indices,
// in the given order.
func (t *Table) TakeRows(idx []int) *Table {
	data := make([][]float64, len(t.data))
	for i, col := range t.data {
		sub := make([]float64, len(idx))
		for j, r := range idx {
			sub[j] = col[r]
		}
		data[i] = sub
	}
	return &Table{cols: append([]string(nil), t.cols...), data: data}
}

// Matrix converts the table into a dense row-major matrix of all columns.
func (t *Table) Matrix() (*mat.Dense, error) {
	r, c := t.NumRows(), t.NumCols()
	if r == 0 || c == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	m := mat.NewDense(r, c, nil)
	for j, col := range t.data {
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m, nil
}

// MissingCounts returns, per column, the number of NaN entries.
func (t *Table) MissingCounts() map[string]int {
	counts := make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		n := 0
		for _, v := range t.data[i] {
			if math.IsNaN(v) {
				n++
			}
		}
		counts[c] = n
	}
	return counts
}

// Equal reports whether two tables have identical schema and values.
// NaN entries compare equal to NaN, so imputation idempotence can be
// asserted directly.
func (t *Table) Equal(o *Table) bool {
	if t.NumCols() != o.NumCols() || t.NumRows() != o.NumRows() {
		return false
	}
	for i, c := range t.cols {
		if o.cols[i] != c {
			return false
		}
		for j, v := range t.data[i] {
			w := o.data[i][j]
			if math.IsNaN(v) && math.IsNaN(w) {
				continue
			}
			if v != w {
				return false
			}
		}
	}
	return true
}
