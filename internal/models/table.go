package models

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Cell is one path/value pair of a flattened record.
type Cell struct {
	Path  string
	Value Value
}

// FlatRow is a flattened record: scalar values keyed by path, in the order
// the paths were first reached.
type FlatRow []Cell

// Get returns the value stored at path.
func (r FlatRow) Get(path string) (Value, bool) {
	for _, c := range r {
		if c.Path == path {
			return c.Value, true
		}
	}
	return Value{}, false
}

// Paths returns the row's paths in order.
func (r FlatRow) Paths() []string {
	paths := make([]string, len(r))
	for i, c := range r {
		paths[i] = c.Path
	}
	return paths
}

// Table is a rectangular view over flattened records. Rows[i][j] holds the
// value of Columns[j] in record i; cells of columns a record never reached
// are Null.
type Table struct {
	Columns []string
	Rows    [][]Value

	index    map[string]int
	presence []*roaring.Bitmap
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		Columns: []string{},
		Rows:    [][]Value{},
		index:   make(map[string]int),
	}
}

// Append adds a record. Columns seen for the first time are appended to the
// column list and back-filled with Null in earlier rows.
func (t *Table) Append(row FlatRow) {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Columns))
		for i, c := range t.Columns {
			t.index[c] = i
		}
	}
	for _, c := range row {
		if _, ok := t.index[c.Path]; ok {
			continue
		}
		t.index[c.Path] = len(t.Columns)
		t.Columns = append(t.Columns, c.Path)
		t.presence = append(t.presence, roaring.New())
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], NullValue())
		}
	}

	rowIdx := uint32(len(t.Rows))
	cells := make([]Value, len(t.Columns))
	for _, c := range row {
		col := t.index[c.Path]
		cells[col] = c.Value
		t.presence[col].Add(rowIdx)
	}
	t.Rows = append(t.Rows, cells)
}

// NumRows returns the number of records.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.Columns) }

// Column returns the position of the named column.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Cell returns the value at row i of the named column, or Null when the
// column does not exist.
func (t *Table) Cell(i int, name string) Value {
	col, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.Rows) {
		return NullValue()
	}
	return t.Rows[i][col]
}

// Presence returns the set of row indexes in which the named column was
// present in the source record, including explicit nulls. The returned bitmap
// is a copy.
func (t *Table) Presence(name string) *roaring.Bitmap {
	col, ok := t.index[name]
	if !ok {
		return roaring.New()
	}
	return t.presence[col].Clone()
}

// NonNullCount returns how many rows hold a non-null value in the named column.
func (t *Table) NonNullCount(name string) int {
	col, ok := t.index[name]
	if !ok {
		return 0
	}
	n := 0
	it := t.presence[col].Iterator()
	for it.HasNext() {
		if !t.Rows[it.Next()][col].IsNull() {
			n++
		}
	}
	return n
}

// Strings returns the table cells rendered with Value.Text.
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.Text()
		}
		out[i] = cells
	}
	return out
}

// TreeKind identifies the shape of a node in a hierarchical view.
type TreeKind int

const (
	TreeScalar TreeKind = iota
	TreeObject
	TreeArray
	TreeTable
)

// TreeNode is a node of the hierarchical display. Objects hold one child per
// key, arrays of scalars hold one child per item keyed by index, and arrays of
// objects are materialised as a nested Table.
type TreeNode struct {
	Key      string
	Kind     TreeKind
	Value    Value
	Children []*TreeNode
	Table    *Table
	// Size is the number of keys or items of the source container.
	Size int
}
