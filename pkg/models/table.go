package models

import "strings"

// KeyColumn is the primary key shared by sample and project metadata tables.
const KeyColumn = "sample_name"

// Row holds one metadata record keyed by column name. Cells absent from the
// source read back as empty strings.
type Row map[string]string

// Table is an ordered tabular view of a metadata file. Columns preserves the
// source header order; Rows hold the data records. Widths, when populated by a
// loader, carries the raw cell count of each parsed row (parallel to Rows) and
// is used to detect misaligned rows. Tables built in memory leave Widths nil.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	Widths  []int    `json:"-"`
}

// NewTable returns an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// EnsureColumn appends the named column if absent. Returns true when the
// column was added.
func (t *Table) EnsureColumn(name string) bool {
	if t.HasColumn(name) {
		return false
	}
	t.Columns = append(t.Columns, name)
	return true
}

// Get returns the cell at row i, or empty string when the row or column is
// out of range.
func (t *Table) Get(i int, column string) string {
	if i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][column]
}

// Set writes the cell at row i, adding the column to the header if needed.
func (t *Table) Set(i int, column, value string) {
	if i < 0 || i >= len(t.Rows) {
		return
	}
	t.EnsureColumn(column)
	if t.Rows[i] == nil {
		t.Rows[i] = Row{}
	}
	t.Rows[i][column] = value
}

// AppendRow adds a data row. Loaders maintain Widths themselves; rows added
// here leave Widths untouched.
func (t *Table) AppendRow(r Row) {
	if r == nil {
		r = Row{}
	}
	t.Rows = append(t.Rows, r)
}

// Key returns the trimmed primary key of row i.
func (t *Table) Key(i int) string {
	return strings.TrimSpace(t.Get(i, KeyColumn))
}

// Keys returns the trimmed primary key of every row in order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.Rows))
	for i := range t.Rows {
		keys[i] = t.Key(i)
	}
	return keys
}

// Width returns the parsed cell count for row i, or -1 when unknown.
func (t *Table) Width(i int) int {
	if i < 0 || i >= len(t.Widths) {
		return -1
	}
	return t.Widths[i]
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	if t.Widths != nil {
		out.Widths = append([]int(nil), t.Widths...)
	}
	for i, r := range t.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// Filter returns a new table holding the rows keep reports true for, with
// matching Widths entries carried over. Column order is preserved and the
// receiver is never mutated.
func (t *Table) Filter(keep func(i int, r Row) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for i, r := range t.Rows {
		if !keep(i, r) {
			continue
		}
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows = append(out.Rows, nr)
		if w := t.Width(i); w >= 0 {
			out.Widths = append(out.Widths, w)
		}
	}
	return out
}
