// Package tabular holds raw string tables and reads/writes them as CSV, XLSX and ZIP packs.
package tabular

// Table is an ordered set of named columns over string rows. Cells are raw
// input; typing happens downstream.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New returns an empty table with the given header.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of the first column named col, or -1.
func (t *Table) Index(col string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries column col.
func (t *Table) Has(col string) bool { return t.Index(col) >= 0 }

// Missing returns the columns of want that are absent, in want order.
func (t *Table) Missing(want []string) []string {
	var missing []string
	for _, c := range want {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Cell returns row i at column index idx, or "" when out of range.
func (t *Table) Cell(i, idx int) string {
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	row := t.Rows[i]
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Column returns a copy of the named column's cells, or nil if absent.
func (t *Table) Column(col string) []string {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Cell(i, idx)
	}
	return out
}

// Append adds a row. The row is not copied.
func (t *Table) Append(row []string) {
	t.Rows = append(t.Rows, row)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// Concat returns a new table with the rows of t followed by the rows of o,
// aligned on t's header. Columns of o that t lacks are dropped.
func (t *Table) Concat(o *Table) *Table {
	out := t.Clone()
	if o == nil {
		return out
	}
	idx := make([]int, len(out.Columns))
	for i, c := range out.Columns {
		idx[i] = o.Index(c)
	}
	for r := range o.Rows {
		row := make([]string, len(idx))
		for i, j := range idx {
			row[i] = o.Cell(r, j)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
