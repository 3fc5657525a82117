// =============================================================================
// Order Settlement Reconciler - In-Memory Table
// =============================================================================
//
// Table is the value every pipeline stage consumes and produces. It is a
// positional grid: Columns holds the labels exactly as supplied by the
// source, and every row in Rows is aligned with Columns.
//
// IMMUTABILITY:
//   Stages never modify a Table they received. Every transformation in this
//   file returns a new Table and leaves the receiver untouched. The same
//   table may be read by several stages and written as an output sheet.
//
// =============================================================================

package table

import (
	"fmt"
)

// =============================================================================
// CELL KINDS
// =============================================================================

// Kind describes how a column should be rendered in output files. It is
// formatting metadata only; joins always operate on the string cells.
type Kind int

const (
	// KindText renders the cell as-is.
	KindText Kind = iota

	// KindInteger renders the cell as an integer when it fits in int64,
	// falling back to text otherwise.
	KindInteger

	// KindDecimal renders the cell as a number when it parses, text otherwise.
	KindDecimal
)

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table is an ordered set of rows sharing one header.
type Table struct {
	// Name identifies the table in reports (file name or sheet label).
	Name string

	// Columns holds the original column labels in display order.
	Columns []string

	// Rows holds the cell values; Rows[i][j] belongs to Columns[j].
	Rows [][]string

	// Kinds optionally marks columns for numeric rendering.
	Kinds map[string]Kind
}

// New creates a table, padding or truncating each row to the header width.
func New(name string, columns []string, rows [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, len(rows)),
	}
	for i, row := range rows {
		t.Rows[i] = fitRow(row, len(columns))
	}
	return t
}

// fitRow returns a copy of row with exactly width cells.
func fitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of the column with exactly this label, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether a column with exactly this label exists.
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Column returns a copy of every value in the named column.
func (t *Table) Column(column string) ([]string, error) {
	idx := t.Index(column)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found in %s", column, t.Name)
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Value returns the cell at row i for the named column, or "" when the
// column does not exist.
func (t *Table) Value(i int, column string) string {
	idx := t.Index(column)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][idx]
}

// KindOf returns the rendering kind of a column (KindText by default).
func (t *Table) KindOf(column string) Kind {
	if t.Kinds == nil {
		return KindText
	}
	return t.Kinds[column]
}

// =============================================================================
// TRANSFORMATIONS
// =============================================================================

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns, t.Rows)
	if t.Kinds != nil {
		out.Kinds = make(map[string]Kind, len(t.Kinds))
		for k, v := range t.Kinds {
			out.Kinds[k] = v
		}
	}
	return out
}

// Renamed returns a copy of the table with a different name.
func (t *Table) Renamed(name string) *Table {
	out := t.Clone()
	out.Name = name
	return out
}

// InsertColumn returns a copy of the table with a new column at position
// pos (0-based). values must have one entry per row.
func (t *Table) InsertColumn(pos int, column string, values []string) (*Table, error) {
	if len(values) != len(t.Rows) {
		return nil, fmt.Errorf("column %q has %d values for %d rows", column, len(values), len(t.Rows))
	}
	if pos < 0 || pos > len(t.Columns) {
		return nil, fmt.Errorf("insert position %d out of range for %d columns", pos, len(t.Columns))
	}

	out := t.Clone()
	out.Columns = insertAt(out.Columns, pos, column)
	for i := range out.Rows {
		out.Rows[i] = insertAt(out.Rows[i], pos, values[i])
	}
	return out, nil
}

// AppendColumn returns a copy of the table with a new trailing column.
func (t *Table) AppendColumn(column string, values []string) (*Table, error) {
	return t.InsertColumn(len(t.Columns), column, values)
}

// DropColumns returns a copy without any column whose label is listed.
func (t *Table) DropColumns(columns ...string) *Table {
	drop := make(map[string]bool, len(columns))
	for _, c := range columns {
		drop[c] = true
	}

	keep := make([]int, 0, len(t.Columns))
	for i, c := range t.Columns {
		if !drop[c] {
			keep = append(keep, i)
		}
	}
	return t.pick(keep, nil)
}

// Project returns a copy holding only the listed columns, in that order,
// renamed to the matching entry of labels (or kept as-is when labels is nil).
// Missing columns are an error; callers filter first.
func (t *Table) Project(columns []string, labels []string) (*Table, error) {
	if labels != nil && len(labels) != len(columns) {
		return nil, fmt.Errorf("project: %d columns but %d labels", len(columns), len(labels))
	}
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.Index(c)
		if idx[i] < 0 {
			return nil, fmt.Errorf("project: column %q not found in %s", c, t.Name)
		}
	}
	return t.pick(idx, labels), nil
}

// WithKind returns a copy with the rendering kind of column set.
func (t *Table) WithKind(column string, kind Kind) *Table {
	out := t.Clone()
	if out.Kinds == nil {
		out.Kinds = make(map[string]Kind)
	}
	out.Kinds[column] = kind
	return out
}

// pick builds a new table from the given column positions.
func (t *Table) pick(idx []int, labels []string) *Table {
	out := &Table{
		Name:    t.Name,
		Columns: make([]string, len(idx)),
		Rows:    make([][]string, len(t.Rows)),
	}
	for j, src := range idx {
		out.Columns[j] = t.Columns[src]
		if labels != nil {
			out.Columns[j] = labels[j]
		}
		if kind := t.KindOf(t.Columns[src]); kind != KindText {
			if out.Kinds == nil {
				out.Kinds = make(map[string]Kind)
			}
			out.Kinds[out.Columns[j]] = kind
		}
	}
	for i, row := range t.Rows {
		newRow := make([]string, len(idx))
		for j, src := range idx {
			newRow[j] = row[src]
		}
		out.Rows[i] = newRow
	}
	return out
}

// insertAt returns a new slice with v inserted at pos.
func insertAt(s []string, pos int, v string) []string {
	out := make([]string, 0, len(s)+1)
	out = append(out, s[:pos]...)
	out = append(out, v)
	out = append(out, s[pos:]...)
	return out
}
