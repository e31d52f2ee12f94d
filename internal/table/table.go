// Package table holds the immutable in-memory representation of a survey dataset.
//
// A Table is built once by a source loader and never mutated afterwards.
// Filtering derives a new Table that shares the underlying cells, so many
// concurrent readers can derive views without copying or locking.
package table

import (
	"strings"
)

// Cell is a single raw value. Valid is false when the source held a missing
// value (empty, NaN, null and similar tokens).
type Cell struct {
	Value string
	Valid bool
}

// Table is an ordered set of rows sharing one column set.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	rows    [][]Cell
}

var missingTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"null": {},
	"na":   {},
	"n/a":  {},
	"none": {},
}

// IsMissing reports whether a raw source value represents a missing value.
func IsMissing(raw string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// NormalizeHeader trims whitespace and a UTF-8 BOM and upper-cases a column name.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\uFEFF")
	return strings.ToUpper(strings.TrimSpace(h))
}

// New builds a Table from a header row and raw string records. Records
// shorter than the header are padded with missing cells; extra fields are
// dropped. When a header repeats, the first occurrence wins.
func New(name string, header []string, records [][]string) *Table {
	b := NewBuilder(name, header)
	for _, rec := range records {
		b.Add(rec)
	}
	return b.Table()
}

// NewCell converts a raw source string into a Cell.
func NewCell(raw string) Cell {
	if IsMissing(raw) {
		return Cell{}
	}
	return Cell{Value: strings.TrimSpace(raw), Valid: true}
}

// Builder accumulates rows for a Table whose header may contain blanks or
// duplicates. Sources with positional records use it so that cells line up
// with the deduplicated column set.
type Builder struct {
	t   *Table
	pos []int // source position -> column index, -1 when dropped
}

// NewBuilder starts a table with the given raw header.
func NewBuilder(name string, header []string) *Builder {
	t := &Table{
		name:  name,
		index: make(map[string]int, len(header)),
	}
	pos := make([]int, len(header))
	for i, h := range header {
		col := NormalizeHeader(h)
		if col == "" {
			pos[i] = -1
			continue
		}
		if _, dup := t.index[col]; dup {
			pos[i] = -1
			continue
		}
		t.index[col] = len(t.columns)
		pos[i] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return &Builder{t: t, pos: pos}
}

// Add appends one raw record.
func (b *Builder) Add(rec []string) {
	cells := make([]Cell, len(b.t.columns))
	for i, raw := range rec {
		if i >= len(b.pos) || b.pos[i] < 0 {
			continue
		}
		cells[b.pos[i]] = NewCell(raw)
	}
	b.t.rows = append(b.t.rows, cells)
}

// Len returns the number of rows added so far.
func (b *Builder) Len() int { return len(b.t.rows) }

// Table finishes the build. The builder must not be used afterwards.
func (b *Builder) Table() *Table {
	t := b.t
	b.t = nil
	return t
}

// Name returns the dataset name the table was loaded as.
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return t.Len() == 0 }

// Columns returns a copy of the column names in source order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the dataset carries the named column.
func (t *Table) HasColumn(col string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[col]
	return ok
}

// FirstColumn returns the first of the candidate columns present in the
// table. The choice depends on the column set only, never on row values.
func (t *Table) FirstColumn(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if t.HasColumn(c) {
			return c, true
		}
	}
	return "", false
}

// Row returns the i-th row.
func (t *Table) Row(i int) Row { return Row{t: t, i: i} }

// Each calls fn for every row in order until fn returns false.
func (t *Table) Each(fn func(Row) bool) {
	for i := range t.Len() {
		if !fn(Row{t: t, i: i}) {
			return
		}
	}
}

// Filter returns a new table holding the rows for which keep returns true.
// Cells are shared with the receiver.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := t.derive(0)
	for i, cells := range t.rows {
		if keep(Row{t: t, i: i}) {
			out.rows = append(out.rows, cells)
		}
	}
	return out
}

// Clear returns a table with the same columns and no rows.
func (t *Table) Clear() *Table { return t.derive(0) }

func (t *Table) derive(capacity int) *Table {
	return &Table{
		name:    t.name,
		columns: t.columns,
		index:   t.index,
		rows:    make([][]Cell, 0, capacity),
	}
}
