package table

import (
	"math"
	"strconv"
	"strings"
)

// Row is a read-only handle on one table row.
type Row struct {
	t *Table
	i int
}

// Field is the result of looking up a column on a row. It distinguishes a
// column the dataset does not carry (Known false) from a known column whose
// value is missing (Null true).
type Field struct {
	cell  Cell
	known bool
}

// Index returns the row position within its table.
func (r Row) Index() int { return r.i }

// Table returns the table the row belongs to.
func (r Row) Table() *Table { return r.t }

// Field looks up a column.
func (r Row) Field(col string) Field {
	idx, ok := r.t.index[col]
	if !ok {
		return Field{}
	}
	return Field{cell: r.t.rows[r.i][idx], known: true}
}

// String returns the value of col when the column exists and is not missing.
func (r Row) String(col string) (string, bool) {
	return r.Field(col).String()
}

// Float parses col as a number. ok is false for absent columns, missing
// values, and malformed text.
func (r Row) Float(col string) (float64, bool) {
	return r.Field(col).Float()
}

// Number returns col as a number with missing and malformed values coerced
// to 0.
func (r Row) Number(col string) float64 {
	return r.Field(col).Number()
}

// Known reports whether the dataset carries this column.
func (f Field) Known() bool { return f.known }

// Null reports whether the column exists but holds no value.
func (f Field) Null() bool { return f.known && !f.cell.Valid }

// String returns the raw value and whether one is present.
func (f Field) String() (string, bool) {
	if !f.known || !f.cell.Valid {
		return "", false
	}
	return f.cell.Value, true
}

// Float parses the value as a finite float.
func (f Field) Float() (float64, bool) {
	s, ok := f.String()
	if !ok {
		return 0, false
	}
	return ParseNumber(s)
}

// Number is Float with the dirty-data tolerance policy applied: anything
// that is not a finite number reads as 0.
func (f Field) Number() float64 {
	v, ok := f.Float()
	if !ok {
		return 0
	}
	return v
}

// ParseNumber parses a numeric cell. Thousands separators are not accepted.
func ParseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatNumber renders a number the way phase identifiers are shown: no
// trailing zeros, so 2.0 becomes "2".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
