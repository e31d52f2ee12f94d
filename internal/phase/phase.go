// Package phase selects rows by capture phase, the per-retailer batch
// identifier where a higher value is a more recent survey visit.
package phase

import (
	"github.com/sells-group/retail-presence/internal/table"
)

// Column is the capture phase column name.
const Column = "CAPTURE_PHASE"

// Max returns the largest parseable capture phase in t.
func Max(t *table.Table) (float64, bool) {
	var (
		maxPhase float64
		found    bool
	)
	if !t.HasColumn(Column) {
		return 0, false
	}
	t.Each(func(r table.Row) bool {
		v, ok := r.Float(Column)
		if ok && (!found || v > maxPhase) {
			maxPhase, found = v, true
		}
		return true
	})
	return maxPhase, found
}

// SelectLatest keeps the rows of the most recent capture phase. Rows whose
// phase is missing count as belonging to the latest phase. A table without
// the phase column, or without any phase value, is returned unchanged.
func SelectLatest(t *table.Table) *table.Table {
	if t.IsEmpty() {
		return t
	}
	maxPhase, ok := Max(t)
	if !ok {
		return t
	}
	return t.Filter(func(r table.Row) bool {
		v, ok := r.Float(Column)
		return !ok || v == maxPhase
	})
}

// Of returns the row's capture phase.
func Of(r table.Row) (float64, bool) {
	return r.Float(Column)
}

// Matches reports whether the row's phase equals id. Numeric ids compare
// numerically ("2" matches 2.0); anything else compares as text.
func Matches(r table.Row, id string) bool {
	raw, ok := r.String(Column)
	if !ok {
		return false
	}
	if raw == id {
		return true
	}
	want, okWant := table.ParseNumber(id)
	got, okGot := table.ParseNumber(raw)
	return okWant && okGot && want == got
}

// Label renders the row's phase for display, or "" when missing.
func Label(r table.Row) string {
	if v, ok := r.Float(Column); ok {
		return table.FormatNumber(v)
	}
	raw, _ := r.String(Column)
	return raw
}
