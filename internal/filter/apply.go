package filter

import (
	"github.com/sells-group/retail-presence/internal/attribution"
	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/table"
)

// Apply returns the rows of t that match every criterion in spec. The
// result does not depend on criterion order, but cheap and selective
// criteria run first: retailer id, provider and board type, geography,
// then visibility range and dominance.
//
// A criterion whose column the dataset lacks is skipped. An unresolvable
// provider or board type yields an empty table.
func Apply(t *table.Table, spec Spec, ctx Context) *table.Table {
	if t.IsEmpty() {
		return t
	}

	p, pChoice := spec.ProviderChoice()
	bt, btChoice := spec.BoardTypeChoice()
	if pChoice == Unresolvable || (ctx == Board && btChoice == Unresolvable) {
		return t.Clear()
	}

	out := byRetailer(t, spec.RetailerID)
	switch ctx {
	case Board:
		out = byBoardPresence(out, p, pChoice, bt, btChoice)
	case Posm:
		if pChoice == Fixed {
			out = byAreaPresence(out, p)
		}
	}

	out = byLevel(out, ProvinceLevel, spec.Province)
	out = byLevel(out, DistrictLevel, spec.District)
	out = byLevel(out, DivisionLevel, spec.Division)

	if ctx == Posm && pChoice == Fixed {
		if spec.Visibility != nil {
			out = byVisibility(out, p, *spec.Visibility)
		}
		if spec.Dominance != AnyDominance {
			out = byDominance(out, p, spec.Dominance)
		}
	}
	return out
}

func byRetailer(t *table.Table, id string) *table.Table {
	if !IsSet(id) || !t.HasColumn(RetailerIDColumn) {
		return t
	}
	return t.Filter(func(r table.Row) bool {
		v, ok := r.String(RetailerIDColumn)
		return ok && v == id
	})
}

// PresenceColumns lists the board count columns whose positive value marks
// presence for the given choices. Nil means no presence criterion.
func PresenceColumns(p provider.Provider, pChoice Choice, bt provider.BoardType, btChoice Choice) []string {
	var (
		providers []provider.Provider
		types     []provider.BoardType
	)
	switch {
	case pChoice == Fixed && btChoice == Fixed:
		return []string{provider.BoardColumn(p, bt)}
	case pChoice == Fixed:
		providers = []provider.Provider{p}
	case btChoice == Fixed:
		types = []provider.BoardType{bt}
	default:
		return nil
	}
	cands := attribution.BoardCandidates(providers, types)
	cols := make([]string, len(cands))
	for i, c := range cands {
		cols[i] = c.Column
	}
	return cols
}

// presentColumns drops the columns t lacks.
func presentColumns(t *table.Table, cols []string) []string {
	var out []string
	for _, c := range cols {
		if t.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// HasAny reports whether any of cols is positive in r.
func HasAny(r table.Row, cols []string) bool {
	for _, c := range cols {
		if r.Number(c) > 0 {
			return true
		}
	}
	return false
}

func byBoardPresence(t *table.Table, p provider.Provider, pChoice Choice, bt provider.BoardType, btChoice Choice) *table.Table {
	cols := presentColumns(t, PresenceColumns(p, pChoice, bt, btChoice))
	if len(cols) == 0 {
		return t
	}
	return t.Filter(func(r table.Row) bool { return HasAny(r, cols) })
}

func byAreaPresence(t *table.Table, p provider.Provider) *table.Table {
	col := provider.AreaColumn(p)
	if !t.HasColumn(col) {
		return t
	}
	return t.Filter(func(r table.Row) bool { return r.Number(col) > 0 })
}

func byLevel(t *table.Table, level Level, value string) *table.Table {
	if !IsSet(value) {
		return t
	}
	col, ok := level.Column(t)
	if !ok {
		return t
	}
	want := table.Key(value)
	return t.Filter(func(r table.Row) bool {
		v, ok := r.String(col)
		return ok && table.Key(v) == want
	})
}

func byVisibility(t *table.Table, p provider.Provider, rng Range) *table.Table {
	col := provider.AreaColumn(p)
	if !t.HasColumn(col) {
		return t
	}
	return t.Filter(func(r table.Row) bool { return rng.Contains(r.Number(col)) })
}

func byDominance(t *table.Table, p provider.Provider, d Dominance) *table.Table {
	if !t.HasColumn(provider.AreaColumn(p)) {
		return t
	}
	cands := attribution.AreaCandidates()
	return t.Filter(func(r table.Row) bool {
		best := attribution.ArgMax(r, cands)
		isMax := best.Found && best.Candidate.Provider == p
		if d == Dominant {
			return isMax
		}
		return !isMax
	})
}
