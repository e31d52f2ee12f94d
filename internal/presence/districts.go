package presence

import (
	"github.com/sells-group/retail-presence/internal/aggregate"
	"github.com/sells-group/retail-presence/internal/attribution"
	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/table"
)

// DistrictValues computes one value per district key over t after applying
// spec. The district criterion itself is ignored so that every district is
// measured.
//
// Board: the number of distinct retailers with presence of the selected
// provider and board type (any when unset). Posm: the mean share of the
// selected provider, or of each row's main provider when none is selected,
// with missing shares counted as 0.
func DistrictValues(t *table.Table, spec filter.Spec, ctx filter.Context) map[string]float64 {
	out := make(map[string]float64)
	spec = spec.With(func(s *filter.Spec) { s.District, s.Division = "", "" })
	rows := filter.Apply(t, spec, ctx)
	col, ok := filter.DistrictLevel.Column(rows)
	if !ok || rows.IsEmpty() {
		return out
	}

	if ctx == filter.Posm {
		p, pChoice := spec.ProviderChoice()
		share := func(r table.Row) float64 { return attribution.Posm(r).Value }
		if pChoice == filter.Fixed {
			share = func(r table.Row) float64 { return r.Number(provider.AreaColumn(p)) }
		}
		sums := make(map[string]float64)
		counts := make(map[string]int)
		rows.Each(func(r table.Row) bool {
			name, ok := r.String(col)
			if !ok {
				return true
			}
			k := table.Key(name)
			sums[k] += share(r)
			counts[k]++
			return true
		})
		for k, n := range counts {
			out[k] = aggregate.Round1(sums[k] / float64(n))
		}
		return out
	}

	p, pChoice := spec.ProviderChoice()
	bt, btChoice := spec.BoardTypeChoice()
	var cols []string
	if pChoice == filter.Any && btChoice == filter.Any {
		for _, c := range attribution.BoardCandidates(nil, nil) {
			cols = append(cols, c.Column)
		}
	} else {
		cols = filter.PresenceColumns(p, pChoice, bt, btChoice)
	}
	seen := make(map[string]map[string]struct{})
	rows.Each(func(r table.Row) bool {
		name, okName := r.String(col)
		id, okID := r.String(filter.RetailerIDColumn)
		if !okName || !okID || !filter.HasAny(r, cols) {
			return true
		}
		k := table.Key(name)
		if seen[k] == nil {
			seen[k] = make(map[string]struct{})
		}
		seen[k][id] = struct{}{}
		return true
	})
	for k, ids := range seen {
		out[k] = float64(len(ids))
	}
	return out
}
