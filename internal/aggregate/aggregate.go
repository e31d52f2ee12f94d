// Package aggregate computes per-provider summary metrics over a filtered
// survey table.
package aggregate

import (
	"math"

	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/table"
)

// ProviderMetric is one provider's summary. Board metrics carry Count, posm
// metrics carry Percentage.
type ProviderMetric struct {
	Provider   string   `json:"provider"`
	Count      *int     `json:"count,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// Round1 rounds v to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Metrics dispatches on ctx. An empty table yields an empty list.
func Metrics(t *table.Table, spec filter.Spec, ctx filter.Context) []ProviderMetric {
	if ctx == filter.Posm {
		return Posm(t)
	}
	return Board(t, spec)
}

// Board counts, per provider, the distinct retailers with at least one
// board of the selected type (any type when unset). Rows without a retailer
// id do not count.
func Board(t *table.Table, spec filter.Spec) []ProviderMetric {
	out := []ProviderMetric{}
	if t.IsEmpty() {
		return out
	}
	bt, btChoice := spec.BoardTypeChoice()
	if btChoice == filter.Unresolvable {
		btChoice = filter.Any
	}

	for _, p := range provider.All() {
		cols := filter.PresenceColumns(p, filter.Fixed, bt, btChoice)
		seen := make(map[string]struct{})
		t.Each(func(r table.Row) bool {
			id, ok := r.String(filter.RetailerIDColumn)
			if !ok {
				return true
			}
			if _, dup := seen[id]; dup {
				return true
			}
			if filter.HasAny(r, cols) {
				seen[id] = struct{}{}
			}
			return true
		})
		n := len(seen)
		out = append(out, ProviderMetric{Provider: p.Name(), Count: &n})
	}
	return out
}

// Posm averages each provider's share across every row. Missing and
// malformed shares count as 0 and so pull the mean down instead of being
// excluded. A provider whose column the dataset lacks reports 0.
func Posm(t *table.Table) []ProviderMetric {
	out := []ProviderMetric{}
	if t.IsEmpty() {
		return out
	}
	for _, p := range provider.All() {
		col := provider.AreaColumn(p)
		var sum float64
		if t.HasColumn(col) {
			t.Each(func(r table.Row) bool {
				sum += r.Number(col)
				return true
			})
		}
		avg := Round1(sum / float64(t.Len()))
		out = append(out, ProviderMetric{Provider: p.Name(), Percentage: &avg})
	}
	return out
}
