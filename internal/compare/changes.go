package compare

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/options"
	"github.com/sells-group/retail-presence/internal/phase"
	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/retailer"
	"github.com/sells-group/retail-presence/internal/table"
)

// Direction selects increasing or decreasing share.
type Direction int

// Directions.
const (
	Increase Direction = iota + 1
	Decrease
)

// ErrUnknownDirection is returned for a change status other than increase
// or decrease.
var ErrUnknownDirection = eris.New("compare: unknown change direction")

// ParseDirection resolves a change status value.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "increase":
		return Increase, nil
	case "decrease":
		return Decrease, nil
	}
	return 0, eris.Wrapf(ErrUnknownDirection, "status %q", s)
}

func (d Direction) String() string {
	switch d {
	case Increase:
		return "increase"
	case Decrease:
		return "decrease"
	}
	return "unknown"
}

type capture struct {
	phase float64
	share float64
}

// ChangedRetailers finds retailers whose share for the provider moved in
// the given direction between their two most recent distinct capture
// phases. Only retailers with at least two distinct phases qualify, and a
// change of exactly zero matches neither direction. Qualifying ids are
// joined against board rows for name and coordinates; ids without a
// located board row are dropped. The result is ordered by retailer id.
//
// An unknown provider or the "all" pseudo-provider yields no retailers.
func ChangedRetailers(posm, board *table.Table, providerValue string, dir Direction) []retailer.Retailer {
	out := []retailer.Retailer{}
	p, ok := provider.Lookup(providerValue)
	if !ok || posm.IsEmpty() {
		return out
	}
	col := provider.AreaColumn(p)
	if !posm.HasColumn(col) || !posm.HasColumn(phase.Column) {
		return out
	}

	// The first row seen for each (retailer, phase) represents that batch.
	byRetailer := make(map[string][]capture)
	posm.Each(func(r table.Row) bool {
		id, ok := r.String(filter.RetailerIDColumn)
		if !ok {
			return true
		}
		ph, ok := phase.Of(r)
		if !ok {
			return true
		}
		for _, c := range byRetailer[id] {
			if c.phase == ph {
				return true
			}
		}
		byRetailer[id] = append(byRetailer[id], capture{phase: ph, share: r.Number(col)})
		return true
	})

	var changed []string
	for id, caps := range byRetailer {
		if len(caps) < 2 {
			continue
		}
		sort.SliceStable(caps, func(i, j int) bool { return caps[i].phase > caps[j].phase })
		delta := caps[0].share - caps[1].share
		if (dir == Increase && delta > 0) || (dir == Decrease && delta < 0) {
			changed = append(changed, id)
		}
	}
	if len(changed) == 0 {
		return out
	}
	sort.Strings(changed)

	located := retailer.NewIndex(board)
	for _, id := range changed {
		if r, ok := located[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

// AvailableBatches lists the retailer's distinct capture phases, oldest
// first. Phases sort numerically when every phase is numeric and as text
// otherwise.
func AvailableBatches(t *table.Table, retailerID string) []options.Option {
	out := []options.Option{}
	rows := forRetailer(t, retailerID)
	if !rows.HasColumn(phase.Column) {
		return out
	}

	type entry struct {
		label string
		num   float64
	}
	var (
		entries []entry
		allNum  = true
		seen    = make(map[string]struct{})
	)
	rows.Each(func(r table.Row) bool {
		label := phase.Label(r)
		if label == "" {
			return true
		}
		if _, dup := seen[label]; dup {
			return true
		}
		seen[label] = struct{}{}
		v, ok := phase.Of(r)
		allNum = allNum && ok
		entries = append(entries, entry{label: label, num: v})
		return true
	})

	sort.SliceStable(entries, func(i, j int) bool {
		if allNum {
			return entries[i].num < entries[j].num
		}
		return entries[i].label < entries[j].label
	})
	for _, e := range entries {
		out = append(out, options.Option{Value: e.label, Label: "Batch " + e.label})
	}
	return out
}
