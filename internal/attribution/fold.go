// Package attribution turns a wide survey row, with one column per provider
// and board type, into the single provider and board type it represents.
package attribution

import (
	"math"

	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/table"
)

// Candidate is one (provider, board type, column) tuple considered by Fold.
// BoardType is ignored for posm shares.
type Candidate struct {
	Provider  provider.Provider
	BoardType provider.BoardType
	Column    string
}

// Best is the accumulator of Fold.
type Best struct {
	Candidate Candidate
	Value     float64
	Found     bool
}

// Fold reduces candidates to the one with the highest value. A candidate
// replaces the current best only when strictly greater, so ties keep the
// first candidate in iteration order. Values must exceed floor to be
// considered at all. Absent columns are skipped.
func Fold(r table.Row, candidates []Candidate, floor float64) Best {
	best := Best{Value: floor}
	for _, c := range candidates {
		f := r.Field(c.Column)
		if !f.Known() {
			continue
		}
		if v := f.Number(); v > best.Value {
			best = Best{Candidate: c, Value: v, Found: true}
		}
	}
	return best
}

// Positive folds with a zero floor: only values > 0 can win.
func Positive(r table.Row, candidates []Candidate) Best {
	return Fold(r, candidates, 0)
}

// ArgMax folds with no floor: the first present column holding the row
// maximum wins, even when that maximum is zero.
func ArgMax(r table.Row, candidates []Candidate) Best {
	return Fold(r, candidates, math.Inf(-1))
}

// BoardCandidates lists the board count columns to scan, providers in
// registry order and board types in scan order within each provider.
// Zero-valued restrictions mean "all".
func BoardCandidates(providers []provider.Provider, types []provider.BoardType) []Candidate {
	if len(providers) == 0 {
		providers = provider.All()
	}
	if len(types) == 0 {
		types = provider.BoardTypes()
	}
	out := make([]Candidate, 0, len(providers)*len(types))
	for _, p := range providers {
		for _, bt := range types {
			out = append(out, Candidate{Provider: p, BoardType: bt, Column: provider.BoardColumn(p, bt)})
		}
	}
	return out
}

// AreaCandidates lists every provider's posm share column in registry order.
func AreaCandidates() []Candidate {
	out := make([]Candidate, 0, len(provider.All()))
	for _, p := range provider.All() {
		out = append(out, Candidate{Provider: p, Column: provider.AreaColumn(p)})
	}
	return out
}
