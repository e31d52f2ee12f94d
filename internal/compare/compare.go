// Package compare contrasts posm captures of a retailer across capture
// phases.
package compare

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/retail-presence/internal/aggregate"
	"github.com/sells-group/retail-presence/internal/attribution"
	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/phase"
	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/table"
)

// PlaceholderImage is reported for a batch side without a usable image.
const PlaceholderImage = "/assets/sample-retailer-placeholder.png"

// ErrRetailerNotFound is returned when the retailer has no rows at all.
var ErrRetailerNotFound = eris.New("compare: retailer not found")

// Share is one provider's percentage in a batch.
type Share struct {
	Provider   string  `json:"provider"`
	Percentage float64 `json:"percentage"`
}

// Batch is one side of a comparison.
type Batch struct {
	Image  string  `json:"image"`
	Shares []Share `json:"shares"`
	Phase  string  `json:"maxCapturePhase,omitempty"`
	Found  bool    `json:"found"`
}

// Diff is a provider's signed share change from the first batch to the
// second.
type Diff struct {
	Provider string  `json:"provider"`
	Diff     float64 `json:"diff"`
}

// Result is a two-batch comparison.
type Result struct {
	Batch1      Batch  `json:"batch1"`
	Batch2      Batch  `json:"batch2"`
	Differences []Diff `json:"differences"`
}

// Compare contrasts the retailer's capture at phaseA with the one at phaseB.
// A phase without rows yields an empty side rather than an error.
func Compare(t *table.Table, retailerID, phaseA, phaseB string) (Result, error) {
	rows := forRetailer(t, retailerID)
	if rows.IsEmpty() {
		return Result{}, eris.Wrapf(ErrRetailerNotFound, "retailer %q", retailerID)
	}

	a := batchAt(rows, phaseA)
	b := batchAt(rows, phaseB)
	return Result{Batch1: a, Batch2: b, Differences: diff(a, b)}, nil
}

func forRetailer(t *table.Table, id string) *table.Table {
	if !t.HasColumn(filter.RetailerIDColumn) {
		return t.Clear()
	}
	return t.Filter(func(r table.Row) bool {
		v, ok := r.String(filter.RetailerIDColumn)
		return ok && v == id
	})
}

// batchAt describes the first row of the phase.
func batchAt(rows *table.Table, id string) Batch {
	out := Batch{Image: PlaceholderImage, Shares: []Share{}, Phase: id}
	rows.Each(func(r table.Row) bool {
		if !phase.Matches(r, id) {
			return true
		}
		out = fromRow(r)
		return false
	})
	return out
}

func fromRow(r table.Row) Batch {
	out := Batch{Image: PlaceholderImage, Shares: []Share{}, Phase: phase.Label(r), Found: true}
	for _, p := range provider.All() {
		if v := r.Number(provider.AreaColumn(p)); v > 0 {
			out.Shares = append(out.Shares, Share{Provider: p.Name(), Percentage: aggregate.Round1(v)})
		}
	}
	if img, ok := r.String(attribution.DetectedImageColumn); ok {
		out.Image = img
	} else if img, ok := r.String(attribution.OriginalImageColumn); ok {
		out.Image = img
	}
	return out
}

// diff covers the union of providers on either side, in registry order.
// A provider absent from one side counts as 0 there.
func diff(a, b Batch) []Diff {
	shareOf := func(bt Batch, name string) (float64, bool) {
		for _, s := range bt.Shares {
			if s.Provider == name {
				return s.Percentage, true
			}
		}
		return 0, false
	}

	out := []Diff{}
	for _, p := range provider.All() {
		va, inA := shareOf(a, p.Name())
		vb, inB := shareOf(b, p.Name())
		if !inA && !inB {
			continue
		}
		out = append(out, Diff{Provider: p.Name(), Diff: aggregate.Round1(vb - va)})
	}
	return out
}
