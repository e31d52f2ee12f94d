// Package presence answers dashboard queries by running a published
// snapshot through phase selection, filtering, attribution and
// aggregation.
package presence

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/retail-presence/internal/aggregate"
	"github.com/sells-group/retail-presence/internal/compare"
	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/geo"
	"github.com/sells-group/retail-presence/internal/options"
	"github.com/sells-group/retail-presence/internal/phase"
	"github.com/sells-group/retail-presence/internal/retailer"
	"github.com/sells-group/retail-presence/internal/store"
	"github.com/sells-group/retail-presence/internal/table"
)

// Snapshots hands out the currently published snapshot.
type Snapshots interface {
	Current() (*store.Snapshot, error)
}

// Boards is the board dashboard payload.
type Boards struct {
	Data            []BoardRecord              `json:"data"`
	Count           int                        `json:"count"`
	ProviderMetrics []aggregate.ProviderMetric `json:"providerMetrics"`
}

// PosmGeneral is the posm dashboard payload.
type PosmGeneral struct {
	Data            []PosmRecord               `json:"data"`
	Count           int                        `json:"count"`
	ProviderMetrics []aggregate.ProviderMetric `json:"providerMetrics"`
}

// Service runs queries against whatever snapshot is current when the call
// starts. A call never sees two snapshots.
type Service struct {
	snapshots  Snapshots
	boundaries *geo.Boundaries
}

// NewService creates a Service. boundaries may be nil when no district
// shapefile is configured.
func NewService(snapshots Snapshots, boundaries *geo.Boundaries) *Service {
	return &Service{snapshots: snapshots, boundaries: boundaries}
}

// Boards returns the attributed latest-phase board captures matching spec,
// with per-provider retailer counts.
func (s *Service) Boards(spec filter.Spec) (Boards, error) {
	snap, err := s.snapshots.Current()
	if err != nil {
		return Boards{}, err
	}
	rows := filter.Apply(phase.SelectLatest(snap.Board), spec, filter.Board)

	sel := spec.Selection()
	out := Boards{Data: make([]BoardRecord, 0, rows.Len())}
	rows.Each(func(r table.Row) bool {
		out.Data = append(out.Data, boardRecord(r, sel))
		return true
	})
	out.Count = len(out.Data)
	out.ProviderMetrics = aggregate.Board(rows, spec)
	return out, nil
}

// PosmGeneral returns the attributed latest-phase posm captures matching
// spec, with per-provider average shares.
func (s *Service) PosmGeneral(spec filter.Spec) (PosmGeneral, error) {
	snap, err := s.snapshots.Current()
	if err != nil {
		return PosmGeneral{}, err
	}
	rows := filter.Apply(phase.SelectLatest(snap.Posm), spec, filter.Posm)

	out := PosmGeneral{Data: make([]PosmRecord, 0, rows.Len())}
	rows.Each(func(r table.Row) bool {
		out.Data = append(out.Data, posmRecord(r))
		return true
	})
	out.Count = len(out.Data)
	out.ProviderMetrics = aggregate.Posm(rows)
	return out, nil
}

// Retailers lists the located retailers of the chosen dataset matching
// spec, across all capture phases.
func (s *Service) Retailers(spec filter.Spec, ctx filter.Context) ([]retailer.Retailer, error) {
	snap, err := s.snapshots.Current()
	if err != nil {
		return nil, err
	}
	return retailer.List(filter.Apply(snap.Table(ctx), spec, ctx)), nil
}

// Options lists the values of one geography level, narrowed by the
// criteria of coarser levels.
func (s *Service) Options(level filter.Level, spec filter.Spec, ctx filter.Context) ([]options.Option, error) {
	snap, err := s.snapshots.Current()
	if err != nil {
		return nil, err
	}
	return options.ForLevel(snap.Table(ctx), spec, ctx, level), nil
}

// Comparison contrasts two posm batches of a retailer. When batchB is
// empty the retailer's latest batch is used; when both are empty the two
// latest batches are compared.
func (s *Service) Comparison(retailerID, batchA, batchB string) (compare.Result, error) {
	snap, err := s.snapshots.Current()
	if err != nil {
		return compare.Result{}, err
	}
	if !filter.IsSet(retailerID) {
		return compare.Result{}, eris.Wrap(compare.ErrRetailerNotFound, "presence: retailer id is required")
	}
	if batchA == "" || batchB == "" {
		batches := compare.AvailableBatches(snap.Posm, retailerID)
		n := len(batches)
		if batchB == "" && n > 0 {
			batchB = batches[n-1].Value
		}
		if batchA == "" && n > 1 {
			batchA = batches[n-2].Value
		}
	}
	return compare.Compare(snap.Posm, retailerID, batchA, batchB)
}

// ChangedRetailers lists retailers whose share for the provider moved in
// the given direction between their two latest posm batches.
func (s *Service) ChangedRetailers(providerValue string, dir compare.Direction) ([]retailer.Retailer, error) {
	snap, err := s.snapshots.Current()
	if err != nil {
		return nil, err
	}
	return compare.ChangedRetailers(snap.Posm, snap.Board, providerValue, dir), nil
}

// Batches lists the retailer's posm capture phases.
func (s *Service) Batches(retailerID string) ([]options.Option, error) {
	snap, err := s.snapshots.Current()
	if err != nil {
		return nil, err
	}
	return compare.AvailableBatches(snap.Posm, retailerID), nil
}

// DistrictShares merges per-district values of the latest-phase table into
// the district boundaries.
func (s *Service) DistrictShares(spec filter.Spec, ctx filter.Context) (*geojson.FeatureCollection, error) {
	if s.boundaries.Len() == 0 {
		return nil, geo.ErrNoBoundaries
	}
	snap, err := s.snapshots.Current()
	if err != nil {
		return nil, err
	}
	latest := phase.SelectLatest(snap.Table(ctx))
	return geo.FeatureCollection(s.boundaries, DistrictValues(latest, spec, ctx))
}
