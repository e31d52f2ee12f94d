// Package store owns the published survey snapshot. A snapshot is built
// completely off to the side and then swapped in with one atomic pointer
// store, so readers never observe a partial reload.
package store

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/metrics"
	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/source"
	"github.com/sells-group/retail-presence/internal/table"
)

// Dataset names.
const (
	BoardDataset = "board"
	PosmDataset  = "posm"
)

// ErrNotLoaded is returned before the first snapshot is published.
var ErrNotLoaded = eris.New("store: no snapshot loaded")

// Snapshot is an immutable pair of survey tables.
type Snapshot struct {
	ID       string
	LoadedAt time.Time
	Board    *table.Table
	Posm     *table.Table

	BoardCoverage provider.Coverage
	PosmCoverage  provider.Coverage
}

// Table returns the dataset for a filter context.
func (s *Snapshot) Table(ctx filter.Context) *table.Table {
	if ctx == filter.Posm {
		return s.Posm
	}
	return s.Board
}

// Options configures a Store.
type Options struct {
	// StrictColumns rejects a snapshot whose datasets lack any expected
	// provider column or the retailer id column.
	StrictColumns bool
}

// Store loads and publishes snapshots.
type Store struct {
	board source.Source
	posm  source.Source
	opts  Options

	loadMu  sync.Mutex
	current atomic.Pointer[Snapshot]
}

// New creates a Store reading from the given sources. Nothing is loaded
// until Load is called.
func New(board, posm source.Source, opts Options) *Store {
	return &Store{board: board, posm: posm, opts: opts}
}

// Current returns the published snapshot.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Load reads both datasets concurrently, validates them and publishes the
// result. On failure the previously published snapshot stays current.
// Concurrent calls are serialized.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	log := zap.L().With(zap.String("component", "store"))
	start := time.Now()

	var board, posm *table.Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		board, err = loadOne(gctx, BoardDataset, s.board)
		return err
	})
	g.Go(func() error {
		var err error
		posm, err = loadOne(gctx, PosmDataset, s.posm)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.RecordSnapshotLoad(metrics.LoadFailed, time.Now())
		log.Error("snapshot load failed", zap.Error(err))
		return nil, err
	}

	snap := &Snapshot{
		ID:            uuid.NewString(),
		LoadedAt:      time.Now().UTC(),
		Board:         board,
		Posm:          posm,
		BoardCoverage: provider.BoardCoverage(board),
		PosmCoverage:  provider.PosmCoverage(posm),
	}
	if err := s.validate(snap); err != nil {
		metrics.RecordSnapshotLoad(metrics.LoadFailed, time.Now())
		log.Error("snapshot rejected", zap.Error(err))
		return nil, err
	}

	s.current.Store(snap)
	metrics.RecordPublished(BoardDataset, board.Len(), len(snap.BoardCoverage.Missing))
	metrics.RecordPublished(PosmDataset, posm.Len(), len(snap.PosmCoverage.Missing))
	metrics.RecordSnapshotLoad(metrics.LoadPublished, snap.LoadedAt)

	log.Info("snapshot published",
		zap.String("snapshot_id", snap.ID),
		zap.Int("board_rows", board.Len()),
		zap.Int("posm_rows", posm.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return snap, nil
}

func loadOne(ctx context.Context, dataset string, src source.Source) (*table.Table, error) {
	if src == nil {
		return nil, eris.Errorf("store: no source configured for %s", dataset)
	}
	start := time.Now()
	t, err := src.Load(ctx)
	metrics.RecordDatasetLoad(dataset, time.Since(start))
	if err != nil {
		return nil, eris.Wrapf(err, "store: load %s from %s", dataset, src)
	}
	zap.L().Debug("dataset loaded",
		zap.String("dataset", dataset),
		zap.String("source", src.String()),
		zap.Int("rows", t.Len()),
		zap.Int("columns", len(t.Columns())),
	)
	return t, nil
}

// validate logs missing columns, and rejects the snapshot for them in
// strict mode.
func (s *Store) validate(snap *Snapshot) error {
	checks := []struct {
		dataset string
		t       *table.Table
		cov     provider.Coverage
	}{
		{BoardDataset, snap.Board, snap.BoardCoverage},
		{PosmDataset, snap.Posm, snap.PosmCoverage},
	}
	for _, c := range checks {
		hasID := c.t.HasColumn(filter.RetailerIDColumn)
		if c.cov.Complete() && hasID {
			continue
		}
		zap.L().Warn("dataset is missing expected columns",
			zap.String("dataset", c.dataset),
			zap.Strings("missing_provider_columns", c.cov.Missing),
			zap.Bool("has_retailer_id", hasID),
		)
		if s.opts.StrictColumns {
			return eris.Errorf("store: %s is missing %d provider columns (retailer id present: %t)",
				c.dataset, len(c.cov.Missing), hasID)
		}
	}
	return nil
}

// Close releases sources that hold connections.
func (s *Store) Close() error {
	var first error
	for _, src := range []source.Source{s.board, s.posm} {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = eris.Wrap(err, "store: close source")
			}
		}
	}
	return first
}
