package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/table"
)

type fakeSource struct {
	name   string
	header []string
	rows   [][]string
	err    error
	calls  atomic.Int32
	closed bool
}

func (f *fakeSource) Load(context.Context) (*table.Table, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return table.New(f.name, f.header, f.rows), nil
}

func (f *fakeSource) String() string { return "fake:" + f.name }

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func fullHeader(cols []string) []string {
	return append([]string{"PROFILE_ID"}, cols...)
}

func boardCols() []string {
	var cols []string
	for _, p := range provider.All() {
		for _, bt := range provider.BoardTypes() {
			cols = append(cols, provider.BoardColumn(p, bt))
		}
	}
	return cols
}

func TestCurrent_NotLoaded(t *testing.T) {
	s := New(&fakeSource{}, &fakeSource{}, Options{})
	_, err := s.Current()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLoad_Publishes(t *testing.T) {
	board := &fakeSource{name: "board", header: []string{"PROFILE_ID"}, rows: [][]string{{"R1"}, {"R2"}}}
	posm := &fakeSource{name: "posm", header: []string{"PROFILE_ID"}, rows: [][]string{{"R1"}}}
	s := New(board, posm, Options{})

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, 2, snap.Board.Len())
	assert.Equal(t, 1, snap.Posm.Len())
	assert.Same(t, snap.Posm, snap.Table(filter.Posm))
	assert.Same(t, snap.Board, snap.Table(filter.Board))
	assert.False(t, snap.BoardCoverage.Complete())

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, snap, cur)
}

func TestLoad_FailureKeepsPrevious(t *testing.T) {
	board := &fakeSource{name: "board", header: []string{"PROFILE_ID"}, rows: [][]string{{"R1"}}}
	posm := &fakeSource{name: "posm", header: []string{"PROFILE_ID"}}
	s := New(board, posm, Options{})

	first, err := s.Load(context.Background())
	require.NoError(t, err)

	posm.err = errors.New("disk gone")
	_, err = s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load posm")

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, first, cur)
}

func TestLoad_NewSnapshotEachTime(t *testing.T) {
	s := New(&fakeSource{name: "board"}, &fakeSource{name: "posm"}, Options{})
	a, err := s.Load(context.Background())
	require.NoError(t, err)
	b, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestLoad_StrictColumns(t *testing.T) {
	board := &fakeSource{name: "board", header: fullHeader(boardCols())}
	posm := &fakeSource{name: "posm", header: fullHeader(provider.AreaColumns()[:2])}
	s := New(board, posm, Options{StrictColumns: true})

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "posm is missing 2 provider columns")

	_, err = s.Current()
	assert.ErrorIs(t, err, ErrNotLoaded)

	posm.header = fullHeader(provider.AreaColumns())
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.PosmCoverage.Complete())
	assert.True(t, snap.BoardCoverage.Complete())
}

func TestLoad_StrictRequiresRetailerID(t *testing.T) {
	board := &fakeSource{name: "board", header: boardCols()}
	posm := &fakeSource{name: "posm", header: fullHeader(provider.AreaColumns())}
	_, err := New(board, posm, Options{StrictColumns: true}).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retailer id present: false")
}

func TestLoad_ConcurrentReaders(t *testing.T) {
	s := New(&fakeSource{name: "board", header: []string{"PROFILE_ID"}, rows: [][]string{{"R1"}}},
		&fakeSource{name: "posm"}, Options{})
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Load(context.Background())
		}()
		go func() {
			defer wg.Done()
			snap, err := s.Current()
			if assert.NoError(t, err) {
				assert.Equal(t, 1, snap.Board.Len())
			}
		}()
	}
	wg.Wait()
}

func TestLoad_MissingSource(t *testing.T) {
	_, err := New(nil, &fakeSource{name: "posm"}, Options{}).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source configured for board")
}

func TestClose(t *testing.T) {
	board, posm := &fakeSource{}, &fakeSource{}
	require.NoError(t, New(board, posm, Options{}).Close())
	assert.True(t, board.closed)
	assert.True(t, posm.closed)
}
