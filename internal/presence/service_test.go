package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/retail-presence/internal/compare"
	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/geo"
	"github.com/sells-group/retail-presence/internal/store"
	"github.com/sells-group/retail-presence/internal/table"
)

type staticSnapshots struct {
	snap *store.Snapshot
	err  error
}

func (s staticSnapshots) Current() (*store.Snapshot, error) { return s.snap, s.err }

var boardHeader = []string{
	"PROFILE_ID", "PROFILE_NAME", "PROVINCE", "DISTRICT", "IMAGE_REF_ID", "CAPTURE_PHASE",
	"LATITUDE", "LONGITUDE", "DIALOG_NAME_BOARD", "DIALOG_TIN_BOARD", "MOBITEL_TIN_BOARD",
	"MOBITEL_SIDE_BOARD", "S3_ARN", "INF_S3_ARN",
}

var posmHeader = []string{
	"PROFILE_ID", "PROFILE_NAME", "DISTRICT", "IMAGE_REF_ID", "CAPTURE_PHASE",
	"DIALOG_AREA_PERCENTAGE", "MOBITEL_AREA_PERCENTAGE", "S3_ARN", "INF_S3_ARN",
}

func fixture() *store.Snapshot {
	board := table.New("board", boardHeader, [][]string{
		{"R1", "Shop One", "Western Province", "Colombo", "img-1", "2", "6.9", "79.8", "1", "0", "0", "0", "arn:o1", "arn:d1"},
		{"R1", "Shop One", "Western Province", "Colombo", "img-2", "2", "6.9", "79.8", "0", "0", "1", "0", "arn:o2", ""},
		{"R2", "Shop Two", "Central", "Kandy", "img-3", "", "7.2", "80.6", "0", "2", "0", "3", "", ""},
		{"R3", "Shop Three", "Central", "Kandy", "img-4", "1", "7.3", "80.7", "5", "0", "0", "0", "", ""},
	})
	posm := table.New("posm", posmHeader, [][]string{
		{"R1", "Shop One", "Colombo", "p-1", "1", "20", "10", "arn:p1", ""},
		{"R1", "Shop One", "Colombo", "p-2", "2", "50", "30", "arn:p2", "arn:pi2"},
		{"R2", "Shop Two", "Kandy", "p-3", "2", "40", "60", "", ""},
	})
	return &store.Snapshot{ID: "snap-1", Board: board, Posm: posm}
}

func newService(b *geo.Boundaries) *Service {
	return NewService(staticSnapshots{snap: fixture()}, b)
}

func TestBoards_LatestPhaseAndAttribution(t *testing.T) {
	out, err := newService(nil).Boards(filter.Spec{})
	require.NoError(t, err)

	// R3 sits at an older phase; R2's missing phase counts as latest.
	require.Equal(t, 3, out.Count)
	assert.Equal(t, "img-1", out.Data[0].ID)
	assert.Equal(t, "Dialog", out.Data[0].Provider)
	assert.Equal(t, "dealer", out.Data[0].BoardType)
	assert.Equal(t, "arn:d1", out.Data[0].DetectedImage)
	assert.Equal(t, "Mobitel", out.Data[1].Provider)
	assert.Equal(t, "tin", out.Data[1].BoardType)
	assert.Equal(t, "Mobitel", out.Data[2].Provider)
	assert.Equal(t, "vertical", out.Data[2].BoardType)
	assert.Equal(t, 3, out.Data[2].Value)
	assert.Equal(t, 2, out.Data[2].Counts["DIALOG_TIN_BOARD"])
	assert.NotContains(t, out.Data[2].Counts, "AIRTEL_TIN_BOARD")
	assert.Equal(t, "Western Province", out.Data[0].Province)

	counts := map[string]int{}
	for _, m := range out.ProviderMetrics {
		counts[m.Provider] = *m.Count
	}
	assert.Equal(t, map[string]int{"Dialog": 2, "Mobitel": 2, "Airtel": 0, "Hutch": 0}, counts)
}

func TestBoards_FixedProvider(t *testing.T) {
	out, err := newService(nil).Boards(filter.Spec{Provider: "dialog", Province: "western_province"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Dialog", out.Data[0].Provider)
	assert.Equal(t, "R1", out.Data[0].RetailerID)
}

func TestBoards_UnknownProviderFailsClosed(t *testing.T) {
	out, err := newService(nil).Boards(filter.Spec{Provider: "acme"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	assert.NotNil(t, out.Data)
	assert.Empty(t, out.ProviderMetrics)
}

func TestPosmGeneral(t *testing.T) {
	out, err := newService(nil).PosmGeneral(filter.Spec{})
	require.NoError(t, err)

	require.Equal(t, 2, out.Count)
	assert.Equal(t, "Dialog", out.Data[0].Provider)
	assert.InDelta(t, 50, out.Data[0].VisibilityPercentage, 1e-9)
	assert.Equal(t, "arn:pi2", out.Data[0].DetectedImage)
	assert.Equal(t, "Mobitel", out.Data[1].Provider)
	assert.InDelta(t, 40, out.Data[1].Shares["DIALOG_AREA_PERCENTAGE"], 1e-9)

	pct := map[string]float64{}
	for _, m := range out.ProviderMetrics {
		pct[m.Provider] = *m.Percentage
	}
	assert.InDelta(t, 45, pct["Dialog"], 1e-9)
	assert.InDelta(t, 45, pct["Mobitel"], 1e-9)
	assert.InDelta(t, 0, pct["Hutch"], 1e-9)
}

func TestPosmGeneral_Dominance(t *testing.T) {
	out, err := newService(nil).PosmGeneral(filter.Spec{Provider: "dialog", Dominance: filter.Dominant})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "R1", out.Data[0].RetailerID)
}

func TestRetailers(t *testing.T) {
	svc := newService(nil)

	all, err := svc.Retailers(filter.Spec{}, filter.Board)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	kandy, err := svc.Retailers(filter.Spec{District: "kandy"}, filter.Board)
	require.NoError(t, err)
	require.Len(t, kandy, 2)
	assert.Equal(t, "R2", kandy[0].ID)

	// posm rows carry no coordinates.
	posm, err := svc.Retailers(filter.Spec{}, filter.Posm)
	require.NoError(t, err)
	assert.Empty(t, posm)
}

func TestOptions(t *testing.T) {
	svc := newService(nil)
	opts, err := svc.Options(filter.ProvinceLevel, filter.Spec{Province: "central"}, filter.Board)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, "central", opts[0].Value)
	assert.Equal(t, "western_province", opts[1].Value)

	districts, err := svc.Options(filter.DistrictLevel, filter.Spec{Province: "central"}, filter.Board)
	require.NoError(t, err)
	require.Len(t, districts, 1)
	assert.Equal(t, "Kandy", districts[0].Label)
}

func TestComparison(t *testing.T) {
	svc := newService(nil)

	res, err := svc.Comparison("R1", "1", "2")
	require.NoError(t, err)
	require.Len(t, res.Differences, 2)
	assert.Equal(t, compare.Diff{Provider: "Dialog", Diff: 30}, res.Differences[0])

	latest, err := svc.Comparison("R1", "", "")
	require.NoError(t, err)
	assert.Equal(t, res.Differences, latest.Differences)

	_, err = svc.Comparison("R9", "1", "2")
	assert.ErrorIs(t, err, compare.ErrRetailerNotFound)

	_, err = svc.Comparison("", "1", "2")
	assert.ErrorIs(t, err, compare.ErrRetailerNotFound)
}

func TestChangedRetailersAndBatches(t *testing.T) {
	svc := newService(nil)

	up, err := svc.ChangedRetailers("dialog", compare.Increase)
	require.NoError(t, err)
	require.Len(t, up, 1)
	assert.Equal(t, "Shop One", up[0].Name)

	down, err := svc.ChangedRetailers("dialog", compare.Decrease)
	require.NoError(t, err)
	assert.Empty(t, down)

	batches, err := svc.Batches("R1")
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "Batch 1", batches[0].Label)
}

func TestNotLoaded(t *testing.T) {
	svc := NewService(staticSnapshots{err: store.ErrNotLoaded}, nil)

	_, err := svc.Boards(filter.Spec{})
	assert.ErrorIs(t, err, store.ErrNotLoaded)
	_, err = svc.PosmGeneral(filter.Spec{})
	assert.ErrorIs(t, err, store.ErrNotLoaded)
	_, err = svc.Retailers(filter.Spec{}, filter.Board)
	assert.ErrorIs(t, err, store.ErrNotLoaded)
	_, err = svc.Comparison("R1", "1", "2")
	assert.ErrorIs(t, err, store.ErrNotLoaded)
}

func TestDistrictShares_NoBoundaries(t *testing.T) {
	_, err := newService(nil).DistrictShares(filter.Spec{}, filter.Posm)
	assert.ErrorIs(t, err, geo.ErrNoBoundaries)
}

func TestDistrictValues(t *testing.T) {
	snap := fixture()

	posm := DistrictValues(snap.Posm, filter.Spec{Provider: "dialog"}, filter.Posm)
	assert.Equal(t, map[string]float64{"colombo": 35, "kandy": 40}, posm)

	main := DistrictValues(snap.Posm, filter.Spec{}, filter.Posm)
	assert.InDelta(t, 35, main["colombo"], 1e-9)
	assert.InDelta(t, 60, main["kandy"], 1e-9)

	board := DistrictValues(snap.Board, filter.Spec{District: "colombo"}, filter.Board)
	assert.Equal(t, map[string]float64{"colombo": 1, "kandy": 2}, board)

	dialog := DistrictValues(snap.Board, filter.Spec{Provider: "dialog"}, filter.Board)
	assert.Equal(t, map[string]float64{"colombo": 1, "kandy": 2}, dialog)

	tin := DistrictValues(snap.Board, filter.Spec{BoardType: "tin"}, filter.Board)
	assert.Equal(t, map[string]float64{"colombo": 1, "kandy": 1}, tin)
}

func TestDistrictShares(t *testing.T) {
	b := &geo.Boundaries{Districts: []geo.District{{Name: "Colombo", Key: "colombo"}, {Name: "Galle", Key: "galle"}}}
	fc, err := newService(b).DistrictShares(filter.Spec{Provider: "dialog"}, filter.Posm)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.InDelta(t, 50, fc.Features[0].Properties["value"], 1e-9)
	assert.Nil(t, fc.Features[1].Properties["value"])
}
