package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sells-group/retail-presence/internal/aggregate"
	"github.com/sells-group/retail-presence/internal/presence"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func sampleReport() Report {
	return Report{
		Boards: &presence.Boards{
			Data: []presence.BoardRecord{{
				ID: "img-1", RetailerID: "R1", Provider: "Dialog", BoardType: "dealer", Value: 2,
				Geography: presence.Geography{Province: "Western Province"},
				Counts:    map[string]int{"DIALOG_NAME_BOARD": 2},
			}},
			Count:           1,
			ProviderMetrics: []aggregate.ProviderMetric{{Provider: "Dialog", Count: intPtr(1)}},
		},
		Posm: &presence.PosmGeneral{
			Data: []presence.PosmRecord{{
				ID: "p-1", RetailerID: "R1", Provider: "Mobitel", VisibilityPercentage: 61.5,
				Shares: map[string]float64{"MOBITEL_AREA_PERCENTAGE": 61.5},
			}},
			Count:           1,
			ProviderMetrics: []aggregate.ProviderMetric{{Provider: "Mobitel", Percentage: floatPtr(61.5)}},
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{BoardsSheet, PosmSheet, MetricsSheet}, f.GetSheetList())

	boards, err := f.GetRows(BoardsSheet)
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Equal(t, "id", boards[0][0])
	assert.Equal(t, "img-1", boards[1][0])
	assert.Contains(t, boards[0], "DIALOG_NAME_BOARD")
	assert.Contains(t, boards[1], "Western Province")

	metrics, err := f.GetRows(MetricsSheet)
	require.NoError(t, err)
	require.Len(t, metrics, 3)
	assert.Equal(t, []string{"board", "Dialog", "1"}, metrics[1][:3])
	assert.Equal(t, "61.5", metrics[2][3])
}

func TestSave_BoardsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	r := sampleReport()
	r.Posm = nil
	require.NoError(t, Save(path, r))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	assert.Equal(t, []string{BoardsSheet, MetricsSheet}, f.GetSheetList())
}
