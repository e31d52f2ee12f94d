package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/table"
)

func loadedReport(t *testing.T) checkReport {
	t.Helper()
	env, err := initEnv(testConfig(t))
	require.NoError(t, err)
	defer env.Close()

	snap, err := env.Store.Load(context.Background())
	require.NoError(t, err)
	return buildReport(snap)
}

func TestBuildReport(t *testing.T) {
	r := loadedReport(t)
	require.Len(t, r.Datasets, 2)

	board := r.Datasets[0]
	assert.Equal(t, "board", board.Dataset)
	assert.Equal(t, 2, board.Rows)
	assert.True(t, board.HasRetailerID)
	assert.Contains(t, board.Coverage.Present, "DIALOG_NAME_BOARD")
	assert.Contains(t, board.Coverage.Missing, "HUTCH_SIDE_BOARD")
	require.NotNil(t, board.MinPhase)
	assert.Equal(t, 1.0, *board.MinPhase)
	assert.Equal(t, 2.0, *board.MaxPhase)

	posm := r.Datasets[1]
	assert.Equal(t, 3.0, *posm.MaxPhase)
	assert.ElementsMatch(t, []string{"AIRTEL_AREA_PERCENTAGE", "HUTCH_AREA_PERCENTAGE"}, posm.Coverage.Missing)
}

func TestPhaseRange_NoPhases(t *testing.T) {
	tbl := table.New("board", []string{"PROFILE_ID", "CAPTURE_PHASE"}, [][]string{{"R1", ""}, {"R2", "n/a"}})
	_, _, ok := phaseRange(tbl)
	assert.False(t, ok)

	r := describe("board", tbl, provider.Coverage{})
	assert.Nil(t, r.MinPhase)
	assert.Nil(t, r.MaxPhase)
}

func TestWriteReport_Formats(t *testing.T) {
	r := loadedReport(t)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeReport(&buf, r, "text"))
		out := buf.String()
		assert.Contains(t, out, "board: 2 rows")
		assert.Contains(t, out, "capture phases: 1 .. 2")
		assert.Contains(t, out, "missing HUTCH_AREA_PERCENTAGE")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeReport(&buf, r, "json"))
		var got checkReport
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, r.SnapshotID, got.SnapshotID)
		assert.Equal(t, 2, got.Datasets[1].Rows)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeReport(&buf, r, "yaml"))
		var got map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, r.SnapshotID, got["snapshot_id"])
		assert.Len(t, got["datasets"], 2)
	})

	t.Run("unknown", func(t *testing.T) {
		err := writeReport(&bytes.Buffer{}, r, "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown format")
	})
}
