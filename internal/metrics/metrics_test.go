package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/boards", "200"))
	RecordAPIRequest("GET", "/api/boards", "200", 15*time.Millisecond)
	RecordAPIRequest("GET", "/api/boards", "200", 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/boards", "200"))
	assert.Equal(t, before+2, after)
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestRecordPublished(t *testing.T) {
	RecordPublished("posm", 120, 2)
	assert.Equal(t, 120.0, testutil.ToFloat64(DatasetRows.WithLabelValues("posm")))
	assert.Equal(t, 2.0, testutil.ToFloat64(DatasetMissingColumns.WithLabelValues("posm")))
}

func TestRecordSnapshotLoad(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)
	failedBefore := testutil.ToFloat64(SnapshotLoadsTotal.WithLabelValues(LoadFailed))

	RecordSnapshotLoad(LoadPublished, at)
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(SnapshotPublishedTimestamp))

	RecordSnapshotLoad(LoadFailed, at.Add(time.Hour))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(SnapshotPublishedTimestamp))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(SnapshotLoadsTotal.WithLabelValues(LoadFailed)))
}

func TestRecordDatasetLoad(t *testing.T) {
	RecordDatasetLoad("board", 250*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(DatasetLoadDuration))
}
