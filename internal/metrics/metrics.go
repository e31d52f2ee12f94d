// Package metrics holds the Prometheus collectors for the API and the
// snapshot loader.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retail_presence_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retail_presence_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retail_presence_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Snapshot metrics
	DatasetLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retail_presence_dataset_load_duration_seconds",
			Help:    "Duration of a single dataset load in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"dataset"},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "retail_presence_dataset_rows",
			Help: "Rows in the published snapshot per dataset",
		},
		[]string{"dataset"},
	)

	DatasetMissingColumns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "retail_presence_dataset_missing_provider_columns",
			Help: "Expected provider columns absent from the published dataset",
		},
		[]string{"dataset"},
	)

	SnapshotLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retail_presence_snapshot_loads_total",
			Help: "Snapshot load attempts by result",
		},
		[]string{"result"}, // "published", "failed", "throttled"
	)

	SnapshotPublishedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retail_presence_snapshot_published_timestamp_seconds",
			Help: "Unix time of the last published snapshot",
		},
	)
)

// Snapshot load results.
const (
	LoadPublished = "published"
	LoadFailed    = "failed"
	LoadThrottled = "throttled"
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordDatasetLoad records one dataset read.
func RecordDatasetLoad(dataset string, duration time.Duration) {
	DatasetLoadDuration.WithLabelValues(dataset).Observe(duration.Seconds())
}

// RecordPublished records the shape of a newly published dataset.
func RecordPublished(dataset string, rows, missingColumns int) {
	DatasetRows.WithLabelValues(dataset).Set(float64(rows))
	DatasetMissingColumns.WithLabelValues(dataset).Set(float64(missingColumns))
}

// RecordSnapshotLoad counts a load attempt. The publish timestamp moves
// only for published snapshots.
func RecordSnapshotLoad(result string, at time.Time) {
	SnapshotLoadsTotal.WithLabelValues(result).Inc()
	if result == LoadPublished {
		SnapshotPublishedTimestamp.Set(float64(at.Unix()))
	}
}
