// Package metrics registers the Prometheus collectors exported by rxkeeper.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TaskOperations counts task store mutations by operation (add, update, remove).
	TaskOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rxkeeper_task_operations_total",
			Help: "Total number of committed task store mutations",
		},
		[]string{"operation"},
	)

	// TaskEvents counts recorded ledger events by outcome (completed, missed).
	TaskEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rxkeeper_task_events_total",
			Help: "Total number of completion and miss events recorded",
		},
		[]string{"outcome"},
	)

	// Reschedules counts reminder rebuilds by result (ok, error).
	Reschedules = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rxkeeper_reminder_reschedules_total",
			Help: "Total number of reminder reschedule calls",
		},
		[]string{"result"},
	)

	// ReportsGenerated counts caregiver report runs by result (ok, error).
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rxkeeper_reports_generated_total",
			Help: "Total number of caregiver report generations",
		},
		[]string{"result"},
	)

	// StorageDuration observes storage port calls.
	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rxkeeper_storage_duration_seconds",
			Help:    "Storage read/write duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"operation", "collection"},
	)

	// StorageErrors counts failed storage port calls.
	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rxkeeper_storage_errors_total",
			Help: "Total number of failed storage calls",
		},
		[]string{"operation", "collection"},
	)
)

// Outcome maps a completion flag to the TaskEvents label.
func Outcome(completed bool) string {
	if completed {
		return "completed"
	}
	return "missed"
}

// Result maps an error to the result label of Reschedules and ReportsGenerated.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
