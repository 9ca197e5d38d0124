// ABOUTME: Prometheus counters for the background actors and query path
// ABOUTME: Exposed via the HTTP server's /metrics endpoint when enabled

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReadingsProduced counts readings appended by the producer.
	ReadingsProduced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sensorwatch_readings_produced_total",
		Help: "Number of readings appended by the producer.",
	})

	// AnomaliesInjected counts synthetic anomalies emitted by the producer.
	AnomaliesInjected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sensorwatch_anomalies_injected_total",
		Help: "Number of synthetic anomalous readings emitted by the producer.",
	})

	// ProducerErrors counts producer ticks that failed to append.
	ProducerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sensorwatch_producer_errors_total",
		Help: "Number of producer ticks skipped due to store errors.",
	})

	// ClassifierCycles counts classifier cycles by outcome.
	ClassifierCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sensorwatch_classifier_cycles_total",
		Help: "Number of classifier cycles by outcome.",
	}, []string{"outcome"})

	// LabelsApplied counts labels written back by the classifier.
	LabelsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sensorwatch_labels_applied_total",
		Help: "Number of validity labels applied to readings.",
	})

	// StaleBatchesDropped counts label batches dropped for belonging to a
	// generation that was reset while the classifier pass was in flight.
	StaleBatchesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sensorwatch_stale_batches_dropped_total",
		Help: "Number of classifier label batches dropped as stale.",
	})

	// Resets counts dataset resets by outcome.
	Resets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sensorwatch_resets_total",
		Help: "Number of dataset resets by outcome.",
	}, []string{"outcome"})

	// DashboardRequests counts dashboard queries by status.
	DashboardRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sensorwatch_dashboard_requests_total",
		Help: "Number of dashboard data requests by status.",
	}, []string{"status"})
)

// Cycle outcomes for ClassifierCycles and Resets.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
	OutcomeSkipped = "skipped"
)
