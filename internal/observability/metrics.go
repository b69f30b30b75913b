// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the indexer.
type Metrics struct {
	// Ingestion metrics
	EventsProcessed  *prometheus.CounterVec // by event_type
	ProcessingErrors *prometheus.CounterVec // by event_type
	BlocksProcessed  prometheus.Counter
	LastBlock        prometheus.Gauge

	// Handler latency
	EventProcessingLatency *prometheus.HistogramVec // by event_type
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fate_rewards_indexer"
	}

	return &Metrics{
		EventsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_processed_total",
			Help:      "Total number of controller events processed",
		}, []string{"event_type"}),
		ProcessingErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "event_processing_errors_total",
			Help:      "Total number of event processing errors",
		}, []string{"event_type"}),
		BlocksProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "blocks_processed_total",
			Help:      "Total number of blocks scanned for controller logs",
		}),
		LastBlock: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "last_processed_block",
			Help:      "Highest fully processed block number",
		}),
		EventProcessingLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "event_processing_seconds",
			Help:      "Time spent applying one event to the ledger",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
