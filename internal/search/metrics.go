package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes recorded in hrai_search_requests_total.
const (
	outcomeOK       = "ok"
	outcomeDegraded = "degraded"
	outcomeInvalid  = "invalid"
	outcomeCanceled = "canceled"
)

// Metrics holds the Prometheus collectors owned by the search engine.
type Metrics struct {
	// requests counts searches by mode and outcome. "degraded" means a
	// retrieval or hydration failure was absorbed into an empty page.
	requests *prometheus.CounterVec

	// stageDuration records the latency of each pipeline stage.
	stageDuration *prometheus.HistogramVec

	// hydrationMisses counts retrieved IDs with no record in the store.
	hydrationMisses prometheus.Counter

	// results observes the number of results per returned page.
	results prometheus.Histogram
}

// NewMetrics registers the search metrics against reg. A nil reg creates
// unregistered collectors, which is what tests and the one-shot CLI use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrai",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of search requests, partitioned by mode and outcome.",
		}, []string{"mode", "outcome"}),

		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hrai",
			Subsystem: "search",
			Name:      "stage_duration_seconds",
			Help:      "Latency of search pipeline stages.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"stage"}),

		hydrationMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "hrai",
			Subsystem: "search",
			Name:      "hydration_misses_total",
			Help:      "Retrieved candidate IDs that had no record in the relational store.",
		}),

		results: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hrai",
			Subsystem: "search",
			Name:      "page_results",
			Help:      "Number of results returned per search page.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}),
	}
}
