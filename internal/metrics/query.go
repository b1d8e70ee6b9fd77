package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Natural-language translation metrics.
var (
	TranslationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "nl_translations_total",
			Help:      "Natural-language query translations by outcome",
		},
		[]string{"outcome"}, // "ok" / "rejected"
	)

	RuleMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "nl_rule_matches_total",
			Help:      "Translation rules that fired",
		},
		[]string{"rule"},
	)
)

// Store metrics.
var (
	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend", "op"},
	)

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "store_errors_total",
			Help:      "Store operations that failed with a non-domain error",
		},
		[]string{"backend", "op"},
	)
)

// ObserveStore records the duration of a store operation and counts it as failed
// when failed is true.
func ObserveStore(backend, op string, start time.Time, failed bool) {
	StoreOperationDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
	if failed {
		StoreErrorsTotal.WithLabelValues(backend, op).Inc()
	}
}
