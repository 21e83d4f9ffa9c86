// Package middleware provides cross-cutting concerns for the scoring
// engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hireo/scoring-engine/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks scoring throughput, latency, score
// distributions, and match fallbacks across all engine components.
type PrometheusMetrics struct {
	scoringLatency   *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	fallbackCounter  *prometheus.CounterVec
	scoreDist        *prometheus.HistogramVec
}

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a PrometheusMetrics instance registered
// in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return newPrometheusMetrics(promauto.With(prometheus.DefaultRegisterer))
}

// NewPrometheusMetricsWith creates a PrometheusMetrics instance
// registered in the given registry. Tests use this to avoid global
// registration collisions.
func NewPrometheusMetricsWith(reg prometheus.Registerer) *PrometheusMetrics {
	return newPrometheusMetrics(promauto.With(reg))
}

func newPrometheusMetrics(factory promauto.Factory) *PrometheusMetrics {
	return &PrometheusMetrics{
		scoringLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scoring_latency_seconds",
				Help:    "Execution time of scoring operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "scorer"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoring_operations_total",
				Help: "Total number of scoring operations performed.",
			},
			[]string{"scorer"},
		),
		fallbackCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "match_fallbacks_total",
				Help: "Total number of candidates that received the neutral fallback score.",
			},
			[]string{"scorer"},
		),
		scoreDist: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "composite_score_distribution",
				Help:    "Distribution of composite scores produced by the engine.",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
			[]string{"scorer"},
		),
	}
}

// scorerLabel pulls the component identity out of the label map.
func scorerLabel(labels map[string]string) string {
	if scorer, ok := labels["scorer"]; ok && scorer != "" {
		return scorer
	}
	return "unknown"
}

// RecordLatency implements MetricsCollector by observing operation
// latency in seconds.
func (pm *PrometheusMetrics) RecordLatency(
	operation string, duration time.Duration, labels map[string]string,
) {
	pm.scoringLatency.WithLabelValues(operation, scorerLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements MetricsCollector by incrementing the counter
// matching the metric name. Unrecognized metrics fold into the general
// operation counter.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "match_fallbacks_total":
		pm.fallbackCounter.WithLabelValues(scorerLabel(labels)).Add(value)
	default:
		pm.operationCounter.WithLabelValues(scorerLabel(labels)).Add(value)
	}
}

// RecordHistogram implements MetricsCollector by recording score values
// in the score distribution histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	pm.scoreDist.WithLabelValues(scorerLabel(labels)).Observe(value)
}
