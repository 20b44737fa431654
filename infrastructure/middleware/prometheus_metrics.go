// Package middleware provides cross-cutting concerns for the elicitation
// engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rewardlab/elicit/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of query selection,
// posterior sampling performance, and chain health for the elicitation
// engine.
type PrometheusMetrics struct {
	operationLatency *prometheus.HistogramVec
	eventCounter     *prometheus.CounterVec
	valueGauges      *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// all required metrics with the given registerer. Passing nil registers in
// the default global registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "elicit_operation_duration_seconds",
				Help:    "Execution time of elicitation operations (sampling, acquisition).",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "criterion", "query_type"},
		),
		eventCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "elicit_events_total",
				Help: "Counts of elicitation events such as queries selected and acquisition failures.",
			},
			[]string{"event", "criterion", "query_type"},
		),
		valueGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "elicit_values",
				Help: "Point-in-time values such as the best acquisition score and chain acceptance rate.",
			},
			[]string{"value", "criterion", "query_type"},
		),
	}
}

// RecordLatency implements ports.MetricsCollector.
func (m *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	m.operationLatency.WithLabelValues(
		operation, labels["criterion"], labels["query_type"],
	).Observe(duration.Seconds())
}

// RecordCounter implements ports.MetricsCollector.
func (m *PrometheusMetrics) RecordCounter(name string, value float64, labels map[string]string) {
	m.eventCounter.WithLabelValues(
		name, labels["criterion"], labels["query_type"],
	).Add(value)
}

// RecordGauge implements ports.MetricsCollector.
func (m *PrometheusMetrics) RecordGauge(name string, value float64, labels map[string]string) {
	m.valueGauges.WithLabelValues(
		name, labels["criterion"], labels["query_type"],
	).Set(value)
}
