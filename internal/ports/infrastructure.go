package ports

import "time"

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations should integrate with observability platforms
// like Prometheus or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric by the given value.
	// This is useful for tracking events like queries asked or chain
	// proposals accepted.
	RecordCounter(name string, value float64, labels map[string]string)

	// RecordGauge sets a gauge metric to the given value, for
	// quantities that move in both directions such as the best
	// acquisition score or the chain acceptance rate.
	RecordGauge(name string, value float64, labels map[string]string)
}

// NoopMetrics is a MetricsCollector that discards everything. It is the
// default wherever metrics are optional.
type NoopMetrics struct{}

var _ MetricsCollector = (*NoopMetrics)(nil)

// RecordLatency implements MetricsCollector.
func (NoopMetrics) RecordLatency(string, time.Duration, map[string]string) {}

// RecordCounter implements MetricsCollector.
func (NoopMetrics) RecordCounter(string, float64, map[string]string) {}

// RecordGauge implements MetricsCollector.
func (NoopMetrics) RecordGauge(string, float64, map[string]string) {}
