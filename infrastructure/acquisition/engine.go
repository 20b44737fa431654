package acquisition

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

var _ ports.AcquisitionStrategy = (*Engine)(nil)

// Engine wraps an acquisition strategy with the engine-level concerns that
// every criterion shares: the monotonically increasing query counter,
// Prometheus metrics, and OpenTelemetry spans. Selection semantics are
// entirely the wrapped strategy's.
type Engine struct {
	strategy ports.AcquisitionStrategy
	metrics  ports.MetricsCollector
	tracer   trace.Tracer
	queries  atomic.Int64
}

// NewEngine wraps the given strategy. metrics may be nil, in which case
// observations are discarded.
func NewEngine(strategy ports.AcquisitionStrategy, metrics ports.MetricsCollector) *Engine {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &Engine{
		strategy: strategy,
		metrics:  metrics,
		tracer:   otel.Tracer("acquisition-engine"),
	}
}

// Name implements ports.AcquisitionStrategy.
func (e *Engine) Name() string { return e.strategy.Name() }

// QueryCount returns the number of queries selected so far.
func (e *Engine) QueryCount() int64 { return e.queries.Load() }

// SelectQuery implements ports.AcquisitionStrategy.
func (e *Engine) SelectQuery(ctx context.Context, belief domain.Belief) (ports.ScoredQuery, error) {
	ctx, span := e.tracer.Start(ctx, "AcquisitionEngine.SelectQuery",
		trace.WithAttributes(
			attribute.String("acquisition.criterion", e.strategy.Name()),
			attribute.Int("acquisition.belief_samples", belief.Len()),
		))
	defer span.End()

	start := time.Now()
	labels := map[string]string{"criterion": e.strategy.Name()}

	selected, err := e.strategy.SelectQuery(ctx, belief)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.RecordCounter("acquisition_failures_total", 1, labels)
		return ports.ScoredQuery{}, err
	}

	e.queries.Add(1)
	e.metrics.RecordLatency("acquisition_select", time.Since(start), labels)
	e.metrics.RecordCounter("queries_selected_total", 1, labels)
	e.metrics.RecordGauge("best_acquisition_score", selected.Score, labels)
	span.SetAttributes(attribute.Float64("acquisition.best_score", selected.Score))

	return selected, nil
}
