package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "draft-patrol"

// Metrics holds all OTEL metric instruments for the monitor.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// LLM token counters (partitioned by provider + model via attributes)
	InputTokens  metric.Int64Counter
	OutputTokens metric.Int64Counter

	// Evaluation counters (partitioned by outcome: completed,
	// document_missing, model_unavailable, parse_failed, persist_failed)
	Evaluations metric.Int64Counter

	// Model fallback counter (size-limit retries taken)
	Fallbacks metric.Int64Counter

	// Evaluation cache counters
	CacheHits   metric.Int64Counter
	CacheMisses metric.Int64Counter

	// Audit log appends (partitioned by stream)
	AuditAppends metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.InputTokens, err = meter.Int64Counter("llm.tokens.input",
		metric.WithDescription("Total LLM input tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.OutputTokens, err = meter.Int64Counter("llm.tokens.output",
		metric.WithDescription("Total LLM output tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.Evaluations, err = meter.Int64Counter("evaluations.total",
		metric.WithDescription("Total work-item evaluations partitioned by outcome"))
	if err != nil {
		return nil, err
	}

	m.Fallbacks, err = meter.Int64Counter("evaluations.fallbacks",
		metric.WithDescription("Number of size-limit fallback retries taken"))
	if err != nil {
		return nil, err
	}

	m.CacheHits, err = meter.Int64Counter("eval_cache.hits",
		metric.WithDescription("Number of evaluation cache hits (content unchanged, reused previous outcome)"))
	if err != nil {
		return nil, err
	}

	m.CacheMisses, err = meter.Int64Counter("eval_cache.misses",
		metric.WithDescription("Number of evaluation cache misses"))
	if err != nil {
		return nil, err
	}

	m.AuditAppends, err = meter.Int64Counter("audit.appends",
		metric.WithDescription("Audit log appends partitioned by stream"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordTokens records LLM token usage on the metric counters.
func (m *Metrics) RecordTokens(ctx context.Context, provider, model string, input, output int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	)
	m.InputTokens.Add(ctx, input, attrs)
	m.OutputTokens.Add(ctx, output, attrs)
}

// RecordEvaluation records one finished evaluation cycle.
func (m *Metrics) RecordEvaluation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.Evaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("evaluation.outcome", outcome),
	))
}

// RecordFallback records a size-limit retry with the fallback model.
func (m *Metrics) RecordFallback(ctx context.Context, model string) {
	if m == nil {
		return
	}
	m.Fallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("llm.model", model),
	))
}

// RecordCacheHit records an evaluation cache hit.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.CacheHits.Add(ctx, 1)
}

// RecordCacheMiss records an evaluation cache miss.
func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.CacheMisses.Add(ctx, 1)
}

// RecordAuditAppend records one audit log append.
func (m *Metrics) RecordAuditAppend(ctx context.Context, stream string) {
	if m == nil {
		return
	}
	m.AuditAppends.Add(ctx, 1, metric.WithAttributes(
		attribute.String("audit.stream", stream),
	))
}
