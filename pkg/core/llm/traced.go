package llm

import (
	"context"
	"time"

	"github.com/easyops/kgpath/pkg/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracedResponder 为回复器增加追踪和指标
type TracedResponder struct {
	responder Responder
	tracer    otel.Tracer
	metrics   otel.Metrics
}

// TracedOption 配置 TracedResponder
type TracedOption func(*TracedResponder)

// WithTracer 设置追踪器
func WithTracer(tracer otel.Tracer) TracedOption {
	return func(r *TracedResponder) {
		r.tracer = tracer
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(metrics otel.Metrics) TracedOption {
	return func(r *TracedResponder) {
		r.metrics = metrics
	}
}

// NewTracedResponder 包装回复器
func NewTracedResponder(responder Responder, opts ...TracedOption) *TracedResponder {
	tr := &TracedResponder{
		responder: responder,
		tracer:    otel.NewNoopTracer(),
		metrics:   otel.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(tr)
	}
	return tr
}

func (r *TracedResponder) Name() string  { return r.responder.Name() }
func (r *TracedResponder) Model() string { return r.responder.Model() }

// Respond 生成回复并记录 llm.respond span
func (r *TracedResponder) Respond(ctx context.Context, req Request) (Response, error) {
	attrs := otel.LLM(r.Name(), r.Model())
	ctx, span := r.tracer.Start(ctx, otel.SpanLLMRespond,
		otel.WithSpanKind(trace.SpanKindClient),
		otel.WithAttributes(attrs...),
	)

	start := time.Now()
	resp, err := r.responder.Respond(ctx, req)
	r.metrics.Histogram(otel.MetricLLMRequestDuration).Record(ctx, float64(time.Since(start).Milliseconds()), attrs...)

	if err != nil {
		r.metrics.Counter(otel.MetricLLMRequests).Add(ctx, 1, append(attrs, attribute.String(otel.AttrLLMStatus, "error"))...)
		r.metrics.Counter(otel.MetricLLMErrors).Add(ctx, 1, attrs...)
		span.Finish(err)
		return resp, err
	}

	r.metrics.Counter(otel.MetricLLMRequests).Add(ctx, 1, append(attrs, attribute.String(otel.AttrLLMStatus, "success"))...)
	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.Usage.CompletionTokens),
		attribute.String("llm.finish_reason", resp.FinishReason),
	)
	span.Finish(nil)
	return resp, nil
}

var _ Responder = (*TracedResponder)(nil)
