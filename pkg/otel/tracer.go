// Package otel 提供 kgpath 的追踪、指标与日志支持
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span 名称
const (
	SpanAssemble     = "kgpath.assemble"
	SpanExampleBuild = "kgpath.example.build"
	SpanProfileWrite = "kgpath.profile.write"
	SpanLLMRespond   = "llm.respond"
)

// Tracer 定义追踪器接口
type Tracer interface {
	// Start 开始一个新的 Span，返回包含该 Span 的上下文
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
}

// Span 一次被追踪的操作
type Span interface {
	SetAttributes(attrs ...attribute.KeyValue)
	SpanContext() SpanContext
	// Finish 结束 Span。err 非空时记录错误并把状态置为 Error，否则置为 Ok
	Finish(err error)
}

// SpanContext 用于日志关联的 Trace/Span ID
type SpanContext struct {
	TraceID string
	SpanID  string
}

// Valid 判断是否携带有效的 Trace ID
func (sc SpanContext) Valid() bool {
	return sc.TraceID != "" && sc.TraceID != trace.TraceID{}.String()
}

func spanContextOf(sc trace.SpanContext) SpanContext {
	if !sc.IsValid() {
		return SpanContext{}
	}
	return SpanContext{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// SpanOption Span 配置选项
type SpanOption func(*spanConfig)

type spanConfig struct {
	kind  trace.SpanKind
	attrs []attribute.KeyValue
}

// WithSpanKind 设置 Span 类型，默认 Internal
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(cfg *spanConfig) {
		cfg.kind = kind
	}
}

// WithAttributes 追加 Span 属性
func WithAttributes(attrs ...attribute.KeyValue) SpanOption {
	return func(cfg *spanConfig) {
		cfg.attrs = append(cfg.attrs, attrs...)
	}
}

// OTelTracer 基于 OpenTelemetry SDK 的追踪器
type OTelTracer struct {
	tracer trace.Tracer
}

// NewTracer 包装 OpenTelemetry 追踪器
func NewTracer(tracer trace.Tracer) *OTelTracer {
	return &OTelTracer{tracer: tracer}
}

func (t *OTelTracer) Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span) {
	cfg := spanConfig{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(cfg.kind),
		trace.WithAttributes(cfg.attrs...),
	)
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

func (s otelSpan) SpanContext() SpanContext {
	return spanContextOf(s.span.SpanContext())
}

func (s otelSpan) Finish(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// NoopTracer 不记录任何 Span
type NoopTracer struct{}

// NewNoopTracer 创建空追踪器
func NewNoopTracer() *NoopTracer {
	return &NoopTracer{}
}

func (t *NoopTracer) Start(ctx context.Context, _ string, _ ...SpanOption) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) SetAttributes(...attribute.KeyValue) {}
func (noopSpan) SpanContext() SpanContext            { return SpanContext{} }
func (noopSpan) Finish(error)                        {}

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Tracer = (*NoopTracer)(nil)
)
