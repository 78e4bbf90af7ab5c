package otel

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Provider 持有一次命令运行的追踪器、指标和日志器，并负责关闭导出器
type Provider struct {
	config   Config
	tracer   Tracer
	metrics  Metrics
	logger   Logger
	shutdown []func(context.Context) error
	mu       sync.Mutex
}

var (
	globalProvider *Provider
	globalMu       sync.RWMutex
)

// NewProvider 创建 Provider。diag 接收日志和 stdout 导出器的输出，nil 为标准错误。
func NewProvider(ctx context.Context, cfg Config, diag io.Writer) (*Provider, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config:  cfg,
		tracer:  NewNoopTracer(),
		metrics: NewNoopMetrics(),
		logger:  NewLoggerFromConfig(cfg.Logging, diag),
	}
	if !cfg.Enabled {
		return p, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
	))
	if err != nil {
		return nil, err
	}

	if cfg.Tracing.Enabled {
		if err := p.initTracing(ctx, res, diag); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics.Enabled {
		if err := p.initMetrics(ctx, res, diag); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}
	return p, nil
}

func (p *Provider) initTracing(ctx context.Context, res *resource.Resource, diag io.Writer) error {
	cfg := p.config.Tracing

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	}
	if cfg.Exporter != ExporterNone {
		exporter, err := CreateTraceExporter(ctx, cfg.ExportConfig, diag)
		if err != nil {
			return errors.Join(ErrExportFailed, err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	p.shutdown = append(p.shutdown, tp.Shutdown)
	p.tracer = NewTracer(tp.Tracer(p.config.ServiceName))
	return nil
}

func (p *Provider) initMetrics(ctx context.Context, res *resource.Resource, diag io.Writer) error {
	cfg := p.config.Metrics
	if cfg.Exporter == ExporterNone {
		p.metrics = NewRecorder()
		return nil
	}

	exporter, err := CreateMetricExporter(ctx, cfg.ExportConfig, diag)
	if err != nil {
		return errors.Join(ErrExportFailed, err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))),
	)
	otel.SetMeterProvider(mp)

	p.shutdown = append(p.shutdown, mp.Shutdown)
	p.metrics = NewSDKMetrics(mp.Meter(p.config.ServiceName))
	return nil
}

// Config 返回补齐默认值后的配置
func (p *Provider) Config() Config {
	return p.config
}

func (p *Provider) Tracer() Tracer   { return p.tracer }
func (p *Provider) Metrics() Metrics { return p.metrics }
func (p *Provider) Logger() Logger   { return p.logger }

// Shutdown 按创建的逆序刷新并关闭导出器，可重复调用
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for i := len(p.shutdown) - 1; i >= 0; i-- {
		if err := p.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdown = nil
	return errors.Join(errs...)
}

// SetGlobal 设置全局 Provider
func SetGlobal(p *Provider) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalProvider = p
}

// Global 返回全局 Provider，未设置时为 nil
func Global() *Provider {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider
}

// GetLogger 返回全局日志器，未设置 Provider 时为空日志器
func GetLogger() Logger {
	if p := Global(); p != nil {
		return p.Logger()
	}
	return NewNoopLogger()
}
