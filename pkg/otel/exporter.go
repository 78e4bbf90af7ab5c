package otel

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ExporterType 导出器类型
type ExporterType string

const (
	ExporterOTLPGRPC ExporterType = "otlp-grpc"
	ExporterOTLPHTTP ExporterType = "otlp-http"
	// ExporterStdout 以 JSON 写入诊断输出（标准错误），不占用命令的标准输出
	ExporterStdout ExporterType = "stdout"
	ExporterNone   ExporterType = "none"
)

func (t ExporterType) valid() bool {
	switch t {
	case "", ExporterOTLPGRPC, ExporterOTLPHTTP, ExporterStdout, ExporterNone:
		return true
	}
	return false
}

// target 把 Endpoint 拆成 host:port 和是否明文
func (e ExportConfig) target() (string, bool) {
	switch {
	case strings.HasPrefix(e.Endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(e.Endpoint, "http://"), "/"), true
	case strings.HasPrefix(e.Endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(e.Endpoint, "https://"), "/"), false
	}
	return e.Endpoint, e.Insecure
}

func diagnostics(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// CreateTraceExporter 按配置创建追踪导出器，stdout 类型写入 w（nil 为标准错误）
func CreateTraceExporter(ctx context.Context, cfg ExportConfig, w io.Writer) (sdktrace.SpanExporter, error) {
	endpoint, plain := cfg.target()

	switch cfg.Exporter {
	case ExporterOTLPGRPC:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithHeaders(cfg.Headers),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, otlptracegrpc.WithTimeout(cfg.Timeout))
		}
		if plain {
			opts = append(opts,
				otlptracegrpc.WithInsecure(),
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			)
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	case ExporterOTLPHTTP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithHeaders(cfg.Headers),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, otlptracehttp.WithTimeout(cfg.Timeout))
		}
		if plain {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithWriter(diagnostics(w)))
	default:
		return nil, fmt.Errorf("%w: no trace exporter for %q", ErrInvalidConfig, cfg.Exporter)
	}
}

// CreateMetricExporter 按配置创建指标导出器，stdout 类型写入 w（nil 为标准错误）
func CreateMetricExporter(ctx context.Context, cfg ExportConfig, w io.Writer) (sdkmetric.Exporter, error) {
	endpoint, plain := cfg.target()

	switch cfg.Exporter {
	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithHeaders(cfg.Headers),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, otlpmetricgrpc.WithTimeout(cfg.Timeout))
		}
		if plain {
			opts = append(opts,
				otlpmetricgrpc.WithInsecure(),
				otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			)
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithHeaders(cfg.Headers),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, otlpmetrichttp.WithTimeout(cfg.Timeout))
		}
		if plain {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	case ExporterStdout:
		return stdoutmetric.New(stdoutmetric.WithWriter(diagnostics(w)))
	default:
		return nil, fmt.Errorf("%w: no metric exporter for %q", ErrInvalidConfig, cfg.Exporter)
	}
}
