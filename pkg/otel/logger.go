package otel

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Logger 定义日志接口，参数为 slog 风格的键值对
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// WithContext 返回附带当前 Span 的 trace_id/span_id 的 Logger
	WithContext(ctx context.Context) Logger
	// With 返回附带固定键值对的 Logger
	With(args ...any) Logger
}

// SlogLogger slog 适配器
type SlogLogger struct {
	logger    *slog.Logger
	withTrace bool
}

// NewSlogLogger 包装 slog.Logger，nil 时使用 slog.Default()
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger, withTrace: true}
}

// NewLoggerFromConfig 按日志配置创建写入 w 的日志器，w 为 nil 时写入标准错误。
// 标准输出留给命令结果。
func NewLoggerFromConfig(cfg LoggingConfig, w io.Writer) *SlogLogger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &SlogLogger{logger: slog.New(handler), withTrace: cfg.IncludeTraceID}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Slog 返回底层 slog.Logger
func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *SlogLogger) WithContext(ctx context.Context) Logger {
	if !l.withTrace || ctx == nil {
		return l
	}
	sc := spanContextOf(trace.SpanContextFromContext(ctx))
	if !sc.Valid() {
		return l
	}
	return l.With("trace_id", sc.TraceID, "span_id", sc.SpanID)
}

func (l *SlogLogger) With(args ...any) Logger {
	if len(args) == 0 {
		return l
	}
	return &SlogLogger{logger: l.logger.With(args...), withTrace: l.withTrace}
}

// NoopLogger 丢弃所有日志
type NoopLogger struct{}

// NewNoopLogger 创建空日志器
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (l *NoopLogger) Debug(string, ...any)                {}
func (l *NoopLogger) Info(string, ...any)                 {}
func (l *NoopLogger) Warn(string, ...any)                 {}
func (l *NoopLogger) Error(string, ...any)                {}
func (l *NoopLogger) WithContext(context.Context) Logger { return l }
func (l *NoopLogger) With(...any) Logger                 { return l }

var (
	_ Logger = (*SlogLogger)(nil)
	_ Logger = (*NoopLogger)(nil)
)
