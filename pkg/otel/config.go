package otel

import (
	"fmt"
	"time"
)

// Config 可观测性配置。日志总是按 Logging 创建；追踪和指标只在
// Enabled 与各自的 Enabled 同时打开时生效。
type Config struct {
	Enabled        bool   `koanf:"enabled"`
	ServiceName    string `koanf:"service_name"`
	ServiceVersion string `koanf:"service_version"`

	Tracing TracingConfig `koanf:"tracing"`
	Metrics MetricsConfig `koanf:"metrics"`
	Logging LoggingConfig `koanf:"logging"`
}

// ExportConfig 追踪和指标共用的导出设置
type ExportConfig struct {
	Enabled  bool         `koanf:"enabled"`
	Exporter ExporterType `koanf:"exporter"`
	// Endpoint 为 host:port，或 http(s):// 形式的地址（http 表示明文连接）
	Endpoint string            `koanf:"endpoint"`
	Insecure bool              `koanf:"insecure"`
	Headers  map[string]string `koanf:"headers"`
	Timeout  time.Duration     `koanf:"timeout"`
}

// TracingConfig 追踪配置；Exporter 为 none 时仍生成 Span 供日志关联，但不导出
type TracingConfig struct {
	ExportConfig `koanf:",squash"`
	// SampleRate 根 Span 采样率 (0.0-1.0)
	SampleRate float64 `koanf:"sample_rate"`
}

// MetricsConfig 指标配置；Exporter 为 none 时在内存中累计，命令结束时汇总到日志
type MetricsConfig struct {
	ExportConfig `koanf:",squash"`
	Interval     time.Duration `koanf:"interval"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	// Level debug, info, warn, error
	Level string `koanf:"level"`
	// Format text 或 json
	Format         string `koanf:"format"`
	IncludeTraceID bool   `koanf:"include_trace_id"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		ServiceName: "kgpath",
		Tracing: TracingConfig{
			ExportConfig: ExportConfig{
				Exporter: ExporterOTLPGRPC,
				Endpoint: "localhost:4317",
				Insecure: true,
				Timeout:  10 * time.Second,
			},
			SampleRate: 1.0,
		},
		Metrics: MetricsConfig{
			ExportConfig: ExportConfig{
				Exporter: ExporterNone,
				Endpoint: "localhost:4317",
				Insecure: true,
				Timeout:  10 * time.Second,
			},
			Interval: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			IncludeTraceID: true,
		},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return ErrInvalidSampleRate
	}
	for name, e := range map[string]ExportConfig{"tracing": c.Tracing.ExportConfig, "metrics": c.Metrics.ExportConfig} {
		if !e.Exporter.valid() {
			return fmt.Errorf("%w: %s exporter %q", ErrInvalidConfig, name, e.Exporter)
		}
		if e.Timeout < 0 {
			return fmt.Errorf("%w: %s timeout %s", ErrInvalidConfig, name, e.Timeout)
		}
	}
	if c.Metrics.Interval < 0 {
		return fmt.Errorf("%w: metrics interval %s", ErrInvalidConfig, c.Metrics.Interval)
	}
	return nil
}

// WithDefaults 用默认值补齐零值字段
func (c Config) WithDefaults() Config {
	d := DefaultConfig()

	if c.ServiceName == "" {
		c.ServiceName = d.ServiceName
	}
	c.Tracing.ExportConfig = c.Tracing.ExportConfig.withDefaults(d.Tracing.ExportConfig)
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = d.Tracing.SampleRate
	}
	c.Metrics.ExportConfig = c.Metrics.ExportConfig.withDefaults(d.Metrics.ExportConfig)
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = d.Metrics.Interval
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	return c
}

func (e ExportConfig) withDefaults(d ExportConfig) ExportConfig {
	if e.Exporter == "" {
		e.Exporter = d.Exporter
	}
	if e.Endpoint == "" {
		e.Endpoint = d.Endpoint
	}
	if e.Timeout == 0 {
		e.Timeout = d.Timeout
	}
	return e
}
