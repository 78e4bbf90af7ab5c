package otel_test

import (
	"errors"
	"testing"
	"time"

	"github.com/easyops/kgpath/pkg/otel"
)

func TestDefaultConfig(t *testing.T) {
	cfg := otel.DefaultConfig()

	if cfg.Enabled || cfg.Tracing.Enabled || cfg.Metrics.Enabled {
		t.Fatal("expected telemetry export to be off by default")
	}
	if cfg.ServiceName != "kgpath" {
		t.Fatalf("expected ServiceName 'kgpath', got %s", cfg.ServiceName)
	}
	if cfg.Tracing.Exporter != otel.ExporterOTLPGRPC || cfg.Metrics.Exporter != otel.ExporterNone {
		t.Fatalf("unexpected exporters %s/%s", cfg.Tracing.Exporter, cfg.Metrics.Exporter)
	}
	if cfg.Tracing.Timeout != 10*time.Second || cfg.Metrics.Interval != 30*time.Second {
		t.Fatalf("unexpected durations %s/%s", cfg.Tracing.Timeout, cfg.Metrics.Interval)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" || !cfg.Logging.IncludeTraceID {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*otel.Config)
		wantErr error
	}{
		{"defaults", func(c *otel.Config) {}, nil},
		{"zero sample rate", func(c *otel.Config) { c.Tracing.SampleRate = 0 }, nil},
		{"negative sample rate", func(c *otel.Config) { c.Tracing.SampleRate = -0.1 }, otel.ErrInvalidSampleRate},
		{"sample rate above one", func(c *otel.Config) { c.Tracing.SampleRate = 1.5 }, otel.ErrInvalidSampleRate},
		{"unknown trace exporter", func(c *otel.Config) { c.Tracing.Exporter = "zipkin" }, otel.ErrInvalidConfig},
		{"unknown metric exporter", func(c *otel.Config) { c.Metrics.Exporter = "statsd" }, otel.ErrInvalidConfig},
		{"negative timeout", func(c *otel.Config) { c.Metrics.Timeout = -time.Second }, otel.ErrInvalidConfig},
		{"negative interval", func(c *otel.Config) { c.Metrics.Interval = -time.Second }, otel.ErrInvalidConfig},
		{"stdout exporters", func(c *otel.Config) {
			c.Tracing.Exporter = otel.ExporterStdout
			c.Metrics.Exporter = otel.ExporterStdout
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := otel.DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := otel.Config{
		ServiceName: "custom",
		Tracing:     otel.TracingConfig{ExportConfig: otel.ExportConfig{Endpoint: "collector:4317"}},
	}.WithDefaults()

	if cfg.ServiceName != "custom" || cfg.ServiceVersion != "" {
		t.Fatalf("expected service identity to be preserved, got %s/%s", cfg.ServiceName, cfg.ServiceVersion)
	}
	if cfg.Tracing.Endpoint != "collector:4317" || cfg.Metrics.Endpoint != "localhost:4317" {
		t.Fatalf("unexpected endpoints %s/%s", cfg.Tracing.Endpoint, cfg.Metrics.Endpoint)
	}
	if cfg.Tracing.Exporter != otel.ExporterOTLPGRPC || cfg.Metrics.Exporter != otel.ExporterNone {
		t.Fatalf("expected default exporters, got %s/%s", cfg.Tracing.Exporter, cfg.Metrics.Exporter)
	}
	if cfg.Tracing.SampleRate != 1.0 || cfg.Metrics.Interval != 30*time.Second {
		t.Fatalf("unexpected defaults %v/%s", cfg.Tracing.SampleRate, cfg.Metrics.Interval)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}
