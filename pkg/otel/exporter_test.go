package otel

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestExportConfig_Target(t *testing.T) {
	tests := []struct {
		cfg      ExportConfig
		endpoint string
		plain    bool
	}{
		{ExportConfig{Endpoint: "localhost:4317", Insecure: true}, "localhost:4317", true},
		{ExportConfig{Endpoint: "collector:4317"}, "collector:4317", false},
		{ExportConfig{Endpoint: "http://collector:4318/"}, "collector:4318", true},
		{ExportConfig{Endpoint: "https://otel.example.com", Insecure: true}, "otel.example.com", false},
	}

	for _, tt := range tests {
		endpoint, plain := tt.cfg.target()
		if endpoint != tt.endpoint || plain != tt.plain {
			t.Fatalf("%s: expected %s/%v, got %s/%v", tt.cfg.Endpoint, tt.endpoint, tt.plain, endpoint, plain)
		}
	}
}

func TestCreateExporters(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	for _, typ := range []ExporterType{ExporterOTLPGRPC, ExporterOTLPHTTP, ExporterStdout} {
		cfg := ExportConfig{Exporter: typ, Endpoint: "localhost:4317", Insecure: true}

		te, err := CreateTraceExporter(ctx, cfg, &buf)
		if err != nil {
			t.Fatalf("%s trace exporter: %v", typ, err)
		}
		_ = te.Shutdown(ctx)

		me, err := CreateMetricExporter(ctx, cfg, &buf)
		if err != nil {
			t.Fatalf("%s metric exporter: %v", typ, err)
		}
		_ = me.Shutdown(ctx)
	}
}

func TestCreateExporters_Unknown(t *testing.T) {
	ctx := context.Background()
	cfg := ExportConfig{Exporter: ExporterNone}

	if _, err := CreateTraceExporter(ctx, cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := CreateMetricExporter(ctx, cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
