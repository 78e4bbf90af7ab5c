package otel_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/easyops/kgpath/pkg/otel"
)

func TestNewLoggerFromConfig_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := otel.NewLoggerFromConfig(otel.LoggingConfig{Level: "debug", Format: "json"}, &buf)

	logger.With("split", "train").Debug("example built", "line", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "example built" || entry["split"] != "train" || entry["line"] != float64(3) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewLoggerFromConfig_Levels(t *testing.T) {
	tests := []struct {
		level  string
		hidden string
		shown  string
	}{
		{"warn", "info line", "warn line"},
		{"WARNING", "info line", "warn line"},
		{"error", "warn line", "error line"},
		{"", "debug line", "info line"},
		{"verbose", "debug line", "info line"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := otel.NewLoggerFromConfig(otel.LoggingConfig{Level: tt.level}, &buf)

			logger.Debug("debug line")
			logger.Info("info line")
			logger.Warn("warn line")
			logger.Error("error line")

			out := buf.String()
			if strings.Contains(out, tt.hidden) {
				t.Fatalf("%q should be filtered: %q", tt.hidden, out)
			}
			if !strings.Contains(out, tt.shown) {
				t.Fatalf("%q missing: %q", tt.shown, out)
			}
		})
	}
}

func TestSlogLogger_WithContext(t *testing.T) {
	tracer, _ := newRecordingTracer(t)
	ctx, span := tracer.Start(context.Background(), otel.SpanExampleBuild)
	defer span.Finish(nil)

	var buf bytes.Buffer
	logger := otel.NewLoggerFromConfig(otel.LoggingConfig{IncludeTraceID: true}, &buf)

	logger.WithContext(context.Background()).Info("no span")
	if strings.Contains(buf.String(), "trace_id") {
		t.Fatalf("expected no trace id without an active span: %q", buf.String())
	}

	logger.WithContext(ctx).Info("in span")
	if !strings.Contains(buf.String(), "trace_id="+span.SpanContext().TraceID) {
		t.Fatalf("expected trace id of the active span: %q", buf.String())
	}

	buf.Reset()
	quiet := otel.NewLoggerFromConfig(otel.LoggingConfig{}, &buf)
	quiet.WithContext(ctx).Info("in span")
	if strings.Contains(buf.String(), "trace_id") {
		t.Fatalf("expected trace ids to be disabled: %q", buf.String())
	}
}

func TestNoopLogger(t *testing.T) {
	logger := otel.NewNoopLogger()
	logger.Info("x")
	if logger.With("a", 1) != otel.Logger(logger) {
		t.Fatal("expected noop logger to return itself")
	}
}
