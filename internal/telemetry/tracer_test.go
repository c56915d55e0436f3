// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false, ExporterType: "grpc"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if provider.tp != nil {
		t.Error("expected noop provider")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown: %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	if span.IsRecording() {
		t.Error("expected noop tracer span to be non-recording")
	}
	span.End()
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ServiceName: "vcompress", ExporterType: "invalid"})
	if err == nil {
		t.Fatal("expected error for invalid exporter type")
	}
	if want := "unsupported exporter type: invalid (supported: grpc, http)"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0.0, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		if got := newSampler(tt.rate).Description(); got != tt.want {
			t.Errorf("newSampler(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestEndSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, ok := tp.Tracer("t").Start(context.Background(), "ok")
	EndSpan(ok, nil)
	_, bad := tp.Tracer("t").Start(context.Background(), "bad")
	EndSpan(bad, errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("ok span status = %v", spans[0].Status().Code)
	}
	if spans[1].Status().Code != codes.Error || spans[1].Status().Description != "boom" {
		t.Errorf("bad span status = %+v", spans[1].Status())
	}
}

func TestJobAttributes(t *testing.T) {
	attrs := JobAttributes("j1", "/in.mov", "", "mp4")
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes without output, got %d", len(attrs))
	}
	attrs = JobAttributes("j1", "/in.mov", "/out/x.mp4", "mp4")
	assertAttr(t, attrs, OutputPathKey, attribute.StringValue("/out/x.mp4"))
}

func TestAudioAttributes(t *testing.T) {
	if got := AudioAttributes(false, "aac"); len(got) != 1 {
		t.Fatalf("disabled audio should only carry the flag, got %v", got)
	}
	assertAttr(t, AudioAttributes(true, "aac"), AudioFormatKey, attribute.StringValue("aac"))
}

func assertAttr(t *testing.T, attrs []attribute.KeyValue, key string, want attribute.Value) {
	t.Helper()
	for _, a := range attrs {
		if string(a.Key) == key {
			if a.Value != want {
				t.Errorf("%s = %v, want %v", key, a.Value.Emit(), want.Emit())
			}
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}
