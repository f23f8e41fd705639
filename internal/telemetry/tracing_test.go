package telemetry

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap/zaptest"
)

func TestSetupTracingDisabled(t *testing.T) {
	for _, exporter := range []string{"", "none", " NONE "} {
		shutdown, err := SetupTracing(context.Background(), TraceConfig{Exporter: exporter}, zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("exporter %q: unexpected error: %v", exporter, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("exporter %q: shutdown returned error: %v", exporter, err)
		}
	}
}

func TestSetupTracingStdout(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	shutdown, err := SetupTracing(context.Background(), TraceConfig{
		ServiceName: "converter-test",
		Exporter:    "Stdout",
		SampleRatio: 1,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("setup stdout tracing: %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "convert")
	if !span.SpanContext().IsSampled() {
		t.Fatal("expected span to be sampled")
	}
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown returned error: %v", err)
	}
}

func TestSetupTracingRejectsBadConfig(t *testing.T) {
	_, err := SetupTracing(context.Background(), TraceConfig{Exporter: "jaeger"}, nil)
	if err == nil || !strings.Contains(err.Error(), "jaeger") {
		t.Fatalf("expected unknown exporter error, got %v", err)
	}

	_, err = SetupTracing(context.Background(), TraceConfig{Exporter: "otlp", OTLPEndpoint: "  "}, nil)
	if !errors.Is(err, errMissingEndpoint) {
		t.Fatalf("expected errMissingEndpoint, got %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "AlwaysOnSampler"},
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		got := sampler(tt.ratio).Description()
		if !strings.Contains(got, tt.want) {
			t.Fatalf("sampler(%v) = %s, want it to contain %s", tt.ratio, got, tt.want)
		}
	}
}

func TestExporterKind(t *testing.T) {
	if got := exporterKind(""); got != ExporterNone {
		t.Fatalf("expected empty exporter to mean none, got %s", got)
	}
	if got := exporterKind(" OTLP "); got != ExporterOTLP {
		t.Fatalf("expected otlp, got %s", got)
	}
}
