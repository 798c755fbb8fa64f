// Package tracing wires OpenTelemetry spans around initialization runs so a
// slow palette startup can be broken down phase by phase. Exporters cover
// local debugging (file, stdout) and collector setups (otlp); with tracing
// disabled every span is a no-op.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config controls trace collection and export.
type Config struct {
	// Enabled turns tracing on. Disabled yields a no-op tracer.
	Enabled bool

	// Exporter selects the backend: "none", "file", "stdout" or "otlp".
	Exporter string

	// FilePath is the JSONL output file for the "file" exporter.
	FilePath string

	// OTLPEndpoint is the gRPC collector endpoint for "otlp".
	OTLPEndpoint string

	// SampleRate is the head sampling ratio in [0.0, 1.0].
	SampleRate float64

	// ServiceName names this process in exported spans.
	ServiceName string
}

// DefaultConfig returns the standard tracing configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		Exporter:     "none",
		SampleRate:   1.0,
		ServiceName:  "blockcore",
		OTLPEndpoint: "localhost:4317",
	}
}

// Provider owns the tracer provider lifecycle.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	enabled  bool
}

// NewProvider builds a tracer provider from cfg. A disabled config returns
// a provider whose tracer discards everything, so callers never need to
// branch on whether tracing is on.
func NewProvider(cfg Config) (*Provider, error) {
	if !cfg.Enabled || cfg.Exporter == "" || cfg.Exporter == "none" {
		return &Provider{
			tracer:  noop.NewTracerProvider().Tracer("noop"),
			enabled: false,
		}, nil
	}

	var exporter sdktrace.SpanExporter
	var err error
	switch cfg.Exporter {
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file exporter requires a file path")
		}
		exporter, err = NewFileExporter(cfg.FilePath)
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		if cfg.OTLPEndpoint == "" {
			return nil, fmt.Errorf("otlp exporter requires an endpoint")
		}
		exporter, err = otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s exporter: %w", cfg.Exporter, err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "blockcore"
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	)

	rate := cfg.SampleRate
	if rate <= 0 || rate > 1 {
		rate = 1.0
	}
	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)

	return &Provider{
		provider: tp,
		tracer:   tp.Tracer(serviceName),
		enabled:  true,
	}, nil
}

// Tracer returns the tracer for creating spans.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Enabled reports whether spans are actually recorded.
func (p *Provider) Enabled() bool {
	return p.enabled
}

// Shutdown flushes buffered spans and releases the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}
