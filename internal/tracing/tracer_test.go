package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, "none", cfg.Exporter)
	require.Equal(t, "", cfg.FilePath)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "blockcore", cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err, "should not error when disabled")
	require.NotNil(t, provider, "should return provider even when disabled")
	require.False(t, provider.Enabled())

	// Tracer should be no-op but not nil
	tracer := provider.Tracer()
	require.NotNil(t, tracer)

	// Creating spans should not panic
	ctx, span := tracer.Start(context.Background(), "test-span")
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_NoneExporterIsNoop(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: "none"})
	require.NoError(t, err)
	require.False(t, provider.Enabled(), "none exporter records nothing")

	_, span := provider.Tracer().Start(context.Background(), "test-span")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporter(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")

	provider, err := NewProvider(Config{
		Enabled:     true,
		Exporter:    "file",
		FilePath:    tracePath,
		SampleRate:  1.0,
		ServiceName: "test-service",
	})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), "test-span")
	sc := span.SpanContext()
	require.True(t, sc.IsValid(), "span context should be valid")
	require.True(t, sc.TraceID().IsValid())
	require.True(t, sc.SpanID().IsValid())
	span.End()

	// Shutdown flushes the batcher
	require.NoError(t, provider.Shutdown(context.Background()))

	_, err = os.Stat(tracePath)
	require.NoError(t, err, "trace file should exist")
}

func TestNewProvider_FileExporter_MissingPath(t *testing.T) {
	provider, err := NewProvider(Config{
		Enabled:  true,
		Exporter: "file",
		FilePath: "",
	})
	require.Error(t, err)
	require.Nil(t, provider)
	require.Contains(t, err.Error(), "requires a file path")
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	provider, err := NewProvider(Config{
		Enabled:  true,
		Exporter: "carrier-pigeon",
	})
	require.Error(t, err)
	require.Nil(t, provider)
	require.Contains(t, err.Error(), "unknown trace exporter")
}

func TestNewProvider_ZeroSampleRateDefaultsToFull(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")

	provider, err := NewProvider(Config{
		Enabled:    true,
		Exporter:   "file",
		FilePath:   tracePath,
		SampleRate: 0,
	})
	require.NoError(t, err)
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestProvider_ChildSpanSharesTraceID(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")

	provider, err := NewProvider(Config{
		Enabled:  true,
		Exporter: "file",
		FilePath: tracePath,
	})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	tracer := provider.Tracer()

	ctx, parent := tracer.Start(context.Background(), "parent-span")
	_, child := tracer.Start(ctx, "child-span")

	require.Equal(t,
		parent.SpanContext().TraceID(),
		child.SpanContext().TraceID(),
		"child span should inherit the parent trace id")

	child.End()
	parent.End()
}
