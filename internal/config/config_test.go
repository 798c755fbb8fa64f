package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, 4, cfg.Loader.Concurrency)
	require.True(t, cfg.Loader.BuiltinEnabled(), "builtin palette should default on")
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, 30*time.Minute, cfg.Cache.MaxAge)
	require.Equal(t, 512, cfg.Cache.MaxSize)
	require.Equal(t, 30*time.Second, cfg.Init.Timeout)
	require.Equal(t, 0.25, cfg.Init.PhaseFraction)
	require.Equal(t, 2, cfg.Init.MaxRetries)
	require.NoError(t, cfg.Validate(), "defaults must validate")
}

func TestLoaderConfig_BuiltinEnabled(t *testing.T) {
	off := false
	on := true

	require.True(t, LoaderConfig{}.BuiltinEnabled(), "nil means enabled")
	require.True(t, LoaderConfig{Builtin: &on}.BuiltinEnabled())
	require.False(t, LoaderConfig{Builtin: &off}.BuiltinEnabled())
}

func TestValidateLoader_NegativeConcurrency(t *testing.T) {
	err := ValidateLoader(LoaderConfig{Concurrency: -1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "loader.concurrency")
}

func TestValidateCache_DisabledSkipsChecks(t *testing.T) {
	// A disabled cache may carry zero values without complaint.
	err := ValidateCache(CacheConfig{Enabled: false})
	require.NoError(t, err)
}

func TestValidateCache_BadValues(t *testing.T) {
	tests := []struct {
		name        string
		cache       CacheConfig
		errContains string
	}{
		{
			name:        "zero max_age",
			cache:       CacheConfig{Enabled: true, MaxAge: 0, MaxSize: 10, SweepInterval: time.Minute},
			errContains: "cache.max_age",
		},
		{
			name:        "zero max_size",
			cache:       CacheConfig{Enabled: true, MaxAge: time.Minute, MaxSize: 0, SweepInterval: time.Minute},
			errContains: "cache.max_size",
		},
		{
			name:        "negative sweep_interval",
			cache:       CacheConfig{Enabled: true, MaxAge: time.Minute, MaxSize: 10, SweepInterval: -time.Second},
			errContains: "cache.sweep_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCache(tt.cache)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateInit_BadValues(t *testing.T) {
	tests := []struct {
		name        string
		init        InitConfig
		errContains string
	}{
		{
			name:        "zero timeout",
			init:        InitConfig{Timeout: 0, PhaseFraction: 0.25},
			errContains: "init.timeout",
		},
		{
			name:        "fraction above one",
			init:        InitConfig{Timeout: time.Second, PhaseFraction: 1.5},
			errContains: "init.phase_fraction",
		},
		{
			name:        "zero fraction",
			init:        InitConfig{Timeout: time.Second, PhaseFraction: 0},
			errContains: "init.phase_fraction",
		},
		{
			name:        "negative retries",
			init:        InitConfig{Timeout: time.Second, PhaseFraction: 0.25, MaxRetries: -1},
			errContains: "init.max_retries",
		},
		{
			name:        "negative delay",
			init:        InitConfig{Timeout: time.Second, PhaseFraction: 0.25, RetryDelay: -time.Second},
			errContains: "init.retry_delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInit(tt.init)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateTracing_SampleRateRange(t *testing.T) {
	err := ValidateTracing(TracingConfig{SampleRate: 1.5})
	require.Error(t, err)
	require.Contains(t, err.Error(), "sample_rate")

	err = ValidateTracing(TracingConfig{SampleRate: -0.1})
	require.Error(t, err)
}

func TestValidateTracing_Exporter(t *testing.T) {
	for _, exporter := range []string{"", "none", "file", "stdout", "otlp"} {
		err := ValidateTracing(TracingConfig{Exporter: exporter, SampleRate: 1.0, FilePath: "x", OTLPEndpoint: "y"})
		require.NoError(t, err, "exporter %q should validate", exporter)
	}

	err := ValidateTracing(TracingConfig{Exporter: "jaeger", SampleRate: 1.0})
	require.Error(t, err)
	require.Contains(t, err.Error(), "tracing.exporter")
}

func TestValidateTracing_RequiredPathsOnlyWhenEnabled(t *testing.T) {
	// Disabled tracing tolerates missing paths.
	err := ValidateTracing(TracingConfig{Enabled: false, Exporter: "file", SampleRate: 1.0})
	require.NoError(t, err)

	// Enabled file exporter needs a path.
	err = ValidateTracing(TracingConfig{Enabled: true, Exporter: "file", SampleRate: 1.0})
	require.Error(t, err)
	require.Contains(t, err.Error(), "file_path")

	// Enabled otlp exporter needs an endpoint.
	err = ValidateTracing(TracingConfig{Enabled: true, Exporter: "otlp", SampleRate: 1.0})
	require.Error(t, err)
	require.Contains(t, err.Error(), "otlp_endpoint")
}

func TestWriteDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "blockcore.yml")

	err := WriteDefaultConfig(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path) //nolint:gosec // test-owned path
	require.NoError(t, err)
	require.Contains(t, string(data), "loader:")
	require.Contains(t, string(data), "cache:")
	require.Contains(t, string(data), "init:")
}
