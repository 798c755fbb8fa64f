// Package config provides configuration types and defaults for blockcore.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/botcanvas/blockcore/internal/log"
)

// Config holds all configuration options for blockcore.
type Config struct {
	Loader  LoaderConfig  `mapstructure:"loader"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Init    InitConfig    `mapstructure:"init"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Log     LogConfig     `mapstructure:"log"`
}

// LoaderConfig controls where block definitions come from and how they load.
type LoaderConfig struct {
	// Concurrency bounds the number of sources loaded in parallel.
	// Default: 4
	Concurrency int `mapstructure:"concurrency"`

	// Paths lists directories scanned for *.yaml/*.yml block definitions.
	// Missing directories are skipped silently.
	Paths []string `mapstructure:"paths"`

	// Catalogs lists read-only SQLite block catalog files (.db).
	Catalogs []string `mapstructure:"catalogs"`

	// Builtin controls whether the embedded block palette loads.
	// nil = true (default enabled)
	Builtin *bool `mapstructure:"builtin"`
}

// BuiltinEnabled returns whether the embedded palette loads (defaults to true).
func (l LoaderConfig) BuiltinEnabled() bool {
	return l.Builtin == nil || *l.Builtin
}

// CacheConfig controls the registration cache.
type CacheConfig struct {
	// Enabled toggles the cache; when false every lookup is a miss.
	// Default: true
	Enabled bool `mapstructure:"enabled"`

	// MaxAge is how long a cache entry stays valid.
	// Default: 30m
	MaxAge time.Duration `mapstructure:"max_age"`

	// MaxSize bounds the number of entries kept after a sweep.
	// Default: 512
	MaxSize int `mapstructure:"max_size"`

	// SweepInterval is how often expired and excess entries are evicted.
	// Default: 5m
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// InitConfig controls the initialization run.
type InitConfig struct {
	// Timeout is the total budget for one initialization attempt.
	// Default: 30s
	Timeout time.Duration `mapstructure:"timeout"`

	// PhaseFraction is the share of Timeout each phase may use (0-1].
	// Default: 0.25
	PhaseFraction float64 `mapstructure:"phase_fraction"`

	// MaxRetries is how many times a failed attempt is retried.
	// Default: 2
	MaxRetries int `mapstructure:"max_retries"`

	// RetryDelay is the base backoff; attempt n waits n*RetryDelay.
	// Default: 500ms
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	// Default: ~/.config/blockcore/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// WatchConfig controls hot reload of definition sources.
type WatchConfig struct {
	// Enabled turns on the file watcher in the watch command.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Debounce coalesces rapid file events into one reload.
	// Default: 400ms
	Debounce time.Duration `mapstructure:"debounce"`
}

// LogConfig controls the structured debug log.
type LogConfig struct {
	// Enabled turns file logging on.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Path is the log file location.
	// Default: ~/.config/blockcore/blockcore.log
	Path string `mapstructure:"path"`

	// Level is the minimum severity written: debug, info, warn, error.
	// Default: "info"
	Level string `mapstructure:"level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Loader: LoaderConfig{
			Concurrency: 4,
		},
		Cache: CacheConfig{
			Enabled:       true,
			MaxAge:        30 * time.Minute,
			MaxSize:       512,
			SweepInterval: 5 * time.Minute,
		},
		Init: InitConfig{
			Timeout:       30 * time.Second,
			PhaseFraction: 0.25,
			MaxRetries:    2,
			RetryDelay:    500 * time.Millisecond,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     DefaultTracesFilePath(),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 400 * time.Millisecond,
		},
		Log: LogConfig{
			Enabled: false,
			Path:    DefaultLogPath(),
			Level:   "info",
		},
	}
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/blockcore/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "blockcore", "traces", "traces.jsonl")
}

// DefaultLogPath returns the default debug log location.
// Returns ~/.config/blockcore/blockcore.log or empty string if home dir unavailable.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "blockcore", "blockcore.log")
}

// Validate checks the whole configuration and returns the first problem.
func (c Config) Validate() error {
	if err := ValidateLoader(c.Loader); err != nil {
		return err
	}
	if err := ValidateCache(c.Cache); err != nil {
		return err
	}
	if err := ValidateInit(c.Init); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateLoader checks loader settings.
func ValidateLoader(l LoaderConfig) error {
	if l.Concurrency < 0 {
		return fmt.Errorf("loader.concurrency must not be negative, got %d", l.Concurrency)
	}
	return nil
}

// ValidateCache checks cache settings.
func ValidateCache(c CacheConfig) error {
	if !c.Enabled {
		return nil
	}
	if c.MaxAge <= 0 {
		return fmt.Errorf("cache.max_age must be positive, got %v", c.MaxAge)
	}
	if c.MaxSize < 1 {
		return fmt.Errorf("cache.max_size must be at least 1, got %d", c.MaxSize)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("cache.sweep_interval must be positive, got %v", c.SweepInterval)
	}
	return nil
}

// ValidateInit checks initialization settings.
func ValidateInit(i InitConfig) error {
	if i.Timeout <= 0 {
		return fmt.Errorf("init.timeout must be positive, got %v", i.Timeout)
	}
	if i.PhaseFraction <= 0 || i.PhaseFraction > 1 {
		return fmt.Errorf("init.phase_fraction must be in (0.0, 1.0], got %v", i.PhaseFraction)
	}
	if i.MaxRetries < 0 {
		return fmt.Errorf("init.max_retries must not be negative, got %d", i.MaxRetries)
	}
	if i.RetryDelay < 0 {
		return fmt.Errorf("init.retry_delay must not be negative, got %v", i.RetryDelay)
	}
	return nil
}

// ValidateTracing checks tracing settings.
func ValidateTracing(t TracingConfig) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	if t.Exporter != "" {
		switch t.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if t.Enabled {
		if t.Exporter == "file" && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the commented YAML written on first run.
func DefaultConfigTemplate() string {
	return `# blockcore configuration
# Docs: https://github.com/botcanvas/blockcore

# Block definition sources
loader:
  concurrency: 4      # parallel source loads
  # Extra definition directories (scanned for *.yaml / *.yml)
  # paths:
  #   - ./blocks
  #   - ~/.config/botcanvas/blocks
  # Read-only SQLite block catalogs
  # catalogs:
  #   - ./palette.db
  # builtin: true     # load the embedded palette (default: true)

# Registration cache
cache:
  enabled: true
  max_age: 30m        # entry lifetime
  max_size: 512       # entries kept after a sweep
  sweep_interval: 5m  # eviction cadence

# Initialization run
init:
  timeout: 30s          # total budget per attempt
  phase_fraction: 0.25  # per-phase share of the budget
  max_retries: 2        # retries after a retryable failure
  retry_delay: 500ms    # attempt n waits n * retry_delay

# Hot reload of definition sources (watch command)
# watch:
#   enabled: true
#   debounce: 400ms

# Structured debug log
# log:
#   enabled: true
#   path: ~/.config/blockcore/blockcore.log
#   level: info       # debug, info, warn, error

# Distributed tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/blockcore/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	// Create parent directory if needed
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write the template
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
