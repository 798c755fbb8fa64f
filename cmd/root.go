package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/botcanvas/blockcore/internal/alias"
	"github.com/botcanvas/blockcore/internal/builtin"
	"github.com/botcanvas/blockcore/internal/cachemanager"
	"github.com/botcanvas/blockcore/internal/config"
	"github.com/botcanvas/blockcore/internal/loader"
	"github.com/botcanvas/blockcore/internal/log"
	"github.com/botcanvas/blockcore/internal/orchestration"
	"github.com/botcanvas/blockcore/internal/registry"
	"github.com/botcanvas/blockcore/internal/resolver"
	"github.com/botcanvas/blockcore/internal/tracing"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "blockcore",
	Short: "Block palette engine for the botcanvas bot builder",
	Long: `blockcore loads, orders and registers the block palette that powers the
botcanvas visual bot builder. It reads definitions from the embedded
palette, YAML directories and sqlite catalogs, resolves dependency order
and serves the registered palette to the canvas.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: teardownLogging,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/blockcore/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"enable debug logging regardless of config")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("loader.concurrency", defaults.Loader.Concurrency)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.max_age", defaults.Cache.MaxAge)
	viper.SetDefault("cache.max_size", defaults.Cache.MaxSize)
	viper.SetDefault("cache.sweep_interval", defaults.Cache.SweepInterval)
	viper.SetDefault("init.timeout", defaults.Init.Timeout)
	viper.SetDefault("init.phase_fraction", defaults.Init.PhaseFraction)
	viper.SetDefault("init.max_retries", defaults.Init.MaxRetries)
	viper.SetDefault("init.retry_delay", defaults.Init.RetryDelay)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("watch.enabled", defaults.Watch.Enabled)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("log.enabled", defaults.Log.Enabled)
	viper.SetDefault("log.path", defaults.Log.Path)
	viper.SetDefault("log.level", defaults.Log.Level)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .blockcore/config.yaml (current directory)
		// 2. ~/.config/blockcore/config.yaml (user config)
		if _, err := os.Stat(".blockcore/config.yaml"); err == nil {
			viper.SetConfigFile(".blockcore/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "blockcore"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .blockcore/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".blockcore/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setupLogging initializes file logging when enabled via config, the
// --debug flag or the BLOCKCORE_DEBUG environment variable.
func setupLogging(_ *cobra.Command, _ []string) error {
	debug := debugFlag || os.Getenv("BLOCKCORE_DEBUG") != ""
	if !cfg.Log.Enabled && !debug {
		return nil
	}

	logPath := cfg.Log.Path
	if logPath == "" {
		logPath = "debug.log"
	}

	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup

	level := log.ParseLevel(cfg.Log.Level)
	if debug {
		level = log.LevelDebug
	}
	log.SetMinLevel(level)

	log.Info(log.CatCLI, "blockcore starting",
		"version", version, "config", viper.ConfigFileUsed())
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
}

// subsystem bundles the wired block stack a command drives.
type subsystem struct {
	orch    *orchestration.Orchestrator
	reg     *registry.Registry
	cache   *cachemanager.RegistrationCache
	tracing *tracing.Provider
}

// Close shuts the orchestrator down and flushes pending trace spans.
func (s *subsystem) Close(ctx context.Context) {
	s.orch.Close()
	_ = s.tracing.Shutdown(ctx)
}

// buildSources assembles definition sources in load order. The embedded
// palette goes first so user-supplied definitions surface as duplicate
// warnings instead of silently replacing built-ins.
func buildSources(cfg config.Config) []loader.Source {
	var sources []loader.Source
	if cfg.Loader.BuiltinEnabled() {
		sources = append(sources, builtin.Source())
	}
	for _, dir := range cfg.Loader.Paths {
		sources = append(sources, loader.NewYAMLDirSource(dir))
	}
	for _, path := range cfg.Loader.Catalogs {
		sources = append(sources, loader.NewCatalogSource(path))
	}
	return sources
}

// buildSubsystem wires sources, loader, resolver, cache, registry,
// tracing and the orchestrator from the resolved configuration.
func buildSubsystem(cfg config.Config) (*subsystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  "blockcore",
	})
	if err != nil {
		return nil, fmt.Errorf("configuring tracing: %w", err)
	}

	cache := cachemanager.New(cachemanager.Config{
		Enabled:       cfg.Cache.Enabled,
		MaxAge:        cfg.Cache.MaxAge,
		MaxSize:       cfg.Cache.MaxSize,
		SweepInterval: cfg.Cache.SweepInterval,
	})
	reg := registry.New(alias.Default(), cache)

	orch := orchestration.New(
		orchestration.Config{
			Timeout:       cfg.Init.Timeout,
			PhaseFraction: cfg.Init.PhaseFraction,
			MaxRetries:    cfg.Init.MaxRetries,
			RetryDelay:    cfg.Init.RetryDelay,
		},
		orchestration.Deps{
			Sources:  buildSources(cfg),
			Loader:   loader.New(loader.Config{Concurrency: cfg.Loader.Concurrency}),
			Resolver: resolver.New(),
			Registry: reg,
			Cache:    cache,
			Tracer:   provider.Tracer(),
		},
	)

	return &subsystem{orch: orch, reg: reg, cache: cache, tracing: provider}, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
