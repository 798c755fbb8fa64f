package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/botcanvas/blockcore/internal/log"
	"github.com/botcanvas/blockcore/internal/orchestration"
	"github.com/botcanvas/blockcore/internal/tracing"
	"github.com/botcanvas/blockcore/internal/watcher"
)

var watchVerbose bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Serve the palette and reload when definition sources change",
	Long: `Initialize the block subsystem, then watch the configured YAML
directories and sqlite catalogs and reinitialize whenever they change.
Bursts of file events are collapsed into a single reload.

Runs until interrupted.

Example:
  blockcore watch
  blockcore watch --debug --verbose
  BLOCKCORE_DEBUG=1 blockcore watch`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false,
		"mirror the debug log to stderr while watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchVerbose {
		if entries := log.Subscribe(ctx); entries != nil {
			go tailLog(entries)
		} else {
			fmt.Fprintln(os.Stderr, "verbose: logging is off, set log.enabled or pass --debug")
		}
	}

	sys, err := buildSubsystem(cfg)
	if err != nil {
		return err
	}
	defer sys.Close(context.Background())

	if sys.cache.Enabled() {
		// Long-running process: age and size bounds need the periodic
		// sweep that one-shot commands can skip.
		sys.cache.StartSweeper(ctx)
	}

	go logEvents(ctx, sys.orch)

	res, err := sys.orch.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("waiting for initialization: %w", err)
	}
	reportRun(os.Stdout, res, "ready")

	w, err := watcher.New(watcher.Config{
		Dirs:     cfg.Loader.Paths,
		Catalogs: cfg.Loader.Catalogs,
		Debounce: cfg.Watch.Debounce,
	})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	onChange, err := w.Start()
	if err != nil {
		return fmt.Errorf("starting watcher: %w (configure loader.paths or loader.catalogs)", err)
	}
	defer func() { _ = w.Stop() }()

	fmt.Printf("watching: %s\n", strings.Join(w.Watched(), ", "))
	log.Info(log.CatWatcher, "watch started",
		"paths", w.Watched(), "debounce", cfg.Watch.Debounce)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("shutting down")
			return nil

		case <-onChange:
			log.Info(log.CatWatcher, "definition sources changed, reloading")

			spanCtx, span := sys.tracing.Tracer().Start(ctx, tracing.SpanWatchReload)
			res, err := sys.orch.Reinitialize(spanCtx)
			span.End()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("waiting for reload: %w", err)
			}
			reportRun(os.Stdout, res, "reloaded")
		}
	}
}

// reportRun prints a one-line run summary plus warnings.
func reportRun(w *os.File, res *orchestration.Result, verb string) {
	if res.Success {
		fmt.Fprintf(w, "%s: %d blocks in %s\n",
			verb, res.BlocksLoaded, res.TotalTime.Round(time.Millisecond))
	} else {
		reason := "unknown error"
		if len(res.Errors) > 0 {
			reason = res.Errors[len(res.Errors)-1].Error()
		}
		fmt.Fprintf(w, "%s failed: %s\n", verb, reason)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

// tailLog streams formatted log lines to stderr until the subscription
// closes. Lines arrive newline-terminated.
func tailLog(entries <-chan log.Entry) {
	for entry := range entries {
		fmt.Fprint(os.Stderr, entry.Payload)
	}
}

// logEvents mirrors orchestrator lifecycle events into the log until ctx
// is cancelled.
func logEvents(ctx context.Context, orch *orchestration.Orchestrator) {
	for envelope := range orch.Events(ctx) {
		ev := envelope.Payload
		switch ev.Kind {
		case orchestration.EventStateChanged:
			log.Debug(log.CatWatcher, "state changed",
				"state", ev.State, "run", ev.RunID, "attempt", ev.Attempt)
		case orchestration.EventErrorOccurred:
			if ev.Err != nil {
				log.Warn(log.CatWatcher, "initialization error",
					"class", ev.Err.Class, "error", ev.Err.Message, "block", ev.Err.BlockID)
			}
		case orchestration.EventInitCompleted:
			if ev.Result != nil {
				log.Info(log.CatWatcher, "initialization completed",
					"success", ev.Result.Success, "blocks", ev.Result.BlocksLoaded,
					"attempts", ev.Result.Attempts)
			}
		}
	}
}
