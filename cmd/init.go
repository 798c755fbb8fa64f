package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/botcanvas/blockcore/internal/orchestration"
)

var initJSON bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the block subsystem and report the outcome",
	Long: `Load every configured definition source, resolve dependency order,
register the palette and print the initialization result.

Exits non-zero when initialization ends in the error state.

Example:
  blockcore init
  blockcore init --json | jq .cache_stats`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initJSON, "json", false, "print the result as JSON")
}

func runInit(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sys, err := buildSubsystem(cfg)
	if err != nil {
		return err
	}
	defer sys.Close(context.Background())

	res, err := sys.orch.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("waiting for initialization: %w", err)
	}

	if initJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	} else {
		printResult(os.Stdout, res)
	}

	if !res.Success {
		return fmt.Errorf("initialization failed after %d attempt(s)", res.Attempts)
	}
	return nil
}

// printResult renders a human-readable result summary.
func printResult(w *os.File, res *orchestration.Result) {
	status := "ready"
	if !res.Success {
		status = "failed"
	}
	fmt.Fprintf(w, "%s: %d blocks in %s (%d attempt(s))\n",
		status, res.BlocksLoaded, res.TotalTime.Round(time.Millisecond), res.Attempts)
	fmt.Fprintf(w, "cache: %d/%d entries, %.0f%% efficiency\n",
		res.CacheStats.Size, res.CacheStats.MaxSize, res.CacheStats.Efficiency*100)
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, initErr := range res.Errors {
		fmt.Fprintf(w, "error: %s\n", initErr)
	}
}
