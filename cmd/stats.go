package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/botcanvas/blockcore/internal/cachemanager"
	"github.com/botcanvas/blockcore/internal/registry"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show registry and cache statistics",
	Long: `Initialize the block subsystem and print registry and cache statistics
as JSON: per-category block counts, enabled and experimental totals,
cache occupancy and hit efficiency.

Example:
  blockcore stats | jq .registry.by_category`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// statsPayload joins the registry and cache views of one initialized run.
type statsPayload struct {
	Registry registry.Stats     `json:"registry"`
	Cache    cachemanager.Stats `json:"cache"`
	RunID    string             `json:"run_id"`
	Attempts int                `json:"attempts"`
	InitTime time.Duration      `json:"init_time"`
}

func runStats(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sys, err := buildSubsystem(cfg)
	if err != nil {
		return err
	}
	defer sys.Close(context.Background())

	if err := initializeOrFail(ctx, sys); err != nil {
		return err
	}

	res, err := sys.orch.LastResult()
	if err != nil {
		return err
	}

	payload := statsPayload{
		Registry: sys.reg.Stats(),
		Cache:    sys.cache.Stats(),
		RunID:    res.RunID,
		Attempts: res.Attempts,
		InitTime: res.TotalTime,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
