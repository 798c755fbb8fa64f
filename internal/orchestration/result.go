package orchestration

import (
	"time"

	"github.com/botcanvas/blockcore/internal/cachemanager"
)

// Result is the final outcome of an initialization run.
type Result struct {
	// Success is true when the run reached ready.
	Success bool `json:"success"`

	// BlocksLoaded counts definitions registered by the final attempt.
	BlocksLoaded int `json:"blocks_loaded"`

	// TotalTime spans the whole run including retries and backoff.
	TotalTime time.Duration `json:"total_time"`

	// Errors holds the final attempt's classified failures. On a failed
	// run the fatal error comes last.
	Errors []*InitError `json:"errors,omitempty"`

	// Warnings aggregates non-fatal observations, including one line per
	// earlier failed attempt.
	Warnings []string `json:"warnings,omitempty"`

	// CacheStats snapshots registration cache effectiveness at run end.
	CacheStats cachemanager.Stats `json:"cache_stats"`

	// RunID correlates the logs, spans and events of one run.
	RunID string `json:"run_id"`

	// Attempts is how many attempts ran, the successful one included.
	Attempts int `json:"attempts"`
}
