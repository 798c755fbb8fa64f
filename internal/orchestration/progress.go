package orchestration

import "time"

// Progress is a point-in-time view of an initialization run. Completed and
// Total count block registrations once the batch size is known; Percentage
// tracks the run as a whole, weighted by phase.
type Progress struct {
	State              State         `json:"state"`
	Completed          int           `json:"completed"`
	Total              int           `json:"total"`
	Percentage         float64       `json:"percentage"`
	CurrentOperation   string        `json:"current_operation"`
	StartedAt          time.Time     `json:"started_at"`
	Elapsed            time.Duration `json:"elapsed"`
	EstimatedRemaining time.Duration `json:"estimated_remaining"`
	Errors             []*InitError  `json:"errors,omitempty"`
	Warnings           []string      `json:"warnings,omitempty"`
	Attempt            int           `json:"attempt"`
	RunID              string        `json:"run_id"`
}

// clone copies the progress snapshot so callers cannot alias internal
// slices.
func (p Progress) clone() Progress {
	out := p
	if p.Errors != nil {
		out.Errors = make([]*InitError, len(p.Errors))
		copy(out.Errors, p.Errors)
	}
	if p.Warnings != nil {
		out.Warnings = make([]string, len(p.Warnings))
		copy(out.Warnings, p.Warnings)
	}
	return out
}

// percentForState maps a state to the share of the run completed when that
// state is entered. Registering interpolates between its floor and the
// validating floor as blocks land.
var percentForState = map[State]float64{
	StateIdle:        0,
	StateLoading:     10,
	StateResolving:   35,
	StateRegistering: 55,
	StateValidating:  90,
	StateReady:       100,
	StateError:       100,
	StateRetrying:    0,
}

// estimateRemaining projects time left from elapsed time and percentage.
// Zero until at least some progress exists.
func estimateRemaining(elapsed time.Duration, percentage float64) time.Duration {
	if percentage <= 0 || percentage >= 100 || elapsed <= 0 {
		return 0
	}
	total := float64(elapsed) * 100 / percentage
	return time.Duration(total) - elapsed
}
