package orchestration

// EventKind identifies what an orchestration event describes.
type EventKind string

const (
	EventStateChanged    EventKind = "state-changed"
	EventProgressUpdated EventKind = "progress-updated"
	EventBlockLoaded     EventKind = "block-loaded"
	EventDepsResolved    EventKind = "dependencies-resolved"
	EventErrorOccurred   EventKind = "error-occurred"
	EventInitCompleted   EventKind = "initialization-completed"
)

// Event is a single orchestration notification. Only the fields relevant to
// the kind are set: State for state changes, Progress for progress updates,
// BlockID for per-block registrations, Count for resolution outcomes, Err
// for failures and Result when a run finishes.
type Event struct {
	Kind     EventKind
	RunID    string
	Attempt  int
	State    State
	Progress *Progress
	BlockID  string
	Count    int
	Err      *InitError
	Result   *Result
}
