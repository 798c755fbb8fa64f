package orchestration

import "slices"

// State is the position of the initialization state machine.
type State string

const (
	StateIdle        State = "idle"
	StateLoading     State = "loading"
	StateResolving   State = "resolving-dependencies"
	StateRegistering State = "registering-blocks"
	StateValidating  State = "validating"
	StateReady       State = "ready"
	StateError       State = "error"
	StateRetrying    State = "retrying"
)

// ValidTransitions defines the allowed state machine transitions.
// Map key is the "from" state, value is a slice of valid "to" states.
// Every state may transition to idle: that is the reset path.
var ValidTransitions = map[State][]State{
	StateIdle:        {StateLoading, StateIdle},
	StateLoading:     {StateResolving, StateRetrying, StateError, StateIdle},
	StateResolving:   {StateRegistering, StateRetrying, StateError, StateIdle},
	StateRegistering: {StateValidating, StateRetrying, StateError, StateIdle},
	StateValidating:  {StateReady, StateRetrying, StateError, StateIdle},
	StateRetrying:    {StateLoading, StateError, StateIdle},
	StateReady:       {StateIdle},
	StateError:       {StateIdle},
}

// IsValidTransition checks if transitioning from one state to another is
// allowed by the state machine.
func IsValidTransition(from, to State) bool {
	validTos, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	return slices.Contains(validTos, to)
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateReady || s == StateError
}
