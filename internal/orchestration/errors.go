package orchestration

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by accessors that need a completed
	// initialization run while none has finished yet.
	ErrNotReady = errors.New("block subsystem is not ready")
)

// ErrorClass buckets an initialization failure by the phase that produced it.
type ErrorClass string

const (
	ClassModuleLoadFailed           ErrorClass = "module-load-failed"
	ClassDependencyResolutionFailed ErrorClass = "dependency-resolution-failed"
	ClassBlockRegistrationFailed    ErrorClass = "block-registration-failed"
	ClassValidationFailed           ErrorClass = "validation-failed"
	ClassTimeout                    ErrorClass = "timeout"
	ClassUnknown                    ErrorClass = "unknown"
)

// InitError is a single classified initialization failure. Retryable marks
// whether a later attempt could plausibly succeed: timeouts and load
// failures can, cycles and validation failures cannot.
type InitError struct {
	Class     ErrorClass `json:"class"`
	Message   string     `json:"message"`
	BlockID   string     `json:"block_id,omitempty"`
	Retryable bool       `json:"retryable"`
	Err       error      `json:"-"`
}

func (e *InitError) Error() string {
	if e.BlockID != "" {
		return fmt.Sprintf("%s: %s (block=%s)", e.Class, e.Message, e.BlockID)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

func (e *InitError) Unwrap() error { return e.Err }

// NewLoadError reports a definition source failure.
func NewLoadError(message string, cause error) *InitError {
	return &InitError{
		Class:     ClassModuleLoadFailed,
		Message:   message,
		Retryable: true,
		Err:       cause,
	}
}

// NewResolutionError reports a dependency graph failure, typically a cycle.
func NewResolutionError(blockID, message string, cause error) *InitError {
	return &InitError{
		Class:     ClassDependencyResolutionFailed,
		Message:   message,
		BlockID:   blockID,
		Retryable: false,
		Err:       cause,
	}
}

// NewRegistrationError reports a block that could not be registered.
func NewRegistrationError(blockID string, cause error) *InitError {
	return &InitError{
		Class:     ClassBlockRegistrationFailed,
		Message:   "block registration rejected",
		BlockID:   blockID,
		Retryable: false,
		Err:       cause,
	}
}

// NewValidationError reports a palette that came up unusable after
// registration.
func NewValidationError(message string) *InitError {
	return &InitError{
		Class:     ClassValidationFailed,
		Message:   message,
		Retryable: false,
	}
}

// NewTimeoutError reports a phase or run that exceeded its deadline.
func NewTimeoutError(message string, cause error) *InitError {
	return &InitError{
		Class:     ClassTimeout,
		Message:   message,
		Retryable: true,
		Err:       cause,
	}
}

// AsInitError classifies an arbitrary error. Known *InitError values pass
// through, anything else lands in the unknown class.
func AsInitError(err error) *InitError {
	if err == nil {
		return nil
	}
	var initErr *InitError
	if errors.As(err, &initErr) {
		return initErr
	}
	return &InitError{
		Class:     ClassUnknown,
		Message:   err.Error(),
		Retryable: false,
		Err:       err,
	}
}
