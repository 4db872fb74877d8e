package extract

import (
	"errors"
	"fmt"
)

// ErrUnknownTarget is returned when a caller asks for a target key that
// was never registered. This is a configuration error, never retried.
var ErrUnknownTarget = errors.New("unknown extraction target")

// ValidationError reports that candidate JSON failed the target's
// strict validation. It is repairable until attempts run out.
type ValidationError struct {
	TargetKey string
	Raw       string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payload for target %q failed validation: %v", e.TargetKey, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ExhaustedError reports that every attempt, including fallback salvage,
// failed. The last validation error is the cause.
type ExhaustedError struct {
	TargetKey string
	Attempts  int
	Err       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("extraction for target %q exhausted after %d attempts: %v", e.TargetKey, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}
