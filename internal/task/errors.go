package task

import "errors"

// Errors returned by the task services, mapped onto API responses by the
// handler layer.
var (
	// ErrValidation is returned when a submission payload is malformed or
	// missing required identifying fields for its kind. Never retried.
	ErrValidation = errors.New("invalid task submission")

	// ErrNotReady is returned when a result is requested before the task
	// has completed. Callers are expected to poll again.
	ErrNotReady = errors.New("task result not ready")

	// ErrInvalidTransition is returned when a progress report or cancel
	// arrives for a task already in a terminal state. Duplicate or late
	// worker signals are expected under at-least-once delivery, so callers
	// treat this as benign.
	ErrInvalidTransition = errors.New("invalid task state transition")
)
