package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskKind identifies which worker channel receives a task.
type TaskKind string

// Possible task kinds.
const (
	TaskKindAnalysis   TaskKind = "ANALYSIS"
	TaskKindGeneration TaskKind = "GENERATION"
	TaskKindEvaluation TaskKind = "EVALUATION"
	TaskKindChat       TaskKind = "CHAT"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusRunning   TaskStatus = "RUNNING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusFailed    TaskStatus = "FAILED"
	TaskStatusCancelled TaskStatus = "CANCELLED"
)

// Common validation errors for TaskRecord
var (
	ErrEmptyTaskID      = errors.New("task ID cannot be empty")
	ErrInvalidTaskKind  = errors.New("invalid task kind")
	ErrInvalidTaskState = errors.New("invalid task status")
	ErrEmptyTaskPayload = errors.New("task payload cannot be empty")
	ErrInvalidProgress  = errors.New("task progress must be between 0 and 100")
)

// TaskRecord tracks one unit of asynchronous AI work through its lifecycle.
// The payload is set at creation and never mutated; result is only set on
// the transition to COMPLETED and error message only on the transition to
// FAILED.
type TaskRecord struct {
	ID           uuid.UUID       `json:"task_id"`
	Kind         TaskKind        `json:"kind"`
	Status       TaskStatus      `json:"status"`
	Progress     int             `json:"progress"`
	Payload      json.RawMessage `json:"payload"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewTaskRecord creates a new TaskRecord in the PENDING state with a fresh
// random identifier. Returns an error if validation fails.
func NewTaskRecord(kind TaskKind, payload json.RawMessage) (*TaskRecord, error) {
	now := time.Now().UTC()
	record := &TaskRecord{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    TaskStatusPending,
		Progress:  0,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the TaskRecord has valid data.
func (t *TaskRecord) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if !IsValidTaskKind(t.Kind) {
		return ErrInvalidTaskKind
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskState
	}

	if len(t.Payload) == 0 {
		return ErrEmptyTaskPayload
	}

	if t.Progress < 0 || t.Progress > 100 {
		return ErrInvalidProgress
	}

	return nil
}

// IsTerminal reports whether the record is in a terminal state.
// No transitions are accepted out of a terminal state.
func (t *TaskRecord) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// IsTerminal reports whether the status permits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the state machine permits moving from
// the current status to the target status.
//
//	PENDING -> RUNNING | CANCELLED | COMPLETED | FAILED
//	RUNNING -> RUNNING | CANCELLED | COMPLETED | FAILED
//
// A worker may skip RUNNING entirely, so PENDING admits the terminal
// transitions directly.
func (s TaskStatus) CanTransitionTo(target TaskStatus) bool {
	if s.IsTerminal() {
		return false
	}

	switch target {
	case TaskStatusRunning:
		return s == TaskStatusPending || s == TaskStatusRunning
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// IsValidTaskKind checks if the given kind is one of the enumerated variants.
func IsValidTaskKind(kind TaskKind) bool {
	switch kind {
	case TaskKindAnalysis, TaskKindGeneration, TaskKindEvaluation, TaskKindChat:
		return true
	default:
		return false
	}
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted,
		TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}
