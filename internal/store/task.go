package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/skouter/recruit-api/internal/domain"
)

// TaskUpdate describes the fields written by a conditional status update.
// Nil pointer fields are left untouched.
type TaskUpdate struct {
	// Status is the target status of the transition.
	Status domain.TaskStatus

	// Progress, when non-nil, is the reported progress value. The store
	// clamps it so stored progress never decreases.
	Progress *int

	// Result, when non-nil, is written with the transition to COMPLETED.
	Result json.RawMessage

	// ErrorMessage, when non-nil, is written with the transition to FAILED.
	ErrorMessage *string
}

// TaskStore defines the interface for persisting task records.
//
// UpdateStatusIf is the serialization point for racing writers: a cancel
// racing a completion callback resolves to whichever conditional update
// lands first, and the loser observes ErrConflict.
type TaskStore interface {
	// Create persists a new task record.
	Create(ctx context.Context, record *domain.TaskRecord) error

	// GetByID retrieves a task record by its identifier.
	// Returns ErrTaskNotFound if no such task exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error)

	// UpdateStatusIf atomically applies the update if and only if the
	// record's current status is one of the expected statuses. Returns the
	// updated record, ErrTaskNotFound if the task does not exist, or
	// ErrConflict if the task was found in an unexpected status.
	UpdateStatusIf(
		ctx context.Context,
		id uuid.UUID,
		expected []domain.TaskStatus,
		update TaskUpdate,
	) (*domain.TaskRecord, error)

	// ListByStatusOlderThan retrieves tasks in the given status whose last
	// update is older than the given age. Used by the reconciliation sweep.
	ListByStatusOlderThan(
		ctx context.Context,
		status domain.TaskStatus,
		olderThan time.Duration,
	) ([]*domain.TaskRecord, error)
}
