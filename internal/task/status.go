package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/platform/logger"
	"github.com/skouter/recruit-api/internal/store"
)

// nonTerminal is the status precondition shared by every transition: a
// record may only move while it is PENDING or RUNNING.
var nonTerminal = []domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusRunning}

// StatusService reads and writes task records on behalf of callers and of
// the worker callback path. All writes go through the store's conditional
// update, so a cancel racing a completion resolves to exactly one terminal
// state.
type StatusService struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewStatusService creates a new StatusService.
func NewStatusService(tasks store.TaskStore, logger *slog.Logger) (*StatusService, error) {
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StatusService{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_status")),
	}, nil
}

// GetStatus returns the current record for the given task.
// Returns store.ErrTaskNotFound if the task ID was never issued.
func (s *StatusService) GetStatus(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
	return s.tasks.GetByID(ctx, id)
}

// GetResult returns the task's result.
// Returns store.ErrTaskNotFound if the task is unknown and ErrNotReady if
// it has not completed.
func (s *StatusService) GetResult(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	record, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.Status != domain.TaskStatusCompleted {
		return nil, fmt.Errorf("%w: task is %s", ErrNotReady, record.Status)
	}

	return record.Result, nil
}

// Cancel transitions a PENDING or RUNNING task to CANCELLED. Cancellation
// is advisory: the worker may already be processing, in which case its
// terminal report will lose the conditional update and be dropped.
// Cancelling an already-terminal task is a no-op.
// Returns store.ErrTaskNotFound if the task is unknown.
func (s *StatusService) Cancel(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.tasks.UpdateStatusIf(ctx, id, nonTerminal, store.TaskUpdate{
		Status: domain.TaskStatusCancelled,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Already terminal; nothing to cancel.
			log.Debug("cancel on terminal task ignored",
				slog.String("task_id", id.String()))
			return nil
		}
		return err
	}

	log.Info("task cancelled", slog.String("task_id", id.String()))
	return nil
}

// ReportProgress records a progress value from the worker, transitioning
// PENDING tasks to RUNNING on the first report. Stored progress never
// decreases. Reports against terminal tasks return ErrInvalidTransition,
// which callers on the callback path treat as benign.
func (s *StatusService) ReportProgress(ctx context.Context, id uuid.UUID, progress int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: progress %d out of range", ErrValidation, progress)
	}

	_, err := s.tasks.UpdateStatusIf(ctx, id, nonTerminal, store.TaskUpdate{
		Status:   domain.TaskStatusRunning,
		Progress: &progress,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("%w: progress report on terminal task", ErrInvalidTransition)
		}
		return err
	}

	log.Debug("task progress reported",
		slog.String("task_id", id.String()),
		slog.Int("progress", progress))
	return nil
}

// ReportCompletion records the worker's result and transitions the task to
// COMPLETED with progress clamped to 100. Idempotent: a report against an
// already-terminal task is a no-op, never an overwrite, to tolerate
// at-least-once delivery from the callback channel.
func (s *StatusService) ReportCompletion(
	ctx context.Context,
	id uuid.UUID,
	result json.RawMessage,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	full := 100
	_, err := s.tasks.UpdateStatusIf(ctx, id, nonTerminal, store.TaskUpdate{
		Status:   domain.TaskStatusCompleted,
		Progress: &full,
		Result:   result,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.Debug("duplicate completion report ignored",
				slog.String("task_id", id.String()))
			return nil
		}
		return err
	}

	log.Info("task completed", slog.String("task_id", id.String()))
	return nil
}

// ReportFailure records the worker's error message and transitions the task
// to FAILED. Idempotent in the same way as ReportCompletion.
func (s *StatusService) ReportFailure(ctx context.Context, id uuid.UUID, message string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.tasks.UpdateStatusIf(ctx, id, nonTerminal, store.TaskUpdate{
		Status:       domain.TaskStatusFailed,
		ErrorMessage: &message,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.Debug("duplicate failure report ignored",
				slog.String("task_id", id.String()))
			return nil
		}
		return err
	}

	log.Info("task failed",
		slog.String("task_id", id.String()),
		slog.String("error_message", message))
	return nil
}
