package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/platform/logger"
	"github.com/skouter/recruit-api/internal/queue"
	"github.com/skouter/recruit-api/internal/store"
)

// SubmissionService validates AI task requests, persists the initial
// PENDING record, and publishes the descriptor for the external worker.
// Submission never blocks on worker completion.
type SubmissionService struct {
	tasks     store.TaskStore
	jobs      store.JobStore
	publisher queue.Publisher
	logger    *slog.Logger
}

// NewSubmissionService creates a new SubmissionService.
// The job store is used to verify that ANALYSIS and EVALUATION payloads
// reference an existing job posting.
func NewSubmissionService(
	tasks store.TaskStore,
	jobs store.JobStore,
	publisher queue.Publisher,
	logger *slog.Logger,
) (*SubmissionService, error) {
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if publisher == nil {
		return nil, errors.New("publisher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SubmissionService{
		tasks:     tasks,
		jobs:      jobs,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "task_submission")),
	}, nil
}

// Submit validates the payload for the given kind, persists a PENDING
// record with a fresh task ID, publishes the descriptor on the kind's
// channel, and returns the record. The returned record is the caller's
// acknowledgment; the actual work happens asynchronously.
//
// If the persistence write fails, nothing is published and the error wraps
// store.ErrStoreUnavailable. If publishing fails after a successful write,
// the record is left PENDING for the reconciliation sweep and the error
// wraps queue.ErrQueueUnavailable.
func (s *SubmissionService) Submit(
	ctx context.Context,
	kind domain.TaskKind,
	payload json.RawMessage,
) (*domain.TaskRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidTaskKind(kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}

	if err := domain.ValidateTaskPayload(kind, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.checkReferences(ctx, kind, payload); err != nil {
		return nil, err
	}

	record, err := domain.NewTaskRecord(kind, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.tasks.Create(ctx, record); err != nil {
		log.Error("failed to persist task",
			slog.String("error", err.Error()),
			slog.String("kind", string(kind)))
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}

	descriptor := queue.Descriptor{
		TaskID:  record.ID,
		Kind:    record.Kind,
		Payload: record.Payload,
	}

	if err := s.publisher.Publish(ctx, descriptor); err != nil {
		// The record stays PENDING; the reconciliation sweep fails it if no
		// retry ever lands. Rolling back here would race a worker that did
		// receive the descriptor.
		log.Error("failed to publish descriptor, task left pending",
			slog.String("error", err.Error()),
			slog.String("task_id", record.ID.String()),
			slog.String("kind", string(kind)))
		return nil, fmt.Errorf("%w: %v", queue.ErrQueueUnavailable, err)
	}

	log.Info("task submitted",
		slog.String("task_id", record.ID.String()),
		slog.String("kind", string(kind)))
	return record, nil
}

// checkReferences verifies that payloads referencing other entities point at
// rows that exist, so the worker never picks up a task doomed to fail.
func (s *SubmissionService) checkReferences(
	ctx context.Context,
	kind domain.TaskKind,
	payload json.RawMessage,
) error {
	if s.jobs == nil {
		return nil
	}

	var jobID int64
	switch kind {
	case domain.TaskKindAnalysis:
		var p domain.AnalysisPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		jobID = p.JobID
	case domain.TaskKindEvaluation:
		var p domain.EvaluationPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		jobID = p.JobID
	default:
		return nil
	}

	exists, err := s.jobs.Exists(ctx, jobID)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	if !exists {
		return fmt.Errorf("%w: job %d not found", ErrValidation, jobID)
	}

	return nil
}
