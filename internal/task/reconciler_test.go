package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilerSweep(t *testing.T) {
	t.Parallel()

	t.Run("fails tasks pending longer than the configured age", func(t *testing.T) {
		orphanID := uuid.New()

		var mu sync.Mutex
		var failed []uuid.UUID
		swept := make(chan struct{}, 1)

		tasks := &mockTaskStore{
			ListByStatusOlderThanFunc: func(ctx context.Context, status domain.TaskStatus, olderThan time.Duration) ([]*domain.TaskRecord, error) {
				assert.Equal(t, domain.TaskStatusPending, status)
				assert.Equal(t, time.Minute, olderThan)
				return []*domain.TaskRecord{
					{ID: orphanID, Status: domain.TaskStatusPending},
				}, nil
			},
			UpdateStatusIfFunc: func(ctx context.Context, id uuid.UUID, expected []domain.TaskStatus, update store.TaskUpdate) (*domain.TaskRecord, error) {
				mu.Lock()
				failed = append(failed, id)
				mu.Unlock()
				select {
				case swept <- struct{}{}:
				default:
				}
				assert.Equal(t, domain.TaskStatusFailed, update.Status)
				require.NotNil(t, update.ErrorMessage)
				assert.NotEmpty(t, *update.ErrorMessage)
				return &domain.TaskRecord{ID: id, Status: domain.TaskStatusFailed}, nil
			},
		}

		status := newStatusService(t, tasks)
		reconciler := NewReconciler(tasks, status, ReconcilerConfig{
			PendingTaskAge: time.Minute,
			SweepInterval:  10 * time.Millisecond,
		}, testLogger())

		reconciler.Start(context.Background())
		defer reconciler.Stop()

		select {
		case <-swept:
		case <-time.After(2 * time.Second):
			t.Fatal("sweep never failed the orphaned task")
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Contains(t, failed, orphanID)
	})

	t.Run("disabled when pending age is zero", func(t *testing.T) {
		called := make(chan struct{}, 1)
		tasks := &mockTaskStore{
			ListByStatusOlderThanFunc: func(ctx context.Context, status domain.TaskStatus, olderThan time.Duration) ([]*domain.TaskRecord, error) {
				select {
				case called <- struct{}{}:
				default:
				}
				return nil, nil
			},
		}

		status := newStatusService(t, tasks)
		reconciler := NewReconciler(tasks, status, ReconcilerConfig{
			PendingTaskAge: 0,
			SweepInterval:  time.Millisecond,
		}, testLogger())

		reconciler.Start(context.Background())
		defer reconciler.Stop()

		select {
		case <-called:
			t.Fatal("sweep ran despite reconciliation being disabled")
		case <-time.After(50 * time.Millisecond):
		}
	})
}
