package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/queue"
	"github.com/skouter/recruit-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCallbackHandler(t *testing.T, tasks store.TaskStore) *CallbackHandler {
	t.Helper()
	status := newStatusService(t, tasks)
	handler, err := NewCallbackHandler(status, testLogger())
	require.NoError(t, err)
	return handler
}

func TestCallbackHandlerHandleEvent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	taskID := uuid.New()

	t.Run("progress event drives the running transition", func(t *testing.T) {
		var gotUpdate store.TaskUpdate
		tasks := &mockTaskStore{
			UpdateStatusIfFunc: func(ctx context.Context, id uuid.UUID, expected []domain.TaskStatus, update store.TaskUpdate) (*domain.TaskRecord, error) {
				gotUpdate = update
				return &domain.TaskRecord{ID: id, Status: domain.TaskStatusRunning}, nil
			},
		}
		handler := newCallbackHandler(t, tasks)

		err := handler.HandleEvent(ctx, queue.CallbackEvent{
			TaskID:   taskID,
			Event:    queue.EventProgress,
			Progress: 30,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusRunning, gotUpdate.Status)
		require.NotNil(t, gotUpdate.Progress)
		assert.Equal(t, 30, *gotUpdate.Progress)
	})

	t.Run("completed event stores the result", func(t *testing.T) {
		result := json.RawMessage(`{"content":"ok"}`)
		var gotUpdate store.TaskUpdate
		tasks := &mockTaskStore{
			UpdateStatusIfFunc: func(ctx context.Context, id uuid.UUID, expected []domain.TaskStatus, update store.TaskUpdate) (*domain.TaskRecord, error) {
				gotUpdate = update
				return &domain.TaskRecord{ID: id, Status: domain.TaskStatusCompleted}, nil
			},
		}
		handler := newCallbackHandler(t, tasks)

		err := handler.HandleEvent(ctx, queue.CallbackEvent{
			TaskID: taskID,
			Event:  queue.EventCompleted,
			Result: result,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompleted, gotUpdate.Status)
		assert.JSONEq(t, string(result), string(gotUpdate.Result))
	})

	t.Run("failed event stores the error message", func(t *testing.T) {
		var gotUpdate store.TaskUpdate
		tasks := &mockTaskStore{
			UpdateStatusIfFunc: func(ctx context.Context, id uuid.UUID, expected []domain.TaskStatus, update store.TaskUpdate) (*domain.TaskRecord, error) {
				gotUpdate = update
				return &domain.TaskRecord{ID: id, Status: domain.TaskStatusFailed}, nil
			},
		}
		handler := newCallbackHandler(t, tasks)

		err := handler.HandleEvent(ctx, queue.CallbackEvent{
			TaskID: taskID,
			Event:  queue.EventFailed,
			Error:  "boom",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusFailed, gotUpdate.Status)
		require.NotNil(t, gotUpdate.ErrorMessage)
		assert.Equal(t, "boom", *gotUpdate.ErrorMessage)
	})

	t.Run("late progress on a terminal task is swallowed", func(t *testing.T) {
		tasks := &mockTaskStore{
			UpdateStatusIfFunc: func(ctx context.Context, id uuid.UUID, expected []domain.TaskStatus, update store.TaskUpdate) (*domain.TaskRecord, error) {
				return nil, conflictErr(domain.TaskStatusCancelled)
			},
		}
		handler := newCallbackHandler(t, tasks)

		err := handler.HandleEvent(ctx, queue.CallbackEvent{
			TaskID:   taskID,
			Event:    queue.EventProgress,
			Progress: 90,
		})

		assert.NoError(t, err)
	})

	t.Run("callback for unknown task is swallowed", func(t *testing.T) {
		handler := newCallbackHandler(t, &mockTaskStore{})

		err := handler.HandleEvent(ctx, queue.CallbackEvent{
			TaskID: taskID,
			Event:  queue.EventCompleted,
		})

		assert.NoError(t, err)
	})

	t.Run("unknown event type is ignored", func(t *testing.T) {
		handler := newCallbackHandler(t, &mockTaskStore{})

		err := handler.HandleEvent(ctx, queue.CallbackEvent{
			TaskID: taskID,
			Event:  queue.EventType("heartbeat"),
		})

		assert.NoError(t, err)
	})

	t.Run("store failures propagate for redelivery", func(t *testing.T) {
		storeErr := errors.New("connection reset")
		tasks := &mockTaskStore{
			UpdateStatusIfFunc: func(ctx context.Context, id uuid.UUID, expected []domain.TaskStatus, update store.TaskUpdate) (*domain.TaskRecord, error) {
				return nil, storeErr
			},
		}
		handler := newCallbackHandler(t, tasks)

		err := handler.HandleEvent(ctx, queue.CallbackEvent{
			TaskID: taskID,
			Event:  queue.EventCompleted,
		})

		assert.ErrorIs(t, err, storeErr)
	})
}
