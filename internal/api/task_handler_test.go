package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/queue"
	"github.com/skouter/recruit-api/internal/store"
	"github.com/skouter/recruit-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTaskStore struct {
	CreateFunc         func(ctx context.Context, record *domain.TaskRecord) error
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error)
	UpdateStatusIfFunc func(ctx context.Context, id uuid.UUID, expected []domain.TaskStatus, update store.TaskUpdate) (*domain.TaskRecord, error)
}

var _ store.TaskStore = (*stubTaskStore)(nil)

func (s *stubTaskStore) Create(ctx context.Context, record *domain.TaskRecord) error {
	if s.CreateFunc != nil {
		return s.CreateFunc(ctx, record)
	}
	return nil
}

func (s *stubTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
	if s.GetByIDFunc != nil {
		return s.GetByIDFunc(ctx, id)
	}
	return nil, store.ErrTaskNotFound
}

func (s *stubTaskStore) UpdateStatusIf(
	ctx context.Context,
	id uuid.UUID,
	expected []domain.TaskStatus,
	update store.TaskUpdate,
) (*domain.TaskRecord, error) {
	if s.UpdateStatusIfFunc != nil {
		return s.UpdateStatusIfFunc(ctx, id, expected, update)
	}
	return nil, store.ErrTaskNotFound
}

func (s *stubTaskStore) ListByStatusOlderThan(
	ctx context.Context,
	status domain.TaskStatus,
	olderThan time.Duration,
) ([]*domain.TaskRecord, error) {
	return nil, nil
}

type stubPublisher struct {
	err       error
	published []queue.Descriptor
}

var _ queue.Publisher = (*stubPublisher)(nil)

func (s *stubPublisher) Publish(ctx context.Context, descriptor queue.Descriptor) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, descriptor)
	return nil
}

func (s *stubPublisher) Close() error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTaskRouter wires a TaskHandler over the given store and publisher onto
// a chi router with the production route shapes.
func newTaskRouter(t *testing.T, tasks store.TaskStore, publisher queue.Publisher) http.Handler {
	t.Helper()

	submission, err := task.NewSubmissionService(tasks, nil, publisher, quietLogger())
	require.NoError(t, err)
	status, err := task.NewStatusService(tasks, quietLogger())
	require.NoError(t, err)

	handler := NewTaskHandler(submission, status, quietLogger())

	r := chi.NewRouter()
	r.Post("/api/ai/analysis", handler.SubmitAnalysis)
	r.Post("/api/ai/chat", handler.SubmitChat)
	r.Get("/api/ai/tasks/{taskID}/status", handler.GetStatus)
	r.Get("/api/ai/tasks/{taskID}/result", handler.GetResult)
	r.Delete("/api/ai/tasks/{taskID}", handler.Cancel)
	return r
}

func TestTaskHandlerSubmit(t *testing.T) {
	t.Parallel()

	t.Run("accepts a valid analysis submission", func(t *testing.T) {
		publisher := &stubPublisher{}
		router := newTaskRouter(t, &stubTaskStore{}, publisher)

		req := httptest.NewRequest(
			http.MethodPost,
			"/api/ai/analysis",
			strings.NewReader(`{"job_id": 42, "analysis_type": "keywords"}`),
		)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp TaskSubmitResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEqual(t, uuid.Nil, resp.TaskID)
		assert.Equal(t, domain.TaskStatusPending, resp.Status)
		require.Len(t, publisher.published, 1)
		assert.Equal(t, resp.TaskID, publisher.published[0].TaskID)
	})

	t.Run("rejects a non-JSON body", func(t *testing.T) {
		router := newTaskRouter(t, &stubTaskStore{}, &stubPublisher{})

		req := httptest.NewRequest(http.MethodPost, "/api/ai/analysis", strings.NewReader("not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a payload missing required fields", func(t *testing.T) {
		router := newTaskRouter(t, &stubTaskStore{}, &stubPublisher{})

		req := httptest.NewRequest(http.MethodPost, "/api/ai/chat", strings.NewReader(`{"message": "hi"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns service unavailable when the queue is down", func(t *testing.T) {
		publisher := &stubPublisher{err: queue.ErrQueueUnavailable}
		router := newTaskRouter(t, &stubTaskStore{}, publisher)

		req := httptest.NewRequest(http.MethodPost, "/api/ai/analysis", strings.NewReader(`{"job_id": 42}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestTaskHandlerGetStatus(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()

	t.Run("returns the record fields", func(t *testing.T) {
		tasks := &stubTaskStore{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
				require.Equal(t, taskID, id)
				return &domain.TaskRecord{
					ID:       id,
					Kind:     domain.TaskKindAnalysis,
					Status:   domain.TaskStatusRunning,
					Progress: 60,
				}, nil
			},
		}
		router := newTaskRouter(t, tasks, &stubPublisher{})

		req := httptest.NewRequest(http.MethodGet, "/api/ai/tasks/"+taskID.String()+"/status", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TaskStatusResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, taskID, resp.TaskID)
		assert.Equal(t, domain.TaskStatusRunning, resp.Status)
		assert.Equal(t, 60, resp.Progress)
	})

	t.Run("unknown task is 404", func(t *testing.T) {
		router := newTaskRouter(t, &stubTaskStore{}, &stubPublisher{})

		req := httptest.NewRequest(http.MethodGet, "/api/ai/tasks/"+uuid.NewString()+"/status", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed task ID is 400", func(t *testing.T) {
		router := newTaskRouter(t, &stubTaskStore{}, &stubPublisher{})

		req := httptest.NewRequest(http.MethodGet, "/api/ai/tasks/not-a-uuid/status", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandlerGetResult(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()

	t.Run("returns the stored result once completed", func(t *testing.T) {
		tasks := &stubTaskStore{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
				return &domain.TaskRecord{
					ID:     id,
					Status: domain.TaskStatusCompleted,
					Result: json.RawMessage(`{"content": "done"}`),
				}, nil
			},
		}
		router := newTaskRouter(t, tasks, &stubPublisher{})

		req := httptest.NewRequest(http.MethodGet, "/api/ai/tasks/"+taskID.String()+"/result", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TaskResultResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, domain.TaskStatusCompleted, resp.Status)
		assert.JSONEq(t, `{"content": "done"}`, string(resp.Result))
	})

	t.Run("conflict while the task is still running", func(t *testing.T) {
		tasks := &stubTaskStore{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
				return &domain.TaskRecord{ID: id, Status: domain.TaskStatusRunning, Progress: 10}, nil
			},
		}
		router := newTaskRouter(t, tasks, &stubPublisher{})

		req := httptest.NewRequest(http.MethodGet, "/api/ai/tasks/"+taskID.String()+"/result", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestTaskHandlerCancel(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()

	t.Run("cancels and returns the record", func(t *testing.T) {
		cancelled := false
		tasks := &stubTaskStore{
			UpdateStatusIfFunc: func(ctx context.Context, id uuid.UUID, expected []domain.TaskStatus, update store.TaskUpdate) (*domain.TaskRecord, error) {
				cancelled = true
				assert.Equal(t, domain.TaskStatusCancelled, update.Status)
				return &domain.TaskRecord{ID: id, Status: domain.TaskStatusCancelled}, nil
			},
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
				return &domain.TaskRecord{ID: id, Status: domain.TaskStatusCancelled}, nil
			},
		}
		router := newTaskRouter(t, tasks, &stubPublisher{})

		req := httptest.NewRequest(http.MethodDelete, "/api/ai/tasks/"+taskID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.True(t, cancelled)

		var resp TaskStatusResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, domain.TaskStatusCancelled, resp.Status)
	})

	t.Run("cancel on completed task reports the terminal state", func(t *testing.T) {
		tasks := &stubTaskStore{
			UpdateStatusIfFunc: func(ctx context.Context, id uuid.UUID, expected []domain.TaskStatus, update store.TaskUpdate) (*domain.TaskRecord, error) {
				return nil, store.ErrConflict
			},
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
				return &domain.TaskRecord{ID: id, Status: domain.TaskStatusCompleted, Progress: 100}, nil
			},
		}
		router := newTaskRouter(t, tasks, &stubPublisher{})

		req := httptest.NewRequest(http.MethodDelete, "/api/ai/tasks/"+taskID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp TaskStatusResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, domain.TaskStatusCompleted, resp.Status)
	})

	t.Run("cancel on unknown task is 404", func(t *testing.T) {
		router := newTaskRouter(t, &stubTaskStore{}, &stubPublisher{})

		req := httptest.NewRequest(http.MethodDelete, "/api/ai/tasks/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
