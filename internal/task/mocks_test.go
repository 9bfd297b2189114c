package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/queue"
	"github.com/skouter/recruit-api/internal/store"
)

// mockTaskStore implements store.TaskStore with configurable function fields.
type mockTaskStore struct {
	CreateFunc                func(ctx context.Context, record *domain.TaskRecord) error
	GetByIDFunc               func(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error)
	UpdateStatusIfFunc        func(ctx context.Context, id uuid.UUID, expected []domain.TaskStatus, update store.TaskUpdate) (*domain.TaskRecord, error)
	ListByStatusOlderThanFunc func(ctx context.Context, status domain.TaskStatus, olderThan time.Duration) ([]*domain.TaskRecord, error)
}

var _ store.TaskStore = (*mockTaskStore)(nil)

func (m *mockTaskStore) Create(ctx context.Context, record *domain.TaskRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	return nil
}

func (m *mockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) UpdateStatusIf(
	ctx context.Context,
	id uuid.UUID,
	expected []domain.TaskStatus,
	update store.TaskUpdate,
) (*domain.TaskRecord, error) {
	if m.UpdateStatusIfFunc != nil {
		return m.UpdateStatusIfFunc(ctx, id, expected, update)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) ListByStatusOlderThan(
	ctx context.Context,
	status domain.TaskStatus,
	olderThan time.Duration,
) ([]*domain.TaskRecord, error) {
	if m.ListByStatusOlderThanFunc != nil {
		return m.ListByStatusOlderThanFunc(ctx, status, olderThan)
	}
	return nil, nil
}

// mockJobStore implements store.JobStore with configurable function fields.
type mockJobStore struct {
	ExistsFunc func(ctx context.Context, id int64) (bool, error)
}

var _ store.JobStore = (*mockJobStore)(nil)

func (m *mockJobStore) Create(ctx context.Context, job *domain.Job) error {
	return errors.New("not implemented")
}

func (m *mockJobStore) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	return nil, store.ErrJobNotFound
}

func (m *mockJobStore) Exists(ctx context.Context, id int64) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	return true, nil
}

func (m *mockJobStore) ListByCompany(ctx context.Context, companyID int64, limit int) ([]*domain.Job, error) {
	return nil, nil
}

// mockPublisher implements queue.Publisher and records what was published.
type mockPublisher struct {
	PublishFunc func(ctx context.Context, descriptor queue.Descriptor) error
	published   []queue.Descriptor
}

var _ queue.Publisher = (*mockPublisher)(nil)

func (m *mockPublisher) Publish(ctx context.Context, descriptor queue.Descriptor) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, descriptor); err != nil {
			return err
		}
	}
	m.published = append(m.published, descriptor)
	return nil
}

func (m *mockPublisher) Close() error { return nil }
