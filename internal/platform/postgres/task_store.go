package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/platform/logger"
	"github.com/skouter/recruit-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, record *domain.TaskRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", record.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (id, kind, status, progress, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.Kind,
		record.Status,
		record.Progress,
		[]byte(record.Payload),
		record.CreatedAt,
		record.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", record.ID.String()),
			slog.String("kind", string(record.Kind)))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", record.ID.String()),
		slog.String("kind", string(record.Kind)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, kind, status, progress, payload, result, error_message, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	record, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return record, nil
}

// UpdateStatusIf implements store.TaskStore.UpdateStatusIf.
//
// The update and the status precondition are a single conditional UPDATE, so
// racing writers on the same task serialize on the row: exactly one of a
// concurrent cancel and completion callback takes effect, and the loser gets
// ErrConflict. Progress is written through GREATEST so stored progress never
// decreases.
func (s *PostgresTaskStore) UpdateStatusIf(
	ctx context.Context,
	id uuid.UUID,
	expected []domain.TaskStatus,
	update store.TaskUpdate,
) (*domain.TaskRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(expected) == 0 {
		return nil, fmt.Errorf("%w: expected statuses cannot be empty", store.ErrInvalidEntity)
	}

	args := []any{id, update.Status}
	var progress any
	if update.Progress != nil {
		progress = *update.Progress
	}
	args = append(args, progress)

	var result any
	if update.Result != nil {
		result = []byte(update.Result)
	}
	args = append(args, result)

	var errorMessage any
	if update.ErrorMessage != nil {
		errorMessage = *update.ErrorMessage
	}
	args = append(args, errorMessage, time.Now().UTC())

	// Build the status precondition placeholders ($7, $8, ...).
	placeholders := make([]string, len(expected))
	for i, st := range expected {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, st)
	}

	query := fmt.Sprintf(`
		UPDATE tasks
		SET status = $2,
		    progress = CASE WHEN $3::int IS NULL THEN progress ELSE GREATEST(progress, $3::int) END,
		    result = COALESCE($4::jsonb, result),
		    error_message = COALESCE($5::text, error_message),
		    updated_at = $6
		WHERE id = $1 AND status IN (%s)
		RETURNING id, kind, status, progress, payload, result, error_message, created_at, updated_at
	`, strings.Join(placeholders, ", "))

	record, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err == nil {
		log.Debug("task status updated",
			slog.String("task_id", id.String()),
			slog.String("status", string(update.Status)))
		return record, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()),
			slog.String("status", string(update.Status)))
		return nil, MapError(err)
	}

	// No row matched: either the task does not exist, or it was found in an
	// unexpected status. Distinguish the two for the caller.
	var current domain.TaskStatus
	selErr := s.db.QueryRowContext(ctx, `SELECT status FROM tasks WHERE id = $1`, id).
		Scan(&current)
	if selErr != nil {
		if errors.Is(selErr, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(selErr)
	}

	return nil, fmt.Errorf("%w: task %s is %s", store.ErrConflict, id, current)
}

// ListByStatusOlderThan implements store.TaskStore.ListByStatusOlderThan
func (s *PostgresTaskStore) ListByStatusOlderThan(
	ctx context.Context,
	status domain.TaskStatus,
	olderThan time.Duration,
) ([]*domain.TaskRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, kind, status, progress, payload, result, error_message, created_at, updated_at
		FROM tasks
		WHERE status = $1 AND updated_at < $2
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, status, time.Now().UTC().Add(-olderThan))
	if err != nil {
		log.Error("failed to list tasks by status",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans one task row into a domain.TaskRecord.
func scanTask(row rowScanner) (*domain.TaskRecord, error) {
	var record domain.TaskRecord
	var payload []byte
	var result []byte
	var errorMessage sql.NullString

	err := row.Scan(
		&record.ID,
		&record.Kind,
		&record.Status,
		&record.Progress,
		&payload,
		&result,
		&errorMessage,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Payload = payload
	record.Result = result
	record.ErrorMessage = errorMessage.String
	return &record, nil
}
