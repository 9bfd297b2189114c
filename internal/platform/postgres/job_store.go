package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/platform/logger"
	"github.com/skouter/recruit-api/internal/store"
)

// PostgresJobStore implements the store.JobStore interface
// using a PostgreSQL database as the storage backend.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the
// JobStore interface.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements store.JobStore interface
var _ store.JobStore = (*PostgresJobStore)(nil)

// Create implements store.JobStore.Create
func (s *PostgresJobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO jobs (company_id, title, description, skills, source, posted_at, closes_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		job.CompanyID,
		job.Title,
		job.Description,
		job.Skills,
		job.Source,
		job.PostedAt,
		nullableTime(job.ClosesAt),
		job.CreatedAt,
		job.UpdatedAt,
	).Scan(&job.ID)

	if err != nil {
		log.Error("failed to create job",
			slog.String("error", err.Error()),
			slog.Int64("company_id", job.CompanyID))
		return MapError(err)
	}

	log.Info("job created",
		slog.Int64("job_id", job.ID),
		slog.Int64("company_id", job.CompanyID))
	return nil
}

// GetByID implements store.JobStore.GetByID
func (s *PostgresJobStore) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, company_id, title, description, skills, source, posted_at, closes_at, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get job",
			slog.String("error", err.Error()),
			slog.Int64("job_id", id))
		return nil, MapError(err)
	}

	return job, nil
}

// Exists implements store.JobStore.Exists
func (s *PostgresJobStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// ListByCompany implements store.JobStore.ListByCompany
func (s *PostgresJobStore) ListByCompany(
	ctx context.Context,
	companyID int64,
	limit int,
) ([]*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, company_id, title, description, skills, source, posted_at, closes_at, created_at, updated_at
		FROM jobs
		WHERE company_id = $1
		ORDER BY posted_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, companyID, limit)
	if err != nil {
		log.Error("failed to list jobs",
			slog.String("error", err.Error()),
			slog.Int64("company_id", companyID))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, MapError(err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return jobs, nil
}

// scanJob scans one job row into a domain.Job.
func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	var closesAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.CompanyID,
		&job.Title,
		&job.Description,
		&job.Skills,
		&job.Source,
		&job.PostedAt,
		&closesAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if closesAt.Valid {
		job.ClosesAt = closesAt.Time
	}
	return &job, nil
}

// nullableTime converts a zero time.Time to a SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
