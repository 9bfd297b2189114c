package store

import (
	"context"

	"github.com/skouter/recruit-api/internal/domain"
)

// JobStore defines the interface for job posting persistence.
type JobStore interface {
	// Create saves a new job posting and assigns its ID.
	Create(ctx context.Context, job *domain.Job) error

	// GetByID retrieves a job posting by its identifier.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Job, error)

	// Exists reports whether a job posting with the given ID exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// ListByCompany retrieves job postings for a company, newest first.
	ListByCompany(ctx context.Context, companyID int64, limit int) ([]*domain.Job, error)
}
