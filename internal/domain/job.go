package domain

import (
	"errors"
	"time"
)

// Common validation errors for Job
var (
	ErrEmptyJobTitle     = errors.New("job title cannot be empty")
	ErrEmptyJobCompanyID = errors.New("job company ID cannot be empty")
)

// JobSource indicates where a job posting came from.
type JobSource string

// Possible job sources.
const (
	JobSourceCrawler JobSource = "crawler"
	JobSourceManual  JobSource = "manual"
	JobSourceAI      JobSource = "ai_generated"
)

// Job represents a job posting. Postings are the targets of ANALYSIS and
// EVALUATION tasks, so submission validates that the referenced job exists.
type Job struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Skills      string    `json:"skills"`
	Source      JobSource `json:"source"`
	PostedAt    time.Time `json:"posted_at"`
	ClosesAt    time.Time `json:"closes_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewJob creates a new Job posting for the given company.
// Returns an error if validation fails.
func NewJob(companyID int64, title, description string) (*Job, error) {
	now := time.Now().UTC()
	job := &Job{
		CompanyID:   companyID,
		Title:       title,
		Description: description,
		Source:      JobSourceManual,
		PostedAt:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the Job has valid data.
func (j *Job) Validate() error {
	if j.CompanyID <= 0 {
		return ErrEmptyJobCompanyID
	}

	if j.Title == "" {
		return ErrEmptyJobTitle
	}

	return nil
}
