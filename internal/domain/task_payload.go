package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validation errors for kind-specific payloads
var (
	ErrMissingJobID     = errors.New("payload requires a target job ID")
	ErrMissingCompanyID = errors.New("payload requires a company ID")
	ErrMissingSessionID = errors.New("payload requires a session ID")
	ErrMissingMessage   = errors.New("payload requires a message")
)

// AnalysisPayload is the request body for an ANALYSIS task: analyze an
// existing job posting (keywords, sentiment, required skills).
type AnalysisPayload struct {
	JobID        int64  `json:"job_id"`
	AnalysisType string `json:"analysis_type,omitempty"`
	Options      string `json:"options,omitempty"`
}

// Validate checks the payload's required identifying fields.
func (p AnalysisPayload) Validate() error {
	if p.JobID <= 0 {
		return ErrMissingJobID
	}
	return nil
}

// GenerationPayload is the request body for a GENERATION task: draft a job
// posting for a company, optionally from a template.
type GenerationPayload struct {
	CompanyID              int64  `json:"company_id"`
	JobDescription         string `json:"job_description,omitempty"`
	RequiredSkills         string `json:"required_skills,omitempty"`
	TemplateID             int64  `json:"template_id,omitempty"`
	AdditionalInstructions string `json:"additional_instructions,omitempty"`
}

// Validate checks the payload's required identifying fields.
func (p GenerationPayload) Validate() error {
	if p.CompanyID <= 0 {
		return ErrMissingCompanyID
	}
	return nil
}

// EvaluationPayload is the request body for an EVALUATION task: score an
// existing job posting against given criteria.
type EvaluationPayload struct {
	JobID    int64  `json:"job_id"`
	Criteria string `json:"criteria,omitempty"`
}

// Validate checks the payload's required identifying fields.
func (p EvaluationPayload) Validate() error {
	if p.JobID <= 0 {
		return ErrMissingJobID
	}
	return nil
}

// ChatPayload is the request body for a CHAT task: one turn of a chatbot
// conversation, correlated by session ID.
type ChatPayload struct {
	SessionID string    `json:"session_id"`
	Message   string    `json:"message"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
}

// Validate checks the payload's required identifying fields.
func (p ChatPayload) Validate() error {
	if p.SessionID == "" {
		return ErrMissingSessionID
	}
	if p.Message == "" {
		return ErrMissingMessage
	}
	return nil
}

// ValidateTaskPayload decodes and validates a raw payload against the
// shape required by the given kind. This is the tagged-union boundary:
// each kind has its own typed payload and its own required fields.
func ValidateTaskPayload(kind TaskKind, raw json.RawMessage) error {
	if len(raw) == 0 {
		return ErrEmptyTaskPayload
	}

	switch kind {
	case TaskKindAnalysis:
		var p AnalysisPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("malformed analysis payload: %w", err)
		}
		return p.Validate()
	case TaskKindGeneration:
		var p GenerationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("malformed generation payload: %w", err)
		}
		return p.Validate()
	case TaskKindEvaluation:
		var p EvaluationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("malformed evaluation payload: %w", err)
		}
		return p.Validate()
	case TaskKindChat:
		var p ChatPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("malformed chat payload: %w", err)
		}
		return p.Validate()
	default:
		return ErrInvalidTaskKind
	}
}
