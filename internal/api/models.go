package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/skouter/recruit-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TaskSubmitResponse is returned with 202 Accepted when a task has been
// persisted and handed off to a worker queue.
type TaskSubmitResponse struct {
	TaskID  uuid.UUID         `json:"task_id"`
	Status  domain.TaskStatus `json:"status"`
	Message string            `json:"message"`
}

// TaskStatusResponse describes the current lifecycle state of a task.
type TaskStatusResponse struct {
	TaskID       uuid.UUID         `json:"task_id"`
	Kind         domain.TaskKind   `json:"kind"`
	Status       domain.TaskStatus `json:"status"`
	Progress     int               `json:"progress"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TaskResultResponse carries the result document of a completed task.
type TaskResultResponse struct {
	TaskID uuid.UUID         `json:"task_id"`
	Status domain.TaskStatus `json:"status"`
	Result json.RawMessage   `json:"result"`
}

// newTaskStatusResponse builds a TaskStatusResponse from a task record.
func newTaskStatusResponse(record *domain.TaskRecord) TaskStatusResponse {
	return TaskStatusResponse{
		TaskID:       record.ID,
		Kind:         record.Kind,
		Status:       record.Status,
		Progress:     record.Progress,
		ErrorMessage: record.ErrorMessage,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}
