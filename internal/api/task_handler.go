package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/skouter/recruit-api/internal/api/shared"
	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/task"
)

// maxPayloadBytes bounds how much of a submission body we are willing to
// read. Payloads are prompt-sized documents, not uploads.
const maxPayloadBytes = 1 << 20

// TaskHandler handles asynchronous AI task API requests.
type TaskHandler struct {
	submission *task.SubmissionService
	status     *task.StatusService
	logger     *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(
	submission *task.SubmissionService,
	status *task.StatusService,
	logger *slog.Logger,
) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		submission: submission,
		status:     status,
		logger:     logger.With(slog.String("component", "task_handler")),
	}
}

// SubmitAnalysis handles POST /api/ai/analysis.
func (h *TaskHandler) SubmitAnalysis(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, domain.TaskKindAnalysis)
}

// SubmitGeneration handles POST /api/ai/generation.
func (h *TaskHandler) SubmitGeneration(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, domain.TaskKindGeneration)
}

// SubmitEvaluation handles POST /api/ai/evaluation.
func (h *TaskHandler) SubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, domain.TaskKindEvaluation)
}

// SubmitChat handles POST /api/ai/chat.
func (h *TaskHandler) SubmitChat(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, domain.TaskKindChat)
}

// submit reads the request body as the task payload, hands it to the
// submission service, and acknowledges with 202 Accepted. The response
// carries the task ID the client must use to poll for the outcome.
func (h *TaskHandler) submit(w http.ResponseWriter, r *http.Request, kind domain.TaskKind) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(body) == 0 || !json.Valid(body) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Request body must be a JSON document")
		return
	}

	record, err := h.submission.Submit(r.Context(), kind, body)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskSubmitResponse{
		TaskID:  record.ID,
		Status:  record.Status,
		Message: "task accepted for processing",
	})
}

// GetStatus handles GET /api/ai/tasks/{taskID}/status.
func (h *TaskHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.pathTaskID(w, r)
	if !ok {
		return
	}

	record, err := h.status.GetStatus(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskStatusResponse(record))
}

// GetResult handles GET /api/ai/tasks/{taskID}/result. Responds 409 until
// the task has completed.
func (h *TaskHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.pathTaskID(w, r)
	if !ok {
		return
	}

	result, err := h.status.GetResult(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskResultResponse{
		TaskID: taskID,
		Status: domain.TaskStatusCompleted,
		Result: result,
	})
}

// Cancel handles DELETE /api/ai/tasks/{taskID}. Cancellation is advisory:
// the task stops being eligible for further transitions, but a worker
// already processing it is not interrupted. Cancelling an already-terminal
// task succeeds without changing anything.
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.pathTaskID(w, r)
	if !ok {
		return
	}

	if err := h.status.Cancel(r.Context(), taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	record, err := h.status.GetStatus(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, newTaskStatusResponse(record))
}

// pathTaskID extracts and parses the taskID path parameter. On failure it
// writes the error response and returns false.
func (h *TaskHandler) pathTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "taskID")
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return uuid.Nil, false
	}

	taskID, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID has invalid format")
		return uuid.Nil, false
	}

	return taskID, true
}
