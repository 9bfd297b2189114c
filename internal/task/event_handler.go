package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/skouter/recruit-api/internal/queue"
	"github.com/skouter/recruit-api/internal/store"
)

// CallbackHandler adapts worker callback events onto the StatusService.
// It is registered with the queue subscribers and drives the state machine
// from the asynchronous worker side.
type CallbackHandler struct {
	status *StatusService
	logger *slog.Logger
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(status *StatusService, logger *slog.Logger) (*CallbackHandler, error) {
	if status == nil {
		return nil, errors.New("status service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CallbackHandler{
		status: status,
		logger: logger.With(slog.String("component", "task_callback_handler")),
	}, nil
}

// Ensure CallbackHandler implements queue.EventHandler
var _ queue.EventHandler = (*CallbackHandler)(nil)

// HandleEvent processes one worker notification. Benign outcomes under
// at-least-once delivery, such as duplicate terminal reports or progress
// on a task that was already cancelled, are logged and swallowed; only
// genuine store failures propagate.
func (h *CallbackHandler) HandleEvent(ctx context.Context, event queue.CallbackEvent) error {
	var err error
	switch event.Event {
	case queue.EventProgress:
		err = h.status.ReportProgress(ctx, event.TaskID, event.Progress)
	case queue.EventCompleted:
		err = h.status.ReportCompletion(ctx, event.TaskID, event.Result)
	case queue.EventFailed:
		err = h.status.ReportFailure(ctx, event.TaskID, event.Error)
	default:
		h.logger.Warn("unknown callback event type",
			slog.String("event", string(event.Event)),
			slog.String("task_id", event.TaskID.String()))
		return nil
	}

	if err == nil {
		return nil
	}

	if errors.Is(err, ErrInvalidTransition) {
		h.logger.Debug("late worker signal ignored",
			slog.String("task_id", event.TaskID.String()),
			slog.String("event", string(event.Event)))
		return nil
	}

	if errors.Is(err, store.ErrTaskNotFound) {
		h.logger.Warn("callback for unknown task",
			slog.String("task_id", event.TaskID.String()),
			slog.String("event", string(event.Event)))
		return nil
	}

	return fmt.Errorf("failed to apply %s event: %w", event.Event, err)
}
