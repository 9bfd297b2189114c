package queue

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// EventType identifies a worker callback notification.
type EventType string

// Possible callback event types.
const (
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

// CallbackEvent is an inbound notification from the worker about one task.
// Delivery is assumed at-least-once, so handlers must treat duplicate
// terminal events as no-ops.
type CallbackEvent struct {
	// TaskID identifies the task the event refers to.
	TaskID uuid.UUID `json:"task_id"`

	// Event is the notification type.
	Event EventType `json:"event"`

	// Progress carries the reported progress for EventProgress.
	Progress int `json:"progress,omitempty"`

	// Result carries the task result for EventCompleted.
	Result json.RawMessage `json:"result,omitempty"`

	// Error carries the failure message for EventFailed.
	Error string `json:"error,omitempty"`
}

// EventHandler processes worker callback events. The task status service
// implements this to drive the lifecycle state machine.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event CallbackEvent) error
}
