package redisq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/skouter/recruit-api/internal/queue"
)

// EventReporter publishes worker callback events on the shared events
// channel. Used by the worker binary to report progress and terminal states
// back to the API server.
type EventReporter struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewEventReporter creates a reporter for the given callback channel.
func NewEventReporter(client *redis.Client, channel string, logger *slog.Logger) *EventReporter {
	if logger == nil {
		logger = slog.Default()
	}

	return &EventReporter{
		client:  client,
		channel: channel,
		logger:  logger.With(slog.String("component", "redis_event_reporter")),
	}
}

// Report publishes one callback event.
func (r *EventReporter) Report(ctx context.Context, event queue.CallbackEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode callback event: %w", err)
	}

	if err := r.client.Publish(ctx, r.channel, body).Err(); err != nil {
		r.logger.Error("failed to report callback event",
			slog.String("error", err.Error()),
			slog.String("task_id", event.TaskID.String()),
			slog.String("event", string(event.Event)))
		return fmt.Errorf("%w: %v", queue.ErrQueueUnavailable, err)
	}

	return nil
}
