package redisq

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/skouter/recruit-api/internal/queue"
)

// EventSubscriber listens on the worker callback channel and dispatches
// decoded events to a handler. Events arrive at-least-once and possibly out
// of order; the handler is responsible for idempotent terminal handling.
type EventSubscriber struct {
	client  *redis.Client
	channel string
	handler queue.EventHandler
	logger  *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEventSubscriber creates a subscriber for the given callback channel.
func NewEventSubscriber(
	client *redis.Client,
	channel string,
	handler queue.EventHandler,
	logger *slog.Logger,
) *EventSubscriber {
	if logger == nil {
		logger = slog.Default()
	}

	return &EventSubscriber{
		client:  client,
		channel: channel,
		handler: handler,
		logger:  logger.With(slog.String("component", "redis_event_subscriber")),
	}
}

// Start subscribes to the callback channel and begins dispatching events in
// a background goroutine. It returns once the subscription is confirmed.
func (s *EventSubscriber) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	pubsub := s.client.Subscribe(runCtx, s.channel)

	// Receive forces the SUBSCRIBE round trip so a broken connection is
	// reported here instead of silently dropping events later.
	if _, err := pubsub.Receive(runCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return err
	}

	s.logger.Info("subscribed to worker callback channel",
		slog.String("channel", s.channel))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { _ = pubsub.Close() }()

		ch := pubsub.Channel()
		for {
			select {
			case <-runCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.dispatch(runCtx, msg.Payload)
			}
		}
	}()

	return nil
}

// Stop cancels the subscription and waits for the dispatch loop to exit.
func (s *EventSubscriber) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// dispatch decodes one callback message and hands it to the event handler.
// Malformed messages are logged and dropped; handler errors are logged but
// never interrupt the loop, since the worker may redeliver.
func (s *EventSubscriber) dispatch(ctx context.Context, payload string) {
	var event queue.CallbackEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		s.logger.Error("failed to decode callback event",
			slog.String("error", err.Error()))
		return
	}

	if err := s.handler.HandleEvent(ctx, event); err != nil {
		s.logger.Error("failed to handle callback event",
			slog.String("error", err.Error()),
			slog.String("task_id", event.TaskID.String()),
			slog.String("event", string(event.Event)))
	}
}
