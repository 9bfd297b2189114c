package redisq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/queue"
)

// TaskConsumer subscribes to the per-kind descriptor channels and exposes
// decoded descriptors on a Go channel. Used by the worker binary.
type TaskConsumer struct {
	client *redis.Client
	prefix string
	logger *slog.Logger

	pubsub *redis.PubSub
	out    chan queue.Descriptor
}

// NewTaskConsumer creates a consumer for the descriptor channels of the
// given kinds. An empty kinds slice subscribes to all four kinds.
func NewTaskConsumer(client *redis.Client, prefix string, logger *slog.Logger) *TaskConsumer {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskConsumer{
		client: client,
		prefix: prefix,
		logger: logger.With(slog.String("component", "redis_task_consumer")),
	}
}

// Start subscribes and begins decoding descriptors in the background.
func (c *TaskConsumer) Start(ctx context.Context, kinds ...domain.TaskKind) error {
	if len(kinds) == 0 {
		kinds = []domain.TaskKind{
			domain.TaskKindAnalysis,
			domain.TaskKindGeneration,
			domain.TaskKindEvaluation,
			domain.TaskKindChat,
		}
	}

	channels := make([]string, len(kinds))
	for i, kind := range kinds {
		channels[i] = queue.ChannelFor(c.prefix, kind)
	}

	c.pubsub = c.client.Subscribe(ctx, channels...)
	if _, err := c.pubsub.Receive(ctx); err != nil {
		_ = c.pubsub.Close()
		return fmt.Errorf("%w: %v", queue.ErrQueueUnavailable, err)
	}

	c.logger.Info("subscribed to task channels", slog.Any("channels", channels))

	c.out = make(chan queue.Descriptor)
	go func() {
		defer close(c.out)
		for msg := range c.pubsub.Channel() {
			var descriptor queue.Descriptor
			if err := json.Unmarshal([]byte(msg.Payload), &descriptor); err != nil {
				c.logger.Error("failed to decode descriptor",
					slog.String("error", err.Error()),
					slog.String("channel", msg.Channel))
				continue
			}

			select {
			case c.out <- descriptor:
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Descriptors returns the channel of decoded task descriptors.
// The channel closes when the consumer stops.
func (c *TaskConsumer) Descriptors() <-chan queue.Descriptor {
	return c.out
}

// Stop closes the subscription, which ends the descriptor channel.
func (c *TaskConsumer) Stop() {
	if c.pubsub != nil {
		_ = c.pubsub.Close()
	}
}
