// Package redisq implements the queue contracts over Redis pub/sub.
// Task descriptors travel on one channel per kind and worker callbacks on a
// single shared events channel, matching the worker's subscription layout.
package redisq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/skouter/recruit-api/internal/queue"
)

// Publisher publishes task descriptors on Redis pub/sub channels.
type Publisher struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewPublisher creates a Redis-backed descriptor publisher.
// The client should be initialized and managed by the caller.
func NewPublisher(client *redis.Client, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Publisher{
		client: client,
		prefix: prefix,
		logger: logger.With(slog.String("component", "redis_publisher")),
	}
}

// Ensure Publisher implements queue.Publisher
var _ queue.Publisher = (*Publisher)(nil)

// Publish implements queue.Publisher.Publish
func (p *Publisher) Publish(ctx context.Context, descriptor queue.Descriptor) error {
	body, err := json.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("failed to encode descriptor: %w", err)
	}

	channel := queue.ChannelFor(p.prefix, descriptor.Kind)
	if err := p.client.Publish(ctx, channel, body).Err(); err != nil {
		p.logger.Error("failed to publish descriptor",
			slog.String("error", err.Error()),
			slog.String("channel", channel),
			slog.String("task_id", descriptor.TaskID.String()))
		return fmt.Errorf("%w: %v", queue.ErrQueueUnavailable, err)
	}

	p.logger.Debug("descriptor published",
		slog.String("channel", channel),
		slog.String("task_id", descriptor.TaskID.String()))
	return nil
}

// Close implements queue.Publisher.Close. The Redis client is shared with
// other components, so Close is a no-op here; the owner closes the client.
func (p *Publisher) Close() error {
	return nil
}
