// Package rabbitmq implements the queue contracts over RabbitMQ. Task
// descriptors travel on one durable queue per kind; unlike the Redis
// pub/sub driver, descriptors survive a broker restart and wait for a
// consumer instead of being dropped.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/queue"
	"github.com/streadway/amqp"
)

// Publisher publishes task descriptors on per-kind RabbitMQ queues.
type Publisher struct {
	conn   *amqp.Connection
	prefix string
	logger *slog.Logger

	mu       sync.Mutex
	channel  *amqp.Channel
	declared map[string]bool
}

// NewPublisher dials the broker and opens a channel for publishing.
func NewPublisher(url, prefix string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to RabbitMQ: %v", queue.ErrQueueUnavailable, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: failed to open channel: %v", queue.ErrQueueUnavailable, err)
	}

	return &Publisher{
		conn:     conn,
		prefix:   prefix,
		logger:   logger.With(slog.String("component", "amqp_publisher")),
		channel:  channel,
		declared: make(map[string]bool),
	}, nil
}

// Ensure Publisher implements queue.Publisher
var _ queue.Publisher = (*Publisher)(nil)

// Publish implements queue.Publisher.Publish
func (p *Publisher) Publish(ctx context.Context, descriptor queue.Descriptor) error {
	body, err := json.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("failed to encode descriptor: %w", err)
	}

	name := queue.ChannelFor(p.prefix, descriptor.Kind)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.declare(name); err != nil {
		return err
	}

	err = p.channel.Publish(
		"",    // default exchange
		name,  // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		p.logger.Error("failed to publish descriptor",
			slog.String("error", err.Error()),
			slog.String("queue", name),
			slog.String("task_id", descriptor.TaskID.String()))
		return fmt.Errorf("%w: %v", queue.ErrQueueUnavailable, err)
	}

	p.logger.Debug("descriptor published",
		slog.String("queue", name),
		slog.String("task_id", descriptor.TaskID.String()))
	return nil
}

// Close implements queue.Publisher.Close
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
	}
	return p.conn.Close()
}

// declare ensures the named durable queue exists. Declarations are cached
// per queue since they are idempotent but cost a broker round trip.
func (p *Publisher) declare(name string) error {
	if p.declared[name] {
		return nil
	}

	_, err := p.channel.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to declare queue %s: %v", queue.ErrQueueUnavailable, name, err)
	}

	p.declared[name] = true
	return nil
}

// Consumer consumes task descriptors from the per-kind queues.
// Used by the worker binary when the AMQP driver is configured.
type Consumer struct {
	conn   *amqp.Connection
	prefix string
	logger *slog.Logger

	channels []*amqp.Channel
	out      chan queue.Descriptor
	wg       sync.WaitGroup
}

// NewConsumer dials the broker for consuming.
func NewConsumer(url, prefix string, logger *slog.Logger) (*Consumer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to RabbitMQ: %v", queue.ErrQueueUnavailable, err)
	}

	return &Consumer{
		conn:   conn,
		prefix: prefix,
		logger: logger.With(slog.String("component", "amqp_consumer")),
	}, nil
}

// Start begins consuming descriptors for the given kinds (all four when
// empty) and decoding them onto the Descriptors channel.
func (c *Consumer) Start(ctx context.Context, kinds ...domain.TaskKind) error {
	if len(kinds) == 0 {
		kinds = []domain.TaskKind{
			domain.TaskKindAnalysis,
			domain.TaskKindGeneration,
			domain.TaskKindEvaluation,
			domain.TaskKindChat,
		}
	}

	c.out = make(chan queue.Descriptor)

	for _, kind := range kinds {
		name := queue.ChannelFor(c.prefix, kind)

		channel, err := c.conn.Channel()
		if err != nil {
			return fmt.Errorf("%w: failed to open channel: %v", queue.ErrQueueUnavailable, err)
		}
		c.channels = append(c.channels, channel)

		if _, err := channel.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("%w: failed to declare queue %s: %v", queue.ErrQueueUnavailable, name, err)
		}

		deliveries, err := channel.Consume(
			name,
			"",    // consumer tag
			false, // manual ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to consume queue %s: %v", queue.ErrQueueUnavailable, name, err)
		}

		c.logger.Info("consuming task queue", slog.String("queue", name))

		c.wg.Add(1)
		go c.consume(ctx, name, deliveries)
	}

	go func() {
		c.wg.Wait()
		close(c.out)
	}()

	return nil
}

// Descriptors returns the channel of decoded task descriptors.
func (c *Consumer) Descriptors() <-chan queue.Descriptor {
	return c.out
}

// Stop closes the broker connection, ending all consume loops.
func (c *Consumer) Stop() {
	for _, channel := range c.channels {
		_ = channel.Close()
	}
	_ = c.conn.Close()
}

// consume decodes deliveries from one queue onto the shared channel.
// Messages that fail to decode are acked and dropped; redelivery cannot fix
// a malformed body.
func (c *Consumer) consume(ctx context.Context, name string, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()

	for d := range deliveries {
		var descriptor queue.Descriptor
		if err := json.Unmarshal(d.Body, &descriptor); err != nil {
			c.logger.Error("failed to decode descriptor",
				slog.String("error", err.Error()),
				slog.String("queue", name))
			_ = d.Ack(false)
			continue
		}

		select {
		case c.out <- descriptor:
			_ = d.Ack(false)
		case <-ctx.Done():
			_ = d.Nack(false, true)
			return
		}
	}
}
