// Package queue defines the messaging contracts between the API server and
// the external AI worker: the descriptor published to invoke a worker, the
// callback events the worker reports back, and the publisher interface the
// driver implementations satisfy.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skouter/recruit-api/internal/domain"
)

// ErrQueueUnavailable is returned when a descriptor cannot be published.
// Submission surfaces it as a transient infrastructure error; the persisted
// record stays PENDING for the reconciliation sweep.
var ErrQueueUnavailable = errors.New("queue unavailable")

// Descriptor is the minimal message placed on the queue to invoke a worker
// for a given task.
type Descriptor struct {
	TaskID  uuid.UUID       `json:"task_id"`
	Kind    domain.TaskKind `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher submits task descriptors onto the channel associated with the
// descriptor's kind. Publishing is at-most-once from the caller's
// perspective: no retries happen inside an implementation.
type Publisher interface {
	// Publish places the descriptor on the kind's channel.
	// Returns ErrQueueUnavailable (wrapped) if the broker cannot be reached.
	Publish(ctx context.Context, descriptor Descriptor) error

	// Close releases the underlying broker connection.
	Close() error
}

// ChannelFor returns the channel name for a task kind, e.g. "task:analysis".
func ChannelFor(prefix string, kind domain.TaskKind) string {
	if prefix == "" {
		prefix = "task"
	}
	return fmt.Sprintf("%s:%s", prefix, strings.ToLower(string(kind)))
}
