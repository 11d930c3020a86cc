// Package jobs provides the queue carrying generation job ids from the
// API to the worker pool.
package jobs

import (
	"context"
	"errors"
)

// ErrQueueClosed is returned by operations on a closed queue.
var ErrQueueClosed = errors.New("job queue is closed")

// Queue hands job ids from producers to consumers. Delivery is
// at-least-once: a consumer crash after Dequeue loses no data because the
// job document itself lives in persistence.
type Queue interface {
	// Enqueue appends a job id to the queue.
	Enqueue(ctx context.Context, jobID string) error
	// Dequeue pops the next job id, blocking briefly. Returns "" with a
	// nil error when nothing arrived within the poll window.
	Dequeue(ctx context.Context) (string, error)
	HealthCheck(ctx context.Context) error
	Close() error
}
