package jobs

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is a channel-backed queue for tests and single-process
// development runs. The ids channel is never closed; shutdown is
// signalled through done so a producer racing Close cannot send on a
// closed channel.
type MemoryQueue struct {
	ids    chan string
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// NewMemoryQueue creates an in-memory queue with a fixed buffer.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 128
	}

	return &MemoryQueue{
		ids:  make(chan string, capacity),
		done: make(chan struct{}),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, jobID string) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.ids <- jobID:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (string, error) {
	select {
	case jobID := <-q.ids:
		return jobID, nil
	case <-q.done:
		return "", ErrQueueClosed
	case <-time.After(popTimeout):
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (q *MemoryQueue) HealthCheck(_ context.Context) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
		return nil
	}
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.done)
	}

	return nil
}
