package jobs

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueRoundTrip(t *testing.T) {
	t.Parallel()

	queue := NewMemoryQueue(4)
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, "job-1"))
	require.NoError(t, queue.Enqueue(ctx, "job-2"))

	first, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "job-1", first)

	second, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "job-2", second)
}

func TestMemoryQueueDequeueTimesOutEmpty(t *testing.T) {
	t.Parallel()

	queue := NewMemoryQueue(1)

	jobID, err := queue.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobID)
}

func TestMemoryQueueConcurrentEnqueueAndClose(t *testing.T) {
	t.Parallel()

	queue := NewMemoryQueue(1)
	ctx := context.Background()

	var wg sync.WaitGroup

	errs := make(chan error, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			errs <- queue.Enqueue(ctx, "job")
		}()
	}

	require.NoError(t, queue.Close())
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrQueueClosed)
		}
	}
}

func TestMemoryQueueClose(t *testing.T) {
	t.Parallel()

	queue := NewMemoryQueue(1)
	require.NoError(t, queue.Close())

	assert.ErrorIs(t, queue.Enqueue(context.Background(), "job-1"), ErrQueueClosed)
	assert.ErrorIs(t, queue.HealthCheck(context.Background()), ErrQueueClosed)

	_, err := queue.Dequeue(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Close is idempotent.
	require.NoError(t, queue.Close())
}
