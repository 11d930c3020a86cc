package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/flowgen/pkg/jobs"
)

// NewQueue selects a job queue from the queue URL. redis:// and rediss://
// URLs get the Redis list queue; the literal "memory" gets the in-process
// queue for single-binary runs.
func NewQueue(ctx context.Context, logger *slog.Logger, queueURL string) jobs.Queue {
	switch {
	case strings.HasPrefix(queueURL, "redis://"), strings.HasPrefix(queueURL, "rediss://"):
		queue, err := jobs.NewRedisQueue(ctx, queueURL, "", logger)
		if err != nil {
			panic(fmt.Errorf("failed to create redis queue: %w", err))
		}

		return queue
	case queueURL == "memory":
		return jobs.NewMemoryQueue(0)
	default:
		panic("Unsupported queue URL: " + queueURL)
	}
}
