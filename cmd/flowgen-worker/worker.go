package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dukex/flowgen/pkg/jobs"
	"github.com/dukex/flowgen/pkg/services"
)

// WorkerManager runs a pool of queue consumers, each dequeueing job ids
// and processing them through the generation service.
type WorkerManager struct {
	id          string
	logger      *slog.Logger
	queue       jobs.Queue
	generation  *services.Generation
	concurrency int
}

func NewWorkerManager(
	id string,
	queue jobs.Queue,
	generation *services.Generation,
	logger *slog.Logger,
	concurrency int,
) *WorkerManager {
	if concurrency <= 0 {
		concurrency = 1
	}

	return &WorkerManager{
		id:          id,
		logger:      logger.With("module", "flowgen-worker", "worker_id", id),
		queue:       queue,
		generation:  generation,
		concurrency: concurrency,
	}
}

// Start consumes jobs until the context is cancelled or a termination
// signal arrives. In-flight jobs run to completion before Start returns.
func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager", "concurrency", w.concurrency)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		w.logger.InfoContext(ctx, "Shutting down worker...")
		cancel()
	}()

	var wg sync.WaitGroup

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			w.consume(ctx)
		}()
	}

	wg.Wait()
	w.logger.Info("Worker stopped")

	return nil
}

func (w *WorkerManager) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		jobID, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, jobs.ErrQueueClosed) {
				return
			}

			w.logger.ErrorContext(ctx, "Failed to dequeue job", "error", err)

			continue
		}

		if jobID == "" {
			continue
		}

		w.process(ctx, jobID)
	}
}

func (w *WorkerManager) process(ctx context.Context, jobID string) {
	logger := w.logger.With("job_id", jobID)
	logger.InfoContext(ctx, "Processing generation job")

	err := w.generation.ProcessJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, services.ErrJobNotQueued) {
			logger.WarnContext(ctx, "Skipping redelivered job", "error", err)

			return
		}

		logger.ErrorContext(ctx, "Failed to process job", "error", err)
	}
}
