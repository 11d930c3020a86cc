// Package services provides generation job orchestration on top of the
// pipeline, persistence, queue, and event bus.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/flowgen/pkg/eventbus"
	"github.com/dukex/flowgen/pkg/events"
	"github.com/dukex/flowgen/pkg/generation"
	"github.com/dukex/flowgen/pkg/jobs"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/google/uuid"
)

// GenerateRequest carries one workflow-generation request, synchronous or
// queued.
type GenerateRequest struct {
	Prompt          string            `json:"prompt"            validate:"required"`
	Answers         map[string]string `json:"answers,omitempty"`
	Config          map[string]any    `json:"config,omitempty"`
	CurrentWorkflow *models.Workflow  `json:"current_workflow,omitempty"`
}

// Generation handles generation-related business operations: synchronous
// runs, job submission, and worker-side job processing.
type Generation struct {
	generator   *generation.Generator
	persistence persistence.Persistence
	queue       jobs.Queue
	publisher   eventbus.EventPublisher
	workerID    string
	logger      *slog.Logger
}

// NewGeneration creates a generation service. The publisher may be nil
// when no event bus is configured; lifecycle events are then skipped.
func NewGeneration(
	generator *generation.Generator,
	store persistence.Persistence,
	queue jobs.Queue,
	publisher eventbus.EventPublisher,
	workerID string,
	logger *slog.Logger,
) *Generation {
	return &Generation{
		generator:   generator,
		persistence: store,
		queue:       queue,
		publisher:   publisher,
		workerID:    workerID,
		logger:      logger.With("module", "generation_service"),
	}
}

// Generate runs the pipeline synchronously and returns the full result.
func (g *Generation) Generate(ctx context.Context, req GenerateRequest) (*models.GenerationResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, NewValidationError("Generate", "EMPTY_PROMPT", "prompt is required", ErrEmptyPrompt)
	}

	return g.generator.Generate(ctx, req.Prompt, generation.GenerateOptions{
		Answers:         req.Answers,
		Config:          req.Config,
		CurrentWorkflow: req.CurrentWorkflow,
	})
}

// SubmitJob persists a queued generation job and hands its id to the
// queue. The job document is saved before enqueueing so a consumer can
// always resolve a dequeued id.
func (g *Generation) SubmitJob(ctx context.Context, req GenerateRequest) (*models.GenerationJob, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, NewValidationError("SubmitJob", "EMPTY_PROMPT", "prompt is required", ErrEmptyPrompt)
	}

	now := time.Now().UTC()
	job := &models.GenerationJob{
		ID:        uuid.New().String(),
		Prompt:    req.Prompt,
		Answers:   req.Answers,
		Config:    req.Config,
		Status:    models.JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := g.persistence.SaveJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	err = g.queue.Enqueue(ctx, job.ID)
	if err != nil {
		job.Status = models.JobStatusFailed
		job.Error = "failed to enqueue job"
		job.UpdatedAt = time.Now().UTC()

		saveErr := g.persistence.SaveJob(ctx, job)
		if saveErr != nil {
			g.logger.ErrorContext(ctx, "Failed to mark unqueued job as failed",
				"job_id", job.ID, "error", saveErr)
		}

		return nil, fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}

	g.logger.InfoContext(ctx, "Submitted generation job", "job_id", job.ID)

	return job, nil
}

// JobByID returns a job document by id.
func (g *Generation) JobByID(ctx context.Context, jobID string) (*models.GenerationJob, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, NewValidationError("JobByID", "EMPTY_JOB_ID", "job ID is required", ErrEmptyJobID)
	}

	return g.persistence.JobByID(ctx, jobID)
}

// Jobs lists all job documents, newest first.
func (g *Generation) Jobs(ctx context.Context) ([]*models.GenerationJob, error) {
	return g.persistence.Jobs(ctx)
}

// ProcessJob runs one dequeued job end to end: it marks the job running,
// executes the pipeline with progress persisted after each stage, and
// records the terminal state. A job that is no longer queued is skipped
// with ErrJobNotQueued so redelivered ids are not processed twice.
func (g *Generation) ProcessJob(ctx context.Context, jobID string) error {
	job, err := g.persistence.JobByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	if job.Status != models.JobStatusQueued {
		return NewValidationError("ProcessJob", "JOB_NOT_QUEUED",
			fmt.Sprintf("job %s is already %s", jobID, job.Status), ErrJobNotQueued)
	}

	started := time.Now().UTC()
	job.Status = models.JobStatusRunning
	job.UpdatedAt = started

	err = g.persistence.SaveJob(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to mark job %s running: %w", jobID, err)
	}

	g.publish(ctx, job.ID, events.GenerationStarted{
		BaseEvent: g.baseEvent(events.GenerationStartedEvent, job.ID),
		Prompt:    job.Prompt,
	})

	result, err := g.generator.Generate(ctx, job.Prompt, generation.GenerateOptions{
		Answers: job.Answers,
		Config:  job.Config,
		OnProgress: func(stage generation.Stage, percent int) {
			g.reportStage(ctx, job, stage, percent)
		},
	})
	if err != nil {
		g.failJob(ctx, job, err, started)

		return fmt.Errorf("job %s failed: %w", jobID, err)
	}

	completedAt := time.Now().UTC()
	job.Status = models.JobStatusCompleted
	job.Progress = 100
	job.Result = result
	job.UpdatedAt = completedAt
	job.CompletedAt = &completedAt

	err = g.persistence.SaveJob(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to save completed job %s: %w", jobID, err)
	}

	g.publish(ctx, job.ID, events.GenerationCompleted{
		BaseEvent:  g.baseEvent(events.GenerationCompletedEvent, job.ID),
		NodeCount:  len(result.Workflow.Nodes),
		EdgeCount:  len(result.Workflow.Edges),
		Valid:      result.Validation != nil && result.Validation.Valid,
		FixCount:   fixCount(result),
		Complexity: string(result.EstimatedComplexity),
		Duration:   completedAt.Sub(started),
	})

	g.logger.InfoContext(ctx, "Processed generation job",
		"job_id", job.ID,
		"nodes", len(result.Workflow.Nodes),
		"duration", completedAt.Sub(started),
	)

	return nil
}

// reportStage persists per-stage progress and announces it on the bus.
// Failures here are logged, not fatal: a stale progress value never
// outweighs a finished job.
func (g *Generation) reportStage(ctx context.Context, job *models.GenerationJob, stage generation.Stage, percent int) {
	job.Progress = percent
	job.UpdatedAt = time.Now().UTC()

	err := g.persistence.SaveJob(ctx, job)
	if err != nil {
		g.logger.WarnContext(ctx, "Failed to persist job progress",
			"job_id", job.ID, "stage", stage, "error", err)
	}

	g.publish(ctx, job.ID, events.GenerationStageCompleted{
		BaseEvent: g.baseEvent(events.GenerationStageCompletedEvent, job.ID),
		Stage:     string(stage),
		Progress:  percent,
	})
}

func (g *Generation) failJob(ctx context.Context, job *models.GenerationJob, cause error, started time.Time) {
	failedAt := time.Now().UTC()
	job.Status = models.JobStatusFailed
	job.Error = cause.Error()
	job.UpdatedAt = failedAt
	job.CompletedAt = &failedAt

	err := g.persistence.SaveJob(ctx, job)
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to save failed job",
			"job_id", job.ID, "error", err)
	}

	g.publish(ctx, job.ID, events.GenerationFailed{
		BaseEvent: g.baseEvent(events.GenerationFailedEvent, job.ID),
		Error:     cause.Error(),
		Duration:  failedAt.Sub(started),
	})
}

func (g *Generation) publish(ctx context.Context, jobID string, event eventbus.Event) {
	if g.publisher == nil {
		return
	}

	err := g.publisher.Publish(ctx, jobID, event)
	if err != nil {
		g.logger.WarnContext(ctx, "Failed to publish event",
			"job_id", jobID, "event_type", event.GetType(), "error", err)
	}
}

func (g *Generation) baseEvent(eventType events.EventType, jobID string) events.BaseEvent {
	base := events.NewBaseEvent(eventType, jobID)
	base.WorkerID = g.workerID

	return base
}

func fixCount(result *models.GenerationResult) int {
	if result.Validation == nil {
		return 0
	}

	return len(result.Validation.AppliedFixes)
}
