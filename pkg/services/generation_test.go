package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/eventbus"
	"github.com/dukex/flowgen/pkg/events"
	"github.com/dukex/flowgen/pkg/generation"
	"github.com/dukex/flowgen/pkg/jobs"
	"github.com/dukex/flowgen/pkg/mocks"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/dukex/flowgen/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func offlineProvider() *mocks.MockProvider {
	completions := &mocks.MockProvider{}
	completions.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("connection refused"))

	return completions
}

func newTestService(t *testing.T, publisher eventbus.EventPublisher) (*Generation, persistence.Persistence, *jobs.MemoryQueue) {
	t.Helper()

	generator := generation.NewGenerator(offlineProvider(), catalogue.Default(), discardLogger())
	store := file.NewPersistence(t.TempDir())

	queue := jobs.NewMemoryQueue(8)
	t.Cleanup(func() { _ = queue.Close() })

	return NewGeneration(generator, store, queue, publisher, "worker-test", discardLogger()), store, queue
}

// recordingPublisher captures published events in order.
type recordingPublisher struct {
	published []eventbus.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.published = append(p.published, event)

	return nil
}

func TestGenerateValidatesPrompt(t *testing.T) {
	t.Parallel()

	service, _, _ := newTestService(t, nil)

	_, err := service.Generate(context.Background(), GenerateRequest{Prompt: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.True(t, IsValidationError(err))
}

func TestGenerateSynchronous(t *testing.T) {
	t.Parallel()

	service, _, _ := newTestService(t, nil)

	result, err := service.Generate(context.Background(), GenerateRequest{
		Prompt: "when a webhook arrives, post the payload to slack",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Workflow)
	assert.NotEmpty(t, result.Workflow.Nodes)
	assert.NotEmpty(t, result.Documentation)
}

func TestSubmitJobPersistsBeforeEnqueue(t *testing.T) {
	t.Parallel()

	service, store, queue := newTestService(t, nil)
	ctx := context.Background()

	job, err := service.SubmitJob(ctx, GenerateRequest{
		Prompt:  "send a daily report",
		Answers: map[string]string{"channel": "#reports"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.JobStatusQueued, job.Status)

	stored, err := store.JobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "send a daily report", stored.Prompt)
	assert.Equal(t, map[string]string{"channel": "#reports"}, stored.Answers)

	dequeued, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.ID, dequeued)
}

func TestSubmitJobRejectsEmptyPrompt(t *testing.T) {
	t.Parallel()

	service, _, _ := newTestService(t, nil)

	_, err := service.SubmitJob(context.Background(), GenerateRequest{})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestSubmitJobMarksFailedWhenQueueRejects(t *testing.T) {
	t.Parallel()

	service, store, queue := newTestService(t, nil)
	require.NoError(t, queue.Close())

	_, err := service.SubmitJob(context.Background(), GenerateRequest{Prompt: "do the thing"})
	require.Error(t, err)

	jobList, err := store.Jobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobList, 1)
	assert.Equal(t, models.JobStatusFailed, jobList[0].Status)
}

func TestProcessJobCompletesAndPublishesLifecycle(t *testing.T) {
	t.Parallel()

	publisher := &recordingPublisher{}
	service, store, _ := newTestService(t, publisher)
	ctx := context.Background()

	job, err := service.SubmitJob(ctx, GenerateRequest{
		Prompt: "every morning fetch sales records from the database and post a summary to slack",
	})
	require.NoError(t, err)

	require.NoError(t, service.ProcessJob(ctx, job.ID))

	processed, err := store.JobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, processed.Status)
	assert.Equal(t, 100, processed.Progress)
	require.NotNil(t, processed.Result)
	assert.NotEmpty(t, processed.Result.Workflow.Nodes)
	require.NotNil(t, processed.CompletedAt)
	assert.False(t, processed.CompletedAt.Before(processed.CreatedAt))

	require.NotEmpty(t, publisher.published)
	assert.Equal(t, events.GenerationStartedEvent, publisher.published[0].GetType())
	assert.Equal(t, events.GenerationCompletedEvent,
		publisher.published[len(publisher.published)-1].GetType())

	var stages []string

	for _, event := range publisher.published {
		if stage, ok := event.(events.GenerationStageCompleted); ok {
			stages = append(stages, stage.Stage)
		}
	}

	assert.Equal(t, []string{
		string(generation.StageExtracting),
		string(generation.StagePlanning),
		string(generation.StageAssembling),
		string(generation.StageValidating),
		string(generation.StageRepairing),
		string(generation.StageDocumenting),
	}, stages)
}

func TestProcessJobSkipsRedeliveredID(t *testing.T) {
	t.Parallel()

	service, _, _ := newTestService(t, nil)
	ctx := context.Background()

	job, err := service.SubmitJob(ctx, GenerateRequest{Prompt: "post to slack on webhook"})
	require.NoError(t, err)

	require.NoError(t, service.ProcessJob(ctx, job.ID))

	err = service.ProcessJob(ctx, job.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobNotQueued)
	assert.True(t, IsConflictError(err))
}

func TestProcessJobFailsOnEmptyPromptJob(t *testing.T) {
	t.Parallel()

	publisher := &recordingPublisher{}
	service, store, _ := newTestService(t, publisher)
	ctx := context.Background()

	// A corrupted job document saved directly, bypassing SubmitJob.
	now := time.Now().UTC()
	job := &models.GenerationJob{
		ID:        "bad-job",
		Prompt:    "  ",
		Status:    models.JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.SaveJob(ctx, job))

	err := service.ProcessJob(ctx, "bad-job")
	require.Error(t, err)

	failed, err := store.JobByID(ctx, "bad-job")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, failed.Status)
	assert.NotEmpty(t, failed.Error)

	last := publisher.published[len(publisher.published)-1]
	assert.Equal(t, events.GenerationFailedEvent, last.GetType())
}

func TestProcessJobUnknownID(t *testing.T) {
	t.Parallel()

	service, _, _ := newTestService(t, nil)

	err := service.ProcessJob(context.Background(), "missing")
	require.Error(t, err)
}

func TestJobByIDValidatesInput(t *testing.T) {
	t.Parallel()

	service, _, _ := newTestService(t, nil)

	_, err := service.JobByID(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyJobID)
}
