package file

import (
	"context"
	"testing"
	"time"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(id string, createdAt time.Time) *models.GenerationJob {
	return &models.GenerationJob{
		ID:        id,
		Prompt:    "summarize yesterday's orders",
		Status:    models.JobStatusQueued,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestFilePersistenceSaveAndLoad(t *testing.T) {
	t.Parallel()

	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	job := newJob("job-1", time.Now().UTC())
	require.NoError(t, store.SaveJob(ctx, job))

	loaded, err := store.JobByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, job.ID, loaded.ID)
	assert.Equal(t, job.Prompt, loaded.Prompt)
	assert.Equal(t, models.JobStatusQueued, loaded.Status)
}

func TestFilePersistenceSaveIsUpsert(t *testing.T) {
	t.Parallel()

	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	job := newJob("job-1", time.Now().UTC())
	require.NoError(t, store.SaveJob(ctx, job))

	job.Status = models.JobStatusCompleted
	job.Progress = 100
	require.NoError(t, store.SaveJob(ctx, job))

	loaded, err := store.JobByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, loaded.Status)
	assert.Equal(t, 100, loaded.Progress)
}

func TestFilePersistenceJobNotFound(t *testing.T) {
	t.Parallel()

	store := NewPersistence(t.TempDir())

	_, err := store.JobByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsJobNotFound(err))
}

func TestFilePersistenceDelete(t *testing.T) {
	t.Parallel()

	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.SaveJob(ctx, newJob("job-1", time.Now().UTC())))
	require.NoError(t, store.DeleteJob(ctx, "job-1"))

	_, err := store.JobByID(ctx, "job-1")
	assert.True(t, persistence.IsJobNotFound(err))

	err = store.DeleteJob(ctx, "job-1")
	assert.True(t, persistence.IsJobNotFound(err))
}

func TestFilePersistenceListsNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, store.SaveJob(ctx, newJob("old", base.Add(-time.Hour))))
	require.NoError(t, store.SaveJob(ctx, newJob("new", base)))

	jobs, err := store.Jobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "new", jobs[0].ID)
	assert.Equal(t, "old", jobs[1].ID)
}

func TestFilePersistenceEmptyRoot(t *testing.T) {
	t.Parallel()

	store := NewPersistence(t.TempDir())

	jobs, err := store.Jobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.NoError(t, store.HealthCheck(context.Background()))
}
