// Package file provides file-based persistence for generation jobs. One
// JSON document per job under <root>/jobs.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Persistence implements the persistence.Persistence interface on the
// local file system.
type Persistence struct {
	root string
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. Accepts a file:// prefix for symmetry with database URLs.
func NewPersistence(root string) persistence.Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

func (fp *Persistence) jobsDir() string {
	return filepath.Join(fp.root, "jobs")
}

func (fp *Persistence) jobPath(id string) string {
	return filepath.Join(fp.jobsDir(), id+".json")
}

// Jobs returns every stored job, sorted by creation time, newest first.
func (fp *Persistence) Jobs(ctx context.Context) ([]*models.GenerationJob, error) {
	entries, err := fs.Glob(os.DirFS(fp.jobsDir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list job files: %w", err)
	}

	jobs := make([]*models.GenerationJob, 0, len(entries))

	for _, entry := range entries {
		id := strings.TrimSuffix(entry, ".json")

		job, err := fp.JobByID(ctx, id)
		if err != nil {
			if persistence.IsJobNotFound(err) {
				continue
			}

			return nil, err
		}

		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	return jobs, nil
}

// SaveJob writes the job document, creating the jobs directory on first
// use. Existing documents are overwritten; saves are upserts.
func (fp *Persistence) SaveJob(_ context.Context, job *models.GenerationJob) error {
	if job.ID == "" {
		return persistence.NewJobError("Save", "", errors.New("job id is empty"))
	}

	err := os.MkdirAll(fp.jobsDir(), dirPermissions)
	if err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	payload, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	err = os.WriteFile(fp.jobPath(job.ID), payload, filePermissions)
	if err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	return nil
}

// JobByID loads one job document.
func (fp *Persistence) JobByID(_ context.Context, id string) (*models.GenerationJob, error) {
	payload, err := os.ReadFile(fp.jobPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewJobError("JobByID", id, persistence.ErrJobNotFound)
		}

		return nil, persistence.NewJobError("JobByID", id, err)
	}

	var job models.GenerationJob

	err = json.Unmarshal(payload, &job)
	if err != nil {
		return nil, persistence.NewJobError("JobByID", id, err)
	}

	return &job, nil
}

// DeleteJob removes the job document. Deleting an absent job reports
// not-found.
func (fp *Persistence) DeleteJob(_ context.Context, id string) error {
	err := os.Remove(fp.jobPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.NewJobError("Delete", id, persistence.ErrJobNotFound)
		}

		return persistence.NewJobError("Delete", id, err)
	}

	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to release for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
