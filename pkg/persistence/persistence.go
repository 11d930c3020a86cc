// Package persistence provides the data storage abstraction layer for generation jobs.
package persistence

import (
	"context"

	"github.com/dukex/flowgen/pkg/models"
)

type Persistence interface {
	Jobs(ctx context.Context) ([]*models.GenerationJob, error)
	SaveJob(ctx context.Context, job *models.GenerationJob) error
	JobByID(ctx context.Context, id string) (*models.GenerationJob, error)
	DeleteJob(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
