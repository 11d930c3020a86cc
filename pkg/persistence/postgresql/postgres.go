// Package postgresql provides PostgreSQL persistence for generation jobs.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/dukex/flowgen/pkg/persistence/sqlbase"
	_ "github.com/lib/pq" // postgres driver
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence creates a new PostgreSQL persistence layer and runs
// pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:     database,
		logger: logger.With("module", "postgresql"),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

const jobColumns = "id, prompt, answers, config, status, progress, result, error, created_at, updated_at, completed_at"

// Jobs returns every stored job, newest first.
func (p *Persistence) Jobs(ctx context.Context) ([]*models.GenerationJob, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM generation_jobs ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	jobs := make([]*models.GenerationJob, 0)

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}

		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return jobs, nil
}

// SaveJob upserts the job row.
func (p *Persistence) SaveJob(ctx context.Context, job *models.GenerationJob) error {
	answers, err := json.Marshal(job.Answers)
	if err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	config, err := json.Marshal(job.Config)
	if err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	var result []byte

	if job.Result != nil {
		result, err = json.Marshal(job.Result)
		if err != nil {
			return persistence.NewJobError("Save", job.ID, err)
		}
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO generation_jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			progress = EXCLUDED.progress,
			result = EXCLUDED.result,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at,
			completed_at = EXCLUDED.completed_at`,
		job.ID, job.Prompt, answers, config, string(job.Status), job.Progress,
		nullableBytes(result), nullableString(job.Error), job.CreatedAt, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	return nil
}

// JobByID loads one job row.
func (p *Persistence) JobByID(ctx context.Context, id string) (*models.GenerationJob, error) {
	row := p.db.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM generation_jobs WHERE id = $1", id)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewJobError("JobByID", id, persistence.ErrJobNotFound)
		}

		return nil, persistence.NewJobError("JobByID", id, err)
	}

	return job, nil
}

// DeleteJob removes the job row. Deleting an absent job reports not-found.
func (p *Persistence) DeleteJob(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, "DELETE FROM generation_jobs WHERE id = $1", id)
	if err != nil {
		return persistence.NewJobError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewJobError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewJobError("Delete", id, persistence.ErrJobNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.GenerationJob, error) {
	var (
		job         models.GenerationJob
		status      string
		answers     []byte
		config      []byte
		result      []byte
		errMessage  sql.NullString
		completedAt sql.NullTime
	)

	err := row.Scan(&job.ID, &job.Prompt, &answers, &config, &status, &job.Progress,
		&result, &errMessage, &job.CreatedAt, &job.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	job.Status = models.JobStatus(status)
	job.Error = errMessage.String

	if completedAt.Valid {
		completed := completedAt.Time.UTC()
		job.CompletedAt = &completed
	}

	if len(answers) > 0 {
		err = json.Unmarshal(answers, &job.Answers)
		if err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
	}

	if len(config) > 0 {
		err = json.Unmarshal(config, &job.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	if len(result) > 0 {
		job.Result = &models.GenerationResult{}

		err = json.Unmarshal(result, job.Result)
		if err != nil {
			return nil, fmt.Errorf("failed to decode result: %w", err)
		}
	}

	job.CreatedAt = job.CreatedAt.UTC()
	job.UpdatedAt = job.UpdatedAt.UTC()

	return &job, nil
}

func nullableBytes(value []byte) any {
	if len(value) == 0 {
		return nil
	}

	return value
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}

	return value
}

var _ persistence.Persistence = (*Persistence)(nil)
