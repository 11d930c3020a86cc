package models

import "time"

// JobStatus is the lifecycle state of an async generation job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// GenerationJob is a queued workflow-generation request processed by the
// worker. The result payload is the same structure the synchronous API
// returns.
type GenerationJob struct {
	ID          string            `json:"id"           validate:"required"`
	Prompt      string            `json:"prompt"       validate:"required"`
	Answers     map[string]string `json:"answers,omitempty"`
	Config      map[string]any    `json:"config,omitempty"`
	Status      JobStatus         `json:"status"`
	Progress    int               `json:"progress"`
	Result      *GenerationResult `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// GenerationResult is the full outcome of one generation request.
type GenerationResult struct {
	Workflow            *Workflow         `json:"workflow"`
	Documentation       string            `json:"documentation"`
	Suggestions         []string          `json:"suggestions"`
	EstimatedComplexity Complexity        `json:"estimatedComplexity"`
	Requirements        *Requirements     `json:"requirements,omitempty"`
	RequiredCredentials []string          `json:"requiredCredentials,omitempty"`
	Validation          *ValidationResult `json:"validation,omitempty"`
}
