// Package web provides HTTP request and response types for the generation API.
package web

import (
	"github.com/dukex/flowgen/pkg/models"
)

// GenerateWorkflowRequest represents the request body for both the
// synchronous and queued generation endpoints.
type GenerateWorkflowRequest struct {
	Prompt          string            `json:"prompt"                     validate:"required,min=3"`
	Answers         map[string]string `json:"answers,omitempty"`
	Config          map[string]any    `json:"config,omitempty"`
	CurrentWorkflow *models.Workflow  `json:"current_workflow,omitempty"`
}

// JobSubmittedResponse acknowledges a queued generation request. Poll the
// job endpoint with the returned id for progress and the result.
type JobSubmittedResponse struct {
	ID        string           `json:"id"`
	Status    models.JobStatus `json:"status"`
	CreatedAt string           `json:"created_at"`
}

// TransformJobSubmittedResponse builds the acknowledgement payload for a
// freshly queued job.
func TransformJobSubmittedResponse(job *models.GenerationJob) JobSubmittedResponse {
	return JobSubmittedResponse{
		ID:        job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
