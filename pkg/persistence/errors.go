// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrJobNotFound indicates a generation job was not found by the given identifier.
	ErrJobNotFound = errors.New("generation job not found")

	// ErrJobAlreadyExists indicates a job with the same identifier already exists.
	ErrJobAlreadyExists = errors.New("generation job already exists")

	// ErrInvalidJobStatus indicates an invalid job status was provided.
	ErrInvalidJobStatus = errors.New("invalid job status")
)

// JobError wraps job-related errors with additional context.
type JobError struct {
	Op      string // Operation being performed (e.g., "JobByID", "Save", "Delete")
	JobID   string // Job ID if applicable
	Err     error  // Underlying error
	Message string // Additional context message
}

func (e *JobError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for job %s: %s (%v)", e.Op, e.JobID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for job %s: %v", e.Op, e.JobID, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for job errors.
func (e *JobError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewJobError creates a new job error with context.
func NewJobError(op, jobID string, err error) *JobError {
	return &JobError{
		Op:    op,
		JobID: jobID,
		Err:   err,
	}
}

// IsJobNotFound checks if an error indicates a job was not found.
func IsJobNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound)
}

// IsJobAlreadyExists checks if an error indicates a duplicate job.
func IsJobAlreadyExists(err error) bool {
	return errors.Is(err, ErrJobAlreadyExists)
}
