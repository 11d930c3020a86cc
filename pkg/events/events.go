// Package events defines event types and structures for generation lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Kafka topic carrying every generation lifecycle event.
const Topic = "flowgen.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Generation job lifecycle events.
	GenerationStartedEvent        EventType = "generation.started"
	GenerationStageCompletedEvent EventType = "generation.stage.completed"
	GenerationCompletedEvent      EventType = "generation.completed"
	GenerationFailedEvent         EventType = "generation.failed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	JobID     string         `json:"job_id"`
	WorkerID  string         `json:"worker_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// GenerationStarted is published when a job leaves the queue and begins
// processing.
type GenerationStarted struct {
	BaseEvent

	Prompt string `json:"prompt"`
}

func (g GenerationStarted) GetType() EventType {
	return GenerationStartedEvent
}

// GenerationStageCompleted is published after each pipeline stage, carrying
// the job's overall progress.
type GenerationStageCompleted struct {
	BaseEvent

	Stage    string `json:"stage"`
	Progress int    `json:"progress"`
}

func (g GenerationStageCompleted) GetType() EventType {
	return GenerationStageCompletedEvent
}

// GenerationCompleted is published once a job finishes with a result.
type GenerationCompleted struct {
	BaseEvent

	NodeCount  int           `json:"node_count"`
	EdgeCount  int           `json:"edge_count"`
	Valid      bool          `json:"valid"`
	FixCount   int           `json:"fix_count"`
	Complexity string        `json:"complexity,omitempty"`
	Duration   time.Duration `json:"duration"`
}

func (g GenerationCompleted) GetType() EventType {
	return GenerationCompletedEvent
}

// GenerationFailed is published when a job ends without a result.
type GenerationFailed struct {
	BaseEvent

	Error    string        `json:"error"`
	Duration time.Duration `json:"duration"`
}

func (g GenerationFailed) GetType() EventType {
	return GenerationFailedEvent
}

func NewBaseEvent(eventType EventType, jobID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		JobID:     jobID,
		Metadata:  make(map[string]any),
	}
}
