// Package job provides the VideoJob record, its status state machine,
// the persistence port, and the executor that drives a job from queued
// to a terminal status.
package job

import (
	"time"
)

// Status represents the current state of a VideoJob.
type Status string

const (
	// StatusQueued indicates the job is waiting to be picked up by a worker.
	StatusQueued Status = "queued"
	// StatusProcessing indicates a worker owns the job and is rendering it.
	StatusProcessing Status = "processing"
	// StatusCompleted indicates the job finished and a result file exists.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the job encountered an unrecoverable error.
	StatusFailed Status = "failed"
)

// IsTerminal returns true if no further transitions leave this status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusQueued:     {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// CanTransition reports whether moving from one status to another is valid.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Job is the durable record of one video processing job. It is created by
// the API layer in status queued and owned exclusively by the worker from
// dequeue until it reaches a terminal status.
type Job struct {
	// ID is the opaque job identifier minted by the API layer.
	ID string `gorm:"column:id;primaryKey;size:255"`
	// WorkspaceID and UserID are passed through for notifications and
	// credit settlement; the pipeline never interprets them.
	WorkspaceID string `gorm:"column:workspace_id;size:255;index"`
	UserID      string `gorm:"column:user_id;size:255;index"`
	// SourcePath is the uploaded file the job was created for.
	SourcePath string `gorm:"column:original_url;size:500"`
	// ProcessedPath is set exactly when the job completes.
	ProcessedPath *string `gorm:"column:processed_url;size:500"`
	// Status is the state machine position; see CanTransition.
	Status Status `gorm:"column:status;size:50;index"`
	// DurationSeconds is the measured output duration, whole seconds.
	DurationSeconds *int `gorm:"column:duration"`
	// ErrorMessage is set exactly when the job fails.
	ErrorMessage *string `gorm:"column:error_message"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at"`
}

// TableName maps the record onto the shared application schema.
func (Job) TableName() string {
	return "video_jobs"
}

// Clone creates a copy of the job for safe reads.
func (j *Job) Clone() *Job {
	out := *j
	if j.ProcessedPath != nil {
		v := *j.ProcessedPath
		out.ProcessedPath = &v
	}
	if j.DurationSeconds != nil {
		v := *j.DurationSeconds
		out.DurationSeconds = &v
	}
	if j.ErrorMessage != nil {
		v := *j.ErrorMessage
		out.ErrorMessage = &v
	}
	if j.CompletedAt != nil {
		v := *j.CompletedAt
		out.CompletedAt = &v
	}
	return &out
}
