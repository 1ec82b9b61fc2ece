package job

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned when a job cannot be found by ID.
var ErrJobNotFound = errors.New("job not found")

// Store defines the persistence port for job records. Updates are partial:
// each method touches only the fields of its transition, keyed by job id,
// last write wins per field set.
type Store interface {
	// FindByID retrieves a job by its unique identifier.
	// Returns ErrJobNotFound if the job does not exist.
	FindByID(ctx context.Context, id string) (*Job, error)

	// MarkProcessing records that a worker has taken ownership of the job.
	MarkProcessing(ctx context.Context, id string) error

	// MarkCompleted records the terminal completed status together with the
	// result location, the measured duration and the completion time.
	MarkCompleted(ctx context.Context, id, processedPath string, durationSeconds int, completedAt time.Time) error

	// MarkFailed records the terminal failed status together with a short
	// human-readable error message and the completion time.
	MarkFailed(ctx context.Context, id, errorMessage string, completedAt time.Time) error
}
