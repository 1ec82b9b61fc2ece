// Package notify pushes best-effort job status events to interested
// listeners. Delivery failures are the caller's to log and swallow; a
// notification problem must never change a job's outcome.
package notify

import "context"

// Event is a job status-change notification. It carries enough metadata
// for a listener to render a UI update without a follow-up query.
type Event struct {
	JobID           string `json:"jobId"`
	Status          string `json:"status"`
	WorkspaceID     string `json:"workspaceId,omitempty"`
	UserID          string `json:"userId,omitempty"`
	ProcessedPath   string `json:"processedPath,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
}

// Notifier is the publish capability injected into the job executor.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Fanout delivers each event to every wrapped notifier, returning the
// first error encountered after all deliveries were attempted.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, event Event) error {
	var firstErr error
	for _, n := range f {
		if err := n.Notify(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
