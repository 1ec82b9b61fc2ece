// Package queue consumes job descriptors from a Redis-backed work queue
// and hands them to a handler, retrying transient failures with
// exponential backoff.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"silencecut/internal/job"
)

// Handler processes one dequeued job descriptor. A nil return
// acknowledges the message; any other error schedules a retry unless the
// descriptor itself is invalid.
type Handler func(ctx context.Context, d job.Descriptor) error

// envelope is the wire format on the queue. The descriptor fields are
// inlined so producers that push a bare descriptor remain compatible;
// Attempts counts deliveries that already failed.
type envelope struct {
	job.Descriptor
	Attempts int `json:"attempts,omitempty"`
}

func encodeEnvelope(e envelope) ([]byte, error) {
	return json.Marshal(e)
}

func decodeEnvelope(data []byte) (envelope, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return envelope{}, err
	}
	return e, nil
}

// Backoff delay bounds for retried deliveries.
const (
	baseRetryDelay = 5 * time.Second
	maxRetryDelay  = 5 * time.Minute
)

// Backoff returns the delay before redelivering a message that has
// already failed the given number of times. Growth is exponential from
// baseRetryDelay, capped at maxRetryDelay.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}

	delay := baseRetryDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}
