package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWebhookNotifier_RequiresURL(t *testing.T) {
	_, err := NewWebhookNotifier("", "secret")
	assert.ErrorIs(t, err, ErrWebhookURLRequired)
}

func TestWebhookNotifier_Notify(t *testing.T) {
	var received webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, err := NewWebhookNotifier(srv.URL, "hook-secret")
	require.NoError(t, err)

	err = n.Notify(context.Background(), Event{
		JobID:           "job-1",
		Status:          "completed",
		ProcessedPath:   "/api/uploads/processed/processed-job-1.mp4",
		DurationSeconds: 87,
	})
	require.NoError(t, err)

	assert.Equal(t, "job-1", received.JobID)
	assert.Equal(t, "completed", received.Status)
	assert.Equal(t, "hook-secret", received.Secret)
	assert.Equal(t, 87, received.DurationSeconds)
}

func TestWebhookNotifier_FailedEventCarriesMessage(t *testing.T) {
	var received webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
	}))
	defer srv.Close()

	n, err := NewWebhookNotifier(srv.URL, "s")
	require.NoError(t, err)

	err = n.Notify(context.Background(), Event{
		JobID:        "job-2",
		Status:       "failed",
		ErrorMessage: "Input file not found",
	})
	require.NoError(t, err)
	assert.Equal(t, "Input file not found", received.ErrorMessage)
}

func TestWebhookNotifier_RejectedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	n, err := NewWebhookNotifier(srv.URL, "wrong-secret")
	require.NoError(t, err)

	err = n.Notify(context.Background(), Event{JobID: "job-3", Status: "completed"})
	assert.ErrorIs(t, err, ErrWebhookRejected)
}

func TestWebhookNotifier_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Shut down before use.

	n, err := NewWebhookNotifier(srv.URL, "s")
	require.NoError(t, err)

	err = n.Notify(context.Background(), Event{JobID: "job-4", Status: "completed"})
	assert.Error(t, err)
}

// recordingNotifier captures events and optionally fails.
type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestFanout_DeliversToAll(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{err: assert.AnError}
	c := &recordingNotifier{}

	err := Fanout{a, b, c}.Notify(context.Background(), Event{JobID: "job-5"})
	assert.ErrorIs(t, err, assert.AnError)

	// A failing sink must not block the others.
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.Len(t, c.events, 1)
}
