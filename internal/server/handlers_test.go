package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"silencecut/internal/job"
)

func newTestRouter(store job.Store) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(NewHandlers(store, logger), logger)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(job.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestGetJob_NotFound(t *testing.T) {
	router := newTestRouter(job.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/jobs/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "JOB_NOT_FOUND", resp.Code)
}

func TestGetJob_Completed(t *testing.T) {
	store := job.NewMemoryStore()
	processed := "/api/uploads/processed/processed-job-1.mp4"
	duration := 87
	completedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.Put(&job.Job{
		ID:              "job-1",
		Status:          job.StatusCompleted,
		ProcessedPath:   &processed,
		DurationSeconds: &duration,
		CompletedAt:     &completedAt,
	})

	router := newTestRouter(store)
	req := httptest.NewRequest(http.MethodGet, "/jobs/job-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp JobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "job-1", resp.ID)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, processed, resp.ProcessedPath)
	assert.Equal(t, 87, resp.DurationSeconds)
	require.NotNil(t, resp.CompletedAt)
	assert.True(t, resp.CompletedAt.Equal(completedAt))
	assert.Empty(t, resp.Error)
}

func TestGetJob_Failed(t *testing.T) {
	store := job.NewMemoryStore()
	message := "Input file not found: /uploads/in.mp4"
	completedAt := time.Now().UTC()
	store.Put(&job.Job{
		ID:           "job-2",
		Status:       job.StatusFailed,
		ErrorMessage: &message,
		CompletedAt:  &completedAt,
	})

	router := newTestRouter(store)
	req := httptest.NewRequest(http.MethodGet, "/jobs/job-2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp JobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, message, resp.Error)
	assert.Empty(t, resp.ProcessedPath)
}

func TestGetJob_Queued(t *testing.T) {
	store := job.NewMemoryStore()
	store.Put(&job.Job{ID: "job-3", Status: job.StatusQueued})

	router := newTestRouter(store)
	req := httptest.NewRequest(http.MethodGet, "/jobs/job-3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp JobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "queued", resp.Status)
	assert.Nil(t, resp.CompletedAt)
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	handler := RecoveryMiddleware(logger)(panicking)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Code)
}
