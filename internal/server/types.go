// Package server provides the worker's read-only operations HTTP
// surface: a health check and job status lookup. Job creation and file
// uploads belong to the web application, not the worker.
package server

import "time"

// JobResponse is the HTTP response for getting job details.
type JobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Status is the current job status.
	Status string `json:"status"`
	// ProcessedPath is the result location, set when completed.
	ProcessedPath string `json:"processed_path,omitempty"`
	// DurationSeconds is the output duration, set when completed.
	DurationSeconds int `json:"duration_seconds,omitempty"`
	// Error contains the failure message if the job failed.
	Error string `json:"error,omitempty"`
	// CompletedAt is set once the job reaches a terminal status.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
