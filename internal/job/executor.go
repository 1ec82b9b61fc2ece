package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"silencecut/internal/credits"
	"silencecut/internal/notify"
	"silencecut/internal/render"
	"silencecut/internal/silence"
	"silencecut/internal/storage"
)

// ErrInvalidDescriptor marks a queue payload that can never execute.
// The consumer drops such payloads instead of retrying them.
var ErrInvalidDescriptor = errors.New("job: invalid descriptor")

// Prober measures a media file's duration in seconds.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// SilenceDetector finds silent intervals in a source file.
type SilenceDetector interface {
	Detect(ctx context.Context, path string) []silence.Interval
}

// SegmentRenderer produces the output file with silences removed.
type SegmentRenderer interface {
	Render(ctx context.Context, srcPath, outPath string, duration float64, silences []silence.Interval) (render.Result, error)
}

// Executor drives one job from dequeue to a terminal status. It owns the
// full pipeline: probe, detect, render, publish, persist, notify, settle
// credits. The returned error signals the consumer whether to retry.
//
// Outcome contract:
//   - nil: the job reached a terminal status (or was already terminal);
//     the consumer must not retry.
//   - ErrInvalidDescriptor: the payload is malformed; drop it.
//   - any other error: a transient infrastructure failure before the job
//     reached a terminal status; the consumer may retry.
type Executor struct {
	store     Store
	prober    Prober
	detector  SilenceDetector
	renderer  SegmentRenderer
	publisher storage.Publisher
	notifier  notify.Notifier
	ledger    credits.Ledger
	outputDir string
	logger    *slog.Logger
}

// NewExecutor wires the pipeline. Rendered files are written into
// outputDir before publishing.
func NewExecutor(
	store Store,
	prober Prober,
	detector SilenceDetector,
	renderer SegmentRenderer,
	publisher storage.Publisher,
	notifier notify.Notifier,
	ledger credits.Ledger,
	outputDir string,
	logger *slog.Logger,
) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		store:     store,
		prober:    prober,
		detector:  detector,
		renderer:  renderer,
		publisher: publisher,
		notifier:  notifier,
		ledger:    ledger,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Execute processes one job described by d.
func (e *Executor) Execute(ctx context.Context, d Descriptor) (err error) {
	if verr := d.Validate(); verr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDescriptor, verr)
	}

	logger := e.logger.With(slog.String("job_id", d.JobID))

	// A panic anywhere in the pipeline fails the job rather than the
	// worker. Panics are treated as deterministic, so no retry.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while processing job", slog.Any("panic", r))
			e.fail(ctx, d, fmt.Sprintf("internal error: %v", r))
			err = nil
		}
	}()

	current, err := e.store.FindByID(ctx, d.JobID)
	if err != nil {
		// The record may not be visible yet if the enqueue raced the
		// insert, so not-found is retryable like any other store error.
		return fmt.Errorf("load job %s: %w", d.JobID, err)
	}

	if current.Status.IsTerminal() {
		logger.Info("job already in terminal status, skipping redelivery",
			slog.String("status", string(current.Status)),
		)
		return nil
	}

	if err := e.store.MarkProcessing(ctx, d.JobID); err != nil {
		return fmt.Errorf("mark job %s processing: %w", d.JobID, err)
	}
	logger.Info("processing job", slog.String("source", d.SourceFilePath))

	if _, statErr := os.Stat(d.SourceFilePath); statErr != nil {
		e.fail(ctx, d, fmt.Sprintf("Input file not found: %s", d.SourceFilePath))
		return nil
	}

	// An unreadable duration degrades to a verbatim copy instead of a
	// failure: the plan needs the total duration, so without it no
	// silence can be removed safely.
	var silences []silence.Interval
	sourceDuration, probeErr := e.prober.ProbeDuration(ctx, d.SourceFilePath)
	if probeErr != nil {
		logger.Warn("could not probe source duration, keeping source verbatim",
			slog.String("error", probeErr.Error()),
		)
	} else {
		silences = e.detector.Detect(ctx, d.SourceFilePath)
		logger.Info("silence detection finished",
			slog.Float64("source_duration_sec", sourceDuration),
			slog.Int("silences", len(silences)),
		)
	}

	outName := fmt.Sprintf("processed-%s.mp4", d.JobID)
	outPath := filepath.Join(e.outputDir, outName)

	result, renderErr := e.renderer.Render(ctx, d.SourceFilePath, outPath, sourceDuration, silences)
	if renderErr != nil {
		logger.Error("render failed", slog.String("error", renderErr.Error()))
		e.fail(ctx, d, "Video processing failed")
		return nil
	}

	outputDuration, durErr := e.prober.ProbeDuration(ctx, outPath)
	if durErr != nil {
		logger.Warn("could not probe output duration, recording zero",
			slog.String("error", durErr.Error()),
		)
		outputDuration = 0
	}
	durationSeconds := int(math.Round(outputDuration))

	processedPath, pubErr := e.publisher.Publish(ctx, outPath, outName)
	if pubErr != nil {
		// The rendered file still exists locally; completing with the
		// local path beats failing a finished job.
		logger.Warn("publishing processed file failed, recording local path",
			slog.String("error", pubErr.Error()),
		)
		processedPath = outPath
	}

	completedAt := time.Now().UTC()
	if err := e.store.MarkCompleted(ctx, d.JobID, processedPath, durationSeconds, completedAt); err != nil {
		return fmt.Errorf("mark job %s completed: %w", d.JobID, err)
	}

	logger.Info("job completed",
		slog.String("processed_path", processedPath),
		slog.Int("duration_sec", durationSeconds),
		slog.Float64("time_saved_sec", math.Max(0, sourceDuration-outputDuration)),
		slog.Bool("fallback", result.Verbatim),
		slog.Int("segments", result.Segments),
	)

	e.notify(ctx, logger, notify.Event{
		JobID:           d.JobID,
		Status:          string(StatusCompleted),
		WorkspaceID:     d.WorkspaceID,
		UserID:          d.UserID,
		ProcessedPath:   processedPath,
		DurationSeconds: durationSeconds,
	})
	return nil
}

// fail drives the job to the failed status, refunds the workspace credit
// and notifies listeners. Everything here is best effort; the job is
// already lost and the worker must move on.
func (e *Executor) fail(ctx context.Context, d Descriptor, message string) {
	logger := e.logger.With(slog.String("job_id", d.JobID))

	completedAt := time.Now().UTC()
	if err := e.store.MarkFailed(ctx, d.JobID, message, completedAt); err != nil {
		logger.Error("could not record job failure",
			slog.String("error", err.Error()),
		)
	}
	logger.Warn("job failed", slog.String("reason", message))

	if e.ledger != nil && d.WorkspaceID != "" {
		if err := e.ledger.Refund(ctx, d.WorkspaceID); err != nil {
			logger.Warn("credit refund failed",
				slog.String("workspace_id", d.WorkspaceID),
				slog.String("error", err.Error()),
			)
		}
	}

	e.notify(ctx, logger, notify.Event{
		JobID:        d.JobID,
		Status:       string(StatusFailed),
		WorkspaceID:  d.WorkspaceID,
		UserID:       d.UserID,
		ErrorMessage: message,
	})
}

// notify delivers a status event, logging and swallowing any error.
func (e *Executor) notify(ctx context.Context, logger *slog.Logger, event notify.Event) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, event); err != nil {
		logger.Warn("status notification failed",
			slog.String("status", event.Status),
			slog.String("error", err.Error()),
		)
	}
}
