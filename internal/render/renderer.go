// Package render turns a silence-removal plan into a single output file.
//
// The renderer never raises a fatal error for anything the pipeline can
// recover from: every internal failure degrades to a verbatim copy of the
// source. Only a failing verbatim copy, the last resort, is reported to
// the caller.
package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"silencecut/internal/media"
	"silencecut/internal/silence"
)

// Result describes how the output file was produced.
type Result struct {
	// Verbatim is true when the output is an unmodified copy of the source.
	Verbatim bool
	// Segments is the number of keep segments joined into the output.
	Segments int
}

// Renderer materializes keep segments and joins them into the final file.
type Renderer struct {
	toolkit media.Toolkit
	logger  *slog.Logger
}

// NewRenderer creates a Renderer using the given toolkit.
func NewRenderer(toolkit media.Toolkit, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{toolkit: toolkit, logger: logger}
}

// Render produces outPath from srcPath with the given silences removed.
//
// An empty silence list copies the source verbatim, preserving original
// quality. A plan with zero keep segments (the whole source is silent)
// renders a minimal 1-second clip so the job always yields something
// playable. Partial results are never emitted: if any segment fails, the
// whole render falls back to a verbatim copy.
func (r *Renderer) Render(ctx context.Context, srcPath, outPath string, duration float64, silences []silence.Interval) (Result, error) {
	if len(silences) == 0 {
		if err := copyFile(srcPath, outPath); err != nil {
			return Result{}, err
		}
		return Result{Verbatim: true}, nil
	}

	segments := silence.Plan(duration, silences)

	if len(segments) == 0 {
		r.logger.Info("no audible content found, rendering minimal clip",
			slog.String("src", srcPath),
		)
		if err := r.toolkit.RenderClip(ctx, srcPath, 1, outPath); err != nil {
			r.logger.Warn("minimal clip render failed, falling back to verbatim copy",
				slog.String("src", srcPath),
				slog.String("error", err.Error()),
			)
			return r.verbatimFallback(srcPath, outPath)
		}
		return Result{}, nil
	}

	segmentFiles, err := r.extractSegments(ctx, srcPath, outPath, segments)
	if err != nil {
		r.logger.Warn("segment extraction failed, falling back to verbatim copy",
			slog.String("src", srcPath),
			slog.String("error", err.Error()),
		)
		r.cleanup(segmentFiles)
		return r.verbatimFallback(srcPath, outPath)
	}

	if err := r.toolkit.Concatenate(ctx, segmentFiles, outPath); err != nil {
		r.logger.Warn("concatenation failed, falling back to verbatim copy",
			slog.String("src", srcPath),
			slog.String("error", err.Error()),
		)
		r.cleanup(segmentFiles)
		return r.verbatimFallback(srcPath, outPath)
	}

	r.cleanup(segmentFiles)
	return Result{Segments: len(segments)}, nil
}

// extractSegments renders each keep segment, strictly in time order, into
// uniquely named intermediate files next to the output. It returns all
// files created so far even on failure, so the caller can clean up.
func (r *Renderer) extractSegments(ctx context.Context, srcPath, outPath string, segments []silence.Segment) ([]string, error) {
	dir := filepath.Dir(outPath)
	uid := uuid.NewString()

	var files []string
	for i, seg := range segments {
		segFile := filepath.Join(dir, fmt.Sprintf("segment_%s_%03d.mp4", uid, i))

		if err := r.toolkit.ExtractSegment(ctx, srcPath, seg.Start, seg.Duration(), segFile); err != nil {
			return files, fmt.Errorf("extract segment %d [%.3f, %.3f): %w", i, seg.Start, seg.End, err)
		}
		files = append(files, segFile)
	}

	return files, nil
}

// verbatimFallback copies the source to the output path unchanged. This is
// the last resort; its failure is the only fatal outcome of rendering.
func (r *Renderer) verbatimFallback(srcPath, outPath string) (Result, error) {
	if err := copyFile(srcPath, outPath); err != nil {
		return Result{}, fmt.Errorf("verbatim copy fallback: %w", err)
	}
	return Result{Verbatim: true}, nil
}

// cleanup removes intermediate segment files. Failures are logged, never
// propagated.
func (r *Renderer) cleanup(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("could not remove intermediate segment file",
				slog.String("path", p),
				slog.String("error", err.Error()),
			)
		}
	}
}

// copyFile streams src into dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 - paths come from trusted internal code
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600) // #nosec G304
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy file: %w", err)
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("close destination file: %w", err)
	}

	return nil
}
