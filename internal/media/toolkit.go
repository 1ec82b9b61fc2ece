// Package media wraps subprocess invocations of ffmpeg/ffprobe behind a
// typed Toolkit interface so the rest of the pipeline never sees raw
// command lines or unparsed tool output.
package media

import (
	"context"
	"errors"
	"fmt"
)

// Static errors for toolkit operations.
var (
	// ErrInvocation is returned when the toolkit subprocess cannot be spawned.
	ErrInvocation = errors.New("media: toolkit invocation failed")
	// ErrDurationProbe is returned when no probing method yields a usable duration.
	ErrDurationProbe = errors.New("media: could not determine duration")
	// ErrSegmentEncode is returned when encoding a segment or clip fails.
	ErrSegmentEncode = errors.New("media: segment encode failed")
	// ErrConcatenation is returned when joining segments fails.
	ErrConcatenation = errors.New("media: concatenation failed")
	// ErrNoSegments is returned when no segment paths are provided for joining.
	ErrNoSegments = errors.New("media: no segment paths provided")
)

// Toolkit defines the media analysis and encoding operations used by the
// silence-removal pipeline. Each call blocks until the underlying
// subprocess exits.
type Toolkit interface {
	// DetectSilence runs loudness analysis over the file's audio track and
	// returns the raw line-oriented event stream captured from the tool.
	// The text is returned even when the tool exits non-zero; the call only
	// fails (with ErrInvocation) when the subprocess cannot be started.
	DetectSilence(ctx context.Context, path string, noiseFloorDB int, minDurationSec float64) (string, error)

	// ProbeDuration returns the duration of a media file in seconds.
	// It queries container metadata first and falls back to parsing the
	// encoder's informational output. Fails with ErrDurationProbe when no
	// method yields a non-negative number.
	ProbeDuration(ctx context.Context, path string) (float64, error)

	// ExtractSegment re-encodes the window [startSec, startSec+durationSec)
	// of path into outPath. Fails with ErrSegmentEncode on non-zero exit.
	ExtractSegment(ctx context.Context, path string, startSec, durationSec float64, outPath string) error

	// Concatenate stream-copies and joins the given files, in order, into
	// outPath. Fails with ErrConcatenation on non-zero exit.
	Concatenate(ctx context.Context, segmentPaths []string, outPath string) error

	// RenderClip re-encodes the first durationSec seconds of path into
	// outPath. Used as the degenerate-plan fallback output.
	RenderClip(ctx context.Context, path string, durationSec float64, outPath string) error
}

// CommandError represents a failed toolkit subprocess, including the
// captured stderr output.
type CommandError struct {
	Bin    string
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s error: %v\nargs: %v\nstderr: %s", e.Bin, e.Err, e.Args, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
