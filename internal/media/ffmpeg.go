package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// FFmpegToolkit implements Toolkit using the ffmpeg and ffprobe CLIs.
type FFmpegToolkit struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegToolkit creates a new FFmpegToolkit.
// Empty paths default to "ffmpeg" and "ffprobe" (found via PATH).
func NewFFmpegToolkit(ffmpegPath, ffprobePath string) *FFmpegToolkit {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegToolkit{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Verify interface implementation at compile time.
var _ Toolkit = (*FFmpegToolkit)(nil)

// DetectSilence runs the silencedetect filter and returns captured stderr.
// ffmpeg writes the silence_start/silence_end event lines to stderr, and
// exits non-zero for the null muxer in some builds, so the exit status is
// deliberately ignored: callers decide what an empty event stream means.
func (t *FFmpegToolkit) DetectSilence(ctx context.Context, path string, noiseFloorDB int, minDurationSec float64) (string, error) {
	filter := fmt.Sprintf("silencedetect=noise=%ddB:d=%s", noiseFloorDB, formatSeconds(minDurationSec))

	// #nosec G204 - binary path is set by the application, not user input
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-hide_banner",
		"-i", path,
		"-af", filter,
		"-f", "null",
		"-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvocation, err)
	}
	_ = cmd.Wait()

	return stderr.String(), nil
}

// ProbeDuration returns the duration of a media file in seconds.
// The primary method is an ffprobe metadata query; if that fails or
// produces garbage, the "Duration: HH:MM:SS.ff" banner from ffmpeg's
// stderr is parsed as a fallback.
func (t *FFmpegToolkit) ProbeDuration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - binary path is set by the application, not user input
	cmd := exec.CommandContext(ctx, t.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err == nil {
		if d, perr := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64); perr == nil && d >= 0 {
			return d, nil
		}
	}

	return t.probeDurationFallback(ctx, path)
}

// probeDurationFallback decodes the file with a null muxer and parses the
// duration banner from stderr.
func (t *FFmpegToolkit) probeDurationFallback(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - binary path is set by the application, not user input
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-hide_banner",
		"-i", path,
		"-f", "null",
		"-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// ffmpeg exits non-zero with the null muxer; the banner is still printed.
	_ = cmd.Run()

	d, err := ParseClockDuration(stderr.String())
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrDurationProbe, path, err)
	}
	return d, nil
}

// clockRe matches the "Duration: HH:MM:SS.ff" marker in ffmpeg output.
var clockRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)

// ParseClockDuration extracts a duration in seconds from text containing
// an ffmpeg "Duration: HH:MM:SS.ff" marker.
func ParseClockDuration(text string) (float64, error) {
	m := clockRe.FindStringSubmatch(text)
	if len(m) != 4 {
		return 0, fmt.Errorf("no duration marker found")
	}

	hours, _ := strconv.ParseFloat(m[1], 64)
	minutes, _ := strconv.ParseFloat(m[2], 64)
	seconds, _ := strconv.ParseFloat(m[3], 64)

	return hours*3600 + minutes*60 + seconds, nil
}

// ExtractSegment re-encodes a window of the source into outPath.
// Re-encoding (rather than stream copy) keeps cut points frame-accurate,
// which matters because the surviving segments are joined positionally.
func (t *FFmpegToolkit) ExtractSegment(ctx context.Context, path string, startSec, durationSec float64, outPath string) error {
	args := []string{
		"-y",
		"-i", path,
		"-ss", formatSeconds(startSec),
		"-t", formatSeconds(durationSec),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-avoid_negative_ts", "make_zero",
		outPath,
	}

	if stderr, err := t.runFFmpeg(ctx, args); err != nil {
		return fmt.Errorf("%w: %w", ErrSegmentEncode, &CommandError{Bin: t.ffmpegPath, Args: args, Stderr: stderr, Err: err})
	}
	return nil
}

// Concatenate joins segments in the given order using the concat demuxer
// with stream copy. The driving manifest is a temporary file created next
// to the output and removed best-effort afterwards.
func (t *FFmpegToolkit) Concatenate(ctx context.Context, segmentPaths []string, outPath string) error {
	if len(segmentPaths) == 0 {
		return ErrNoSegments
	}

	listFile, err := writeConcatList(segmentPaths, filepath.Dir(outPath))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConcatenation, err)
	}
	defer func() { _ = os.Remove(listFile) }()

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outPath,
	}

	if stderr, err := t.runFFmpeg(ctx, args); err != nil {
		return fmt.Errorf("%w: %w", ErrConcatenation, &CommandError{Bin: t.ffmpegPath, Args: args, Stderr: stderr, Err: err})
	}
	return nil
}

// RenderClip re-encodes the first durationSec seconds of the source.
func (t *FFmpegToolkit) RenderClip(ctx context.Context, path string, durationSec float64, outPath string) error {
	args := []string{
		"-y",
		"-i", path,
		"-t", formatSeconds(durationSec),
		"-c:v", "libx264",
		"-c:a", "aac",
		outPath,
	}

	if stderr, err := t.runFFmpeg(ctx, args); err != nil {
		return fmt.Errorf("%w: %w", ErrSegmentEncode, &CommandError{Bin: t.ffmpegPath, Args: args, Stderr: stderr, Err: err})
	}
	return nil
}

// writeConcatList creates a temporary file listing the segments in the
// format required by ffmpeg's concat demuxer.
func writeConcatList(segmentPaths []string, dir string) (string, error) {
	f, err := os.CreateTemp(dir, "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, path := range segmentPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			_ = os.Remove(f.Name())
			return "", fmt.Errorf("get absolute path for %s: %w", path, err)
		}
		// Escape single quotes in path
		escapedPath := strings.ReplaceAll(absPath, "'", "'\\''")
		if _, err := fmt.Fprintf(f, "file '%s'\n", escapedPath); err != nil {
			_ = os.Remove(f.Name())
			return "", fmt.Errorf("write concat list: %w", err)
		}
	}

	return f.Name(), nil
}

// runFFmpeg executes ffmpeg with the given arguments, returning captured
// stderr alongside any execution error.
func (t *FFmpegToolkit) runFFmpeg(ctx context.Context, args []string) (string, error) {
	// #nosec G204 - binary path is set by the application, not user input
	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return stderr.String(), fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return stderr.String(), err
	}
	return stderr.String(), nil
}

func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
