// Package silence detects silent intervals in a media file and plans the
// complementary segments of audible content to keep.
package silence

import (
	"bufio"
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// Interval is a half-open time range [Start, End) of detected silence,
// in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Profile configures a silence detection pass.
type Profile struct {
	// NoiseFloorDB is the loudness threshold below which audio counts as
	// silence, in dBFS.
	NoiseFloorDB int
	// MinDurationSec is the minimum silence length reported by the tool.
	MinDurationSec float64
}

// Detection profiles. The fallback trades sensitivity for robustness on
// sources where the primary profile reports nothing.
var (
	PrimaryProfile  = Profile{NoiseFloorDB: -30, MinDurationSec: 0.5}
	FallbackProfile = Profile{NoiseFloorDB: -25, MinDurationSec: 1.0}
)

// Analyzer is the subset of the media toolkit the detector needs.
type Analyzer interface {
	DetectSilence(ctx context.Context, path string, noiseFloorDB int, minDurationSec float64) (string, error)
}

// Detector finds silence intervals in a source file.
//
// Detection is strictly best-effort: any toolkit failure degrades to an
// empty interval list, which downstream stages treat as "nothing to
// remove". A detection problem must never fail the job.
type Detector struct {
	analyzer Analyzer
	logger   *slog.Logger
}

// NewDetector creates a Detector using the given analyzer.
func NewDetector(analyzer Analyzer, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{analyzer: analyzer, logger: logger}
}

// Detect returns the silence intervals found in path, in chronological
// order. It runs the primary profile first and retries once with the
// fallback profile when the primary yields nothing. An empty result means
// no removable silence was found.
func (d *Detector) Detect(ctx context.Context, path string) []Interval {
	intervals := d.detectWith(ctx, path, PrimaryProfile)
	if len(intervals) > 0 {
		return intervals
	}

	d.logger.Debug("primary silence profile found nothing, retrying with fallback",
		slog.String("path", path),
	)
	return d.detectWith(ctx, path, FallbackProfile)
}

func (d *Detector) detectWith(ctx context.Context, path string, p Profile) []Interval {
	raw, err := d.analyzer.DetectSilence(ctx, path, p.NoiseFloorDB, p.MinDurationSec)
	if err != nil {
		d.logger.Warn("silence detection could not run, treating as no silences",
			slog.String("path", path),
			slog.Int("noise_floor_db", p.NoiseFloorDB),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return ParseEvents(raw)
}

// ParseEvents parses the line-oriented silencedetect event stream.
// A "silence_start: T" line opens a pending interval and the next
// "silence_end: T" line closes it. Events are assumed chronological; no
// re-sorting is performed. A trailing start with no matching end is
// dropped, so silence running to end-of-stream keeps the tail intact.
func ParseEvents(raw string) []Interval {
	var intervals []Interval

	scanner := bufio.NewScanner(strings.NewReader(raw))
	var pendingStart float64
	hasStart := false

	for scanner.Scan() {
		line := scanner.Text()

		if v, ok := eventValue(line, "silence_start:"); ok {
			pendingStart = v
			hasStart = true
			continue
		}

		if v, ok := eventValue(line, "silence_end:"); ok && hasStart {
			if v > pendingStart {
				intervals = append(intervals, Interval{Start: pendingStart, End: v})
			}
			hasStart = false
		}
	}

	return intervals
}

// eventValue extracts the float following an event marker, e.g.
// "[silencedetect @ 0x...] silence_start: 10.2355" -> 10.2355.
func eventValue(line, marker string) (float64, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return 0, false
	}

	rest := strings.TrimSpace(line[idx+len(marker):])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}

	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
