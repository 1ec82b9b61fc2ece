package silence

import "sort"

// MinKeepSegmentSec is the minimum length of a keep segment. Shorter
// fragments between silences are dropped as noise.
const MinKeepSegmentSec = 0.1

// Segment is a half-open time range [Start, End) of audible content to
// retain in the output.
type Segment struct {
	Start float64
	End   float64
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Plan computes the keep segments that complement the given silence
// intervals over [0, duration). Silences are stable-sorted by start; the
// walk cursor is clamped so overlapping or out-of-order intervals can
// never move it backward. An empty result means the whole source is
// silent; policy for that case belongs to the caller.
func Plan(duration float64, silences []Interval) []Segment {
	sorted := make([]Interval, len(silences))
	copy(sorted, silences)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var segments []Segment
	cursor := 0.0

	for _, s := range sorted {
		if cursor < s.Start && s.Start-cursor > MinKeepSegmentSec {
			segments = append(segments, Segment{Start: cursor, End: s.Start})
		}
		if s.End > cursor {
			cursor = s.End
		}
	}

	if cursor < duration && duration-cursor > MinKeepSegmentSec {
		segments = append(segments, Segment{Start: cursor, End: duration})
	}

	return segments
}
