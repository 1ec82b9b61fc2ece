package silence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		silences []Interval
		want     []Segment
	}{
		{
			name:     "no silences keeps everything",
			duration: 100,
			silences: nil,
			want:     []Segment{{0, 100}},
		},
		{
			name:     "two interior silences",
			duration: 100,
			silences: []Interval{{10, 12}, {50, 53}},
			want:     []Segment{{0, 10}, {12, 50}, {53, 100}},
		},
		{
			name:     "entirely silent yields empty plan",
			duration: 30,
			silences: []Interval{{0, 30}},
			want:     nil,
		},
		{
			name:     "silence at start",
			duration: 20,
			silences: []Interval{{0, 5}},
			want:     []Segment{{5, 20}},
		},
		{
			name:     "silence at end",
			duration: 20,
			silences: []Interval{{15, 20}},
			want:     []Segment{{0, 15}},
		},
		{
			name:     "unsorted input is sorted stably",
			duration: 100,
			silences: []Interval{{50, 53}, {10, 12}},
			want:     []Segment{{0, 10}, {12, 50}, {53, 100}},
		},
		{
			name:     "overlapping silences never move cursor backward",
			duration: 60,
			silences: []Interval{{10, 30}, {15, 20}, {25, 40}},
			want:     []Segment{{0, 10}, {40, 60}},
		},
		{
			name:     "fragment shorter than threshold is dropped",
			duration: 20,
			silences: []Interval{{0, 10}, {10.05, 20}},
			want:     nil,
		},
		{
			name:     "tail fragment shorter than threshold is dropped",
			duration: 10.05,
			silences: []Interval{{0, 10}},
			want:     nil,
		},
		{
			name:     "zero duration",
			duration: 0,
			silences: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.duration, tt.silences)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlan_Properties(t *testing.T) {
	cases := []struct {
		duration float64
		silences []Interval
	}{
		{100, []Interval{{10, 12}, {50, 53}}},
		{45.5, []Interval{{0, 1}, {2, 3}, {3, 3.05}, {40, 45.5}}},
		{600, []Interval{{599, 600}, {0.2, 0.4}, {100, 300}, {250, 320}}},
		{1, []Interval{{0.4, 0.6}}},
	}

	for _, c := range cases {
		segments := Plan(c.duration, c.silences)

		prevEnd := 0.0
		for i, s := range segments {
			require.Greater(t, s.Duration(), MinKeepSegmentSec, "segment %d too short", i)
			require.GreaterOrEqual(t, s.Start, prevEnd, "segment %d overlaps or is out of order", i)
			require.LessOrEqual(t, s.End, c.duration)
			prevEnd = s.End
		}
	}
}
