package reports_test

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/models/reports"
)

func TestWeekStartOf(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"monday maps to itself",
			time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			"midweek with time of day",
			time.Date(2026, 1, 7, 15, 30, 45, 0, time.UTC),
			time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday belongs to the previous monday",
			time.Date(2026, 1, 11, 23, 59, 0, 0, time.UTC),
			time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			"week spanning a month boundary",
			time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reports.WeekStartOf(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("WeekStartOf(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
