package main

import (
	"testing"
	"time"
)

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		now       time.Time
		wantYear  int
		wantMonth time.Month
	}{
		{time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC), 2026, time.February},
		{time.Date(2026, 7, 31, 23, 59, 0, 0, time.UTC), 2026, time.June},
		{time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), 2026, time.April},
		{time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), 2025, time.December},
		{time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 2026, time.February},
		{time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), 2024, time.February},
	}
	for _, tt := range tests {
		y, m := previousMonth(tt.now)
		if y != tt.wantYear || m != tt.wantMonth {
			t.Errorf("previousMonth(%v) = %d-%s, want %d-%s",
				tt.now.Format("2006-01-02"), y, m, tt.wantYear, tt.wantMonth)
		}
	}
}
