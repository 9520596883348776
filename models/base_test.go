package models_test

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/models"
)

func TestMonthPeriod(t *testing.T) {
	tests := []struct {
		year      int
		month     time.Month
		wantStart time.Time
		wantEnd   time.Time
	}{
		{2026, time.January, date(2026, 1, 1), date(2026, 2, 1)},
		{2026, time.February, date(2026, 2, 1), date(2026, 3, 1)},
		{2026, time.December, date(2026, 12, 1), date(2027, 1, 1)},
		{2024, time.February, date(2024, 2, 1), date(2024, 3, 1)},
	}
	for _, tt := range tests {
		start, end := models.MonthPeriod(tt.year, tt.month)
		if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
			t.Errorf("MonthPeriod(%d, %s) = [%v, %v), want [%v, %v)",
				tt.year, tt.month, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestStatementNumberFor(t *testing.T) {
	start := date(2026, 1, 1)
	if got := models.StatementNumberFor(start, 42); got != "STMT-202601-000042" {
		t.Errorf("StatementNumberFor = %q, want STMT-202601-000042", got)
	}
	if got := models.StatementNumberFor(date(2025, 12, 1), 1); got != "STMT-202512-000001" {
		t.Errorf("StatementNumberFor = %q, want STMT-202512-000001", got)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
