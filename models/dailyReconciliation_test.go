package models_test

import (
	"testing"

	"bitbucket.org/mmdatafocus/consign_backend/models"
	"github.com/shopspring/decimal"
)

func TestCashVariance(t *testing.T) {
	tests := []struct {
		name         string
		opening      string
		cashSales    string
		actual       string
		wantExpected string
		wantVariance string
	}{
		{"short drawer", "50.00", "100.00", "140.00", "150.00", "-10.00"},
		{"exact", "50.00", "100.00", "150.00", "150.00", "0.00"},
		{"over", "50.00", "100.00", "150.75", "150.00", "0.75"},
		{"no sales", "25.00", "0.00", "25.00", "25.00", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected, variance := models.CashVariance(dec(tt.opening), dec(tt.cashSales), dec(tt.actual))
			if !expected.Equal(dec(tt.wantExpected)) {
				t.Errorf("expected = %s, want %s", expected, tt.wantExpected)
			}
			if !variance.Equal(dec(tt.wantVariance)) {
				t.Errorf("variance = %s, want %s", variance, tt.wantVariance)
			}
		})
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
