package models_test

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/models/reports"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
)

func TestSaveDailyReconciliationUpsert(t *testing.T) {
	ctx := setupSettlementEnv(t)

	provider := seedProvider(t, ctx, "Kim Kitchen", "50")
	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	seedSale(t, ctx, provider.ID, "Kettle", "100.00", models.PaymentMethodCash, day.Add(10*time.Hour))
	seedSale(t, ctx, provider.ID, "Tray", "50.00", models.PaymentMethodCard, day.Add(11*time.Hour))

	report, err := models.DailyCashReport(ctx, models.DateString(day))
	if err != nil {
		t.Fatalf("DailyCashReport: %v", err)
	}
	if !report.CashTotal.Equal(mustDec(t, "100.00")) {
		t.Errorf("cash total = %s, want 100.00", report.CashTotal)
	}
	if !report.CardTotal.Equal(mustDec(t, "50.00")) {
		t.Errorf("card total = %s, want 50.00", report.CardTotal)
	}
	if report.RecordCount != 2 {
		t.Errorf("record count = %d, want 2", report.RecordCount)
	}

	opening := mustDec(t, "50.00")
	actual := mustDec(t, "140.00")
	saved, err := models.SaveDailyReconciliation(ctx, &models.NewDailyReconciliation{
		Date:         models.DateString(day),
		OpeningFloat: &opening,
		ActualCash:   &actual,
		CountedBy:    "kim",
	})
	if err != nil {
		t.Fatalf("SaveDailyReconciliation: %v", err)
	}
	if !saved.ExpectedCash.Equal(mustDec(t, "150.00")) {
		t.Errorf("expected cash = %s, want 150.00", saved.ExpectedCash)
	}
	if !saved.Variance.Equal(mustDec(t, "-10.00")) {
		t.Errorf("variance = %s, want -10.00", saved.Variance)
	}

	// A second save for the same day replaces the row, not duplicates it.
	actual2 := mustDec(t, "150.00")
	resaved, err := models.SaveDailyReconciliation(ctx, &models.NewDailyReconciliation{
		Date:         models.DateString(day),
		OpeningFloat: &opening,
		ActualCash:   &actual2,
		CountedBy:    "kim",
	})
	if err != nil {
		t.Fatalf("second SaveDailyReconciliation: %v", err)
	}
	if resaved.ID != saved.ID {
		t.Errorf("resave created a new row: %d vs %d", resaved.ID, saved.ID)
	}
	if !resaved.Variance.IsZero() {
		t.Errorf("resaved variance = %s, want 0", resaved.Variance)
	}

	negative := mustDec(t, "-1.00")
	_, err = models.SaveDailyReconciliation(ctx, &models.NewDailyReconciliation{
		Date:         models.DateString(day),
		OpeningFloat: &negative,
		ActualCash:   &actual,
	})
	if !utils.IsValidation(err) {
		t.Errorf("negative float error = %v, want validation", err)
	}
}

func TestReportsEmptyPeriod(t *testing.T) {
	ctx := setupSettlementEnv(t)

	from := models.DateString(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	to := models.DateString(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))

	sales, err := reports.GetSalesReport(ctx, nil, from, to)
	if err != nil {
		t.Fatalf("GetSalesReport: %v", err)
	}
	if sales.TransactionCount != 0 || !sales.TotalSales.IsZero() || !sales.AverageSale.IsZero() {
		t.Errorf("empty sales report not zero-valued: %+v", sales)
	}
	if len(sales.Details) != 0 {
		t.Errorf("empty sales report has %d detail lines", len(sales.Details))
	}

	perf, err := reports.GetProviderPerformanceReport(ctx, nil, from, to)
	if err != nil {
		t.Fatalf("GetProviderPerformanceReport: %v", err)
	}
	if perf.ProviderCount != 0 || !perf.TotalSales.IsZero() {
		t.Errorf("empty performance report not zero-valued: %+v", perf)
	}

	payouts, err := reports.GetPayoutSummaryReport(ctx, from, to)
	if err != nil {
		t.Fatalf("GetPayoutSummaryReport: %v", err)
	}
	if payouts.PayoutCount != 0 || !payouts.TotalPaid.IsZero() || !payouts.AveragePayout.IsZero() {
		t.Errorf("empty payout report not zero-valued: %+v", payouts)
	}

	overview, err := reports.GetInventoryOverviewReport(ctx)
	if err != nil {
		t.Fatalf("GetInventoryOverviewReport: %v", err)
	}
	if overview.TotalCount != 0 || !overview.AvailableValue.IsZero() {
		t.Errorf("empty inventory overview not zero-valued: %+v", overview)
	}
}
