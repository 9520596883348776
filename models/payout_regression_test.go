package models_test

import (
	"sync"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
)

func TestGeneratePayoutClaimsOnce(t *testing.T) {
	ctx := setupSettlementEnv(t)

	provider := seedProvider(t, ctx, "Alice Vintage", "60")
	periodStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	r1 := seedSale(t, ctx, provider.ID, "Lamp", "100.00", models.PaymentMethodCash, periodStart.Add(24*time.Hour))
	r2 := seedSale(t, ctx, provider.ID, "Chair", "45.50", models.PaymentMethodCard, periodStart.Add(48*time.Hour))
	// Outside the period, must never be claimed.
	seedSale(t, ctx, provider.ID, "Rug", "80.00", models.PaymentMethodCash, periodEnd.Add(time.Hour))

	payout, err := models.GeneratePayout(ctx, provider.ID, periodStart, periodEnd, nil)
	if err != nil {
		t.Fatalf("GeneratePayout: %v", err)
	}
	wantTotal := r1.ProviderAmount.Add(r2.ProviderAmount)
	if !payout.TotalAmount.Equal(wantTotal) {
		t.Errorf("payout total = %s, want %s", payout.TotalAmount, wantTotal)
	}
	if payout.RecordCount != 2 {
		t.Errorf("record count = %d, want 2", payout.RecordCount)
	}
	if payout.Status != models.PayoutStatusPending {
		t.Errorf("status = %s, want Pending", payout.Status)
	}
	if payout.PayoutNumber == "" {
		t.Error("payout number is empty")
	}

	for _, id := range []int{r1.ID, r2.ID} {
		rec, err := models.GetSaleRecord(ctx, id)
		if err != nil {
			t.Fatalf("GetSaleRecord(%d): %v", id, err)
		}
		if rec.SettlementStatus != models.SettlementStatusIncluded {
			t.Errorf("record %d status = %s, want Included", id, rec.SettlementStatus)
		}
		if rec.PayoutId == nil || *rec.PayoutId != payout.ID {
			t.Errorf("record %d payout id = %v, want %d", id, rec.PayoutId, payout.ID)
		}
	}

	// A second run over the same period finds nothing left to claim.
	second, err := models.GeneratePayout(ctx, provider.ID, periodStart, periodEnd, nil)
	if err != nil {
		t.Fatalf("second GeneratePayout: %v", err)
	}
	if second.RecordCount != 0 || !second.TotalAmount.IsZero() {
		t.Errorf("second payout claimed records: count=%d total=%s", second.RecordCount, second.TotalAmount)
	}

	// And with DisallowEmpty the empty rerun is rejected outright.
	_, err = models.GeneratePayout(ctx, provider.ID, periodStart, periodEnd,
		&models.GeneratePayoutOptions{DisallowEmpty: true})
	if !utils.IsValidation(err) {
		t.Errorf("DisallowEmpty rerun error = %v, want validation error", err)
	}

	// The run queues exactly one outbox notification per created payout, and
	// its payload is the payout snapshot.
	db := config.GetDB()
	var outboxRows []models.NotificationOutboxRecord
	if err := db.WithContext(ctx).
		Where("event_type = ?", models.NotificationEventPayoutGenerated).
		Order("id").Find(&outboxRows).Error; err != nil {
		t.Fatalf("load outbox rows: %v", err)
	}
	if len(outboxRows) != 2 {
		t.Fatalf("outbox rows = %d, want 2 (one per generated payout)", len(outboxRows))
	}
	if outboxRows[0].PublishStatus != models.OutboxPublishStatusPending {
		t.Errorf("outbox status = %s, want PENDING", outboxRows[0].PublishStatus)
	}
	var snapshot models.Payout
	if err := utils.UnmarshalFromJSON(outboxRows[0].Payload, &snapshot); err != nil {
		t.Fatalf("decode outbox payload: %v", err)
	}
	if snapshot.ID != payout.ID || !snapshot.TotalAmount.Equal(payout.TotalAmount) {
		t.Errorf("outbox payload = payout %d (%s), want %d (%s)",
			snapshot.ID, snapshot.TotalAmount, payout.ID, payout.TotalAmount)
	}

	pending, err := models.PendingPayoutAmount(ctx, provider.ID)
	if err != nil {
		t.Fatalf("PendingPayoutAmount: %v", err)
	}
	if !pending.Equal(decimal.NewFromInt(48)) {
		t.Errorf("pending amount = %s, want 48 (the out-of-period sale at 60%%)", pending)
	}
}

func TestGeneratePayoutUnknownProvider(t *testing.T) {
	ctx := setupSettlementEnv(t)

	periodStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err := models.GeneratePayout(ctx, 999999, periodStart, periodEnd, nil)
	if !utils.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}

	payouts, err := models.GetPayoutAll(ctx, nil, nil)
	if err != nil {
		t.Fatalf("GetPayoutAll: %v", err)
	}
	if len(payouts) != 0 {
		t.Errorf("payout rows after failed run = %d, want 0", len(payouts))
	}
}

func TestMarkPayoutPaid(t *testing.T) {
	ctx := setupSettlementEnv(t)

	provider := seedProvider(t, ctx, "Ben Books", "50")
	periodStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	record := seedSale(t, ctx, provider.ID, "Atlas", "30.00", models.PaymentMethodCash, periodStart.Add(time.Hour))

	payout, err := models.GeneratePayout(ctx, provider.ID, periodStart, periodEnd, nil)
	if err != nil {
		t.Fatalf("GeneratePayout: %v", err)
	}

	input := &models.PayoutPaymentInput{
		PaymentMethod:    models.PaymentMethodCash,
		PaymentReference: "envelope-17",
	}
	paid, err := models.MarkPayoutPaid(ctx, payout.ID, input)
	if err != nil {
		t.Fatalf("MarkPayoutPaid: %v", err)
	}
	if paid.Status != models.PayoutStatusPaid || paid.PaidAt == nil {
		t.Fatalf("payout not marked paid: status=%s paidAt=%v", paid.Status, paid.PaidAt)
	}

	rec, err := models.GetSaleRecord(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetSaleRecord: %v", err)
	}
	if rec.SettlementStatus != models.SettlementStatusSettled {
		t.Errorf("record status = %s, want Settled", rec.SettlementStatus)
	}

	// Retry with identical details is a no-op.
	again, err := models.MarkPayoutPaid(ctx, payout.ID, input)
	if err != nil {
		t.Fatalf("idempotent MarkPayoutPaid: %v", err)
	}
	if again.PaidAt == nil || again.PaidAt.Sub(*paid.PaidAt).Abs() > time.Second {
		t.Errorf("paid_at changed on idempotent retry: %v vs %v", again.PaidAt, paid.PaidAt)
	}

	// Retry with different details is a conflict.
	_, err = models.MarkPayoutPaid(ctx, payout.ID, &models.PayoutPaymentInput{
		PaymentMethod:    models.PaymentMethodCard,
		PaymentReference: "txn-999",
	})
	if !utils.IsInvalidState(err) {
		t.Errorf("conflicting retry error = %v, want invalid state", err)
	}
}

func TestGenerateAllPayoutsSkipsIdleProviders(t *testing.T) {
	ctx := setupSettlementEnv(t)

	active := seedProvider(t, ctx, "Cara Ceramics", "55")
	seedProvider(t, ctx, "Dan Decor", "40")

	periodStart := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedSale(t, ctx, active.ID, "Vase", "25.00", models.PaymentMethodCard, periodStart.Add(time.Hour))

	result, err := models.GenerateAllPayouts(ctx, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("GenerateAllPayouts: %v", err)
	}
	if len(result.Generated) != 1 {
		t.Errorf("generated = %d, want 1", len(result.Generated))
	}
	if len(result.Skipped) != 1 {
		t.Errorf("skipped = %d, want 1", len(result.Skipped))
	}
	if len(result.Errors) != 0 {
		t.Errorf("errors = %v, want none", result.Errors)
	}
}

func TestComputePayoutSummaryEmptyPeriod(t *testing.T) {
	ctx := setupSettlementEnv(t)

	provider := seedProvider(t, ctx, "Eve Estate", "65")
	periodStart := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	summary, err := models.ComputePayoutSummary(ctx, provider.ID, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("ComputePayoutSummary: %v", err)
	}
	if summary.RecordCount != 0 ||
		!summary.TotalSales.IsZero() ||
		!summary.TotalProviderEarnings.IsZero() ||
		!summary.TotalShopRevenue.IsZero() {
		t.Errorf("empty period summary not zero-valued: %+v", summary)
	}

	_, err = models.ComputePayoutSummary(ctx, 424242, periodStart, periodEnd)
	if !utils.IsNotFound(err) {
		t.Errorf("unknown provider error = %v, want not found", err)
	}
}

func TestMarkPayoutPaidConcurrent(t *testing.T) {
	ctx := setupSettlementEnv(t)

	provider := seedProvider(t, ctx, "Lena Linen", "50")
	periodStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seedSale(t, ctx, provider.ID, "Tablecloth", "50.00", models.PaymentMethodCash, periodStart.Add(time.Hour))

	payout, err := models.GeneratePayout(ctx, provider.ID, periodStart, periodEnd, nil)
	if err != nil {
		t.Fatalf("GeneratePayout: %v", err)
	}

	inputs := []*models.PayoutPaymentInput{
		{PaymentMethod: models.PaymentMethodCash, PaymentReference: "envelope-1"},
		{PaymentMethod: models.PaymentMethodCard, PaymentReference: "txn-2"},
	}
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input *models.PayoutPaymentInput) {
			defer wg.Done()
			_, errs[i] = models.MarkPayoutPaid(ctx, payout.ID, input)
		}(i, input)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !utils.IsInvalidState(err) {
			t.Errorf("call %d error = %v, want invalid state", i, err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1", succeeded)
	}

	// Exactly one set of terms landed, matching the winning call.
	final, err := models.GetPayout(ctx, payout.ID)
	if err != nil {
		t.Fatalf("GetPayout: %v", err)
	}
	if final.Status != models.PayoutStatusPaid || final.PaymentMethod == nil {
		t.Fatalf("payout not paid after concurrent calls: %+v", final)
	}
	winner := -1
	for i := range inputs {
		if errs[i] == nil {
			winner = i
		}
	}
	if *final.PaymentMethod != inputs[winner].PaymentMethod ||
		final.PaymentReference != inputs[winner].PaymentReference {
		t.Errorf("final terms %s/%s do not match winning call %s/%s",
			*final.PaymentMethod, final.PaymentReference,
			inputs[winner].PaymentMethod, inputs[winner].PaymentReference)
	}
}

func TestExecutePayoutNotConfigured(t *testing.T) {
	ctx := setupSettlementEnv(t)

	provider := seedProvider(t, ctx, "Mia Maps", "50")
	periodStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seedSale(t, ctx, provider.ID, "Globe", "90.00", models.PaymentMethodCard, periodStart.Add(time.Hour))

	payout, err := models.GeneratePayout(ctx, provider.ID, periodStart, periodEnd, nil)
	if err != nil {
		t.Fatalf("GeneratePayout: %v", err)
	}

	_, err = models.ExecutePayout(ctx, payout.ID)
	if !utils.IsUnsupported(err) {
		t.Errorf("pending payout: error = %v, want unsupported", err)
	}

	if _, err := models.ExecutePayout(ctx, 424242); !utils.IsNotFound(err) {
		t.Errorf("unknown payout: error = %v, want not found", err)
	}

	if _, err := models.MarkPayoutPaid(ctx, payout.ID, &models.PayoutPaymentInput{
		PaymentMethod: models.PaymentMethodCard,
	}); err != nil {
		t.Fatalf("MarkPayoutPaid: %v", err)
	}
	if _, err := models.ExecutePayout(ctx, payout.ID); !utils.IsInvalidState(err) {
		t.Errorf("paid payout: error = %v, want invalid state", err)
	}
}
