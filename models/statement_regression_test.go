package models_test

import (
	"sync"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
)

func TestStatementBalanceChain(t *testing.T) {
	ctx := setupSettlementEnv(t)

	provider := seedProvider(t, ctx, "Fran Frames", "50")
	janStart, janEnd := models.MonthPeriod(2026, time.January)
	febStart, febEnd := models.MonthPeriod(2026, time.February)

	seedSale(t, ctx, provider.ID, "Mirror", "100.00", models.PaymentMethodCash, janStart.Add(time.Hour))
	seedSale(t, ctx, provider.ID, "Frame", "40.00", models.PaymentMethodCard, febStart.Add(time.Hour))

	jan, err := models.GenerateStatement(ctx, provider.ID, janStart, janEnd)
	if err != nil {
		t.Fatalf("GenerateStatement jan: %v", err)
	}
	if !jan.OpeningBalance.IsZero() {
		t.Errorf("first statement opening = %s, want 0", jan.OpeningBalance)
	}
	wantClosing := jan.OpeningBalance.Add(jan.TotalEarnings).Sub(jan.TotalPayouts)
	if !jan.ClosingBalance.Equal(wantClosing) {
		t.Errorf("jan closing = %s, want %s", jan.ClosingBalance, wantClosing)
	}

	feb, err := models.GenerateStatement(ctx, provider.ID, febStart, febEnd)
	if err != nil {
		t.Fatalf("GenerateStatement feb: %v", err)
	}
	if !feb.OpeningBalance.Equal(jan.ClosingBalance) {
		t.Errorf("feb opening = %s, want jan closing %s", feb.OpeningBalance, jan.ClosingBalance)
	}

	// Generating again for the same identity returns the existing row.
	again, err := models.GenerateStatement(ctx, provider.ID, janStart, janEnd)
	if err != nil {
		t.Fatalf("repeat GenerateStatement: %v", err)
	}
	if again.ID != jan.ID {
		t.Errorf("repeat generation created a new row: %d vs %d", again.ID, jan.ID)
	}
}

func TestRegenerateStatementPicksUpLateSales(t *testing.T) {
	ctx := setupSettlementEnv(t)

	provider := seedProvider(t, ctx, "Gina Glass", "50")
	start, end := models.MonthPeriod(2026, time.March)
	seedSale(t, ctx, provider.ID, "Bowl", "20.00", models.PaymentMethodCash, start.Add(time.Hour))

	original, err := models.GenerateStatement(ctx, provider.ID, start, end)
	if err != nil {
		t.Fatalf("GenerateStatement: %v", err)
	}

	// A back-dated sale lands after the statement was cut.
	seedSale(t, ctx, provider.ID, "Pitcher", "60.00", models.PaymentMethodCard, start.Add(48*time.Hour))

	regenerated, err := models.RegenerateStatement(ctx, original.ID, provider.ID)
	if err != nil {
		t.Fatalf("RegenerateStatement: %v", err)
	}
	if regenerated.ID == original.ID {
		t.Error("regenerated statement kept the old identity")
	}
	if regenerated.RecordCount != 2 {
		t.Errorf("regenerated record count = %d, want 2", regenerated.RecordCount)
	}
	if !regenerated.TotalSales.GreaterThan(original.TotalSales) {
		t.Errorf("regenerated total sales %s not greater than original %s",
			regenerated.TotalSales, original.TotalSales)
	}

	if _, err := models.GetStatement(ctx, original.ID); !utils.IsNotFound(err) {
		t.Errorf("old statement still resolves, err = %v", err)
	}
	if _, err := models.RegenerateStatement(ctx, original.ID, provider.ID); !utils.IsNotFound(err) {
		t.Errorf("regenerating a replaced statement, err = %v, want not found", err)
	}
}

func TestMarkStatementViewedOnce(t *testing.T) {
	ctx := setupSettlementEnv(t)

	provider := seedProvider(t, ctx, "Hal Hats", "45")
	start, end := models.MonthPeriod(2026, time.April)
	seedSale(t, ctx, provider.ID, "Fedora", "35.00", models.PaymentMethodCash, start.Add(time.Hour))

	stmt, err := models.GenerateStatement(ctx, provider.ID, start, end)
	if err != nil {
		t.Fatalf("GenerateStatement: %v", err)
	}
	if stmt.ViewedAt != nil {
		t.Fatal("fresh statement already viewed")
	}

	viewed, err := models.MarkStatementViewed(ctx, stmt.ID, provider.ID)
	if err != nil {
		t.Fatalf("MarkStatementViewed: %v", err)
	}
	if viewed.ViewedAt == nil {
		t.Fatal("viewed_at not set")
	}

	again, err := models.MarkStatementViewed(ctx, stmt.ID, provider.ID)
	if err != nil {
		t.Fatalf("second MarkStatementViewed: %v", err)
	}
	if again.ViewedAt == nil || again.ViewedAt.Sub(*viewed.ViewedAt).Abs() > time.Second {
		t.Errorf("viewed_at moved on second call: %v vs %v", again.ViewedAt, viewed.ViewedAt)
	}
}

func TestGenerateStatementsForMonth(t *testing.T) {
	ctx := setupSettlementEnv(t)

	p1 := seedProvider(t, ctx, "Iris Iron", "50")
	p2 := seedProvider(t, ctx, "Jo Jewels", "70")
	start, _ := models.MonthPeriod(2026, time.May)
	seedSale(t, ctx, p1.ID, "Trivet", "15.00", models.PaymentMethodCash, start.Add(time.Hour))

	result, err := models.GenerateStatementsForMonth(ctx, 2026, time.May)
	if err != nil {
		t.Fatalf("GenerateStatementsForMonth: %v", err)
	}
	if len(result.Generated) != 2 {
		t.Fatalf("generated = %d, want 2 (idle providers still get a statement)", len(result.Generated))
	}
	if len(result.Errors) != 0 {
		t.Errorf("errors = %v, want none", result.Errors)
	}

	for _, stmt := range result.Generated {
		if stmt.ProviderId == p2.ID {
			if stmt.RecordCount != 0 || !stmt.TotalSales.IsZero() || !stmt.ClosingBalance.IsZero() {
				t.Errorf("idle provider statement not zero-valued: %+v", stmt)
			}
		}
	}
}

func TestRegenerateStatementConcurrent(t *testing.T) {
	ctx := setupSettlementEnv(t)

	provider := seedProvider(t, ctx, "Nora Notions", "50")
	start, end := models.MonthPeriod(2026, time.June)
	seedSale(t, ctx, provider.ID, "Thimble", "10.00", models.PaymentMethodCash, start.Add(time.Hour))

	original, err := models.GenerateStatement(ctx, provider.ID, start, end)
	if err != nil {
		t.Fatalf("GenerateStatement: %v", err)
	}

	// Both calls target the same original identity; at most one can replace
	// it. The loser either misses the row on lookup or loses the delete race
	// inside its transaction.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = models.RegenerateStatement(ctx, original.ID, provider.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !utils.IsNotFound(err) && !utils.IsInvalidState(err) {
			t.Errorf("call %d error = %v, want not found or invalid state", i, err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1", succeeded)
	}

	// Exactly one live statement remains for the identity.
	statements, err := models.GetStatementAll(ctx, &provider.ID)
	if err != nil {
		t.Fatalf("GetStatementAll: %v", err)
	}
	if len(statements) != 1 {
		t.Errorf("statements for provider = %d, want 1", len(statements))
	}
}
