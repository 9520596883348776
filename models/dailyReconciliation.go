package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// DailyCashReportResponse partitions one day's sales by payment method.
// Derived entirely from sale records; nothing is persisted.
type DailyCashReportResponse struct {
	Date        time.Time       `json:"date"`
	CashTotal   decimal.Decimal `json:"cash_total"`
	CardTotal   decimal.Decimal `json:"card_total"`
	OtherTotal  decimal.Decimal `json:"other_total"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	RecordCount int             `json:"record_count"`
	Records     []*SaleRecord   `json:"records"`
}

// DailyCashReport sums the day's sale records per payment method. The day runs
// [00:00, 24:00) in the organization's timezone.
func DailyCashReport(ctx context.Context, date DateString) (*DailyCashReportResponse, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	organization, err := GetOrganizationById(ctx, organizationId)
	if err != nil {
		return nil, err
	}
	day := date
	if err := day.StartOfDayUTCTime(organization.Timezone); err != nil {
		return nil, utils.ValidationError("invalid date")
	}
	dayStart := time.Time(day)
	dayEnd := dayStart.Add(24 * time.Hour)

	records, err := SalesInRange(ctx, nil, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	response := &DailyCashReportResponse{
		Date:       dayStart,
		CashTotal:  decimal.Zero,
		CardTotal:  decimal.Zero,
		OtherTotal: decimal.Zero,
		GrandTotal: decimal.Zero,
		Records:    records,
	}
	for _, r := range records {
		switch r.PaymentMethod {
		case PaymentMethodCash:
			response.CashTotal = response.CashTotal.Add(r.SalePrice)
		case PaymentMethodCard:
			response.CardTotal = response.CardTotal.Add(r.SalePrice)
		default:
			response.OtherTotal = response.OtherTotal.Add(r.SalePrice)
		}
		response.GrandTotal = response.GrandTotal.Add(r.SalePrice)
		response.RecordCount++
	}
	return response, nil
}

// DailyReconciliation is the persisted end-of-day drawer count. One row per
// (organization, day); saving the same day again replaces the counts and
// recomputes the derived fields.
type DailyReconciliation struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId string          `gorm:"size:64;not null;uniqueIndex:idx_recon_org_date,priority:1" json:"organization_id"`
	Date           time.Time       `gorm:"not null;uniqueIndex:idx_recon_org_date,priority:2" json:"date"`
	OpeningFloat   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"opening_float"`
	CashSales      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"cash_sales"`
	ExpectedCash   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"expected_cash"`
	ActualCash     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"actual_cash"`
	Variance       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"variance"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CountedBy      string          `gorm:"size:100" json:"counted_by"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDailyReconciliation struct {
	Date         DateString       `json:"date" binding:"required"`
	OpeningFloat *decimal.Decimal `json:"opening_float" binding:"required"`
	ActualCash   *decimal.Decimal `json:"actual_cash" binding:"required"`
	Notes        string           `json:"notes"`
	CountedBy    string           `json:"counted_by"`
}

// CashVariance returns (expected, variance) for a drawer count. Expected is
// the opening float plus the day's cash sales; variance is actual minus
// expected, negative when the drawer is short.
func CashVariance(openingFloat, cashSales, actualCash decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	expected := openingFloat.Add(cashSales)
	return expected, actualCash.Sub(expected)
}

// SaveDailyReconciliation records the drawer count for a day. The day's cash
// sales are re-read from the ledger so expected cash and variance always
// reflect the records as of this save, even on a re-save.
func SaveDailyReconciliation(ctx context.Context, input *NewDailyReconciliation) (*DailyReconciliation, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}
	if input.OpeningFloat == nil || input.OpeningFloat.IsNegative() {
		return nil, utils.ValidationError("opening float must be zero or positive")
	}
	if input.ActualCash == nil || input.ActualCash.IsNegative() {
		return nil, utils.ValidationError("actual cash must be zero or positive")
	}

	report, err := DailyCashReport(ctx, input.Date)
	if err != nil {
		return nil, err
	}

	expected, variance := CashVariance(*input.OpeningFloat, report.CashTotal, *input.ActualCash)
	reconciliation := DailyReconciliation{
		OrganizationId: organizationId,
		Date:           report.Date,
		OpeningFloat:   *input.OpeningFloat,
		CashSales:      report.CashTotal,
		ExpectedCash:   expected,
		ActualCash:     *input.ActualCash,
		Variance:       variance,
		Notes:          input.Notes,
		CountedBy:      input.CountedBy,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "organization_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"opening_float", "cash_sales", "expected_cash", "actual_cash",
			"variance", "notes", "counted_by", "updated_at",
		}),
	}).Create(&reconciliation).Error; err != nil {
		return nil, err
	}

	var saved DailyReconciliation
	if err := db.WithContext(ctx).
		Where("organization_id = ? AND date = ?", organizationId, report.Date).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func GetDailyReconciliation(ctx context.Context, date DateString) (*DailyReconciliation, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	organization, err := GetOrganizationById(ctx, organizationId)
	if err != nil {
		return nil, err
	}
	day := date
	if err := day.StartOfDayUTCTime(organization.Timezone); err != nil {
		return nil, utils.ValidationError("invalid date")
	}
	dayStart := time.Time(day)

	db := config.GetDB()
	var reconciliation DailyReconciliation
	if err := db.WithContext(ctx).
		Where("organization_id = ? AND date = ?", organizationId, dayStart).
		First(&reconciliation).Error; err != nil {
		return nil, utils.NotFoundError("daily reconciliation")
	}
	return &reconciliation, nil
}
