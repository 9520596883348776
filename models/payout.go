package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// ErrEmptyPayout is returned when DisallowEmpty is set and the period holds no
// unsettled records for the provider.
var ErrEmptyPayout = fmt.Errorf("no unsettled sale records in period: %w", utils.ErrorValidation)

// Payout is one batch disbursement to a provider. Its total is frozen at
// generation time as the sum of the claimed records' provider amounts; the
// records are flipped to Included and stamped with the payout id inside the
// same transaction, so a payout row and its links can never exist half-made.
type Payout struct {
	ID               int             `gorm:"primary_key" json:"id"`
	OrganizationId   string          `gorm:"size:64;not null;uniqueIndex:idx_payout_org_number,priority:1" json:"organization_id"`
	ProviderId       int             `gorm:"index;not null" json:"provider_id"`
	PeriodStart      time.Time       `gorm:"not null" json:"period_start"`
	PeriodEnd        time.Time       `gorm:"not null" json:"period_end"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_amount"`
	RecordCount      int             `gorm:"not null" json:"record_count"`
	SequenceNo       int64           `gorm:"not null" json:"sequence_no"`
	PayoutNumber     string          `gorm:"size:64;not null;uniqueIndex:idx_payout_org_number,priority:2" json:"payout_number"`
	PaymentMethod    *PaymentMethod  `gorm:"size:20" json:"payment_method"`
	PaymentReference string          `gorm:"size:255" json:"payment_reference"`
	Notes            string          `gorm:"type:text" json:"notes"`
	Status           PayoutStatus    `gorm:"size:20;index;default:'Pending'" json:"status"`
	PaidAt           *time.Time      `json:"paid_at"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type GeneratePayoutOptions struct {
	// DisallowEmpty rejects the run (ErrEmptyPayout) instead of creating a
	// zero-amount payout when nothing is claimable.
	DisallowEmpty bool
}

// GeneratePayout claims every Unsettled sale record for the provider dated in
// [periodStart, periodEnd) into a new payout.
//
// The select-sum-create-mark sequence runs as one DB transaction with the
// candidate rows locked FOR UPDATE, so a concurrent run for an overlapping
// period either waits and then finds nothing left to claim, or claims a
// disjoint set. A redis lock per (organization, provider) additionally keeps
// whole runs from interleaving across instances.
func GeneratePayout(ctx context.Context, providerId int, periodStart time.Time, periodEnd time.Time, opts *GeneratePayoutOptions) (*Payout, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}
	if !periodEnd.After(periodStart) {
		return nil, utils.ValidationError("period end must be after period start")
	}

	exists, err := ProviderExists(ctx, organizationId, providerId)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NotFoundError(fmt.Sprintf("provider %d", providerId))
	}

	release, err := utils.OrganizationLock(ctx, organizationId, fmt.Sprintf("payoutRun:%d", providerId), "payout.go", "GeneratePayout")
	if err != nil {
		return nil, err
	}
	defer release()

	seqNo, err := utils.GetSequence[Payout](ctx, organizationId)
	if err != nil {
		return nil, err
	}

	payout := Payout{
		OrganizationId: organizationId,
		ProviderId:     providerId,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		SequenceNo:     seqNo,
		PayoutNumber:   fmt.Sprintf("PAY-%06d", seqNo),
		Status:         PayoutStatusPending,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := acquireSettlementLock(tx, organizationId, providerId); err != nil {
		tx.Rollback()
		return nil, err
	}
	defer releaseSettlementLock(tx, organizationId, providerId)

	var records []*SaleRecord
	if err := tx.WithContext(ctx).
		Where("organization_id = ? AND provider_id = ?", organizationId, providerId).
		Where("settlement_status = ?", SettlementStatusUnsettled).
		Where("sold_at >= ? AND sold_at < ?", periodStart, periodEnd).
		Order("id").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&records).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if len(records) == 0 && opts != nil && opts.DisallowEmpty {
		tx.Rollback()
		return nil, ErrEmptyPayout
	}

	total := decimal.Zero
	recordIds := make([]int, 0, len(records))
	for _, r := range records {
		total = total.Add(r.ProviderAmount)
		recordIds = append(recordIds, r.ID)
	}
	payout.TotalAmount = total
	payout.RecordCount = len(records)

	if err := tx.WithContext(ctx).Create(&payout).Error; err != nil {
		tx.Rollback()
		if isDuplicateKeyErr(err) {
			return nil, utils.InvalidStateError("payout number already taken, retry")
		}
		return nil, err
	}

	if len(recordIds) > 0 {
		if err := tx.WithContext(ctx).Model(&SaleRecord{}).
			Where("organization_id = ? AND id IN ?", organizationId, recordIds).
			Updates(map[string]interface{}{
				"settlement_status": SettlementStatusIncluded,
				"payout_id":         payout.ID,
			}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := QueueNotification(ctx, tx, organizationId, providerId, NotificationEventPayoutGenerated, payout.ID, &payout); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

// PayoutBatchResult reports a batch run; one provider failing never aborts the
// rest.
type PayoutBatchResult struct {
	Generated []*Payout      `json:"generated"`
	Skipped   []int          `json:"skipped"`
	Errors    map[int]string `json:"errors"`
}

// GenerateAllPayouts runs GeneratePayout for every active provider. Providers
// with nothing to claim are skipped rather than given zero-amount payouts.
func GenerateAllPayouts(ctx context.Context, periodStart time.Time, periodEnd time.Time) (*PayoutBatchResult, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	providerIds, err := ActiveProviderIds(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	result := &PayoutBatchResult{
		Generated: make([]*Payout, 0, len(providerIds)),
		Skipped:   make([]int, 0),
		Errors:    make(map[int]string),
	}
	logger := config.GetLogger()
	for _, providerId := range providerIds {
		payout, err := GeneratePayout(ctx, providerId, periodStart, periodEnd, &GeneratePayoutOptions{DisallowEmpty: true})
		if err != nil {
			if err == ErrEmptyPayout {
				result.Skipped = append(result.Skipped, providerId)
				continue
			}
			config.LogError(logger, "payout.go", "GenerateAllPayouts", "GeneratePayout", providerId, err)
			result.Errors[providerId] = err.Error()
			continue
		}
		result.Generated = append(result.Generated, payout)
	}
	return result, nil
}

type PayoutPaymentInput struct {
	PaymentMethod    PaymentMethod `json:"payment_method" binding:"required"`
	PaymentReference string        `json:"payment_reference"`
	Notes            string        `json:"notes"`
}

// MarkPayoutPaid transitions Pending -> Paid and settles the linked records.
// Re-applying with identical method and reference is a no-op; different terms
// on an already-paid payout are rejected.
func MarkPayoutPaid(ctx context.Context, payoutId int, input *PayoutPaymentInput) (*Payout, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	payout, err := utils.FetchModel[Payout](ctx, organizationId, payoutId)
	if err != nil {
		return nil, utils.NotFoundError(fmt.Sprintf("payout %d", payoutId))
	}

	if payout.Status == PayoutStatusPaid {
		if payout.PaymentMethod != nil && *payout.PaymentMethod == input.PaymentMethod &&
			payout.PaymentReference == input.PaymentReference {
			return payout, nil
		}
		return nil, utils.InvalidStateError("payout has already been paid with different terms")
	}

	now := time.Now().UTC()
	db := config.GetDB()
	tx := db.Begin()
	result := tx.WithContext(ctx).Model(&Payout{}).
		Where("organization_id = ? AND id = ? AND status = ?", organizationId, payout.ID, PayoutStatusPending).
		Updates(map[string]interface{}{
			"status":            PayoutStatusPaid,
			"payment_method":    input.PaymentMethod,
			"payment_reference": input.PaymentReference,
			"notes":             input.Notes,
			"paid_at":           now,
		})
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// A concurrent call paid the payout between the read above and this
		// update. Re-read and apply the same matching rule as the fast path.
		tx.Rollback()
		current, err := utils.FetchModel[Payout](ctx, organizationId, payoutId)
		if err != nil {
			return nil, utils.NotFoundError(fmt.Sprintf("payout %d", payoutId))
		}
		if current.Status == PayoutStatusPaid && current.PaymentMethod != nil &&
			*current.PaymentMethod == input.PaymentMethod &&
			current.PaymentReference == input.PaymentReference {
			return current, nil
		}
		return nil, utils.InvalidStateError("payout has already been paid with different terms")
	}
	if err := tx.WithContext(ctx).Model(&SaleRecord{}).
		Where("organization_id = ? AND payout_id = ?", organizationId, payout.ID).
		Update("settlement_status", SettlementStatusSettled).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := QueueNotification(ctx, tx, organizationId, payout.ProviderId, NotificationEventPayoutPaid, payout.ID, payout); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	payout.Status = PayoutStatusPaid
	payout.PaymentMethod = &input.PaymentMethod
	payout.PaymentReference = input.PaymentReference
	payout.Notes = input.Notes
	payout.PaidAt = &now
	return payout, nil
}

// ExecutePayout pushes the payout through a payment gateway. No gateway is
// configured in this deployment; MarkPayoutPaid after an out-of-band transfer
// is the supported path. State checks still run so callers get the precise
// failure instead of a blanket 501.
func ExecutePayout(ctx context.Context, payoutId int) (*Payout, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	payout, err := utils.FetchModel[Payout](ctx, organizationId, payoutId)
	if err != nil {
		return nil, utils.NotFoundError(fmt.Sprintf("payout %d", payoutId))
	}
	if payout.Status == PayoutStatusPaid {
		return nil, utils.InvalidStateError("payout has already been paid")
	}
	return nil, utils.UnsupportedError("automated payout processing is not configured")
}

func GetPayout(ctx context.Context, id int) (*Payout, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}
	return utils.FetchModel[Payout](ctx, organizationId, id)
}

func GetPayoutAll(ctx context.Context, providerId *int, status *PayoutStatus) ([]*Payout, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("organization_id = ?", organizationId)
	if providerId != nil && *providerId != 0 {
		dbCtx = dbCtx.Where("provider_id = ?", *providerId)
	}
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var results []*Payout
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// PendingPayoutAmount sums the provider amounts of a provider's Unsettled
// records, for display before a payout is generated.
func PendingPayoutAmount(ctx context.Context, providerId int) (decimal.Decimal, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return decimal.Zero, utils.ValidationError("organization id is required")
	}

	exists, err := ProviderExists(ctx, organizationId, providerId)
	if err != nil {
		return decimal.Zero, err
	}
	if !exists {
		return decimal.Zero, utils.NotFoundError(fmt.Sprintf("provider %d", providerId))
	}

	db := config.GetDB()
	total := decimal.Zero
	if err := db.WithContext(ctx).Model(&SaleRecord{}).
		Where("organization_id = ? AND provider_id = ? AND settlement_status = ?",
			organizationId, providerId, SettlementStatusUnsettled).
		Select("COALESCE(SUM(provider_amount), 0)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// PayoutSummary is a read-only preview of a provider's activity in a period.
type PayoutSummary struct {
	ProviderId            int             `json:"provider_id"`
	PeriodStart           time.Time       `json:"period_start"`
	PeriodEnd             time.Time       `json:"period_end"`
	TotalSales            decimal.Decimal `json:"total_sales"`
	TotalProviderEarnings decimal.Decimal `json:"total_provider_earnings"`
	TotalShopRevenue      decimal.Decimal `json:"total_shop_revenue"`
	RecordCount           int             `json:"record_count"`
}

// ComputePayoutSummary sums the frozen splits over all of the provider's sale
// records in [periodStart, periodEnd), regardless of settlement state. A known
// provider with no activity yields a zero-valued summary, not an error.
func ComputePayoutSummary(ctx context.Context, providerId int, periodStart time.Time, periodEnd time.Time) (*PayoutSummary, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	exists, err := ProviderExists(ctx, organizationId, providerId)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NotFoundError(fmt.Sprintf("provider %d", providerId))
	}

	records, err := SalesInRange(ctx, &providerId, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	summary := &PayoutSummary{
		ProviderId:            providerId,
		PeriodStart:           periodStart,
		PeriodEnd:             periodEnd,
		TotalSales:            decimal.Zero,
		TotalProviderEarnings: decimal.Zero,
		TotalShopRevenue:      decimal.Zero,
	}
	for _, r := range records {
		summary.TotalSales = summary.TotalSales.Add(r.SalePrice)
		summary.TotalProviderEarnings = summary.TotalProviderEarnings.Add(r.ProviderAmount)
		summary.TotalShopRevenue = summary.TotalShopRevenue.Add(r.ShopAmount)
		summary.RecordCount++
	}
	return summary, nil
}
