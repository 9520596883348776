package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Statement is a provider's period summary. Unique on (organization, provider,
// period), so generating the same period twice returns the existing row instead
// of a duplicate. Immutable once written except for the viewed timestamp;
// corrections go through RegenerateStatement.
type Statement struct {
	ID              int             `gorm:"primary_key" json:"id"`
	OrganizationId  string          `gorm:"size:64;not null;uniqueIndex:idx_stmt_identity,priority:1;uniqueIndex:idx_stmt_org_number,priority:1" json:"organization_id"`
	ProviderId      int             `gorm:"not null;uniqueIndex:idx_stmt_identity,priority:2" json:"provider_id"`
	PeriodStart     time.Time       `gorm:"not null;uniqueIndex:idx_stmt_identity,priority:3" json:"period_start"`
	PeriodEnd       time.Time       `gorm:"not null;uniqueIndex:idx_stmt_identity,priority:4" json:"period_end"`
	SequenceNo      int64           `gorm:"not null" json:"sequence_no"`
	StatementNumber string          `gorm:"size:64;not null;uniqueIndex:idx_stmt_org_number,priority:2" json:"statement_number"`
	OpeningBalance  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"opening_balance"`
	TotalSales      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_sales"`
	TotalEarnings   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_earnings"`
	TotalPayouts    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_payouts"`
	ClosingBalance  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"closing_balance"`
	RecordCount     int             `gorm:"not null" json:"record_count"`
	GeneratedAt     time.Time       `gorm:"not null" json:"generated_at"`
	ViewedAt        *time.Time      `json:"viewed_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// StatementNumberFor builds the statement number from the period start and an
// org sequence, e.g. STMT-202601-000042.
func StatementNumberFor(periodStart time.Time, seqNo int64) string {
	return fmt.Sprintf("STMT-%s-%06d", periodStart.Format("200601"), seqNo)
}

// GenerateStatement builds the provider's statement for [periodStart,
// periodEnd). Totals cover every sale record dated in the period regardless of
// settlement state; total payouts cover payouts created in the period; the
// opening balance carries forward the closing balance of the latest statement
// ending at or before periodStart (zero when there is none).
//
// Calling it again for the same (provider, period) returns the existing
// statement untouched.
func GenerateStatement(ctx context.Context, providerId int, periodStart time.Time, periodEnd time.Time) (*Statement, error) {
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

	db := config.GetDB()

	var existing Statement
	err = db.WithContext(ctx).
		Where("organization_id = ? AND provider_id = ? AND period_start = ? AND period_end = ?",
			organizationId, providerId, periodStart, periodEnd).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	release, err := utils.OrganizationLock(ctx, organizationId, fmt.Sprintf("statementRun:%d", providerId), "statement.go", "GenerateStatement")
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := SalesInRange(ctx, &providerId, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	totalSales := decimal.Zero
	totalEarnings := decimal.Zero
	for _, r := range records {
		totalSales = totalSales.Add(r.SalePrice)
		totalEarnings = totalEarnings.Add(r.ProviderAmount)
	}

	totalPayouts := decimal.Zero
	if err := db.WithContext(ctx).Model(&Payout{}).
		Where("organization_id = ? AND provider_id = ?", organizationId, providerId).
		Where("created_at >= ? AND created_at < ?", periodStart, periodEnd).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalPayouts).Error; err != nil {
		return nil, err
	}

	opening := decimal.Zero
	prior, err := LatestStatementBefore(ctx, providerId, periodStart)
	if err != nil && !utils.IsNotFound(err) {
		return nil, err
	}
	if prior != nil {
		opening = prior.ClosingBalance
	}

	seqNo, err := utils.GetSequence[Statement](ctx, organizationId)
	if err != nil {
		return nil, err
	}

	statement := Statement{
		OrganizationId:  organizationId,
		ProviderId:      providerId,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		SequenceNo:      seqNo,
		StatementNumber: StatementNumberFor(periodStart, seqNo),
		OpeningBalance:  opening,
		TotalSales:      totalSales,
		TotalEarnings:   totalEarnings,
		TotalPayouts:    totalPayouts,
		ClosingBalance:  opening.Add(totalEarnings).Sub(totalPayouts),
		RecordCount:     len(records),
		GeneratedAt:     time.Now().UTC(),
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&statement).Error; err != nil {
		tx.Rollback()
		if isDuplicateKeyErr(err) {
			// lost a race to a concurrent generation of the same period
			var winner Statement
			if ferr := db.WithContext(ctx).
				Where("organization_id = ? AND provider_id = ? AND period_start = ? AND period_end = ?",
					organizationId, providerId, periodStart, periodEnd).
				First(&winner).Error; ferr == nil {
				return &winner, nil
			}
			return nil, utils.InvalidStateError("statement number already taken, retry")
		}
		return nil, err
	}
	if err := QueueNotification(ctx, tx, organizationId, providerId, NotificationEventStatementGenerated, statement.ID, &statement); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &statement, nil
}

// LatestStatementBefore returns the provider's statement with the greatest
// period end not after the given boundary, or NotFound.
func LatestStatementBefore(ctx context.Context, providerId int, boundary time.Time) (*Statement, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	db := config.GetDB()
	var statement Statement
	err := db.WithContext(ctx).
		Where("organization_id = ? AND provider_id = ? AND period_end <= ?", organizationId, providerId, boundary).
		Order("period_end DESC").
		First(&statement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("prior statement")
		}
		return nil, err
	}
	return &statement, nil
}

// RegenerateStatement replaces a statement whose underlying records changed
// after generation (late-entered sales, returns). The old row is deleted and a
// fresh one computed in a single transaction; the replacement gets a new
// number. NotFound if the statement no longer exists for the provider.
func RegenerateStatement(ctx context.Context, statementId int, providerId int) (*Statement, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	db := config.GetDB()
	var old Statement
	if err := db.WithContext(ctx).
		Where("organization_id = ? AND id = ? AND provider_id = ?", organizationId, statementId, providerId).
		First(&old).Error; err != nil {
		return nil, utils.NotFoundError(fmt.Sprintf("statement %d", statementId))
	}

	release, err := utils.OrganizationLock(ctx, organizationId, fmt.Sprintf("statementRun:%d", providerId), "statement.go", "RegenerateStatement")
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := SalesInRange(ctx, &providerId, old.PeriodStart, old.PeriodEnd)
	if err != nil {
		return nil, err
	}
	totalSales := decimal.Zero
	totalEarnings := decimal.Zero
	for _, r := range records {
		totalSales = totalSales.Add(r.SalePrice)
		totalEarnings = totalEarnings.Add(r.ProviderAmount)
	}

	totalPayouts := decimal.Zero
	if err := db.WithContext(ctx).Model(&Payout{}).
		Where("organization_id = ? AND provider_id = ?", organizationId, providerId).
		Where("created_at >= ? AND created_at < ?", old.PeriodStart, old.PeriodEnd).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalPayouts).Error; err != nil {
		return nil, err
	}

	opening := decimal.Zero
	prior, err := LatestStatementBefore(ctx, providerId, old.PeriodStart)
	if err != nil && !utils.IsNotFound(err) {
		return nil, err
	}
	if prior != nil && prior.ID != old.ID {
		opening = prior.ClosingBalance
	}

	seqNo, err := utils.GetSequence[Statement](ctx, organizationId)
	if err != nil {
		return nil, err
	}

	replacement := Statement{
		OrganizationId:  organizationId,
		ProviderId:      providerId,
		PeriodStart:     old.PeriodStart,
		PeriodEnd:       old.PeriodEnd,
		SequenceNo:      seqNo,
		StatementNumber: StatementNumberFor(old.PeriodStart, seqNo),
		OpeningBalance:  opening,
		TotalSales:      totalSales,
		TotalEarnings:   totalEarnings,
		TotalPayouts:    totalPayouts,
		ClosingBalance:  opening.Add(totalEarnings).Sub(totalPayouts),
		RecordCount:     len(records),
		GeneratedAt:     time.Now().UTC(),
	}

	tx := db.Begin()
	result := tx.WithContext(ctx).
		Where("organization_id = ? AND id = ? AND provider_id = ?", organizationId, old.ID, providerId).
		Delete(&Statement{})
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// The row was read at the top of this function, so another request
		// replaced the statement between the read and this delete.
		tx.Rollback()
		return nil, utils.InvalidStateError("statement was regenerated by another request, retry")
	}
	if err := tx.WithContext(ctx).Create(&replacement).Error; err != nil {
		tx.Rollback()
		if isDuplicateKeyErr(err) {
			return nil, utils.InvalidStateError("statement number already taken, retry")
		}
		return nil, err
	}
	if err := QueueNotification(ctx, tx, organizationId, providerId, NotificationEventStatementGenerated, replacement.ID, &replacement); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &replacement, nil
}

// StatementBatchResult reports a monthly run; one provider failing never aborts
// the rest.
type StatementBatchResult struct {
	Generated []*Statement   `json:"generated"`
	Errors    map[int]string `json:"errors"`
}

// GenerateStatementsForMonth generates the calendar-month statement for every
// active provider.
func GenerateStatementsForMonth(ctx context.Context, year int, month time.Month) (*StatementBatchResult, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	periodStart, periodEnd := MonthPeriod(year, month)
	providerIds, err := ActiveProviderIds(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	result := &StatementBatchResult{
		Generated: make([]*Statement, 0, len(providerIds)),
		Errors:    make(map[int]string),
	}
	logger := config.GetLogger()
	for _, providerId := range providerIds {
		statement, err := GenerateStatement(ctx, providerId, periodStart, periodEnd)
		if err != nil {
			config.LogError(logger, "statement.go", "GenerateStatementsForMonth", "GenerateStatement", providerId, err)
			result.Errors[providerId] = err.Error()
			continue
		}
		result.Generated = append(result.Generated, statement)
	}
	return result, nil
}

// MarkStatementViewed stamps the first view time. Later calls leave the
// original timestamp alone.
func MarkStatementViewed(ctx context.Context, statementId int, providerId int) (*Statement, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	db := config.GetDB()
	var statement Statement
	if err := db.WithContext(ctx).
		Where("organization_id = ? AND id = ? AND provider_id = ?", organizationId, statementId, providerId).
		First(&statement).Error; err != nil {
		return nil, utils.NotFoundError(fmt.Sprintf("statement %d", statementId))
	}

	if statement.ViewedAt != nil {
		return &statement, nil
	}

	now := time.Now().UTC()
	if err := db.WithContext(ctx).Model(&statement).
		Where("viewed_at IS NULL").
		Update("viewed_at", now).Error; err != nil {
		return nil, err
	}
	statement.ViewedAt = &now
	return &statement, nil
}

func GetStatement(ctx context.Context, id int) (*Statement, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}
	return utils.FetchModel[Statement](ctx, organizationId, id)
}

func GetStatementAll(ctx context.Context, providerId *int) ([]*Statement, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("organization_id = ?", organizationId)
	if providerId != nil && *providerId != 0 {
		dbCtx = dbCtx.Where("provider_id = ?", *providerId)
	}
	var results []*Statement
	if err := dbCtx.Order("period_start DESC, provider_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
