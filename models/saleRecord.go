package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
)

// SaleRecord is one ledger entry. The provider/shop split is computed once at
// sale time and frozen on the row; every later aggregate (payout, statement,
// report) reads the frozen amounts and never recomputes them.
//
// Invariant: provider_amount + shop_amount == sale_price exactly, for every
// record, forever.
type SaleRecord struct {
	ID               int              `gorm:"primary_key" json:"id"`
	OrganizationId   string           `gorm:"index;size:64;not null" json:"organization_id"`
	ProviderId       int              `gorm:"index;not null" json:"provider_id"`
	ItemId           int              `gorm:"index;not null" json:"item_id"`
	SalePrice        decimal.Decimal  `gorm:"type:decimal(20,2);not null" json:"sale_price"`
	SplitPercentage  decimal.Decimal  `gorm:"type:decimal(5,2);not null" json:"split_percentage"`
	ProviderAmount   decimal.Decimal  `gorm:"type:decimal(20,2);not null" json:"provider_amount"`
	ShopAmount       decimal.Decimal  `gorm:"type:decimal(20,2);not null" json:"shop_amount"`
	PaymentMethod    PaymentMethod    `gorm:"size:20;index;not null" json:"payment_method"`
	SoldAt           time.Time        `gorm:"index;not null" json:"sold_at"`
	SettlementStatus SettlementStatus `gorm:"size:20;index;default:'Unsettled'" json:"settlement_status"`
	PayoutId         *int             `gorm:"index" json:"payout_id"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSaleRecord struct {
	ItemId        int              `json:"item_id" binding:"required"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	PaymentMethod PaymentMethod    `json:"payment_method" binding:"required"`
	SoldAt        *DateString      `json:"sold_at"`
}

// CreateSaleRecord records a sale: freezes the split via CalculateSplit and
// flips the item to Sold in the same transaction.
func CreateSaleRecord(ctx context.Context, input *NewSaleRecord) (*SaleRecord, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	item, err := utils.FetchModel[Item](ctx, organizationId, input.ItemId)
	if err != nil {
		return nil, utils.NotFoundError("item")
	}
	if item.Status != ItemStatusAvailable {
		return nil, utils.InvalidStateError("item is not available for sale")
	}

	salePrice := item.ListPrice
	if input.SalePrice != nil {
		salePrice = *input.SalePrice
	}
	if salePrice.IsNegative() {
		return nil, utils.ValidationError("sale price must not be negative")
	}

	soldAt := time.Now().UTC()
	if input.SoldAt != nil {
		soldAt = time.Time(*input.SoldAt)
	}

	providerAmount, shopAmount := utils.CalculateSplit(salePrice, item.SplitPercentage)

	record := SaleRecord{
		OrganizationId:   organizationId,
		ProviderId:       item.ProviderId,
		ItemId:           item.ID,
		SalePrice:        salePrice,
		SplitPercentage:  item.SplitPercentage,
		ProviderAmount:   providerAmount,
		ShopAmount:       shopAmount,
		PaymentMethod:    input.PaymentMethod,
		SoldAt:           soldAt,
		SettlementStatus: SettlementStatusUnsettled,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(&Item{}).
		Where("organization_id = ? AND id = ?", organizationId, item.ID).
		Updates(map[string]interface{}{"status": ItemStatusSold, "sold_at": soldAt}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func GetSaleRecord(ctx context.Context, id int) (*SaleRecord, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}
	return utils.FetchModel[SaleRecord](ctx, organizationId, id)
}

// SalesInRange lists sale records dated within [start, end), optionally
// filtered by provider. This is the ledger read every engine component
// aggregates over.
func SalesInRange(ctx context.Context, providerId *int, start time.Time, end time.Time) ([]*SaleRecord, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Where("organization_id = ?", organizationId).
		Where("sold_at >= ? AND sold_at < ?", start, end)
	if providerId != nil && *providerId != 0 {
		dbCtx = dbCtx.Where("provider_id = ?", *providerId)
	}
	var results []*SaleRecord
	if err := dbCtx.Order("sold_at").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
