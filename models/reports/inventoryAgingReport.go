package reports

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
)

type InventoryAgingRow struct {
	ItemId       int             `json:"ItemId"`
	ItemName     string          `json:"ItemName"`
	Category     string          `json:"Category"`
	ProviderId   int             `json:"ProviderId"`
	ProviderName *string         `json:"ProviderName,omitempty"`
	ListPrice    decimal.Decimal `json:"ListPrice"`
	ListedAt     time.Time       `json:"ListedAt"`
	AgeDays      int             `json:"AgeDays"`
}

type InventoryAgingResponse struct {
	AvailableCount int                  `json:"AvailableCount"`
	ThresholdDays  int                  `json:"ThresholdDays"`
	AgedItems      []*InventoryAgingRow `json:"AgedItems"`
}

// GetInventoryAgingReport lists available items listed longer ago than
// thresholdDays, oldest first.
func GetInventoryAgingReport(ctx context.Context, thresholdDays int) (*InventoryAgingResponse, error) {

	sqlT := `
SELECT
    items.id AS item_id,
    items.name AS item_name,
    items.category,
    items.provider_id,
    providers.name AS provider_name,
    items.list_price,
    items.listed_at,
    DATEDIFF(UTC_TIMESTAMP(), items.listed_at) AS age_days
FROM
    items
        LEFT JOIN
    providers ON providers.id = items.provider_id
WHERE
    items.organization_id = @organizationId
        AND items.status = 'Available'
        AND items.listed_at <= @cutoff
ORDER BY items.listed_at ASC;
`

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}
	if thresholdDays < 0 {
		return nil, utils.ValidationError("threshold days must be zero or positive")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -thresholdDays)

	var rows []*InventoryAgingRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sqlT, map[string]interface{}{
		"organizationId": organizationId,
		"cutoff":         cutoff,
	}).Scan(&rows).Error; err != nil {
		return nil, err
	}

	var availableCount int64
	if err := db.WithContext(ctx).Table("items").
		Where("organization_id = ? AND status = 'Available'", organizationId).
		Count(&availableCount).Error; err != nil {
		return nil, err
	}

	return &InventoryAgingResponse{
		AvailableCount: int(availableCount),
		ThresholdDays:  thresholdDays,
		AgedItems:      rows,
	}, nil
}

func (r InventoryAgingRow) GetCellValues() []interface{} {
	return []interface{}{
		r.ItemName,
		r.Category,
		utils.DereferencePtr(r.ProviderName, ""),
		r.ListPrice,
		r.ListedAt.Format("2006-01-02"),
		r.AgeDays,
	}
}
