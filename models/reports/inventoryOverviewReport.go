package reports

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
)

type InventoryBreakdownRow struct {
	Label          string          `json:"Label"`
	ItemCount      int             `json:"ItemCount"`
	AvailableCount int             `json:"AvailableCount"`
	AvailableValue decimal.Decimal `json:"AvailableValue"`
}

type InventoryOverviewResponse struct {
	TotalCount     int                      `json:"TotalCount"`
	AvailableCount int                      `json:"AvailableCount"`
	SoldCount      int                      `json:"SoldCount"`
	ReturnedCount  int                      `json:"ReturnedCount"`
	AvailableValue decimal.Decimal          `json:"AvailableValue"`
	ByCategory     []*InventoryBreakdownRow `json:"ByCategory"`
	ByProvider     []*InventoryBreakdownRow `json:"ByProvider"`
}

func GetInventoryOverviewReport(ctx context.Context) (*InventoryOverviewResponse, error) {

	countsSQL := `
SELECT
    COUNT(id) AS total_count,
    SUM(CASE WHEN status = 'Available' THEN 1 ELSE 0 END) AS available_count,
    SUM(CASE WHEN status = 'Sold' THEN 1 ELSE 0 END) AS sold_count,
    SUM(CASE WHEN status = 'Returned' THEN 1 ELSE 0 END) AS returned_count,
    COALESCE(SUM(CASE WHEN status = 'Available' THEN list_price ELSE 0 END), 0) AS available_value
FROM
    items
WHERE
    organization_id = @organizationId;
`

	byCategorySQL := `
SELECT
    category AS label,
    COUNT(id) AS item_count,
    SUM(CASE WHEN status = 'Available' THEN 1 ELSE 0 END) AS available_count,
    COALESCE(SUM(CASE WHEN status = 'Available' THEN list_price ELSE 0 END), 0) AS available_value
FROM
    items
WHERE
    organization_id = @organizationId
GROUP BY category
ORDER BY available_value DESC;
`

	byProviderSQL := `
SELECT
    providers.name AS label,
    COUNT(items.id) AS item_count,
    SUM(CASE WHEN items.status = 'Available' THEN 1 ELSE 0 END) AS available_count,
    COALESCE(SUM(CASE WHEN items.status = 'Available' THEN items.list_price ELSE 0 END), 0) AS available_value
FROM
    items
        LEFT JOIN
    providers ON providers.id = items.provider_id
WHERE
    items.organization_id = @organizationId
GROUP BY providers.name
ORDER BY available_value DESC;
`

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	db := config.GetDB()
	params := map[string]interface{}{"organizationId": organizationId}

	var counts struct {
		TotalCount     int
		AvailableCount int
		SoldCount      int
		ReturnedCount  int
		AvailableValue decimal.Decimal
	}
	if err := db.WithContext(ctx).Raw(countsSQL, params).Scan(&counts).Error; err != nil {
		return nil, err
	}

	var byCategory []*InventoryBreakdownRow
	if err := db.WithContext(ctx).Raw(byCategorySQL, params).Scan(&byCategory).Error; err != nil {
		return nil, err
	}
	var byProvider []*InventoryBreakdownRow
	if err := db.WithContext(ctx).Raw(byProviderSQL, params).Scan(&byProvider).Error; err != nil {
		return nil, err
	}

	return &InventoryOverviewResponse{
		TotalCount:     counts.TotalCount,
		AvailableCount: counts.AvailableCount,
		SoldCount:      counts.SoldCount,
		ReturnedCount:  counts.ReturnedCount,
		AvailableValue: counts.AvailableValue,
		ByCategory:     byCategory,
		ByProvider:     byProvider,
	}, nil
}

func (r InventoryBreakdownRow) GetCellValues() []interface{} {
	return []interface{}{
		r.Label,
		r.ItemCount,
		r.AvailableCount,
		r.AvailableValue,
	}
}
