package reports

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
)

type ProviderPerformanceRow struct {
	ProviderId    int             `json:"ProviderId"`
	ProviderName  *string         `json:"ProviderName,omitempty"`
	TotalSales    decimal.Decimal `json:"TotalSales"`
	TotalEarnings decimal.Decimal `json:"TotalEarnings"`
	SaleCount     int             `json:"SaleCount"`
}

type ProviderPerformanceResponse struct {
	Providers          []*ProviderPerformanceRow `json:"Providers"`
	TotalSales         decimal.Decimal           `json:"TotalSales"`
	ProviderCount      int                       `json:"ProviderCount"`
	AveragePerProvider decimal.Decimal           `json:"AveragePerProvider"`
	TopProviderId      int                       `json:"TopProviderId"`
	TopProviderName    *string                   `json:"TopProviderName,omitempty"`
	TopProviderSales   decimal.Decimal           `json:"TopProviderSales"`
}

// GetProviderPerformanceReport ranks providers by sales in the range.
// minSaleCount excludes low-activity providers from the ranked list only;
// the top-line totals still count every provider's sales.
func GetProviderPerformanceReport(ctx context.Context, minSaleCount *int, fromDate models.DateString, toDate models.DateString) (*ProviderPerformanceResponse, error) {

	sqlT := `
SELECT
    sr.provider_id,
    providers.name AS provider_name,
    SUM(sr.sale_price) AS total_sales,
    SUM(sr.provider_amount) AS total_earnings,
    COUNT(sr.id) AS sale_count
FROM
    sale_records sr
        LEFT JOIN
    providers ON providers.id = sr.provider_id
WHERE
    sr.organization_id = @organizationId
        AND sr.sold_at BETWEEN @fromDate AND @toDate
GROUP BY sr.provider_id, providers.name
ORDER BY total_sales DESC;
`

	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}
	organization, err := models.GetOrganization(ctx)
	if err != nil {
		return nil, errors.New("organization id is required")
	}
	if err := fromDate.StartOfDayUTCTime(organization.Timezone); err != nil {
		return nil, err
	}
	if err := toDate.EndOfDayUTCTime(organization.Timezone); err != nil {
		return nil, err
	}

	var rows []*ProviderPerformanceRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sqlT, map[string]interface{}{
		"organizationId": organizationId,
		"fromDate":       fromDate,
		"toDate":         toDate,
	}).Scan(&rows).Error; err != nil {
		return nil, err
	}

	response := &ProviderPerformanceResponse{
		Providers:          make([]*ProviderPerformanceRow, 0, len(rows)),
		TotalSales:         decimal.Zero,
		AveragePerProvider: decimal.Zero,
		TopProviderSales:   decimal.Zero,
	}
	threshold := utils.DereferencePtr(minSaleCount)
	for _, row := range rows {
		response.TotalSales = response.TotalSales.Add(row.TotalSales)
		response.ProviderCount++
		if row.TotalSales.GreaterThan(response.TopProviderSales) {
			response.TopProviderId = row.ProviderId
			response.TopProviderName = row.ProviderName
			response.TopProviderSales = row.TotalSales
		}
		if threshold > 0 && row.SaleCount < threshold {
			continue
		}
		response.Providers = append(response.Providers, row)
	}
	if response.ProviderCount > 0 {
		response.AveragePerProvider = response.TotalSales.
			Div(decimal.NewFromInt(int64(response.ProviderCount))).RoundBank(2)
	}
	return response, nil
}

func (r ProviderPerformanceRow) GetCellValues() []interface{} {
	return []interface{}{
		utils.DereferencePtr(r.ProviderName, ""),
		r.SaleCount,
		r.TotalSales,
		r.TotalEarnings,
	}
}
