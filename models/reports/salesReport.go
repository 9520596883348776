package reports

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
)

type SalesReportLine struct {
	SaleRecordId   int             `json:"SaleRecordId"`
	ProviderId     int             `json:"ProviderId"`
	ProviderName   *string         `json:"ProviderName,omitempty"`
	ItemName       *string         `json:"ItemName,omitempty"`
	SalePrice      decimal.Decimal `json:"SalePrice"`
	ProviderAmount decimal.Decimal `json:"ProviderAmount"`
	ShopAmount     decimal.Decimal `json:"ShopAmount"`
	PaymentMethod  string          `json:"PaymentMethod"`
	SoldAt         time.Time       `json:"SoldAt"`
}

type SalesReportResponse struct {
	TotalSales       decimal.Decimal    `json:"TotalSales"`
	ShopRevenue      decimal.Decimal    `json:"ShopRevenue"`
	ProviderPayable  decimal.Decimal    `json:"ProviderPayable"`
	TransactionCount int                `json:"TransactionCount"`
	AverageSale      decimal.Decimal    `json:"AverageSale"`
	Details          []*SalesReportLine `json:"Details"`
}

func GetSalesReport(ctx context.Context, providerId *int, fromDate models.DateString, toDate models.DateString) (*SalesReportResponse, error) {

	sqlT := `
SELECT
    sr.id AS sale_record_id,
    sr.provider_id,
    providers.name AS provider_name,
    items.name AS item_name,
    sr.sale_price,
    sr.provider_amount,
    sr.shop_amount,
    sr.payment_method,
    sr.sold_at
FROM
    sale_records sr
        LEFT JOIN
    providers ON providers.id = sr.provider_id
        LEFT JOIN
    items ON items.id = sr.item_id
WHERE
    sr.organization_id = @organizationId
        AND sr.sold_at BETWEEN @fromDate AND @toDate
        {{- if .providerId }} AND sr.provider_id = @providerId {{- end }}
ORDER BY sr.sold_at;
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

	if providerId != nil && *providerId != 0 {
		if err := utils.ValidateResourceId[models.Provider](ctx, organizationId, *providerId); err != nil {
			return nil, utils.NotFoundError("provider")
		}
	}

	// generating sql from template
	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"providerId": utils.DereferencePtr(providerId),
	})
	if err != nil {
		return nil, err
	}

	var lines []*SalesReportLine
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"organizationId": organizationId,
		"fromDate":       fromDate,
		"toDate":         toDate,
		"providerId":     providerId,
	}).Scan(&lines).Error; err != nil {
		return nil, err
	}

	response := &SalesReportResponse{
		TotalSales:      decimal.Zero,
		ShopRevenue:     decimal.Zero,
		ProviderPayable: decimal.Zero,
		AverageSale:     decimal.Zero,
		Details:         lines,
	}
	for _, line := range lines {
		response.TotalSales = response.TotalSales.Add(line.SalePrice)
		response.ShopRevenue = response.ShopRevenue.Add(line.ShopAmount)
		response.ProviderPayable = response.ProviderPayable.Add(line.ProviderAmount)
		response.TransactionCount++
	}
	if response.TransactionCount > 0 {
		response.AverageSale = response.TotalSales.
			Div(decimal.NewFromInt(int64(response.TransactionCount))).RoundBank(2)
	}
	return response, nil
}

func (r SalesReportLine) GetCellValues() []interface{} {
	return []interface{}{
		utils.DereferencePtr(r.ProviderName, ""),
		utils.DereferencePtr(r.ItemName, ""),
		r.SalePrice,
		r.ProviderAmount,
		r.ShopAmount,
		r.PaymentMethod,
		r.SoldAt.Format("2006-01-02"),
	}
}
