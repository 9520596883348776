package reports

import (
	"context"
	"errors"
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
)

type WeeklyTrendBucket struct {
	WeekStart time.Time       `json:"WeekStart"`
	Sales     decimal.Decimal `json:"Sales"`
	SaleCount int             `json:"SaleCount"`
}

type CategoryTrendRow struct {
	Category  string          `json:"Category"`
	Sales     decimal.Decimal `json:"Sales"`
	SaleCount int             `json:"SaleCount"`
}

type TrendsReportResponse struct {
	TotalSales  decimal.Decimal      `json:"TotalSales"`
	SaleCount   int                  `json:"SaleCount"`
	AverageSale decimal.Decimal      `json:"AverageSale"`
	Weekly      []*WeeklyTrendBucket `json:"Weekly"`
	ByCategory  []*CategoryTrendRow  `json:"ByCategory"`
}

// WeekStartOf truncates to the Monday 00:00 UTC of the timestamp's ISO week.
func WeekStartOf(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

func GetTrendsReport(ctx context.Context, fromDate models.DateString, toDate models.DateString) (*TrendsReportResponse, error) {

	byCategorySQL := `
SELECT
    items.category,
    COALESCE(SUM(sr.sale_price), 0) AS sales,
    COUNT(sr.id) AS sale_count
FROM
    sale_records sr
        LEFT JOIN
    items ON items.id = sr.item_id
WHERE
    sr.organization_id = @organizationId
        AND sr.sold_at BETWEEN @fromDate AND @toDate
GROUP BY items.category
ORDER BY sales DESC;
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

	records, err := models.SalesInRange(ctx, nil, time.Time(fromDate), time.Time(toDate))
	if err != nil {
		return nil, err
	}

	response := &TrendsReportResponse{
		TotalSales:  decimal.Zero,
		AverageSale: decimal.Zero,
		Weekly:      make([]*WeeklyTrendBucket, 0),
	}
	buckets := make(map[time.Time]*WeeklyTrendBucket)
	for _, r := range records {
		response.TotalSales = response.TotalSales.Add(r.SalePrice)
		response.SaleCount++

		weekStart := WeekStartOf(r.SoldAt)
		bucket, ok := buckets[weekStart]
		if !ok {
			bucket = &WeeklyTrendBucket{WeekStart: weekStart, Sales: decimal.Zero}
			buckets[weekStart] = bucket
		}
		bucket.Sales = bucket.Sales.Add(r.SalePrice)
		bucket.SaleCount++
	}
	for _, bucket := range buckets {
		response.Weekly = append(response.Weekly, bucket)
	}
	sort.Slice(response.Weekly, func(i, j int) bool {
		return response.Weekly[i].WeekStart.Before(response.Weekly[j].WeekStart)
	})
	if response.SaleCount > 0 {
		response.AverageSale = response.TotalSales.
			Div(decimal.NewFromInt(int64(response.SaleCount))).RoundBank(2)
	}

	var byCategory []*CategoryTrendRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(byCategorySQL, map[string]interface{}{
		"organizationId": organizationId,
		"fromDate":       fromDate,
		"toDate":         toDate,
	}).Scan(&byCategory).Error; err != nil {
		return nil, err
	}
	response.ByCategory = byCategory

	return response, nil
}
