package reports

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
)

type PayoutSummaryReportResponse struct {
	TotalPaid            decimal.Decimal `json:"TotalPaid"`
	TotalPending         decimal.Decimal `json:"TotalPending"`
	ProvidersWithPending int             `json:"ProvidersWithPending"`
	PayoutCount          int             `json:"PayoutCount"`
	AveragePayout        decimal.Decimal `json:"AveragePayout"`
}

// GetPayoutSummaryReport sums disbursements in the range plus the current
// unsettled backlog. TotalPending is not range-bound; it is the live sum of
// Unsettled provider amounts across the organization.
func GetPayoutSummaryReport(ctx context.Context, fromDate models.DateString, toDate models.DateString) (*PayoutSummaryReportResponse, error) {

	paidSQL := `
SELECT
    COALESCE(SUM(total_amount), 0) AS total_paid,
    COUNT(id) AS payout_count
FROM
    payouts
WHERE
    organization_id = @organizationId
        AND status = 'Paid'
        AND paid_at BETWEEN @fromDate AND @toDate;
`

	pendingSQL := `
SELECT
    COALESCE(SUM(provider_amount), 0) AS total_pending,
    COUNT(DISTINCT provider_id) AS providers_with_pending
FROM
    sale_records
WHERE
    organization_id = @organizationId
        AND settlement_status = 'Unsettled';
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

	db := config.GetDB()

	var paid struct {
		TotalPaid   decimal.Decimal
		PayoutCount int
	}
	if err := db.WithContext(ctx).Raw(paidSQL, map[string]interface{}{
		"organizationId": organizationId,
		"fromDate":       fromDate,
		"toDate":         toDate,
	}).Scan(&paid).Error; err != nil {
		return nil, err
	}

	var pending struct {
		TotalPending         decimal.Decimal
		ProvidersWithPending int
	}
	if err := db.WithContext(ctx).Raw(pendingSQL, map[string]interface{}{
		"organizationId": organizationId,
	}).Scan(&pending).Error; err != nil {
		return nil, err
	}

	response := &PayoutSummaryReportResponse{
		TotalPaid:            paid.TotalPaid,
		TotalPending:         pending.TotalPending,
		ProvidersWithPending: pending.ProvidersWithPending,
		PayoutCount:          paid.PayoutCount,
		AveragePayout:        decimal.Zero,
	}
	if paid.PayoutCount > 0 {
		response.AveragePayout = paid.TotalPaid.
			Div(decimal.NewFromInt(int64(paid.PayoutCount))).RoundBank(2)
	}
	return response, nil
}
