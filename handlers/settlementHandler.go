package handlers

import (
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/gin-gonic/gin"
)

func CreateSaleRecord(c *gin.Context) {
	var input models.NewSaleRecord
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, utils.ValidationError(err.Error()))
		return
	}
	record, err := models.CreateSaleRecord(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "sale recorded", record)
}

func GetSaleRecord(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	record, err := models.GetSaleRecord(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", record)
}

func ListSaleRecords(c *gin.Context) {
	providerId, err := optionalQueryId(c, "provider_id")
	if err != nil {
		respondError(c, err)
		return
	}
	start, end, err := queryPeriod(c)
	if err != nil {
		respondError(c, err)
		return
	}
	records, err := models.SalesInRange(c.Request.Context(), providerId, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", records)
}

type generatePayoutRequest struct {
	ProviderId    int    `json:"provider_id" binding:"required"`
	PeriodStart   string `json:"period_start" binding:"required"`
	PeriodEnd     string `json:"period_end" binding:"required"`
	DisallowEmpty bool   `json:"disallow_empty"`
}

func GeneratePayout(c *gin.Context) {
	var req generatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.ValidationError(err.Error()))
		return
	}
	start, end, err := parsePeriod(c, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		respondError(c, err)
		return
	}
	payout, err := models.GeneratePayout(c.Request.Context(), req.ProviderId, start, end,
		&models.GeneratePayoutOptions{DisallowEmpty: req.DisallowEmpty})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "payout generated", payout)
}

type generateAllPayoutsRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

func GenerateAllPayouts(c *gin.Context) {
	var req generateAllPayoutsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.ValidationError(err.Error()))
		return
	}
	start, end, err := parsePeriod(c, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := models.GenerateAllPayouts(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "payout batch completed", result)
}

func MarkPayoutPaid(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input models.PayoutPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, utils.ValidationError(err.Error()))
		return
	}
	payout, err := models.MarkPayoutPaid(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "payout marked paid", payout)
}

func ExecutePayout(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	payout, err := models.ExecutePayout(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "payout executed", payout)
}

func GetPayout(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	payout, err := models.GetPayout(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", payout)
}

func ListPayouts(c *gin.Context) {
	providerId, err := optionalQueryId(c, "provider_id")
	if err != nil {
		respondError(c, err)
		return
	}
	status := models.PayoutStatus(c.Query("status"))
	payouts, err := models.GetPayoutAll(c.Request.Context(), providerId, utils.NilIfEmpty(status))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", payouts)
}

func PendingPayoutAmount(c *gin.Context) {
	providerId, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	amount, err := models.PendingPayoutAmount(c.Request.Context(), providerId)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"provider_id": providerId, "pending_amount": amount})
}

func PayoutSummary(c *gin.Context) {
	providerId, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	start, end, err := queryPeriod(c)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := models.ComputePayoutSummary(c.Request.Context(), providerId, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", summary)
}

type generateStatementRequest struct {
	ProviderId  int    `json:"provider_id" binding:"required"`
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

func GenerateStatement(c *gin.Context) {
	var req generateStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.ValidationError(err.Error()))
		return
	}
	start, end, err := parsePeriod(c, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		respondError(c, err)
		return
	}
	statement, err := models.GenerateStatement(c.Request.Context(), req.ProviderId, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "statement generated", statement)
}

type regenerateStatementRequest struct {
	ProviderId int `json:"provider_id" binding:"required"`
}

func RegenerateStatement(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req regenerateStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.ValidationError(err.Error()))
		return
	}
	statement, err := models.RegenerateStatement(c.Request.Context(), id, req.ProviderId)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "statement regenerated", statement)
}

type monthlyStatementsRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required"`
}

func GenerateStatementsForMonth(c *gin.Context) {
	var req monthlyStatementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.ValidationError(err.Error()))
		return
	}
	if req.Month < 1 || req.Month > 12 {
		respondError(c, utils.ValidationError("month must be between 1 and 12"))
		return
	}
	result, err := models.GenerateStatementsForMonth(c.Request.Context(), req.Year, time.Month(req.Month))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "statement batch completed", result)
}

func MarkStatementViewed(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	providerIdRaw := c.Query("provider_id")
	providerId, convErr := strconv.Atoi(providerIdRaw)
	if convErr != nil || providerId <= 0 {
		respondError(c, utils.ValidationError("provider_id must be a positive integer"))
		return
	}
	statement, err := models.MarkStatementViewed(c.Request.Context(), id, providerId)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "statement viewed", statement)
}

func GetStatement(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	statement, err := models.GetStatement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", statement)
}

func ListStatements(c *gin.Context) {
	providerId, err := optionalQueryId(c, "provider_id")
	if err != nil {
		respondError(c, err)
		return
	}
	statements, err := models.GetStatementAll(c.Request.Context(), providerId)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", statements)
}
