package handlers

import (
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/gin-gonic/gin"
)

func queryDate(c *gin.Context) (models.DateString, error) {
	raw := c.Query("date")
	if raw == "" {
		return models.DateString{}, utils.ValidationError("date is required")
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return models.DateString{}, utils.ValidationError("date must be YYYY-MM-DD")
	}
	return models.DateString(d), nil
}

func DailyCashReport(c *gin.Context) {
	date, err := queryDate(c)
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := models.DailyCashReport(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", report)
}

func SaveDailyReconciliation(c *gin.Context) {
	var input models.NewDailyReconciliation
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, utils.ValidationError(err.Error()))
		return
	}
	reconciliation, err := models.SaveDailyReconciliation(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "reconciliation saved", reconciliation)
}

func GetDailyReconciliation(c *gin.Context) {
	date, err := queryDate(c)
	if err != nil {
		respondError(c, err)
		return
	}
	reconciliation, err := models.GetDailyReconciliation(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", reconciliation)
}
