package handlers

import (
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/gin-gonic/gin"
)

func pathId(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, utils.ValidationError(name + " must be a positive integer")
	}
	return id, nil
}

func optionalQueryId(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return nil, utils.ValidationError(name + " must be a positive integer")
	}
	return &id, nil
}

// queryPeriod reads period_start/period_end (YYYY-MM-DD) and converts them to
// the half-open UTC range [start of start day, start of the day after end day)
// in the organization's timezone.
func queryPeriod(c *gin.Context) (time.Time, time.Time, error) {
	startRaw := c.Query("period_start")
	endRaw := c.Query("period_end")
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, utils.ValidationError("period_start and period_end are required")
	}
	return parsePeriod(c, startRaw, endRaw)
}

func parsePeriod(c *gin.Context, startRaw, endRaw string) (time.Time, time.Time, error) {
	organization, err := models.GetOrganization(c.Request.Context())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	startLocal, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, utils.ValidationError("period_start must be YYYY-MM-DD")
	}
	endLocal, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, utils.ValidationError("period_end must be YYYY-MM-DD")
	}

	start := models.DateString(startLocal)
	if err := start.StartOfDayUTCTime(organization.Timezone); err != nil {
		return time.Time{}, time.Time{}, utils.ValidationError("invalid period_start")
	}
	// exclusive end: start of the day after the end date
	end := models.DateString(endLocal.AddDate(0, 0, 1))
	if err := end.StartOfDayUTCTime(organization.Timezone); err != nil {
		return time.Time{}, time.Time{}, utils.ValidationError("invalid period_end")
	}
	return time.Time(start), time.Time(end), nil
}

func queryDateRange(c *gin.Context) (models.DateString, models.DateString, error) {
	fromRaw := c.Query("from_date")
	toRaw := c.Query("to_date")
	if fromRaw == "" || toRaw == "" {
		return models.DateString{}, models.DateString{}, utils.ValidationError("from_date and to_date are required")
	}
	from, err := time.Parse("2006-01-02", fromRaw)
	if err != nil {
		return models.DateString{}, models.DateString{}, utils.ValidationError("from_date must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", toRaw)
	if err != nil {
		return models.DateString{}, models.DateString{}, utils.ValidationError("to_date must be YYYY-MM-DD")
	}
	return models.DateString(from), models.DateString(to), nil
}
