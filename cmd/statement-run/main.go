package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
)

// One-shot monthly statement batch. The schedule lives outside (Cloud Scheduler
// or cron); this binary only runs one month for one organization and exits.
//
// Usage:
//
//	statement-run -org ORG_ID [-year 2026 -month 7]
//
// Without -year/-month it runs the previous calendar month.
func main() {
	var (
		orgId = flag.String("org", "", "organization id (required)")
		year  = flag.Int("year", 0, "statement year")
		month = flag.Int("month", 0, "statement month (1-12)")
	)
	flag.Parse()

	logger := config.GetLogger()
	if *orgId == "" {
		logger.Error("organization id is required (-org)")
		os.Exit(2)
	}
	if (*year == 0) != (*month == 0) {
		logger.Error("-year and -month must be given together")
		os.Exit(2)
	}
	if *month < 0 || *month > 12 {
		logger.Error("-month must be between 1 and 12")
		os.Exit(2)
	}

	y, m := *year, time.Month(*month)
	if *year == 0 {
		y, m = previousMonth(time.Now().UTC())
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	ctx := utils.SetOrganizationIdInContext(context.Background(), *orgId)
	ctx = utils.SetUsernameInContext(ctx, "System")

	result, err := models.GenerateStatementsForMonth(ctx, y, m)
	if err != nil {
		config.LogError(logger, "main.go", "main", "GenerateStatementsForMonth", map[string]interface{}{
			"organization_id": *orgId, "year": y, "month": int(m),
		}, err)
		os.Exit(1)
	}

	logger.WithFields(logrus.Fields{
		"organization_id": *orgId,
		"year":            y,
		"month":           int(m),
		"generated":       len(result.Generated),
		"failed":          len(result.Errors),
	}).Info("statement batch completed")

	for providerId, msg := range result.Errors {
		logger.WithFields(logrus.Fields{
			"organization_id": *orgId,
			"provider_id":     providerId,
		}).Error("statement generation failed: " + msg)
	}
}

// previousMonth anchors at the first of the current month before shifting.
// AddDate on the raw date normalizes month-end overflow (Mar 31 minus one
// month lands on Mar 3), which would run the batch for the wrong period.
func previousMonth(now time.Time) (int, time.Month) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return prev.Year(), prev.Month()
}
