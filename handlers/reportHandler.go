package handlers

import (
	"fmt"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/models/reports"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/gin-gonic/gin"
)

func SalesReport(c *gin.Context) {
	providerId, err := optionalQueryId(c, "provider_id")
	if err != nil {
		respondError(c, err)
		return
	}
	from, to, err := queryDateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := reports.GetSalesReport(c.Request.Context(), providerId, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	if format := c.Query("format"); format != "" {
		rows := make([]reports.ExcelExporter, 0, len(report.Details))
		for _, line := range report.Details {
			rows = append(rows, line)
		}
		exportRows(c, format, "sales-report",
			[]string{"Provider", "Item", "Sale Price", "Provider Amount", "Shop Amount", "Payment Method", "Sold At"}, rows)
		return
	}
	respondOK(c, "", report)
}

func ProviderPerformanceReport(c *gin.Context) {
	minSaleCount, err := optionalQueryId(c, "min_sale_count")
	if err != nil {
		respondError(c, err)
		return
	}
	from, to, err := queryDateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := reports.GetProviderPerformanceReport(c.Request.Context(), minSaleCount, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	if format := c.Query("format"); format != "" {
		rows := make([]reports.ExcelExporter, 0, len(report.Providers))
		for _, row := range report.Providers {
			rows = append(rows, row)
		}
		exportRows(c, format, "provider-performance",
			[]string{"Provider", "Sale Count", "Total Sales", "Total Earnings"}, rows)
		return
	}
	respondOK(c, "", report)
}

func InventoryAgingReport(c *gin.Context) {
	thresholdDays := 30
	if raw := c.Query("threshold_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, utils.ValidationError("threshold_days must be an integer"))
			return
		}
		thresholdDays = n
	}
	report, err := reports.GetInventoryAgingReport(c.Request.Context(), thresholdDays)
	if err != nil {
		respondError(c, err)
		return
	}

	if format := c.Query("format"); format != "" {
		rows := make([]reports.ExcelExporter, 0, len(report.AgedItems))
		for _, row := range report.AgedItems {
			rows = append(rows, row)
		}
		exportRows(c, format, "inventory-aging",
			[]string{"Item", "Category", "Provider", "List Price", "Listed At", "Age Days"}, rows)
		return
	}
	respondOK(c, "", report)
}

func PayoutSummaryReport(c *gin.Context) {
	from, to, err := queryDateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := reports.GetPayoutSummaryReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", report)
}

func TrendsReport(c *gin.Context) {
	from, to, err := queryDateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := reports.GetTrendsReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", report)
}

func InventoryOverviewReport(c *gin.Context) {
	report, err := reports.GetInventoryOverviewReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if format := c.Query("format"); format != "" {
		rows := make([]reports.ExcelExporter, 0, len(report.ByCategory))
		for _, row := range report.ByCategory {
			rows = append(rows, row)
		}
		exportRows(c, format, "inventory-overview",
			[]string{"Category", "Item Count", "Available Count", "Available Value"}, rows)
		return
	}
	respondOK(c, "", report)
}

func exportRows(c *gin.Context, format string, name string, headings []string, rows []reports.ExcelExporter) {
	body, contentType, err := reports.ExportReport(format, headings, rows)
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("%s-%s.%s", name, time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(200, contentType, body)
}
