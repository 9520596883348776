package reports_test

import (
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/consign_backend/models/reports"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
)

type exportRow []interface{}

func (r exportRow) GetCellValues() []interface{} { return r }

func TestExportReportXLSX(t *testing.T) {
	rows := []reports.ExcelExporter{
		exportRow{"Lamp", "100.00"},
		exportRow{"Chair", "45.50"},
	}
	b, contentType, err := reports.ExportReport("xlsx", []string{"Item", "Price"}, rows)
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if contentType != reports.ExportContentTypeXLSX {
		t.Errorf("content type = %q, want %q", contentType, reports.ExportContentTypeXLSX)
	}
	if len(b) == 0 {
		t.Error("workbook bytes are empty")
	}
	// Uppercase format is accepted too.
	if _, _, err := reports.ExportReport("XLSX", []string{"Item"}, nil); err != nil {
		t.Errorf("uppercase format rejected: %v", err)
	}
}

func TestExportReportUnsupportedFormat(t *testing.T) {
	for _, format := range []string{"pdf", "csv", ""} {
		_, _, err := reports.ExportReport(format, []string{"Item"}, nil)
		if !utils.IsValidation(err) {
			t.Errorf("format %q: error = %v, want validation", format, err)
			continue
		}
		if !strings.Contains(err.Error(), "Unsupported format") {
			t.Errorf("format %q: message = %q, want to mention Unsupported format", format, err)
		}
	}
}
