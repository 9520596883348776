package reports

import (
	"bytes"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/xuri/excelize/v2"
)

type ExcelExporter interface {
	GetCellValues() []interface{}
}

const ExportContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportReport renders report rows in the requested format. Only "xlsx" is
// implemented; any other format name is a labeled validation failure, not a
// crash.
func ExportReport(format string, headings []string, rows []ExcelExporter) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case "xlsx":
		b, err := buildWorkbook(headings, rows)
		return b, ExportContentTypeXLSX, err
	default:
		return nil, "", utils.ValidationError("Unsupported format")
	}
}

func buildWorkbook(headings []string, rows []ExcelExporter) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Sheet1"
	_, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}

	for colNo, h := range headings {
		cell, err := excelize.CoordinatesToCellName(colNo+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for rowNo, row := range rows {
		for colNo, value := range row.GetCellValues() {
			cell, err := excelize.CoordinatesToCellName(colNo+1, rowNo+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, fmt.Sprint(value)); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
