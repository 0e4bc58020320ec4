// Package export renders fill sessions as spreadsheet reports.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"docfill/internal/domain"
)

// columns defines the field report header row.
var columns = []string{
	"Field ID",
	"Label",
	"Data Type",
	"Question",
	"Example",
	"Required",
	"Occurrences",
	"Status",
	"Submitted Value",
	"Accepted Value",
	"Proposed Value",
	"Rejection Reason",
	"Rejection Count",
}

const sheetName = "Fields"

// FieldReport renders one workbook summarizing a session's fields and
// their validation state.
func FieldReport(session *domain.FillSession, attempts []domain.ValidationAttempt) ([]byte, error) {
	byField := make(map[string]domain.ValidationAttempt, len(attempts))
	for _, a := range attempts {
		byField[a.FieldID] = a
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", sheetName)

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("export.FieldReport: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return nil, fmt.Errorf("export.FieldReport: %w", err)
		}
	}

	for row, field := range session.Fields {
		a := byField[field.FieldID]
		status := a.Status
		if status == "" {
			status = domain.StatusPending
		}
		values := []interface{}{
			field.FieldID,
			field.Label,
			string(field.DataType),
			field.Question,
			field.Example,
			field.Required,
			len(field.Occurrences),
			string(status),
			a.SubmittedValue,
			a.AcceptedValue,
			a.ProposedValue,
			a.RejectionReason,
			a.RejectionCount,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("export.FieldReport: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("export.FieldReport: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export.FieldReport: %w", err)
	}
	return buf.Bytes(), nil
}
