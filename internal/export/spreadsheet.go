package export

import (
	"fmt"

	"github.com/ai4biz/portal/internal/core"
	"github.com/xuri/excelize/v2"
)

const spreadsheetSheet = "AI4Biz Registrations"

var spreadsheetHeaders = []string{
	"Student ID", "Full Name", "Email", "Phone", "Board", "Class Completed",
	"Demo Status", "Enrollment Status", "Payment Status", "Registration Date",
}

var spreadsheetWidths = []float64{14, 28, 32, 14, 15, 18, 16, 18, 18, 26}

// Spreadsheet renders records as a single-sheet xlsx workbook, one row per
// record in input order.
func (r *Renderer) Spreadsheet(records []core.Registration) ([]byte, error) {
	data, err := r.spreadsheet(records)
	if err != nil {
		return nil, &RenderError{Format: "xlsx", Err: err}
	}
	return data, nil
}

func (r *Renderer) spreadsheet(records []core.Registration) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), spreadsheetSheet); err != nil {
		return nil, err
	}

	header := make([]any, len(spreadsheetHeaders))
	for i, h := range spreadsheetHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(spreadsheetSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			core.DisplayID(rec.ID),
			rec.FullName,
			rec.Email,
			rec.Phone,
			string(rec.Board),
			string(rec.ClassCompleted),
			string(rec.DemoStatus),
			string(rec.EnrollmentStatus),
			string(rec.PaymentStatus),
			r.formatLocal(rec.RegistrationDate),
		}
		if err := f.SetSheetRow(spreadsheetSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	for i, w := range spreadsheetWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(spreadsheetSheet, col, col, w); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
