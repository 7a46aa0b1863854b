package storage

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ai4biz/portal/internal/core"
	"github.com/xuri/excelize/v2"
)

const (
	// SheetName is the worksheet holding the dataset.
	SheetName = "Registrations"

	// WorkbookContentType is the MIME type of an xlsx workbook.
	WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// columnWidths are the character widths of the persisted columns.
var columnWidths = []float64{38, 28, 32, 14, 15, 18, 16, 16, 18, 26}

// EncodeWorkbook renders records into an xlsx workbook with one sheet whose
// header row is core.Columns.
func EncodeWorkbook(records []core.Registration) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(core.Columns))
	for i, c := range core.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		vals := r.Values()
		row := make([]any, len(vals))
		for j, v := range vals {
			row[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("set width %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeWorkbook parses a workbook written by EncodeWorkbook.
// Columns are matched by header name, so reordered or extra columns are
// tolerated. A workbook without the dataset sheet holds no records.
func DecodeWorkbook(data []byte) ([]core.Registration, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx < 0 {
		return []core.Registration{}, nil
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return []core.Registration{}, nil
	}

	pos := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		pos[strings.TrimSpace(name)] = i
	}
	if _, ok := pos["id"]; !ok {
		return nil, fmt.Errorf("sheet %q has no id column", SheetName)
	}

	records := make([]core.Registration, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		vals := make([]string, len(core.Columns))
		for i, c := range core.Columns {
			if j, ok := pos[c]; ok && j < len(row) {
				vals[i] = row[j]
			}
		}
		rec, err := recordFromValues(vals)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// recordFromValues builds a registration from values in core.Columns order.
func recordFromValues(vals []string) (core.Registration, error) {
	if len(vals) != len(core.Columns) {
		return core.Registration{}, fmt.Errorf("expected %d values, got %d", len(core.Columns), len(vals))
	}
	r := core.Registration{
		ID:               vals[0],
		FullName:         vals[1],
		Email:            vals[2],
		Phone:            vals[3],
		Board:            core.Board(vals[4]),
		ClassCompleted:   core.ClassCompleted(vals[5]),
		DemoStatus:       core.DemoStatus(vals[6]),
		EnrollmentStatus: core.EnrollmentStatus(vals[7]),
		PaymentStatus:    core.PaymentStatus(vals[8]),
	}
	if r.ID == "" {
		return core.Registration{}, fmt.Errorf("missing id")
	}
	if s := strings.TrimSpace(vals[9]); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return core.Registration{}, fmt.Errorf("invalid registrationDate %q: %w", s, err)
		}
		r.RegistrationDate = t.UTC()
	}
	return r, nil
}
