package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/ai4biz/portal/internal/core"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []core.Registration {
	return []core.Registration{
		{
			ID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", FullName: "Riya Sen", Email: "riya@example.com",
			Phone: "9876543210", Board: core.BoardWestBengal, ClassCompleted: core.ClassHigherSecondary,
			DemoStatus: core.DemoAttended, EnrollmentStatus: core.Enrolled, PaymentStatus: core.PaymentFull,
			RegistrationDate: time.Date(2026, 2, 3, 4, 5, 6, 789000000, time.UTC),
		},
		{
			ID: "16fd2706-8baf-433b-82eb-8c7fada847da", FullName: "Arjun Das", Email: "arjun@example.com",
			Phone: "9123456780", Board: core.BoardCBSE, ClassCompleted: core.ClassSecondary,
			DemoStatus: core.DemoRegistered, EnrollmentStatus: core.NotEnrolled, PaymentStatus: core.PaymentNone,
			RegistrationDate: time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestWorkbook_RoundTrip(t *testing.T) {
	want := sampleRecords()
	data, err := EncodeWorkbook(want)
	if err != nil {
		t.Fatalf("EncodeWorkbook() error = %v", err)
	}

	got, err := DecodeWorkbook(data)
	if err != nil {
		t.Fatalf("DecodeWorkbook() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("decoded %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if !sameRecord(got[i], want[i]) {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// sameRecord compares registrations, treating dates by instant.
func sameRecord(a, b core.Registration) bool {
	if !a.RegistrationDate.Equal(b.RegistrationDate) {
		return false
	}
	a.RegistrationDate, b.RegistrationDate = time.Time{}, time.Time{}
	return a == b
}

func TestEncodeWorkbook_Layout(t *testing.T) {
	data, err := EncodeWorkbook(sampleRecords()[:1])
	if err != nil {
		t.Fatalf("EncodeWorkbook() error = %v", err)
	}
	f, err := excelize.OpenReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Errorf("sheets = %v, want [%s]", sheets, SheetName)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if strings.Join(rows[0], ",") != strings.Join(core.Columns, ",") {
		t.Errorf("header = %v, want %v", rows[0], core.Columns)
	}
	if rows[1][9] != "2026-02-03T04:05:06.789Z" {
		t.Errorf("registrationDate cell = %q", rows[1][9])
	}
	if w, _ := f.GetColWidth(SheetName, "A"); w != 38 {
		t.Errorf("column A width = %v, want 38", w)
	}
}

// buildWorkbook writes rows to a fresh workbook on sheet.
func buildWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatal(err)
		}
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeWorkbook_ColumnsByName(t *testing.T) {
	data := buildWorkbook(t, SheetName, [][]any{
		{"registrationDate", "email", "id", "fullName", "notes"},
		{"2026-01-01T00:00:00.000Z", "a@x.com", "id-1", "Asha", "ignored"},
		{},
		{"", "b@x.com", "id-2", "Bina"},
	})

	got, err := DecodeWorkbook(data)
	if err != nil {
		t.Fatalf("DecodeWorkbook() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d records, want 2 (blank row skipped)", len(got))
	}
	if got[0].ID != "id-1" || got[0].Email != "a@x.com" || got[0].FullName != "Asha" {
		t.Errorf("record 0 = %+v", got[0])
	}
	if !got[0].RegistrationDate.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("record 0 date = %v", got[0].RegistrationDate)
	}
	if got[1].Phone != "" || !got[1].RegistrationDate.IsZero() {
		t.Errorf("short row not padded: %+v", got[1])
	}
}

func TestDecodeWorkbook_MissingSheetIsEmpty(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]any{{"unrelated"}})
	got, err := DecodeWorkbook(data)
	if err != nil {
		t.Fatalf("DecodeWorkbook() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("decoded %d records, want 0", len(got))
	}
}

func TestDecodeWorkbook_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not a workbook", []byte("definitely not a zip")},
		{"bad date", buildWorkbook(t, SheetName, [][]any{
			{"id", "registrationDate"},
			{"id-1", "yesterday"},
		})},
		{"no id column", buildWorkbook(t, SheetName, [][]any{
			{"email"},
			{"a@x.com"},
		})},
		{"row without id", buildWorkbook(t, SheetName, [][]any{
			{"id", "email"},
			{"", "a@x.com"},
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeWorkbook(tt.data); err == nil {
				t.Error("DecodeWorkbook() expected error")
			}
		})
	}
}
