package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"fee-portal/models"
)

func TestExportWritesRosterWorkbook(t *testing.T) {
	updated := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	fake := &fakeService{students: []models.Student{
		{ID: "stu-2", Name: "Meera", Email: "meera@x.com", FeesPaid: true, UpdatedAt: updated},
		{ID: "stu-1", Name: "Asha", Email: "asha@x.com", FeesPaid: false, UpdatedAt: updated},
	}}
	roster, err := NewRosterService(fake, nil, testLogger())
	if err != nil {
		t.Fatalf("NewRosterService() error = %v", err)
	}

	data, err := roster.Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Students")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want header + 2 students", len(rows))
	}

	wantHeader := []string{"Name", "Email", "Fee Status", "Last Updated"}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}

	// Rows come out name-ascending like the roster itself.
	if rows[1][0] != "Asha" || rows[1][2] != "PENDING" {
		t.Errorf("row 1 = %v, want Asha / PENDING", rows[1][:3])
	}
	if rows[2][0] != "Meera" || rows[2][2] != "PAID" {
		t.Errorf("row 2 = %v, want Meera / PAID", rows[2][:3])
	}
}

func TestExportEmptyRoster(t *testing.T) {
	fake := &fakeService{}
	roster, err := NewRosterService(fake, nil, testLogger())
	if err != nil {
		t.Fatalf("NewRosterService() error = %v", err)
	}

	data, err := roster.Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Students")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("row count = %d, want header only", len(rows))
	}
}
