package httpapi

import (
	"bytes"
	"testing"

	"heartguard-alert/internal/domain"

	"github.com/xuri/excelize/v2"
)

func TestGenerateAlertHistoryExport(t *testing.T) {
	alerts := []domain.EmergencyAlert{
		{ID: 1, Patient: "carol", Type: domain.AlertTypeManual, Severity: domain.SeverityHigh, Status: domain.AlertStatusResolved, Timestamp: 1700000000000000000},
		{ID: 2, Patient: "dave", Type: domain.AlertTypeAutomatic, Severity: domain.SeverityMedium, Status: domain.AlertStatusNew, Timestamp: 1700000100000000000},
	}

	data, err := GenerateAlertHistoryExport(alerts)
	if err != nil {
		t.Fatalf("generate export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open generated workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Alert History")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 data rows, got %d", len(rows))
	}
	if rows[0][0] != "Alert ID" || rows[0][5] != "Created At" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][1] != "carol" || rows[1][4] != "resolved" {
		t.Fatalf("unexpected first data row: %v", rows[1])
	}
	if rows[2][2] != "automatic" {
		t.Fatalf("unexpected second data row: %v", rows[2])
	}
}

func TestGenerateAlertHistoryExport_EmptyStillHasHeader(t *testing.T) {
	data, err := GenerateAlertHistoryExport(nil)
	if err != nil {
		t.Fatalf("generate empty export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open generated workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Alert History")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
