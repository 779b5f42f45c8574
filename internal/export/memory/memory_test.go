package memory

import (
	"context"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

func TestExporterKeepsLatestPerMonth(t *testing.T) {
	month, err := core.ParseMonth("2025-06")
	if err != nil {
		t.Fatalf("ParseMonth: %v", err)
	}
	e := New()

	first := &services.MonthlyReport{Month: month, CutoffDay: 25}
	second := &services.MonthlyReport{Month: month, CutoffDay: 28}
	if err := e.ExportMonthlyReport(context.Background(), first); err != nil {
		t.Fatalf("ExportMonthlyReport: %v", err)
	}
	if err := e.ExportMonthlyReport(context.Background(), second); err != nil {
		t.Fatalf("ExportMonthlyReport: %v", err)
	}

	if e.Count() != 1 {
		t.Fatalf("Count = %d, want 1", e.Count())
	}
	got, ok := e.Report("2025-06")
	if !ok {
		t.Fatal("Report: month not recorded")
	}
	if got.CutoffDay != 28 {
		t.Errorf("kept CutoffDay = %d, want the latest export (28)", got.CutoffDay)
	}
	if _, ok := e.Report("2025-07"); ok {
		t.Error("Report returned a month that was never exported")
	}
}
