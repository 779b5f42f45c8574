package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

func seedPlan(t *testing.T, s store.Store, paths store.Paths, plan core.Plan) {
	t.Helper()
	if err := s.Set(context.Background(), paths.Plan(plan.Month.String()), plan.Doc(), false); err != nil {
		t.Fatalf("seed plan %s: %v", plan.Month, err)
	}
}

func seedBillStatus(t *testing.T, s store.Store, paths store.Paths, status core.BillStatus) {
	t.Helper()
	path := paths.BillStatus(status.BillID, status.Month.String())
	if err := s.Set(context.Background(), path, status.Doc(), false); err != nil {
		t.Fatalf("seed bill status: %v", err)
	}
}

func newReportFixture(t *testing.T) (store.Store, store.Paths, *ReportService) {
	t.Helper()
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	svc := NewReportService(s, paths, 24, 15*time.Minute, nil)
	return s, paths, svc
}

func TestReportService_Get(t *testing.T) {
	s, paths, svc := newReportFixture(t)
	month := mustMonth(t, "2025-06")

	seedPlan(t, s, paths, core.Plan{
		Month: month,
		Items: []core.PlanItem{
			{Group: "Housing", Category: "Rent", Type: core.Expense, Planned: decimal.NewFromInt(800)},
			{Group: "Income", Category: "Salary", Type: core.Income, Planned: decimal.NewFromInt(2000)},
		},
	})
	txs := []core.Transaction{
		{
			ID: "rent", Date: core.NewDate(2025, time.June, 1), Type: core.Expense,
			Group: "Housing", Category: "Rent", Amount: decimal.NewFromInt(800),
		},
		{
			ID: "spesa", Date: core.NewDate(2025, time.June, 3), Type: core.Expense,
			Group: "Food", Category: "Groceries", Amount: decimal.NewFromInt(150),
		},
		{
			ID: "stipendio", Date: core.NewDate(2025, time.June, 10), Type: core.Income,
			Group: "Income", Category: "Salary", Amount: decimal.NewFromInt(2100),
		},
		{
			ID: "vecchia", Date: core.NewDate(2025, time.May, 3), Type: core.Expense,
			Group: "Food", Category: "Groceries", Amount: decimal.NewFromInt(100),
		},
	}
	for _, tx := range txs {
		tx.EffectiveMonth = core.EffectiveMonth(tx.Date, 25)
		if err := s.Set(context.Background(), paths.Transaction(tx.ID), tx.Doc(), false); err != nil {
			t.Fatalf("seed tx %s: %v", tx.ID, err)
		}
	}
	seedBill(t, s, paths, core.Bill{ID: "power", Name: "Electricity", Group: "Utilities", Amount: decimal.NewFromInt(60), DueDay: 16, Active: true})
	seedBill(t, s, paths, core.Bill{ID: "water", Name: "Water", Group: "Utilities", Amount: decimal.NewFromInt(40), DueDay: 20, Active: true})
	seedBillStatus(t, s, paths, core.BillStatus{BillID: "power", Month: month, Paid: true, PaidDate: core.NewDate(2025, time.June, 16)})

	report, err := svc.Get(context.Background(), month)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if report.CutoffDay != 25 {
		t.Errorf("cutoff = %d, want 25", report.CutoffDay)
	}
	if len(report.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(report.Rows))
	}

	// Expenses sort before income, worst variance first.
	groceries := report.Rows[0]
	if groceries.Category != "Groceries" || groceries.Status != core.StatusNotPlanned {
		t.Errorf("row 0 = %s/%s, want Groceries/Not planned", groceries.Category, groceries.Status)
	}
	rent := report.Rows[1]
	if rent.Category != "Rent" || rent.Status != core.StatusWithinPlan {
		t.Errorf("row 1 = %s/%s, want Rent/within plan", rent.Category, rent.Status)
	}
	salary := report.Rows[2]
	if salary.Category != "Salary" || salary.Status != core.StatusAbovePlan {
		t.Errorf("row 2 = %s/%s, want Salary/above plan", salary.Category, salary.Status)
	}

	if report.Totals.ActualExpenses.String() != "950" {
		t.Errorf("actual expenses = %s, want 950", report.Totals.ActualExpenses)
	}
	if report.Totals.ActualIncome.String() != "2100" {
		t.Errorf("actual income = %s, want 2100", report.Totals.ActualIncome)
	}
	if report.Totals.Net.String() != "1150" {
		t.Errorf("net = %s, want 1150", report.Totals.Net)
	}

	if report.UnpaidBills.Count != 1 || report.UnpaidBills.Total.String() != "40" {
		t.Errorf("unpaid bills = %d/%s, want 1/40", report.UnpaidBills.Count, report.UnpaidBills.Total)
	}

	if len(report.Trend) != 12 {
		t.Fatalf("trend points = %d, want 12", len(report.Trend))
	}
	last := report.Trend[len(report.Trend)-1]
	if last.Month.String() != "2025-06" || last.Net.String() != "1150" {
		t.Errorf("trend anchor = %s/%s, want 2025-06/1150", last.Month, last.Net)
	}
	may := report.Trend[len(report.Trend)-2]
	if may.Net.String() != "-100" {
		t.Errorf("trend may = %s, want -100", may.Net)
	}
	if report.Trend[0].Month.String() != "2024-07" {
		t.Errorf("trend start = %s, want 2024-07", report.Trend[0].Month)
	}
}

func TestReportService_CachesUntilInvalidated(t *testing.T) {
	s, paths, svc := newReportFixture(t)
	month := mustMonth(t, "2025-06")
	seedTransaction(t, s, paths, "one", core.NewDate(2025, time.June, 2), 25)

	first, err := svc.Get(context.Background(), month)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if first.Totals.ActualExpenses.String() != "10" {
		t.Fatalf("actual expenses = %s, want 10", first.Totals.ActualExpenses)
	}

	// A direct store write is invisible until the month is invalidated.
	seedTransaction(t, s, paths, "two", core.NewDate(2025, time.June, 3), 25)
	cached, err := svc.Get(context.Background(), month)
	if err != nil {
		t.Fatalf("cached Get: %v", err)
	}
	if cached.Totals.ActualExpenses.String() != "10" {
		t.Errorf("cached actual expenses = %s, want 10", cached.Totals.ActualExpenses)
	}

	svc.InvalidateMonth(month)
	fresh, err := svc.Get(context.Background(), month)
	if err != nil {
		t.Fatalf("fresh Get: %v", err)
	}
	if fresh.Totals.ActualExpenses.String() != "20" {
		t.Errorf("fresh actual expenses = %s, want 20", fresh.Totals.ActualExpenses)
	}
}

func TestReportService_EmptyMonth(t *testing.T) {
	_, _, svc := newReportFixture(t)

	report, err := svc.Get(context.Background(), mustMonth(t, "2025-06"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(report.Rows) != 0 {
		t.Errorf("rows = %d, want 0", len(report.Rows))
	}
	if len(report.Trend) != 12 {
		t.Errorf("trend points = %d, want 12", len(report.Trend))
	}
	if !report.Totals.Net.IsZero() {
		t.Errorf("net = %s, want 0", report.Totals.Net)
	}
}

type recordingExporter struct {
	reports []*MonthlyReport
	err     error
}

func (e *recordingExporter) ExportMonthlyReport(_ context.Context, report *MonthlyReport) error {
	if e.err != nil {
		return e.err
	}
	e.reports = append(e.reports, report)
	return nil
}

func TestReportService_Export(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	exporter := &recordingExporter{}
	svc := NewReportService(s, paths, 24, 15*time.Minute, exporter)

	month := mustMonth(t, "2025-06")
	if err := svc.Export(context.Background(), month); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(exporter.reports) != 1 {
		t.Fatalf("exported reports = %d, want 1", len(exporter.reports))
	}
	if exporter.reports[0].Month.String() != "2025-06" {
		t.Errorf("exported month = %s, want 2025-06", exporter.reports[0].Month)
	}
}

func TestReportService_ExportWithoutExporter(t *testing.T) {
	_, _, svc := newReportFixture(t)
	if err := svc.Export(context.Background(), mustMonth(t, "2025-06")); err == nil {
		t.Fatal("expected error without exporter")
	}
}
