package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func planItem(group, category string, txType TxType, planned string) PlanItem {
	return PlanItem{Group: group, Category: category, Type: txType, Planned: decimal.RequireFromString(planned)}
}

func actualTx(group, category string, txType TxType, amount string) Transaction {
	return Transaction{
		Date:           NewDate(2024, time.March, 10),
		Type:           txType,
		Group:          group,
		Category:       category,
		Amount:         decimal.RequireFromString(amount),
		EffectiveMonth: NewMonth(2024, time.March),
	}
}

func TestBuildMonthlyRowsExpenseClassification(t *testing.T) {
	tests := []struct {
		name       string
		planned    string
		actual     string
		wantDiff   string
		wantStatus string
		wantBadge  string
	}{
		{"over budget", "500", "600", "-100", StatusOverBudget, BadgeBad},
		{"within plan", "500", "450", "50", StatusWithinPlan, BadgeOK},
		{"exactly on plan", "500", "500", "0", StatusWithinPlan, BadgeOK},
		{"not planned", "0", "80", "-80", StatusNotPlanned, BadgeWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var items []PlanItem
			if tt.planned != "0" {
				items = append(items, planItem("Home", "Rent", Expense, tt.planned))
			}
			rows := BuildMonthlyRows(items, []Transaction{actualTx("Home", "Rent", Expense, tt.actual)})
			if len(rows) != 1 {
				t.Fatalf("len(rows) = %d, want 1", len(rows))
			}
			row := rows[0]
			if row.Diff.String() != decimal.RequireFromString(tt.wantDiff).String() {
				t.Errorf("Diff = %s, want %s", row.Diff, tt.wantDiff)
			}
			if row.Status != tt.wantStatus || row.Badge != tt.wantBadge {
				t.Errorf("status = %q/%q, want %q/%q", row.Status, row.Badge, tt.wantStatus, tt.wantBadge)
			}
		})
	}
}

func TestBuildMonthlyRowsIncomeClassification(t *testing.T) {
	tests := []struct {
		name       string
		planned    string
		actual     string
		wantStatus string
		wantBadge  string
	}{
		{"extra income", "0", "200", StatusExtraIncome, BadgeOK},
		{"above plan", "1500", "1600", StatusAbovePlan, BadgeOK},
		{"on plan", "1500", "1500", StatusOnPlan, BadgeOK},
		{"below plan", "1500", "1400", StatusBelowPlan, BadgeWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var items []PlanItem
			if tt.planned != "0" {
				items = append(items, planItem("Work", "Salary", Income, tt.planned))
			}
			rows := BuildMonthlyRows(items, []Transaction{actualTx("Work", "Salary", Income, tt.actual)})
			if len(rows) != 1 {
				t.Fatalf("len(rows) = %d, want 1", len(rows))
			}
			if rows[0].Status != tt.wantStatus || rows[0].Badge != tt.wantBadge {
				t.Errorf("status = %q/%q, want %q/%q", rows[0].Status, rows[0].Badge, tt.wantStatus, tt.wantBadge)
			}
		})
	}
}

func TestBuildMonthlyRowsMergesCaseInsensitive(t *testing.T) {
	rows := BuildMonthlyRows(
		[]PlanItem{planItem("Home", "Groceries", Expense, "400")},
		[]Transaction{
			actualTx("home", "GROCERIES", Expense, "120"),
			actualTx(" Home ", "groceries ", Expense, "80"),
		},
	)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Actual.String() != "200" {
		t.Errorf("Actual = %s, want 200", rows[0].Actual)
	}
	if rows[0].Planned.String() != "400" {
		t.Errorf("Planned = %s, want 400", rows[0].Planned)
	}
}

func TestBuildMonthlyRowsDefaultsEmptyToOther(t *testing.T) {
	rows := BuildMonthlyRows(nil, []Transaction{actualTx("", "", Expense, "30")})
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Group != "Other" || rows[0].Category != "Other" {
		t.Errorf("row = %q/%q, want Other/Other", rows[0].Group, rows[0].Category)
	}
	if rows[0].Status != StatusNotPlanned {
		t.Errorf("Status = %q, want %q", rows[0].Status, StatusNotPlanned)
	}
}

func TestBuildMonthlyRowsSortOrder(t *testing.T) {
	rows := BuildMonthlyRows(
		[]PlanItem{
			planItem("Work", "Salary", Income, "1500"),
			planItem("Home", "Rent", Expense, "800"),
			planItem("Food", "Groceries", Expense, "400"),
			planItem("Auto", "Fuel", Expense, "150"),
		},
		[]Transaction{
			actualTx("Work", "Salary", Income, "1500"),
			actualTx("Home", "Rent", Expense, "800"),
			actualTx("Food", "Groceries", Expense, "520"),
			actualTx("Auto", "Fuel", Expense, "270"),
		},
	)
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}

	// Fuel and Groceries both sit at diff -120, Rent at 0. Expenses come
	// first, worst variance first, diff ties break on group name.
	if rows[len(rows)-1].Type != Income {
		t.Errorf("income row must sort last, got %+v", rows[len(rows)-1])
	}
	for i := 0; i < 3; i++ {
		if rows[i].Type != Expense {
			t.Errorf("row %d type = %v, want expense", i, rows[i].Type)
		}
	}
	if rows[0].Group != "Auto" || rows[1].Group != "Food" {
		t.Errorf("tie on diff must break by group: got %q then %q", rows[0].Group, rows[1].Group)
	}
	if rows[2].Group != "Home" {
		t.Errorf("row 2 group = %q, want Home", rows[2].Group)
	}
}

func TestComputeUnpaidBills(t *testing.T) {
	bills := []Bill{
		{ID: "b1", Name: "Power", Amount: decimal.RequireFromString("60.50"), Active: true},
		{ID: "b2", Name: "Water", Amount: decimal.RequireFromString("25"), Active: true},
		{ID: "b3", Name: "Internet", Amount: decimal.RequireFromString("30"), Active: true},
		{ID: "b4", Name: "Old gym", Amount: decimal.RequireFromString("99"), Active: false},
	}
	statuses := []BillStatus{
		{BillID: "b2", Month: NewMonth(2024, time.March), Paid: true},
		{BillID: "b3", Month: NewMonth(2024, time.March), Paid: false},
	}

	unpaid := ComputeUnpaidBills(bills, statuses)
	if unpaid.Count != 2 {
		t.Errorf("Count = %d, want 2", unpaid.Count)
	}
	if unpaid.Total.StringFixed(2) != "90.50" {
		t.Errorf("Total = %s, want 90.50", unpaid.Total)
	}
}

func TestNetTrend(t *testing.T) {
	anchor := NewMonth(2024, time.March)
	txs := []Transaction{
		{Type: Income, Amount: decimal.RequireFromString("1500"), EffectiveMonth: NewMonth(2024, time.March)},
		{Type: Expense, Amount: decimal.RequireFromString("900"), EffectiveMonth: NewMonth(2024, time.March)},
		{Type: Expense, Amount: decimal.RequireFromString("100"), EffectiveMonth: NewMonth(2024, time.February)},
		{Type: Income, Amount: decimal.RequireFromString("50"), EffectiveMonth: NewMonth(2023, time.April)},
	}

	points := NetTrend(txs, anchor, 12)
	if len(points) != 12 {
		t.Fatalf("len(points) = %d, want 12", len(points))
	}
	if points[0].Month.String() != "2023-04" {
		t.Errorf("first month = %s, want 2023-04", points[0].Month)
	}
	if points[11].Month.String() != "2024-03" {
		t.Errorf("last month = %s, want 2024-03", points[11].Month)
	}
	if points[11].Net.String() != "600" {
		t.Errorf("anchor net = %s, want 600", points[11].Net)
	}
	if points[10].Net.String() != "-100" {
		t.Errorf("february net = %s, want -100", points[10].Net)
	}
	if points[0].Net.String() != "50" {
		t.Errorf("2023-04 net = %s, want 50", points[0].Net)
	}
	if !points[5].Net.IsZero() {
		t.Errorf("empty month net = %s, want 0", points[5].Net)
	}
}
