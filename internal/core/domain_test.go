package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNormalizeTxType(t *testing.T) {
	cases := []struct {
		in   string
		want TxType
	}{
		{"income", Income},
		{"INCOME", Income},
		{" income ", Income},
		{"expense", Expense},
		{"", Expense},
		{"transfer", Expense},
	}
	for _, tc := range cases {
		if got := NormalizeTxType(tc.in); got != tc.want {
			t.Errorf("NormalizeTxType(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRecurringRuleValidate(t *testing.T) {
	good := RecurringRule{
		Type:       Expense,
		Group:      "Home",
		Category:   "Rent",
		Amount:     decimal.RequireFromString("800"),
		DayOfMonth: 1,
		StartMonth: NewMonth(2024, time.January),
		Active:     true,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	openEnded := good
	openEnded.EndMonth = Month{}
	if err := openEnded.Validate(); err != nil {
		t.Fatalf("open-ended rule expected ok, got %v", err)
	}

	bads := []RecurringRule{
		{Type: "weird", Group: "g", Amount: decimal.NewFromInt(1), StartMonth: NewMonth(2024, time.January)},
		{Type: Expense, Amount: decimal.NewFromInt(1), StartMonth: NewMonth(2024, time.January)},
		{Type: Expense, Group: "g", Amount: decimal.Zero, StartMonth: NewMonth(2024, time.January)},
		{Type: Expense, Group: "g", Amount: decimal.NewFromInt(1)},
		{Type: Expense, Group: "g", Amount: decimal.NewFromInt(1), StartMonth: NewMonth(2024, time.June), EndMonth: NewMonth(2024, time.January)},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:   NewDate(2024, time.March, 10),
		Type:   Expense,
		Amount: decimal.RequireFromString("12.50"),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: Expense, Amount: decimal.NewFromInt(1)},
		{Date: NewDate(2024, time.March, 10), Type: "other", Amount: decimal.NewFromInt(1)},
		{Date: NewDate(2024, time.March, 10), Type: Expense, Amount: decimal.Zero},
		{Date: NewDate(2024, time.March, 10), Type: Expense, Amount: decimal.NewFromInt(-3)},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestDebtValidate(t *testing.T) {
	good := Debt{
		Name:           "Car loan",
		APR:            decimal.RequireFromString("12"),
		CurrentBalance: decimal.RequireFromString("1200"),
		MonthlyPayment: decimal.RequireFromString("110"),
		DueDay:         10,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zeroAPR := good
	zeroAPR.APR = decimal.Zero
	if err := zeroAPR.Validate(); err != nil {
		t.Fatalf("zero apr expected ok, got %v", err)
	}

	bads := []Debt{
		{APR: decimal.NewFromInt(1), CurrentBalance: decimal.NewFromInt(1), MonthlyPayment: decimal.NewFromInt(1)},
		{Name: "x", APR: decimal.NewFromInt(-1), CurrentBalance: decimal.NewFromInt(1), MonthlyPayment: decimal.NewFromInt(1)},
		{Name: "x", APR: decimal.NewFromInt(1), CurrentBalance: decimal.NewFromInt(-1), MonthlyPayment: decimal.NewFromInt(1)},
		{Name: "x", APR: decimal.NewFromInt(1), CurrentBalance: decimal.NewFromInt(1), MonthlyPayment: decimal.Zero},
	}
	for i, d := range bads {
		if err := d.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestPlanItemEmpty(t *testing.T) {
	cases := []struct {
		item PlanItem
		want bool
	}{
		{PlanItem{Group: "Home", Category: "Rent"}, false},
		{PlanItem{Group: "Home"}, false},
		{PlanItem{Category: "Rent"}, false},
		{PlanItem{Group: "  ", Category: ""}, true},
		{PlanItem{}, true},
	}
	for i, tc := range cases {
		if got := tc.item.Empty(); got != tc.want {
			t.Errorf("case %d: Empty() = %v, want %v", i, got, tc.want)
		}
	}
}
