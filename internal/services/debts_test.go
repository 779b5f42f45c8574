package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

func seedDebt(t *testing.T, s store.Store, paths store.Paths, debt core.Debt) {
	t.Helper()
	if err := s.Set(context.Background(), paths.Debt(debt.ID), debt.Doc(), false); err != nil {
		t.Fatalf("seed debt %s: %v", debt.ID, err)
	}
}

func TestDebtService_RecordPayment(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	seedDebt(t, s, paths, core.Debt{
		ID:             "loan",
		Name:           "Car loan",
		Type:           "loan",
		APR:            decimal.NewFromInt(12),
		CurrentBalance: decimal.NewFromInt(1200),
		MonthlyPayment: decimal.NewFromInt(110),
		DueDay:         10,
	})

	svc := NewDebtService(s, paths, nil)
	month := mustMonth(t, "2025-06")
	result, err := svc.RecordPayment(context.Background(), "loan", month)
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	if result.AlreadyRecorded {
		t.Error("first payment reported as already recorded")
	}
	if result.Interest.String() != "12" {
		t.Errorf("interest = %s, want 12", result.Interest)
	}
	if result.Principal.String() != "98" {
		t.Errorf("principal = %s, want 98", result.Principal)
	}
	if result.NewBalance.String() != "1102" {
		t.Errorf("new balance = %s, want 1102", result.NewBalance)
	}

	tx := getTransaction(t, s, paths, "debt-loan-2025-06")
	if !tx.IsDebtPayment || tx.DebtID != "loan" {
		t.Errorf("payment provenance = %+v", tx)
	}
	if tx.Type != core.Expense {
		t.Errorf("payment type = %s, want expense", tx.Type)
	}
	if tx.Amount.String() != "110" {
		t.Errorf("payment amount = %s, want 110", tx.Amount)
	}
	if tx.Date.String() != "2025-06-10" {
		t.Errorf("payment date = %s, want 2025-06-10", tx.Date)
	}
	if tx.BalanceAfter.String() != "1102" {
		t.Errorf("stored balance after = %s, want 1102", tx.BalanceAfter)
	}

	debt, err := svc.Get(context.Background(), "loan")
	if err != nil {
		t.Fatalf("Get debt: %v", err)
	}
	if debt.CurrentBalance.String() != "1102" {
		t.Errorf("debt balance = %s, want 1102", debt.CurrentBalance)
	}
	if debt.LastPaidMonth.String() != "2025-06" {
		t.Errorf("last paid month = %s, want 2025-06", debt.LastPaidMonth)
	}
}

func TestDebtService_RecordPaymentTwiceIsNoOp(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	seedDebt(t, s, paths, core.Debt{
		ID:             "loan",
		Name:           "Car loan",
		APR:            decimal.NewFromInt(12),
		CurrentBalance: decimal.NewFromInt(1200),
		MonthlyPayment: decimal.NewFromInt(110),
		DueDay:         10,
	})

	svc := NewDebtService(s, paths, nil)
	month := mustMonth(t, "2025-06")
	if _, err := svc.RecordPayment(context.Background(), "loan", month); err != nil {
		t.Fatalf("first payment: %v", err)
	}

	second, err := svc.RecordPayment(context.Background(), "loan", month)
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if !second.AlreadyRecorded {
		t.Error("second payment not reported as already recorded")
	}
	if second.Interest.String() != "12" || second.Principal.String() != "98" {
		t.Errorf("second payment breakdown = %s/%s, want stored 12/98", second.Interest, second.Principal)
	}

	// The balance must not be debited twice.
	debt, err := svc.Get(context.Background(), "loan")
	if err != nil {
		t.Fatalf("Get debt: %v", err)
	}
	if debt.CurrentBalance.String() != "1102" {
		t.Errorf("debt balance after repeat = %s, want 1102", debt.CurrentBalance)
	}

	// A different month books normally.
	next, err := svc.RecordPayment(context.Background(), "loan", mustMonth(t, "2025-07"))
	if err != nil {
		t.Fatalf("next month payment: %v", err)
	}
	if next.AlreadyRecorded {
		t.Error("new month reported as already recorded")
	}
	if next.Interest.String() != "11.02" {
		t.Errorf("next month interest = %s, want 11.02", next.Interest)
	}
}

func TestDebtService_PaymentBelowInterest(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	seedDebt(t, s, paths, core.Debt{
		ID:             "card",
		Name:           "Credit card",
		APR:            decimal.NewFromInt(24),
		CurrentBalance: decimal.NewFromInt(10000),
		MonthlyPayment: decimal.NewFromInt(100),
		DueDay:         5,
	})

	svc := NewDebtService(s, paths, nil)
	result, err := svc.RecordPayment(context.Background(), "card", mustMonth(t, "2025-06"))
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	// Interest is 200 on a 100 payment: nothing amortizes, balance holds.
	if result.Interest.String() != "200" {
		t.Errorf("interest = %s, want 200", result.Interest)
	}
	if !result.Principal.IsZero() {
		t.Errorf("principal = %s, want 0", result.Principal)
	}
	if result.NewBalance.String() != "10000" {
		t.Errorf("new balance = %s, want 10000", result.NewBalance)
	}
}

func TestDebtService_ZeroAPR(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	seedDebt(t, s, paths, core.Debt{
		ID:             "family",
		Name:           "Family loan",
		APR:            decimal.Zero,
		CurrentBalance: decimal.NewFromInt(500),
		MonthlyPayment: decimal.NewFromInt(200),
		DueDay:         1,
	})

	svc := NewDebtService(s, paths, nil)
	result, err := svc.RecordPayment(context.Background(), "family", mustMonth(t, "2025-06"))
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if !result.Interest.IsZero() {
		t.Errorf("interest = %s, want 0", result.Interest)
	}
	if result.Principal.String() != "200" {
		t.Errorf("principal = %s, want 200", result.Principal)
	}
	if result.NewBalance.String() != "300" {
		t.Errorf("new balance = %s, want 300", result.NewBalance)
	}
}

func TestDebtService_FinalPaymentClampsAtZero(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	seedDebt(t, s, paths, core.Debt{
		ID:             "tail",
		Name:           "Tail loan",
		APR:            decimal.Zero,
		CurrentBalance: decimal.NewFromInt(50),
		MonthlyPayment: decimal.NewFromInt(200),
		DueDay:         1,
	})

	svc := NewDebtService(s, paths, nil)
	result, err := svc.RecordPayment(context.Background(), "tail", mustMonth(t, "2025-06"))
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if !result.NewBalance.IsZero() {
		t.Errorf("new balance = %s, want 0", result.NewBalance)
	}
}

func TestDebtService_RecordPaymentMissingDebt(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)

	svc := NewDebtService(s, paths, nil)
	if _, err := svc.RecordPayment(context.Background(), "ghost", mustMonth(t, "2025-06")); err == nil {
		t.Fatal("expected error for missing debt")
	}
}
