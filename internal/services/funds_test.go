package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

func seedFund(t *testing.T, s store.Store, paths store.Paths, fund core.Fund) {
	t.Helper()
	if err := s.Set(context.Background(), paths.Fund(fund.ID), fund.Doc(), false); err != nil {
		t.Fatalf("seed fund %s: %v", fund.ID, err)
	}
}

func TestFundService_Contribute(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	seedFund(t, s, paths, core.Fund{
		ID:          "vac",
		Name:        "Vacation",
		GoalAmount:  decimal.NewFromInt(3000),
		TargetMonth: mustMonth(t, "2025-07"),
	})

	svc := NewFundService(s, paths, nil)
	month := mustMonth(t, "2025-01")
	today := core.NewDate(2025, time.January, 15)
	result, err := svc.Contribute(context.Background(), "vac", decimal.NewFromInt(600), month, today)
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}

	wantID := "fund-vac-2025-01-2025-01-15"
	if result.TransactionID != wantID {
		t.Errorf("transaction id = %s, want %s", result.TransactionID, wantID)
	}
	if result.Fund.CurrentSaved.String() != "600" {
		t.Errorf("saved = %s, want 600", result.Fund.CurrentSaved)
	}
	// 2400 still to save across Jan..Jul inclusive.
	if result.MonthlyNeeded.String() != "342.86" {
		t.Errorf("monthly needed = %s, want 342.86", result.MonthlyNeeded)
	}

	tx := getTransaction(t, s, paths, wantID)
	if !tx.IsFundContribution || tx.FundID != "vac" {
		t.Errorf("contribution provenance = %+v", tx)
	}
	if tx.Date.String() != "2025-01-15" {
		t.Errorf("contribution date = %s, want 2025-01-15", tx.Date)
	}
	if tx.SourceMonth.String() != "2025-01" {
		t.Errorf("source month = %s, want 2025-01", tx.SourceMonth)
	}
}

func TestFundService_SameDayContributionCollapses(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	seedFund(t, s, paths, core.Fund{
		ID:          "vac",
		Name:        "Vacation",
		GoalAmount:  decimal.NewFromInt(3000),
		TargetMonth: mustMonth(t, "2025-12"),
	})

	svc := NewFundService(s, paths, nil)
	month := mustMonth(t, "2025-01")
	today := core.NewDate(2025, time.January, 15)
	first, err := svc.Contribute(context.Background(), "vac", decimal.NewFromInt(100), month, today)
	if err != nil {
		t.Fatalf("first contribution: %v", err)
	}
	second, err := svc.Contribute(context.Background(), "vac", decimal.NewFromInt(50), month, today)
	if err != nil {
		t.Fatalf("second contribution: %v", err)
	}

	// Same day, same month: one ledger line holding the latest amount,
	// while the fund total reflects both calls.
	if first.TransactionID != second.TransactionID {
		t.Errorf("ids differ: %s vs %s", first.TransactionID, second.TransactionID)
	}
	tx := getTransaction(t, s, paths, second.TransactionID)
	if tx.Amount.String() != "50" {
		t.Errorf("ledger amount = %s, want 50", tx.Amount)
	}
	if second.Fund.CurrentSaved.String() != "150" {
		t.Errorf("saved = %s, want 150", second.Fund.CurrentSaved)
	}

	docs, err := s.ListAll(context.Background(), paths.Transactions())
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("ledger lines = %d, want 1", len(docs))
	}

	// Next day gets its own line.
	tomorrow := today.AddDays(1)
	third, err := svc.Contribute(context.Background(), "vac", decimal.NewFromInt(25), month, tomorrow)
	if err != nil {
		t.Fatalf("third contribution: %v", err)
	}
	if third.TransactionID == second.TransactionID {
		t.Error("next-day contribution reused the same id")
	}
	if third.Fund.CurrentSaved.String() != "175" {
		t.Errorf("saved = %s, want 175", third.Fund.CurrentSaved)
	}
}

func TestFundService_ContributeRejectsNonPositive(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	seedFund(t, s, paths, core.Fund{
		ID:          "vac",
		Name:        "Vacation",
		GoalAmount:  decimal.NewFromInt(3000),
		TargetMonth: mustMonth(t, "2025-12"),
	})

	svc := NewFundService(s, paths, nil)
	month := mustMonth(t, "2025-01")
	today := core.NewDate(2025, time.January, 15)
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := svc.Contribute(context.Background(), "vac", amount, month, today)
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("amount %s: err = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestFund_MonthlyNeeded(t *testing.T) {
	cases := []struct {
		name    string
		goal    int64
		saved   int64
		current string
		target  string
		want    string
	}{
		{"spread across window", 3000, 600, "2025-01", "2025-07", "342.86"},
		{"target month reached", 1200, 0, "2025-07", "2025-07", "1200"},
		{"target in the past", 900, 0, "2025-09", "2025-03", "900"},
		{"goal already met", 1000, 1500, "2025-01", "2025-06", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fund := core.Fund{
				GoalAmount:   decimal.NewFromInt(tc.goal),
				CurrentSaved: decimal.NewFromInt(tc.saved),
				TargetMonth:  mustMonth(t, tc.target),
			}
			got := fund.MonthlyNeeded(mustMonth(t, tc.current))
			if got.String() != tc.want {
				t.Errorf("monthly needed = %s, want %s", got, tc.want)
			}
		})
	}
}
