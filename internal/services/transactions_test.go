package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func TestTransactionService_CreateDerivesEffectiveMonth(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	svc := NewTransactionService(s, paths, nil)

	tx, err := svc.Create(context.Background(), core.Transaction{
		Date:     core.NewDate(2025, time.June, 26),
		Type:     core.Expense,
		Group:    "Food",
		Category: "Groceries",
		Amount:   decimal.NewFromFloat(42.50),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tx.ID == "" {
		t.Fatal("id not assigned")
	}
	if tx.EffectiveMonth.String() != "2025-07" {
		t.Errorf("effective month = %s, want 2025-07", tx.EffectiveMonth)
	}

	stored := getTransaction(t, s, paths, tx.ID)
	if stored.EffectiveMonth.String() != "2025-07" {
		t.Errorf("stored effective month = %s, want 2025-07", stored.EffectiveMonth)
	}
	if stored.UpdatedAt.IsZero() {
		t.Error("updatedAt not set")
	}
}

func TestTransactionService_CreateRejectsInvalid(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	svc := NewTransactionService(s, paths, nil)

	_, err := svc.Create(context.Background(), core.Transaction{
		Date:     core.NewDate(2025, time.June, 26),
		Type:     core.Expense,
		Group:    "Food",
		Category: "Groceries",
		Amount:   decimal.Zero,
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestTransactionService_ListMonth(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	seedTransaction(t, s, paths, "june-late", core.NewDate(2025, time.June, 20), 25)
	seedTransaction(t, s, paths, "june-early", core.NewDate(2025, time.June, 2), 25)
	seedTransaction(t, s, paths, "rolled", core.NewDate(2025, time.June, 27), 25)
	seedTransaction(t, s, paths, "may", core.NewDate(2025, time.May, 2), 25)

	svc := NewTransactionService(s, paths, nil)
	txs, err := svc.ListMonth(context.Background(), mustMonth(t, "2025-06"))
	if err != nil {
		t.Fatalf("ListMonth: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("transactions = %d, want 2", len(txs))
	}
	if txs[0].ID != "june-early" || txs[1].ID != "june-late" {
		t.Errorf("order = %s, %s; want june-early, june-late", txs[0].ID, txs[1].ID)
	}

	july, err := svc.ListMonth(context.Background(), mustMonth(t, "2025-07"))
	if err != nil {
		t.Fatalf("ListMonth july: %v", err)
	}
	if len(july) != 1 || july[0].ID != "rolled" {
		t.Errorf("july = %+v, want the rolled transaction", july)
	}
}

func TestTransactionService_SaveRecomputesEffectiveMonth(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	svc := NewTransactionService(s, paths, nil)

	tx, err := svc.Create(context.Background(), core.Transaction{
		Date:     core.NewDate(2025, time.June, 26),
		Type:     core.Expense,
		Group:    "Food",
		Category: "Groceries",
		Amount:   decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tx.Date = core.NewDate(2025, time.June, 5)
	saved, err := svc.Save(context.Background(), tx)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.EffectiveMonth.String() != "2025-06" {
		t.Errorf("effective month after move = %s, want 2025-06", saved.EffectiveMonth)
	}
}

func TestTransactionService_Delete(t *testing.T) {
	s, paths := newTestStore(t)
	seedSettings(t, s, paths, 25)
	seedTransaction(t, s, paths, "gone", core.NewDate(2025, time.June, 2), 25)

	svc := NewTransactionService(s, paths, nil)
	if err := svc.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), "gone"); err == nil {
		t.Fatal("transaction still readable after delete")
	}
}
