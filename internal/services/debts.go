package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// PaymentResult is the breakdown of one recorded debt payment. When the
// month was already paid it carries the stored breakdown instead of a
// freshly computed one.
type PaymentResult struct {
	TransactionID   string          `json:"transactionId"`
	Month           core.Month      `json:"month"`
	AlreadyRecorded bool            `json:"alreadyRecorded"`
	Interest        decimal.Decimal `json:"interest"`
	Principal       decimal.Decimal `json:"principal"`
	NewBalance      decimal.Decimal `json:"newBalance"`
}

// DebtService manages debts and records their monthly payments with an
// amortization split between interest and principal.
type DebtService struct {
	store   store.Store
	paths   store.Paths
	reports ReportInvalidator
}

func NewDebtService(s store.Store, paths store.Paths, reports ReportInvalidator) *DebtService {
	return &DebtService{store: s, paths: paths, reports: reports}
}

func (s *DebtService) Create(ctx context.Context, debt core.Debt) (core.Debt, error) {
	if err := debt.Validate(); err != nil {
		return core.Debt{}, err
	}
	id, err := s.store.Add(ctx, s.paths.Debts(), debt.Doc())
	if err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}
	debt.ID = id
	slog.InfoContext(ctx, "Created debt", "debt_id", id, "name", debt.Name)
	return debt, nil
}

func (s *DebtService) Get(ctx context.Context, id string) (core.Debt, error) {
	doc, err := s.store.Get(ctx, s.paths.Debt(id))
	if err != nil {
		return core.Debt{}, fmt.Errorf("load debt %s: %w", id, err)
	}
	return core.DebtFromDoc(doc.ID, doc.Data), nil
}

func (s *DebtService) List(ctx context.Context) ([]core.Debt, error) {
	docs, err := s.store.ListAll(ctx, s.paths.Debts())
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	debts := make([]core.Debt, 0, len(docs))
	for _, doc := range docs {
		debts = append(debts, core.DebtFromDoc(doc.ID, doc.Data))
	}
	return debts, nil
}

func (s *DebtService) Save(ctx context.Context, debt core.Debt) error {
	if err := debt.Validate(); err != nil {
		return err
	}
	if debt.ID == "" {
		return errors.New("debt id is required")
	}
	if err := s.store.Set(ctx, s.paths.Debt(debt.ID), debt.Doc(), false); err != nil {
		return fmt.Errorf("save debt %s: %w", debt.ID, err)
	}
	return nil
}

func (s *DebtService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.paths.Debt(id)); err != nil {
		return fmt.Errorf("delete debt %s: %w", id, err)
	}
	return nil
}

// RecordPayment books the debt's monthly payment for the given month. The
// transaction id is keyed on debt and month, so at most one payment per
// debt per month exists: a second call for the same month reports the
// stored payment and changes nothing.
//
// Interest accrues at APR/12 on the current balance; whatever the payment
// covers beyond interest reduces the balance. A payment below the accrued
// interest books as pure interest and leaves the balance unchanged.
func (s *DebtService) RecordPayment(ctx context.Context, debtID string, month core.Month) (*PaymentResult, error) {
	doc, err := s.store.Get(ctx, s.paths.Debt(debtID))
	if err != nil {
		return nil, fmt.Errorf("load debt %s: %w", debtID, err)
	}
	debt := core.DebtFromDoc(doc.ID, doc.Data)

	txID := core.DebtTransactionID(debtID, month)
	txPath := s.paths.Transaction(txID)
	existing, err := s.store.Get(ctx, txPath)
	if err == nil {
		tx := core.TransactionFromDoc(existing.ID, existing.Data)
		slog.InfoContext(ctx, "Debt payment already recorded", "debt_id", debtID, "month", month.String())
		return &PaymentResult{
			TransactionID:   txID,
			Month:           month,
			AlreadyRecorded: true,
			Interest:        tx.Interest,
			Principal:       tx.Principal,
			NewBalance:      tx.BalanceAfter,
		}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check existing payment: %w", err)
	}

	settings, err := loadSettings(ctx, s.store, s.paths)
	if err != nil {
		return nil, err
	}

	monthlyRate := debt.APR.Div(decimal.NewFromInt(1200))
	interest := core.Round2(debt.CurrentBalance.Mul(monthlyRate))
	principal := core.NonNegative(core.Round2(debt.MonthlyPayment.Sub(interest)))
	newBalance := core.NonNegative(core.Round2(debt.CurrentBalance.Sub(principal)))

	date := month.DateOn(debt.DueDay)
	now := time.Now().UTC()
	tx := core.Transaction{
		ID:             txID,
		Date:           date,
		Type:           core.Expense,
		Group:          "Debts",
		Category:       debt.Name,
		Description:    debt.Name + " payment",
		Amount:         debt.MonthlyPayment,
		EffectiveMonth: core.EffectiveMonth(date, settings.CutoffDay),
		IsDebtPayment:  true,
		DebtID:         debtID,
		SourceMonth:    month,
		GeneratedAt:    now,
		UpdatedAt:      now,
		Interest:       interest,
		Principal:      principal,
		BalanceAfter:   newBalance,
	}
	if err := s.store.Set(ctx, txPath, tx.Doc(), false); err != nil {
		return nil, fmt.Errorf("write payment transaction: %w", err)
	}

	fields := map[string]any{
		"currentBalance": newBalance.String(),
		"lastPaidMonth":  month.String(),
	}
	if err := s.store.Update(ctx, s.paths.Debt(debtID), fields); err != nil {
		return nil, fmt.Errorf("update debt balance: %w", err)
	}

	if s.reports != nil {
		s.reports.InvalidateMonth(tx.EffectiveMonth)
	}
	slog.InfoContext(ctx, "Recorded debt payment",
		"debt_id", debtID,
		"month", month.String(),
		"interest", interest.String(),
		"principal", principal.String(),
		"new_balance", newBalance.String(),
	)
	return &PaymentResult{
		TransactionID: txID,
		Month:         month,
		Interest:      interest,
		Principal:     principal,
		NewBalance:    newBalance,
	}, nil
}
