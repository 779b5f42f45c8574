package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// TransactionService manages manually entered transactions. The effective
// month is always derived from the date and the cutoff at write time;
// callers never set it directly.
type TransactionService struct {
	store   store.Store
	paths   store.Paths
	reports ReportInvalidator
}

func NewTransactionService(s store.Store, paths store.Paths, reports ReportInvalidator) *TransactionService {
	return &TransactionService{store: s, paths: paths, reports: reports}
}

func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	settings, err := loadSettings(ctx, s.store, s.paths)
	if err != nil {
		return core.Transaction{}, err
	}

	tx.Amount = core.Round2(tx.Amount)
	tx.EffectiveMonth = core.EffectiveMonth(tx.Date, settings.CutoffDay)
	tx.UpdatedAt = time.Now().UTC()
	id, err := s.store.Add(ctx, s.paths.Transactions(), tx.Doc())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	tx.ID = id

	s.invalidate(tx.EffectiveMonth)
	slog.InfoContext(ctx, "Created transaction",
		"tx_id", id,
		"type", string(tx.Type),
		"amount", tx.Amount.String(),
		"month", tx.EffectiveMonth.String(),
	)
	return tx, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	doc, err := s.store.Get(ctx, s.paths.Transaction(id))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction %s: %w", id, err)
	}
	return core.TransactionFromDoc(doc.ID, doc.Data), nil
}

// Save rewrites a transaction, rederiving its effective month in case the
// date moved across the cutoff.
func (s *TransactionService) Save(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		return core.Transaction{}, errors.New("transaction id is required")
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	settings, err := loadSettings(ctx, s.store, s.paths)
	if err != nil {
		return core.Transaction{}, err
	}

	previous := core.Month{}
	if doc, err := s.store.Get(ctx, s.paths.Transaction(tx.ID)); err == nil {
		previous = core.TransactionFromDoc(doc.ID, doc.Data).EffectiveMonth
	}

	tx.Amount = core.Round2(tx.Amount)
	tx.EffectiveMonth = core.EffectiveMonth(tx.Date, settings.CutoffDay)
	tx.UpdatedAt = time.Now().UTC()
	if err := s.store.Set(ctx, s.paths.Transaction(tx.ID), tx.Doc(), false); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction %s: %w", tx.ID, err)
	}

	s.invalidate(tx.EffectiveMonth)
	if !previous.IsZero() && previous.String() != tx.EffectiveMonth.String() {
		s.invalidate(previous)
	}
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	var month core.Month
	if doc, err := s.store.Get(ctx, s.paths.Transaction(id)); err == nil {
		month = core.TransactionFromDoc(doc.ID, doc.Data).EffectiveMonth
	}
	if err := s.store.Delete(ctx, s.paths.Transaction(id)); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if !month.IsZero() {
		s.invalidate(month)
	}
	return nil
}

// ListMonth returns the transactions whose effective month matches,
// ordered by date.
func (s *TransactionService) ListMonth(ctx context.Context, month core.Month) ([]core.Transaction, error) {
	filters := []store.Filter{{Field: "effectiveMonth", Value: month.String()}}
	docs, err := s.store.Query(ctx, s.paths.Transactions(), filters, "date")
	if err != nil {
		return nil, fmt.Errorf("query transactions for %s: %w", month, err)
	}
	txs := make([]core.Transaction, 0, len(docs))
	for _, doc := range docs {
		txs = append(txs, core.TransactionFromDoc(doc.ID, doc.Data))
	}
	return txs, nil
}

// ListAll returns every stored transaction. The net trend and the cutoff
// reconciler both need the full ledger.
func (s *TransactionService) ListAll(ctx context.Context) ([]core.Transaction, error) {
	docs, err := s.store.ListAll(ctx, s.paths.Transactions())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs := make([]core.Transaction, 0, len(docs))
	for _, doc := range docs {
		txs = append(txs, core.TransactionFromDoc(doc.ID, doc.Data))
	}
	return txs, nil
}

func (s *TransactionService) invalidate(month core.Month) {
	if s.reports == nil {
		return
	}
	s.reports.InvalidateMonth(month)
}
