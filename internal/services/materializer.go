package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// ReportInvalidator drops cached report months after writes change the
// underlying transactions. A nil invalidator is a no-op.
type ReportInvalidator interface {
	InvalidateMonth(month core.Month)
	InvalidateAll()
}

// ApplyResult reports how many transactions a month application touched.
type ApplyResult struct {
	Month     core.Month `json:"month"`
	Recurring int        `json:"recurring"`
	Bills     int        `json:"bills"`
}

// Materializer expands recurring rules and active bills into concrete
// transactions for a target month. Every generated transaction lives at a
// deterministic id, so applying the same month twice converges to the
// same stored state instead of duplicating rows.
type Materializer struct {
	store   store.Store
	paths   store.Paths
	reports ReportInvalidator
}

func NewMaterializer(s store.Store, paths store.Paths, reports ReportInvalidator) *Materializer {
	return &Materializer{store: s, paths: paths, reports: reports}
}

// ApplyMonth materializes recurring rules and bills for the month. Writes
// within each pass run concurrently and independently: one failed write
// does not stop the others, and the next apply heals any gap.
func (m *Materializer) ApplyMonth(ctx context.Context, month core.Month) (*ApplyResult, error) {
	settings, err := loadSettings(ctx, m.store, m.paths)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{Month: month}
	recurring, recErr := m.ensureRecurring(ctx, month, settings.CutoffDay)
	result.Recurring = recurring
	bills, billErr := m.ensureBills(ctx, month, settings.CutoffDay)
	result.Bills = bills

	m.invalidate(month)

	if err := errors.Join(recErr, billErr); err != nil {
		return result, fmt.Errorf("apply month %s: %w", month, err)
	}
	slog.InfoContext(ctx, "Applied month",
		"month", month.String(),
		"recurring", recurring,
		"bills", bills,
	)
	return result, nil
}

// EnsureRecurringForMonth materializes only the recurring rules.
func (m *Materializer) EnsureRecurringForMonth(ctx context.Context, month core.Month) (int, error) {
	settings, err := loadSettings(ctx, m.store, m.paths)
	if err != nil {
		return 0, err
	}
	n, err := m.ensureRecurring(ctx, month, settings.CutoffDay)
	m.invalidate(month)
	return n, err
}

// EnsureBillsForMonth materializes only the bill instances.
func (m *Materializer) EnsureBillsForMonth(ctx context.Context, month core.Month) (int, error) {
	settings, err := loadSettings(ctx, m.store, m.paths)
	if err != nil {
		return 0, err
	}
	n, err := m.ensureBills(ctx, month, settings.CutoffDay)
	m.invalidate(month)
	return n, err
}

func (m *Materializer) ensureRecurring(ctx context.Context, month core.Month, cutoffDay int) (int, error) {
	docs, err := m.store.ListAll(ctx, m.paths.RecurringRules())
	if err != nil {
		return 0, fmt.Errorf("list recurring rules: %w", err)
	}

	now := time.Now().UTC()
	var g errgroup.Group
	var written atomic.Int64
	for _, doc := range docs {
		rule := core.RecurringRuleFromDoc(doc.ID, doc.Data)
		if !rule.Active || !month.InRange(rule.StartMonth, rule.EndMonth) {
			continue
		}
		g.Go(func() error {
			date := month.DateOn(rule.DayOfMonth)
			tx := core.Transaction{
				ID:             core.RecurringTransactionID(rule.ID, date),
				Date:           date,
				Type:           rule.Type,
				Group:          rule.Group,
				Category:       rule.Category,
				Amount:         rule.Amount,
				EffectiveMonth: core.EffectiveMonth(date, cutoffDay),
				IsRecurring:    true,
				RecurringID:    rule.ID,
				SourceMonth:    month,
				GeneratedAt:    now,
				UpdatedAt:      now,
			}
			if err := m.store.Set(ctx, m.paths.Transaction(tx.ID), tx.Doc(), false); err != nil {
				return fmt.Errorf("write recurring transaction %s: %w", tx.ID, err)
			}
			written.Add(1)
			return nil
		})
	}
	err = g.Wait()
	return int(written.Load()), err
}

func (m *Materializer) ensureBills(ctx context.Context, month core.Month, cutoffDay int) (int, error) {
	docs, err := m.store.ListAll(ctx, m.paths.Bills())
	if err != nil {
		return 0, fmt.Errorf("list bills: %w", err)
	}

	now := time.Now().UTC()
	var g errgroup.Group
	var written atomic.Int64
	for _, doc := range docs {
		bill := core.BillFromDoc(doc.ID, doc.Data)
		if !bill.Active {
			continue
		}
		g.Go(func() error {
			date := month.DateOn(bill.DueDay)
			tx := core.Transaction{
				ID:             core.BillTransactionID(bill.ID, date),
				Date:           date,
				Type:           core.Expense,
				Group:          bill.Group,
				Category:       bill.Name,
				Amount:         bill.Amount,
				EffectiveMonth: core.EffectiveMonth(date, cutoffDay),
				IsBill:         true,
				BillID:         bill.ID,
				SourceMonth:    month,
				GeneratedAt:    now,
				UpdatedAt:      now,
			}
			if err := m.store.Set(ctx, m.paths.Transaction(tx.ID), tx.Doc(), false); err != nil {
				return fmt.Errorf("write bill transaction %s: %w", tx.ID, err)
			}
			written.Add(1)
			return nil
		})
	}
	err = g.Wait()
	return int(written.Load()), err
}

// invalidate drops the report cache for the months a materialization can
// touch. A transaction dated inside month lands either in month itself or
// in the following one, depending on the cutoff.
func (m *Materializer) invalidate(month core.Month) {
	if m.reports == nil {
		return
	}
	m.reports.InvalidateMonth(month)
	m.reports.InvalidateMonth(month.AddMonths(1))
}
