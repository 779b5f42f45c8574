package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// BillService manages bill definitions and their per-month paid flags.
// Definition changes re-apply the current month, like recurring rules.
type BillService struct {
	store   store.Store
	paths   store.Paths
	reports ReportInvalidator
	applier *Applier
}

func NewBillService(s store.Store, paths store.Paths, reports ReportInvalidator, applier *Applier) *BillService {
	return &BillService{store: s, paths: paths, reports: reports, applier: applier}
}

func (s *BillService) Create(ctx context.Context, bill core.Bill) (core.Bill, error) {
	if err := bill.Validate(); err != nil {
		return core.Bill{}, err
	}
	id, err := s.store.Add(ctx, s.paths.Bills(), bill.Doc())
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}
	bill.ID = id
	s.reapply(ctx)
	slog.InfoContext(ctx, "Created bill", "bill_id", id, "name", bill.Name)
	return bill, nil
}

func (s *BillService) Get(ctx context.Context, id string) (core.Bill, error) {
	doc, err := s.store.Get(ctx, s.paths.Bill(id))
	if err != nil {
		return core.Bill{}, fmt.Errorf("load bill %s: %w", id, err)
	}
	return core.BillFromDoc(doc.ID, doc.Data), nil
}

func (s *BillService) List(ctx context.Context) ([]core.Bill, error) {
	docs, err := s.store.ListAll(ctx, s.paths.Bills())
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	bills := make([]core.Bill, 0, len(docs))
	for _, doc := range docs {
		bills = append(bills, core.BillFromDoc(doc.ID, doc.Data))
	}
	return bills, nil
}

func (s *BillService) Save(ctx context.Context, bill core.Bill) error {
	if err := bill.Validate(); err != nil {
		return err
	}
	if bill.ID == "" {
		return errors.New("bill id is required")
	}
	if err := s.store.Set(ctx, s.paths.Bill(bill.ID), bill.Doc(), false); err != nil {
		return fmt.Errorf("save bill %s: %w", bill.ID, err)
	}
	s.reapply(ctx)
	return nil
}

func (s *BillService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.paths.Bill(id)); err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}
	s.reapply(ctx)
	return nil
}

// SetPaid flips the bill's paid flag for one month. The status document
// is keyed on bill and month, so toggling is an upsert, not an append.
func (s *BillService) SetPaid(ctx context.Context, billID string, month core.Month, paid bool, paidDate core.Date) (core.BillStatus, error) {
	if _, err := s.store.Get(ctx, s.paths.Bill(billID)); err != nil {
		return core.BillStatus{}, fmt.Errorf("load bill %s: %w", billID, err)
	}

	status := core.BillStatus{BillID: billID, Month: month, Paid: paid}
	if paid {
		if paidDate.IsZero() {
			paidDate = core.Today()
		}
		status.PaidDate = paidDate
	}
	if err := s.store.Set(ctx, s.paths.BillStatus(billID, month.String()), status.Doc(), false); err != nil {
		return core.BillStatus{}, fmt.Errorf("save bill status: %w", err)
	}

	if s.reports != nil {
		s.reports.InvalidateMonth(month)
	}
	slog.InfoContext(ctx, "Updated bill status",
		"bill_id", billID,
		"month", month.String(),
		"paid", paid,
	)
	return status, nil
}

// ListStatuses returns the stored paid flags for one month. Bills with no
// status document for the month simply have no entry.
func (s *BillService) ListStatuses(ctx context.Context, month core.Month) ([]core.BillStatus, error) {
	filters := []store.Filter{{Field: "month", Value: month.String()}}
	docs, err := s.store.Query(ctx, s.paths.BillStatuses(), filters, "")
	if err != nil {
		return nil, fmt.Errorf("query bill statuses for %s: %w", month, err)
	}
	statuses := make([]core.BillStatus, 0, len(docs))
	for _, doc := range docs {
		statuses = append(statuses, core.BillStatusFromDoc(doc.Data))
	}
	return statuses, nil
}

func (s *BillService) reapply(ctx context.Context) {
	if s.applier == nil {
		return
	}
	if err := s.applier.ApplyRuleChange(ctx, core.CurrentMonth()); err != nil {
		slog.WarnContext(ctx, "Failed to re-apply month after bill change", "error", err)
	}
}
