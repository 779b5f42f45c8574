package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/store"
)

// trendMonths is the width of the net trend window: the anchor month and
// the eleven before it.
const trendMonths = 12

// ErrExportNotConfigured is returned by Export when the session was built
// without an exporter.
var ErrExportNotConfigured = errors.New("sheet export is not configured")

// Exporter pushes a finished monthly report to an external sheet. A nil
// exporter means exporting is not configured.
type Exporter interface {
	ExportMonthlyReport(ctx context.Context, report *MonthlyReport) error
}

type (
	// ReportTotals sums the report rows per transaction type.
	ReportTotals struct {
		PlannedIncome   decimal.Decimal `json:"plannedIncome"`
		ActualIncome    decimal.Decimal `json:"actualIncome"`
		PlannedExpenses decimal.Decimal `json:"plannedExpenses"`
		ActualExpenses  decimal.Decimal `json:"actualExpenses"`
		Net             decimal.Decimal `json:"net"`
	}

	// MonthlyReport is the full plan-vs-actual view of one accounting
	// month.
	MonthlyReport struct {
		Month       core.Month        `json:"month"`
		CutoffDay   int               `json:"cutoffDay"`
		Rows        []core.MonthlyRow `json:"rows"`
		Totals      ReportTotals      `json:"totals"`
		UnpaidBills core.UnpaidBills  `json:"unpaidBills"`
		Trend       []core.TrendPoint `json:"trend"`
		GeneratedAt time.Time         `json:"generatedAt"`
	}
)

// ReportService assembles monthly reports and keeps a small LRU of
// recently viewed months. Writes elsewhere invalidate the affected month;
// the trend embedded in other cached months refreshes when its TTL runs
// out.
type ReportService struct {
	store    store.Store
	paths    store.Paths
	cache    *cache.LRUCache[*MonthlyReport]
	exporter Exporter
}

func NewReportService(s store.Store, paths store.Paths, size int, ttl time.Duration, exporter Exporter) *ReportService {
	return &ReportService{
		store:    s,
		paths:    paths,
		cache:    cache.NewLRUCache[*MonthlyReport](size, ttl),
		exporter: exporter,
	}
}

// Get returns the report for the month, cached or freshly assembled.
func (s *ReportService) Get(ctx context.Context, month core.Month) (*MonthlyReport, error) {
	if report, ok := s.cache.Get(month.String()); ok {
		return report, nil
	}
	report, err := s.build(ctx, month)
	if err != nil {
		return nil, err
	}
	s.cache.Set(month.String(), report)
	return report, nil
}

// Export sends the month's report to the configured sheet exporter.
func (s *ReportService) Export(ctx context.Context, month core.Month) error {
	if s.exporter == nil {
		return ErrExportNotConfigured
	}
	report, err := s.Get(ctx, month)
	if err != nil {
		return err
	}
	if err := s.exporter.ExportMonthlyReport(ctx, report); err != nil {
		return fmt.Errorf("export report %s: %w", month, err)
	}
	slog.InfoContext(ctx, "Exported monthly report", "month", month.String(), "rows", len(report.Rows))
	return nil
}

func (s *ReportService) InvalidateMonth(month core.Month) {
	s.cache.Delete(month.String())
}

func (s *ReportService) InvalidateAll() {
	s.cache.Clear()
}

func (s *ReportService) build(ctx context.Context, month core.Month) (*MonthlyReport, error) {
	settings, err := loadSettings(ctx, s.store, s.paths)
	if err != nil {
		return nil, err
	}

	plan, err := s.loadPlan(ctx, month)
	if err != nil {
		return nil, err
	}

	filters := []store.Filter{{Field: "effectiveMonth", Value: month.String()}}
	txDocs, err := s.store.Query(ctx, s.paths.Transactions(), filters, "date")
	if err != nil {
		return nil, fmt.Errorf("query transactions for %s: %w", month, err)
	}
	txs := make([]core.Transaction, 0, len(txDocs))
	for _, doc := range txDocs {
		txs = append(txs, core.TransactionFromDoc(doc.ID, doc.Data))
	}

	unpaid, err := s.loadUnpaidBills(ctx, month)
	if err != nil {
		return nil, err
	}

	trend, err := s.loadTrend(ctx, month)
	if err != nil {
		return nil, err
	}

	rows := core.BuildMonthlyRows(plan.Items, txs)
	return &MonthlyReport{
		Month:       month,
		CutoffDay:   settings.CutoffDay,
		Rows:        rows,
		Totals:      sumTotals(rows),
		UnpaidBills: unpaid,
		Trend:       trend,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *ReportService) loadPlan(ctx context.Context, month core.Month) (core.Plan, error) {
	doc, err := s.store.Get(ctx, s.paths.Plan(month.String()))
	if errors.Is(err, store.ErrNotFound) {
		return core.Plan{Month: month}, nil
	}
	if err != nil {
		return core.Plan{}, fmt.Errorf("load plan %s: %w", month, err)
	}
	return core.PlanFromDoc(month, doc.Data), nil
}

func (s *ReportService) loadUnpaidBills(ctx context.Context, month core.Month) (core.UnpaidBills, error) {
	billDocs, err := s.store.ListAll(ctx, s.paths.Bills())
	if err != nil {
		return core.UnpaidBills{}, fmt.Errorf("list bills: %w", err)
	}
	bills := make([]core.Bill, 0, len(billDocs))
	for _, doc := range billDocs {
		bills = append(bills, core.BillFromDoc(doc.ID, doc.Data))
	}

	filters := []store.Filter{{Field: "month", Value: month.String()}}
	statusDocs, err := s.store.Query(ctx, s.paths.BillStatuses(), filters, "")
	if err != nil {
		return core.UnpaidBills{}, fmt.Errorf("query bill statuses for %s: %w", month, err)
	}
	statuses := make([]core.BillStatus, 0, len(statusDocs))
	for _, doc := range statusDocs {
		statuses = append(statuses, core.BillStatusFromDoc(doc.Data))
	}

	return core.ComputeUnpaidBills(bills, statuses), nil
}

// loadTrend scans the whole ledger for the net series. The window is
// small and per-field range queries are not part of the store port, so a
// full scan keeps the backends simple.
func (s *ReportService) loadTrend(ctx context.Context, anchor core.Month) ([]core.TrendPoint, error) {
	docs, err := s.store.ListAll(ctx, s.paths.Transactions())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs := make([]core.Transaction, 0, len(docs))
	for _, doc := range docs {
		txs = append(txs, core.TransactionFromDoc(doc.ID, doc.Data))
	}
	return core.NetTrend(txs, anchor, trendMonths), nil
}

func sumTotals(rows []core.MonthlyRow) ReportTotals {
	var t ReportTotals
	for _, row := range rows {
		if row.Type == core.Income {
			t.PlannedIncome = t.PlannedIncome.Add(row.Planned)
			t.ActualIncome = t.ActualIncome.Add(row.Actual)
			continue
		}
		t.PlannedExpenses = t.PlannedExpenses.Add(row.Planned)
		t.ActualExpenses = t.ActualExpenses.Add(row.Actual)
	}
	t.PlannedIncome = core.Round2(t.PlannedIncome)
	t.ActualIncome = core.Round2(t.ActualIncome)
	t.PlannedExpenses = core.Round2(t.PlannedExpenses)
	t.ActualExpenses = core.Round2(t.ActualExpenses)
	t.Net = t.ActualIncome.Sub(t.ActualExpenses)
	return t
}
