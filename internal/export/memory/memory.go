// Package memory implements the report exporter in process. It stands in
// for the Google Sheets client in tests and when no spreadsheet is
// configured.
package memory

import (
	"context"
	"sync"

	"bilancio/internal/services"
)

type Exporter struct {
	mu      sync.Mutex
	reports map[string]*services.MonthlyReport
}

var _ services.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{reports: make(map[string]*services.MonthlyReport)}
}

// ExportMonthlyReport keeps the latest report per month, matching the
// sheet client's replace-on-export behavior.
func (e *Exporter) ExportMonthlyReport(_ context.Context, report *services.MonthlyReport) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reports[report.Month.String()] = report
	return nil
}

// Report returns the last exported report for the month, if any.
func (e *Exporter) Report(month string) (*services.MonthlyReport, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	report, ok := e.reports[month]
	return report, ok
}

// Count reports how many distinct months have been exported.
func (e *Exporter) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.reports)
}
