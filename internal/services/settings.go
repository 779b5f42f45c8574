// Package services implements the month-accounting operations on top of
// the document store: settings, materialization of recurring rules and
// bills, debt payments, fund contributions, vehicle maintenance, plans,
// and the monthly report.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// loadSettings reads the per-user settings document. A user that never
// saved settings gets the defaults instead of an error.
func loadSettings(ctx context.Context, s store.Store, paths store.Paths) (core.Settings, error) {
	doc, err := s.Get(ctx, paths.Settings())
	if errors.Is(err, store.ErrNotFound) {
		return core.Settings{CutoffDay: core.DefaultCutoffDay}, nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return core.SettingsFromDoc(doc.Data), nil
}

// ReconcileResult reports a pass over stored transactions after the
// cutoff day changed.
type ReconcileResult struct {
	CutoffDay int `json:"cutoffDay"`
	Scanned   int `json:"scanned"`
	Updated   int `json:"updated"`
}

// SettingsService reads and updates user settings. Changing the cutoff
// day rewrites the effective month of every affected transaction.
type SettingsService struct {
	store   store.Store
	paths   store.Paths
	reports ReportInvalidator
	applier *Applier
}

func NewSettingsService(s store.Store, paths store.Paths, reports ReportInvalidator, applier *Applier) *SettingsService {
	return &SettingsService{store: s, paths: paths, reports: reports, applier: applier}
}

func (s *SettingsService) Get(ctx context.Context) (core.Settings, error) {
	return loadSettings(ctx, s.store, s.paths)
}

// EnsureDefaults seeds the settings document on first run so later reads
// and writes have a base to merge into.
func (s *SettingsService) EnsureDefaults(ctx context.Context, cutoffDay int) (core.Settings, error) {
	doc, err := s.store.Get(ctx, s.paths.Settings())
	if err == nil {
		return core.SettingsFromDoc(doc.Data), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return core.Settings{}, fmt.Errorf("check settings: %w", err)
	}

	settings := core.Settings{CutoffDay: core.ClampDay(cutoffDay)}
	if err := s.store.Set(ctx, s.paths.Settings(), settings.Doc(), false); err != nil {
		return core.Settings{}, fmt.Errorf("seed settings: %w", err)
	}
	slog.InfoContext(ctx, "Seeded default settings", "cutoff_day", settings.CutoffDay)
	return settings, nil
}

// UpdateCutoff stores the new cutoff day and reconciles every stored
// transaction against it. The re-apply of the current month is best
// effort; the saved setting and the reconciliation are what matter.
func (s *SettingsService) UpdateCutoff(ctx context.Context, day int) (*ReconcileResult, error) {
	day = core.ClampDay(day)
	settings := core.Settings{CutoffDay: day}
	if err := s.store.Set(ctx, s.paths.Settings(), settings.Doc(), true); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	result, err := s.RecomputeAllEffectiveMonths(ctx, day)
	if err != nil {
		return result, err
	}

	if s.reports != nil {
		s.reports.InvalidateAll()
	}
	if s.applier != nil {
		if err := s.applier.ApplyCutoffChange(ctx, core.CurrentMonth()); err != nil {
			// Don't fail the update: materialization is idempotent and
			// the next apply heals whatever this one missed.
			slog.WarnContext(ctx, "Failed to re-apply month after cutoff change", "error", err)
		}
	}

	slog.InfoContext(ctx, "Updated cutoff day",
		"cutoff_day", day,
		"scanned", result.Scanned,
		"updated", result.Updated,
	)
	return result, nil
}

// RecomputeAllEffectiveMonths rescans every transaction and rewrites the
// effective month where the stored value no longer matches the cutoff.
// Unchanged documents are left untouched, so a second pass with the same
// cutoff writes nothing.
func (s *SettingsService) RecomputeAllEffectiveMonths(ctx context.Context, cutoffDay int) (*ReconcileResult, error) {
	docs, err := s.store.ListAll(ctx, s.paths.Transactions())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	result := &ReconcileResult{CutoffDay: cutoffDay}
	for _, doc := range docs {
		result.Scanned++
		tx := core.TransactionFromDoc(doc.ID, doc.Data)
		if tx.Date.IsZero() {
			continue
		}
		computed := core.EffectiveMonth(tx.Date, cutoffDay)
		if computed.String() == tx.EffectiveMonth.String() {
			continue
		}
		fields := map[string]any{"effectiveMonth": computed.String()}
		if err := s.store.Update(ctx, s.paths.Transaction(doc.ID), fields); err != nil {
			return result, fmt.Errorf("update transaction %s: %w", doc.ID, err)
		}
		result.Updated++
	}
	return result, nil
}
