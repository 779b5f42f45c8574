package services

import (
	"context"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// Defaults for the report cache when the session config leaves them zero.
const (
	defaultReportCacheSize = 24
	defaultReportCacheTTL  = 15 * time.Minute
)

type (
	// SessionConfig carries the dependencies a session is built from. A
	// nil Publisher applies months synchronously; a nil Exporter
	// disables report export.
	SessionConfig struct {
		UserID          string
		Store           store.Store
		Publisher       ApplyPublisher
		Exporter        Exporter
		ReportCacheSize int
		ReportCacheTTL  time.Duration
	}

	// Session bundles every service for one user over one store.
	Session struct {
		UserID       string
		Settings     *SettingsService
		Transactions *TransactionService
		Categories   *CategoryService
		Rules        *RuleService
		Bills        *BillService
		Debts        *DebtService
		Funds        *FundService
		Vehicles     *VehicleService
		Plans        *PlanService
		Reports      *ReportService
		Materializer *Materializer
		Applier      *Applier
	}
)

func NewSession(cfg SessionConfig) *Session {
	if cfg.ReportCacheSize <= 0 {
		cfg.ReportCacheSize = defaultReportCacheSize
	}
	if cfg.ReportCacheTTL <= 0 {
		cfg.ReportCacheTTL = defaultReportCacheTTL
	}

	paths := store.NewPaths(cfg.UserID)
	reports := NewReportService(cfg.Store, paths, cfg.ReportCacheSize, cfg.ReportCacheTTL, cfg.Exporter)
	materializer := NewMaterializer(cfg.Store, paths, reports)
	applier := NewApplier(cfg.Publisher, materializer)

	return &Session{
		UserID:       cfg.UserID,
		Settings:     NewSettingsService(cfg.Store, paths, reports, applier),
		Transactions: NewTransactionService(cfg.Store, paths, reports),
		Categories:   NewCategoryService(cfg.Store, paths),
		Rules:        NewRuleService(cfg.Store, paths, applier),
		Bills:        NewBillService(cfg.Store, paths, reports, applier),
		Debts:        NewDebtService(cfg.Store, paths, reports),
		Funds:        NewFundService(cfg.Store, paths, reports),
		Vehicles:     NewVehicleService(cfg.Store, paths),
		Plans:        NewPlanService(cfg.Store, paths, reports),
		Reports:      reports,
		Materializer: materializer,
		Applier:      applier,
	}
}

// Bootstrap seeds settings and materializes the current month. Run once
// at startup so a fresh install has a usable month without waiting for
// the worker.
func (s *Session) Bootstrap(ctx context.Context, cutoffDay int) error {
	if _, err := s.Settings.EnsureDefaults(ctx, cutoffDay); err != nil {
		return err
	}
	_, err := s.Materializer.ApplyMonth(ctx, core.CurrentMonth())
	return err
}
