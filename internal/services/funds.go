package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// ContributionResult reports a booked fund contribution together with the
// fund's refreshed totals.
type ContributionResult struct {
	TransactionID string          `json:"transactionId"`
	Fund          core.Fund       `json:"fund"`
	MonthlyNeeded decimal.Decimal `json:"monthlyNeeded"`
}

// FundService manages sinking funds and their contribution ledger.
type FundService struct {
	store   store.Store
	paths   store.Paths
	reports ReportInvalidator
}

func NewFundService(s store.Store, paths store.Paths, reports ReportInvalidator) *FundService {
	return &FundService{store: s, paths: paths, reports: reports}
}

func (s *FundService) Create(ctx context.Context, fund core.Fund) (core.Fund, error) {
	if err := fund.Validate(); err != nil {
		return core.Fund{}, err
	}
	id, err := s.store.Add(ctx, s.paths.Funds(), fund.Doc())
	if err != nil {
		return core.Fund{}, fmt.Errorf("create fund: %w", err)
	}
	fund.ID = id
	slog.InfoContext(ctx, "Created fund", "fund_id", id, "name", fund.Name)
	return fund, nil
}

func (s *FundService) Get(ctx context.Context, id string) (core.Fund, error) {
	doc, err := s.store.Get(ctx, s.paths.Fund(id))
	if err != nil {
		return core.Fund{}, fmt.Errorf("load fund %s: %w", id, err)
	}
	return core.FundFromDoc(doc.ID, doc.Data), nil
}

func (s *FundService) List(ctx context.Context) ([]core.Fund, error) {
	docs, err := s.store.ListAll(ctx, s.paths.Funds())
	if err != nil {
		return nil, fmt.Errorf("list funds: %w", err)
	}
	funds := make([]core.Fund, 0, len(docs))
	for _, doc := range docs {
		funds = append(funds, core.FundFromDoc(doc.ID, doc.Data))
	}
	return funds, nil
}

func (s *FundService) Save(ctx context.Context, fund core.Fund) error {
	if err := fund.Validate(); err != nil {
		return err
	}
	if fund.ID == "" {
		return fmt.Errorf("fund id is required")
	}
	if err := s.store.Set(ctx, s.paths.Fund(fund.ID), fund.Doc(), false); err != nil {
		return fmt.Errorf("save fund %s: %w", fund.ID, err)
	}
	return nil
}

func (s *FundService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.paths.Fund(id)); err != nil {
		return fmt.Errorf("delete fund %s: %w", id, err)
	}
	return nil
}

// Contribute books an amount toward the fund for the given accounting
// month, dated today. The transaction id is keyed on fund, month and
// date, so a second contribution the same day overwrites the ledger line
// while the fund's saved total still grows by each call's amount.
func (s *FundService) Contribute(ctx context.Context, fundID string, amount decimal.Decimal, month core.Month, today core.Date) (*ContributionResult, error) {
	if amount.Sign() <= 0 {
		return nil, core.ErrInvalidAmount
	}

	doc, err := s.store.Get(ctx, s.paths.Fund(fundID))
	if err != nil {
		return nil, fmt.Errorf("load fund %s: %w", fundID, err)
	}
	fund := core.FundFromDoc(doc.ID, doc.Data)

	settings, err := loadSettings(ctx, s.store, s.paths)
	if err != nil {
		return nil, err
	}

	amount = core.Round2(amount)
	now := time.Now().UTC()
	tx := core.Transaction{
		ID:                 core.FundTransactionID(fundID, month, today),
		Date:               today,
		Type:               core.Expense,
		Group:              "Savings",
		Category:           fund.Name,
		Description:        fund.Name + " contribution",
		Amount:             amount,
		EffectiveMonth:     core.EffectiveMonth(today, settings.CutoffDay),
		IsFundContribution: true,
		FundID:             fundID,
		SourceMonth:        month,
		GeneratedAt:        now,
		UpdatedAt:          now,
	}
	if err := s.store.Set(ctx, s.paths.Transaction(tx.ID), tx.Doc(), false); err != nil {
		return nil, fmt.Errorf("write contribution transaction: %w", err)
	}

	fund.CurrentSaved = core.Round2(fund.CurrentSaved.Add(amount))
	fields := map[string]any{"currentSaved": fund.CurrentSaved.String()}
	if err := s.store.Update(ctx, s.paths.Fund(fundID), fields); err != nil {
		return nil, fmt.Errorf("update fund total: %w", err)
	}

	if s.reports != nil {
		s.reports.InvalidateMonth(tx.EffectiveMonth)
	}
	slog.InfoContext(ctx, "Recorded fund contribution",
		"fund_id", fundID,
		"month", month.String(),
		"amount", amount.String(),
		"saved", fund.CurrentSaved.String(),
	)
	return &ContributionResult{
		TransactionID: tx.ID,
		Fund:          fund,
		MonthlyNeeded: fund.MonthlyNeeded(core.MonthOf(today)),
	}, nil
}
