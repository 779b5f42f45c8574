package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// PlanService stores one budget plan per month, keyed by the month
// itself.
type PlanService struct {
	store   store.Store
	paths   store.Paths
	reports ReportInvalidator
}

func NewPlanService(s store.Store, paths store.Paths, reports ReportInvalidator) *PlanService {
	return &PlanService{store: s, paths: paths, reports: reports}
}

// Get returns the plan for the month. A month that was never planned
// yields an empty plan rather than an error.
func (s *PlanService) Get(ctx context.Context, month core.Month) (core.Plan, error) {
	doc, err := s.store.Get(ctx, s.paths.Plan(month.String()))
	if errors.Is(err, store.ErrNotFound) {
		return core.Plan{Month: month}, nil
	}
	if err != nil {
		return core.Plan{}, fmt.Errorf("load plan %s: %w", month, err)
	}
	return core.PlanFromDoc(month, doc.Data), nil
}

// Save replaces the month's plan. Items without group and category are
// dropped; the rest must validate.
func (s *PlanService) Save(ctx context.Context, plan core.Plan) error {
	if err := plan.Month.Validate(); err != nil {
		return fmt.Errorf("invalid plan month: %w", err)
	}
	for i, item := range plan.Items {
		if item.Empty() {
			continue
		}
		if err := item.Validate(); err != nil {
			return fmt.Errorf("plan item %d: %w", i, err)
		}
	}

	if err := s.store.Set(ctx, s.paths.Plan(plan.Month.String()), plan.Doc(), false); err != nil {
		return fmt.Errorf("save plan %s: %w", plan.Month, err)
	}
	if s.reports != nil {
		s.reports.InvalidateMonth(plan.Month)
	}
	slog.InfoContext(ctx, "Saved plan", "month", plan.Month.String(), "items", len(plan.Items))
	return nil
}
