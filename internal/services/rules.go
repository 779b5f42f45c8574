package services

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// RuleService manages recurring rules. Every mutation re-applies the
// current month so the materialized transactions track the definitions.
type RuleService struct {
	store   store.Store
	paths   store.Paths
	applier *Applier
}

func NewRuleService(s store.Store, paths store.Paths, applier *Applier) *RuleService {
	return &RuleService{store: s, paths: paths, applier: applier}
}

func (s *RuleService) Create(ctx context.Context, rule core.RecurringRule) (core.RecurringRule, error) {
	if err := rule.Validate(); err != nil {
		return core.RecurringRule{}, err
	}
	id, err := s.store.Add(ctx, s.paths.RecurringRules(), rule.Doc())
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("create recurring rule: %w", err)
	}
	rule.ID = id
	s.reapply(ctx)
	slog.InfoContext(ctx, "Created recurring rule", "rule_id", id, "category", rule.Category)
	return rule, nil
}

func (s *RuleService) Get(ctx context.Context, id string) (core.RecurringRule, error) {
	doc, err := s.store.Get(ctx, s.paths.RecurringRule(id))
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("load recurring rule %s: %w", id, err)
	}
	return core.RecurringRuleFromDoc(doc.ID, doc.Data), nil
}

func (s *RuleService) List(ctx context.Context) ([]core.RecurringRule, error) {
	docs, err := s.store.ListAll(ctx, s.paths.RecurringRules())
	if err != nil {
		return nil, fmt.Errorf("list recurring rules: %w", err)
	}
	rules := make([]core.RecurringRule, 0, len(docs))
	for _, doc := range docs {
		rules = append(rules, core.RecurringRuleFromDoc(doc.ID, doc.Data))
	}
	return rules, nil
}

func (s *RuleService) Save(ctx context.Context, rule core.RecurringRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if rule.ID == "" {
		return fmt.Errorf("recurring rule id is required")
	}
	if err := s.store.Set(ctx, s.paths.RecurringRule(rule.ID), rule.Doc(), false); err != nil {
		return fmt.Errorf("save recurring rule %s: %w", rule.ID, err)
	}
	s.reapply(ctx)
	return nil
}

// Delete removes the rule definition. Already materialized transactions
// stay in the ledger; only future applies stop generating them.
func (s *RuleService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.paths.RecurringRule(id)); err != nil {
		return fmt.Errorf("delete recurring rule %s: %w", id, err)
	}
	s.reapply(ctx)
	return nil
}

// reapply refreshes the current month after a definition change. Best
// effort: the rule write already succeeded and the next scheduled apply
// picks up whatever this one misses.
func (s *RuleService) reapply(ctx context.Context) {
	if s.applier == nil {
		return
	}
	if err := s.applier.ApplyRuleChange(ctx, core.CurrentMonth()); err != nil {
		slog.WarnContext(ctx, "Failed to re-apply month after rule change", "error", err)
	}
}
