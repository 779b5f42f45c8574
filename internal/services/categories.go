package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// ErrDuplicateCategory rejects a second category with the same group and
// name, compared case-insensitively.
var ErrDuplicateCategory = errors.New("category already exists")

// CategoryService manages the category catalog used to label plans and
// transactions.
type CategoryService struct {
	store store.Store
	paths store.Paths
}

func NewCategoryService(s store.Store, paths store.Paths) *CategoryService {
	return &CategoryService{store: s, paths: paths}
}

func (s *CategoryService) Create(ctx context.Context, category core.Category) (core.Category, error) {
	if err := category.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.checkUnique(ctx, category); err != nil {
		return core.Category{}, err
	}
	id, err := s.store.Add(ctx, s.paths.Categories(), category.Doc())
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	category.ID = id
	slog.InfoContext(ctx, "Created category", "category", category.Group+"/"+category.Name)
	return category, nil
}

// List returns all categories sorted by group then name, case-insensitive.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	docs, err := s.store.ListAll(ctx, s.paths.Categories())
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories := make([]core.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, core.CategoryFromDoc(doc.ID, doc.Data))
	}
	sort.Slice(categories, func(i, j int) bool {
		a, b := categories[i], categories[j]
		ag, bg := strings.ToLower(a.Group), strings.ToLower(b.Group)
		if ag != bg {
			return ag < bg
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return categories, nil
}

func (s *CategoryService) Save(ctx context.Context, category core.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	if category.ID == "" {
		return fmt.Errorf("category id is required")
	}
	if err := s.checkUnique(ctx, category); err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.paths.Category(category.ID), category.Doc(), false); err != nil {
		return fmt.Errorf("save category %s: %w", category.ID, err)
	}
	return nil
}

// checkUnique scans the catalog for another category with the same group
// and name, ignoring case. The catalog is tiny, a full scan is fine.
func (s *CategoryService) checkUnique(ctx context.Context, category core.Category) error {
	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	group := strings.ToLower(strings.TrimSpace(category.Group))
	name := strings.ToLower(strings.TrimSpace(category.Name))
	for _, other := range existing {
		if other.ID == category.ID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(other.Group)) == group &&
			strings.ToLower(strings.TrimSpace(other.Name)) == name {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateCategory, category.Group, category.Name)
		}
	}
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.paths.Category(id)); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}
