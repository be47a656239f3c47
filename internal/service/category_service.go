package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go-portal-app/internal/apperror"
	"go-portal-app/internal/auth"
	"go-portal-app/internal/data"
	"go-portal-app/internal/logger"
)

// MaxCategoryNameLength bounds category names. Names are not required to
// be unique.
const MaxCategoryNameLength = 100

// CategoryRepository defines the interface for database operations on
// categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *data.Category) error
	GetByID(ctx context.Context, id int64) (*data.Category, error)
	List(ctx context.Context) ([]*data.Category, error)
	ListWithCounts(ctx context.Context) ([]*data.Category, error)
	Update(ctx context.Context, category *data.Category) error
	Delete(ctx context.Context, id int64) error
}

// CategoryService orchestrates category workflows. All mutations are
// role-gated (dashboard role); there is no per-category ownership.
type CategoryService struct {
	categories CategoryRepository
	log        logger.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categories CategoryRepository, log logger.Logger) *CategoryService {
	return &CategoryService{categories: categories, log: log}
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.ValidationFailed("name", "name is required")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return "", apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxCategoryNameLength))
	}
	return name, nil
}

// Create adds a new category. Dashboard role required.
func (s *CategoryService) Create(ctx context.Context, principal auth.Principal, name string, description *string) (*data.Category, error) {
	if !auth.CanAccessDashboard(principal) {
		return nil, apperror.Forbidden("dashboard role required")
	}
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}

	category := &data.Category{Name: name, Description: description}
	if err := s.categories.Create(ctx, category); err != nil {
		s.log.Error(err, "failed to create category")
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return category, nil
}

// Edit updates an existing category. Dashboard role required.
func (s *CategoryService) Edit(ctx context.Context, principal auth.Principal, id int64, name string, description *string) (*data.Category, error) {
	if !auth.CanAccessDashboard(principal) {
		return nil, apperror.Forbidden("dashboard role required")
	}
	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading category: %w", err)
	}
	if existing == nil {
		return nil, apperror.NotFound("category", id)
	}
	name, err = validateCategoryName(name)
	if err != nil {
		return nil, err
	}

	existing.Name = name
	existing.Description = description
	if err := s.categories.Update(ctx, existing); err != nil {
		s.log.Error(err, "failed to update category")
		return nil, fmt.Errorf("updating category: %w", err)
	}
	return existing, nil
}

// Delete removes a category. The repository nullifies the category
// reference on every article pointing at it; the articles themselves are
// untouched.
func (s *CategoryService) Delete(ctx context.Context, principal auth.Principal, id int64) error {
	if !auth.CanAccessDashboard(principal) {
		return apperror.Forbidden("dashboard role required")
	}
	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading category: %w", err)
	}
	if existing == nil {
		return apperror.NotFound("category", id)
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}

// List retrieves all categories for the public filter dropdown.
func (s *CategoryService) List(ctx context.Context) ([]*data.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// Get retrieves a single category.
func (s *CategoryService) Get(ctx context.Context, id int64) (*data.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading category: %w", err)
	}
	if category == nil {
		return nil, apperror.NotFound("category", id)
	}
	return category, nil
}
