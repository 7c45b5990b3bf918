package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const (
	minCategoryName = 2
	maxCategoryName = 50
)

var (
	// ErrCategoryNameInvalid is returned for a blank or out-of-range category name.
	ErrCategoryNameInvalid = apperrors.Validation("CATEGORY_NAME_INVALID", "Valid category name is required")
	// ErrCategoryExists is returned on a duplicate category name.
	ErrCategoryExists = apperrors.Conflict("CATEGORY_EXISTS", "Category already exists")
)

// CategoryService manages product categories.
type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, rawID string) error
	// CategoryProducts lists products of a category id; unknown ids yield an empty list.
	CategoryProducts(ctx context.Context, rawID string) ([]model.Product, error)
}

type categoryService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
}

// NewCategoryService creates a new category service.
func NewCategoryService(categories repository.CategoryRepository, products repository.ProductRepository) CategoryService {
	return &categoryService{categories: categories, products: products}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch categories", err)
	}
	return categories, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < minCategoryName || n > maxCategoryName {
		return nil, ErrCategoryNameInvalid
	}

	category := &model.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, apperrors.Internal("Failed to create category", errors.Wrap(err, "create category"))
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return ErrCategoryNotFound
	}
	err = s.categories.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return apperrors.Internal("Failed to delete category", err)
	}
	return nil
}

func (s *categoryService) CategoryProducts(ctx context.Context, rawID string) ([]model.Product, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return []model.Product{}, nil
	}
	products, err := s.products.ListByCategory(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}
	return products, nil
}
