package service

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const searchLimit = 10

var (
	// ErrProductNotFound is returned when no product has the requested id.
	ErrProductNotFound = apperrors.NotFound("PRODUCT_NOT_FOUND", "Product not found")
	// ErrProductValidation is returned with per-field messages for bad product input.
	ErrProductValidation = apperrors.Validation("PRODUCT_VALIDATION_FAILED", "Validation failed")
	// ErrCategoryNotFound is returned when a category id or name matches nothing.
	ErrCategoryNotFound = apperrors.NotFound("CATEGORY_NOT_FOUND", "Category not found")
	// ErrCategoryEmpty is returned when a category exists but has no products.
	ErrCategoryEmpty = apperrors.NotFound("CATEGORY_EMPTY", "No products found in this category")
)

// ProductInput is the admin-supplied product. Price may be a JSON number or a numeric string.
type ProductInput struct {
	Name        string
	Description string
	Price       interface{}
	CategoryID  string
	Stock       *int
	Image       *model.Image
}

// ProductService serves the catalog and its administration.
type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, rawID string) (*model.Product, error)
	// ProductsByCategory accepts a category id or a case-insensitive category name.
	ProductsByCategory(ctx context.Context, ref string) ([]model.Product, error)
	Search(ctx context.Context, query string) ([]model.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, rawID string, input ProductInput) (*model.Product, error)
	UpdateStock(ctx context.Context, rawID string, stock interface{}) (int, error)
	DeleteProduct(ctx context.Context, rawID string) error
}

type productService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository) ProductService {
	return &productService{products: products, categories: categories}
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch products", err)
	}
	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, rawID string) (*model.Product, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch product", errors.Wrap(err, "find product"))
	}
	return product, nil
}

func (s *productService) ProductsByCategory(ctx context.Context, ref string) ([]model.Product, error) {
	categoryID, err := uuid.Parse(ref)
	if err != nil {
		category, err := s.categories.FindByName(ctx, ref)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		if err != nil {
			return nil, apperrors.Internal("Server error", errors.Wrap(err, "find category"))
		}
		categoryID = category.ID
	}

	products, err := s.products.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, apperrors.Internal("Server error", errors.Wrap(err, "list by category"))
	}
	if len(products) == 0 {
		return nil, ErrCategoryEmpty
	}
	return products, nil
}

func (s *productService) Search(ctx context.Context, query string) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Product{}, nil
	}
	products, err := s.products.SearchByName(ctx, query, searchLimit)
	if err != nil {
		return nil, apperrors.Internal("Search failed", err)
	}
	return products, nil
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	product := &model.Product{}
	if err := s.apply(ctx, product, input); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.Internal("Failed to create product", errors.Wrap(err, "create product"))
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, rawID string, input ProductInput) (*model.Product, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound.WithDetails("No product found with ID: " + rawID)
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to update product", errors.Wrap(err, "find product"))
	}

	if err := s.apply(ctx, product, input); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, apperrors.Internal("Failed to update product", errors.Wrap(err, "update product"))
	}
	return product, nil
}

// apply validates input and copies it onto product.
func (s *productService) apply(ctx context.Context, product *model.Product, input ProductInput) error {
	details := map[string]string{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		details["name"] = "Name is required"
	}

	price, priceErr := parsePrice(input.Price)
	if priceErr != "" {
		details["price"] = priceErr
	}

	var category *model.Category
	if input.CategoryID == "" {
		details["category"] = "Category is required"
	} else if categoryID, err := uuid.Parse(input.CategoryID); err != nil {
		details["category"] = "Category must be a valid identifier"
	} else {
		category, err = s.categories.FindByID(ctx, categoryID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			details["category"] = "Category not found"
		} else if err != nil {
			return apperrors.Internal("Failed to save product", errors.Wrap(err, "find category"))
		}
	}

	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}
	if stock < 0 {
		details["stock"] = "Must be a positive number"
	}

	if len(details) > 0 {
		return ErrProductValidation.WithDetails(details)
	}

	product.Name = name
	product.Description = input.Description
	product.Price = price
	product.Stock = stock
	product.CategoryID = category.ID
	product.Category = category
	product.Image = model.Image{}
	if input.Image != nil {
		product.Image = *input.Image
	}
	return nil
}

// parsePrice returns the price or a field message describing why it is unusable.
func parsePrice(raw interface{}) (decimal.Decimal, string) {
	var price decimal.Decimal
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, "Price is required"
	case float64:
		price = decimal.NewFromFloat(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return decimal.Zero, "Price is required"
		}
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, "Price must be a number"
		}
		price = parsed
	default:
		return decimal.Zero, "Price must be a number"
	}
	if price.IsNegative() {
		return decimal.Zero, "Price must not be negative"
	}
	return price, ""
}

func (s *productService) UpdateStock(ctx context.Context, rawID string, stock interface{}) (int, error) {
	n, ok := asNumber(stock)
	if !ok || n < 0 || n != float64(int(n)) {
		return 0, ErrProductValidation.WithDetails(map[string]string{"stock": "Must be a positive number"})
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return 0, ErrProductNotFound
	}

	if _, err := s.products.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, apperrors.Internal("Stock update failed", errors.Wrap(err, "find product"))
	}
	if err := s.products.UpdateStock(ctx, id, int(n)); err != nil {
		return 0, apperrors.Internal("Stock update failed", errors.Wrap(err, "update stock"))
	}
	return int(n), nil
}

func (s *productService) DeleteProduct(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return ErrProductNotFound
	}
	err = s.products.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return apperrors.Internal("Failed to delete product", err)
	}
	return nil
}
