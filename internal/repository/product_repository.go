package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/model"
)

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error)
	// SearchByName returns up to limit products whose name contains query, case-insensitively.
	SearchByName(ctx context.Context, query string, limit int) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Save(product).Error
}

func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("stock", stock).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Preload("Category").Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) SearchByName(ctx context.Context, query string, limit int) ([]model.Product, error) {
	var products []model.Product
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("LOWER(name) LIKE ?", pattern).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
