package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/model"
)

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	// Create saves the order and its items in one transaction.
	Create(ctx context.Context, order *model.Order) error
	// FindByID loads an order with items and their current products.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	// ListAll returns every order with its owner, newest first.
	ListAll(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User").Create(order).Error
	})
}

func (r *orderRepository) withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Items.Product")
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := r.withItems(r.db.WithContext(ctx)).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	if err := r.withItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := r.withItems(r.db.WithContext(ctx)).
		Preload("User").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
