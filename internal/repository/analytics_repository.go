package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/model"
)

// SalesGrouping selects the calendar bucket used by SalesByPeriod.
type SalesGrouping string

const (
	GroupByMonth SalesGrouping = "month"
	GroupByWeek  SalesGrouping = "week"
	GroupByDay   SalesGrouping = "day"
)

// SalesBucket is revenue and order count for one calendar bucket.
type SalesBucket struct {
	Bucket  int
	Revenue decimal.Decimal
	Orders  int64
}

// ProductSales is the number of units sold for one product.
type ProductSales struct {
	ProductID    uuid.UUID
	SnapshotName string
	CurrentName  *string
	Units        int64
}

// AnalyticsRepository runs read-only aggregates over orders and users.
// Cancelled orders are excluded from every order aggregate.
type AnalyticsRepository interface {
	Revenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	CountOrders(ctx context.Context, from, to time.Time) (int64, error)
	CountNewUsers(ctx context.Context, from, to time.Time) (int64, error)
	SalesByPeriod(ctx context.Context, from, to time.Time, group SalesGrouping) ([]SalesBucket, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
	RecentOrders(ctx context.Context, limit int) ([]model.Order, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) settledOrders(ctx context.Context, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("orders.created_at BETWEEN ? AND ?", from, to).
		Where("orders.status <> ?", model.OrderStatusCancelled)
}

func (r *analyticsRepository) Revenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.settledOrders(ctx, from, to).
		Select("SUM(payment_total)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *analyticsRepository) CountOrders(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.settledOrders(ctx, from, to).Count(&n).Error
	return n, err
}

func (r *analyticsRepository) CountNewUsers(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("created_at BETWEEN ? AND ?", from, to).
		Count(&n).Error
	return n, err
}

func (r *analyticsRepository) SalesByPeriod(ctx context.Context, from, to time.Time, group SalesGrouping) ([]SalesBucket, error) {
	var expr string
	switch group {
	case GroupByMonth:
		expr = "MONTH(orders.created_at)"
	case GroupByWeek:
		expr = "WEEK(orders.created_at)"
	default:
		expr = "DAYOFMONTH(orders.created_at)"
	}

	var rows []struct {
		Bucket  int
		Revenue decimal.Decimal
		Orders  int64
	}
	err := r.settledOrders(ctx, from, to).
		Select(expr + " AS bucket, SUM(payment_total) AS revenue, COUNT(*) AS orders").
		Group("bucket").
		Order("bucket ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]SalesBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, SalesBucket{Bucket: row.Bucket, Revenue: row.Revenue, Orders: row.Orders})
	}
	return buckets, nil
}

func (r *analyticsRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	var rows []ProductSales
	err := r.settledOrders(ctx, from, to).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Select("order_items.product_id AS product_id, " +
			"MIN(order_items.name) AS snapshot_name, " +
			"MIN(products.name) AS current_name, " +
			"SUM(order_items.quantity) AS units").
		Group("order_items.product_id").
		Order("units DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *analyticsRepository) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status <> ?", model.OrderStatusCancelled).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
