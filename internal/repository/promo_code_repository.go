package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/model"
)

// PromoCodeRepository defines promo code persistence operations.
type PromoCodeRepository interface {
	Create(ctx context.Context, promo *model.PromoCode) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error)
	// FindByCode looks up a code exactly as given; callers normalise case.
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
	List(ctx context.Context) ([]model.PromoCode, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementUsage adds one use unless the limit is already reached.
	// It reports whether the row was updated.
	IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error)
}

type promoCodeRepository struct {
	db *gorm.DB
}

// NewPromoCodeRepository creates a new promo code repository.
func NewPromoCodeRepository(db *gorm.DB) PromoCodeRepository {
	return &promoCodeRepository{db: db}
}

func (r *promoCodeRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	return r.db.WithContext(ctx).Create(promo).Error
}

func (r *promoCodeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error) {
	var promo model.PromoCode
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&promo).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *promoCodeRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var promo model.PromoCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&promo).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *promoCodeRepository) List(ctx context.Context) ([]model.PromoCode, error) {
	var promos []model.PromoCode
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}

func (r *promoCodeRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.PromoCode{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *promoCodeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PromoCode{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *promoCodeRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.PromoCode{}).
		Where("id = ? AND (max_uses IS NULL OR current_uses < max_uses)", id).
		UpdateColumn("current_uses", gorm.Expr("current_uses + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
