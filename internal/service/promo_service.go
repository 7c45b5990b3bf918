package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

var (
	// ErrPromoCodeNotFound covers unknown, inactive and out-of-window codes alike.
	ErrPromoCodeNotFound = apperrors.NotFound("PROMO_CODE_NOT_FOUND", "Invalid or expired promo code")
	// ErrPromoCodeRequired is returned when validate is called without a code.
	ErrPromoCodeRequired = apperrors.Validation("PROMO_CODE_REQUIRED", "Promo code is required")
	// ErrUsageLimitExceeded is returned when a code has been used maxUses times.
	ErrUsageLimitExceeded = apperrors.Validation("USAGE_LIMIT_EXCEEDED", "Promo code has reached its usage limit")
	// ErrMinimumOrderNotMet is the template for subtotal below minOrderAmount.
	ErrMinimumOrderNotMet = apperrors.Validation("MINIMUM_ORDER_NOT_MET", "Minimum order amount not met")
	// ErrPromoCodeExists is returned on a duplicate code.
	ErrPromoCodeExists = apperrors.Conflict("PROMO_CODE_EXISTS", "Promo code already exists")
	// ErrPromoFieldsMissing is returned when a required creation field is absent.
	ErrPromoFieldsMissing = apperrors.Validation("PROMO_FIELDS_MISSING", "Required fields are missing")
	// ErrPercentageTooHigh is returned for percentage discounts above 100.
	ErrPercentageTooHigh = apperrors.Validation("PERCENTAGE_TOO_HIGH", "Percentage discount cannot exceed 100%")
	// ErrPromoCodeMissing is returned by admin operations on an unknown id.
	ErrPromoCodeMissing = apperrors.NotFound("PROMO_CODE_MISSING", "Promo code not found")
)

var hundred = decimal.NewFromInt(100)

// PromoDiscount is the outcome of a successful promo code evaluation.
type PromoDiscount struct {
	DiscountAmount decimal.Decimal    `json:"discountAmount"`
	Code           string             `json:"promoCode"`
	DiscountType   model.DiscountType `json:"discountType"`
	DiscountValue  decimal.Decimal    `json:"discountValue"`
	PromoCodeID    uuid.UUID          `json:"promoCodeId"`
}

// CreatePromoCodeInput carries the admin-supplied terms of a new code.
type CreatePromoCodeInput struct {
	Code              string
	DiscountType      model.DiscountType
	DiscountValue     decimal.Decimal
	MinOrderAmount    decimal.Decimal
	MaxDiscountAmount decimal.Decimal
	StartDate         time.Time
	EndDate           time.Time
	MaxUses           int
}

// PromoCodeService evaluates and manages promo codes.
type PromoCodeService interface {
	// Validate computes the discount a code grants on subtotal. It never mutates the code.
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoDiscount, error)
	List(ctx context.Context) ([]model.PromoCode, error)
	Create(ctx context.Context, input CreatePromoCodeInput) (*model.PromoCode, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.PromoCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type promoCodeService struct {
	repo repository.PromoCodeRepository
	now  func() time.Time
}

// NewPromoCodeService creates a promo code service using the wall clock.
func NewPromoCodeService(repo repository.PromoCodeRepository) PromoCodeService {
	return NewPromoCodeServiceWithClock(repo, time.Now)
}

// NewPromoCodeServiceWithClock creates a promo code service with an injected clock.
func NewPromoCodeServiceWithClock(repo repository.PromoCodeRepository, now func() time.Time) PromoCodeService {
	return &promoCodeService{repo: repo, now: now}
}

// NormalizeCode returns the canonical stored form of a promo code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *promoCodeService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoDiscount, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrPromoCodeRequired
	}

	promo, err := s.repo.FindByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPromoCodeNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to validate promo code", errors.Wrap(err, "find promo code"))
	}
	if !promo.ActiveAt(s.now()) {
		return nil, ErrPromoCodeNotFound
	}

	if promo.Exhausted() {
		return nil, ErrUsageLimitExceeded
	}

	if subtotal.LessThan(promo.MinOrderAmount) {
		return nil, apperrors.Validation(ErrMinimumOrderNotMet.Code,
			fmt.Sprintf("Minimum order amount of $%s required", promo.MinOrderAmount.StringFixed(2)))
	}

	return &PromoDiscount{
		DiscountAmount: discountFor(promo, subtotal),
		Code:           promo.Code,
		DiscountType:   promo.DiscountType,
		DiscountValue:  promo.DiscountValue,
		PromoCodeID:    promo.ID,
	}, nil
}

// discountFor applies the percentage cap and then clamps the result to the subtotal.
func discountFor(promo *model.PromoCode, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch promo.DiscountType {
	case model.DiscountPercentage:
		discount = subtotal.Mul(promo.DiscountValue).Div(hundred)
		if promo.MaxDiscountAmount.Valid && discount.GreaterThan(promo.MaxDiscountAmount.Decimal) {
			discount = promo.MaxDiscountAmount.Decimal
		}
	default:
		discount = promo.DiscountValue
	}
	return decimal.Min(discount, subtotal)
}

func (s *promoCodeService) List(ctx context.Context) ([]model.PromoCode, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch promo codes", err)
	}
	return promos, nil
}

func (s *promoCodeService) Create(ctx context.Context, input CreatePromoCodeInput) (*model.PromoCode, error) {
	code := NormalizeCode(input.Code)
	if code == "" || input.DiscountType == "" || !input.DiscountValue.IsPositive() || input.EndDate.IsZero() {
		return nil, ErrPromoFieldsMissing
	}
	if input.DiscountType != model.DiscountPercentage && input.DiscountType != model.DiscountFixed {
		return nil, apperrors.Validation("INVALID_DISCOUNT_TYPE", "Discount type must be percentage or fixed")
	}
	if input.DiscountType == model.DiscountPercentage && input.DiscountValue.GreaterThan(hundred) {
		return nil, ErrPercentageTooHigh
	}

	promo := &model.PromoCode{
		Code:           code,
		DiscountType:   input.DiscountType,
		DiscountValue:  input.DiscountValue,
		MinOrderAmount: input.MinOrderAmount,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		IsActive:       true,
	}
	if promo.MinOrderAmount.IsNegative() {
		promo.MinOrderAmount = decimal.Zero
	}
	if input.MaxDiscountAmount.IsPositive() {
		promo.MaxDiscountAmount = decimal.NewNullDecimal(input.MaxDiscountAmount)
	}
	if input.MaxUses > 0 {
		maxUses := input.MaxUses
		promo.MaxUses = &maxUses
	}
	if promo.StartDate.IsZero() {
		promo.StartDate = s.now()
	}

	if err := s.repo.Create(ctx, promo); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPromoCodeExists
		}
		return nil, apperrors.Internal("Failed to create promo code", errors.Wrap(err, "create promo code"))
	}
	return promo, nil
}

func (s *promoCodeService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.PromoCode, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPromoCodeMissing
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to update promo code", err)
	}

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, apperrors.Internal("Failed to update promo code", errors.Wrap(err, "set active"))
	}
	promo.IsActive = active
	return promo, nil
}

func (s *promoCodeService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPromoCodeMissing
	}
	if err != nil {
		return apperrors.Internal("Failed to delete promo code", err)
	}
	return nil
}
