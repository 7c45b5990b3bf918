package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountType enumerates the supported promo code discount strategies.
type DiscountType string

const (
	// DiscountPercentage takes a percentage of the subtotal, optionally capped.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes a fixed amount off the subtotal.
	DiscountFixed DiscountType = "fixed"
)

// PromoCode is a discount code managed by the administrator.
type PromoCode struct {
	ID                uuid.UUID           `json:"id" gorm:"type:char(36);primaryKey"`
	Code              string              `json:"code" gorm:"uniqueIndex;size:64;not null"`
	DiscountType      DiscountType        `json:"discountType" gorm:"type:varchar(20);not null"`
	DiscountValue     decimal.Decimal     `json:"discountValue" gorm:"type:decimal(20,2);not null"`
	MinOrderAmount    decimal.Decimal     `json:"minOrderAmount" gorm:"type:decimal(20,2);not null;default:0"`
	MaxDiscountAmount decimal.NullDecimal `json:"maxDiscountAmount" gorm:"type:decimal(20,2)"`
	StartDate         time.Time           `json:"startDate" gorm:"not null"`
	EndDate           time.Time           `json:"endDate" gorm:"not null"`
	MaxUses           *int                `json:"maxUses"`
	CurrentUses       int                 `json:"currentUses" gorm:"not null;default:0"`
	IsActive          bool                `json:"isActive" gorm:"not null;default:true"`
	CreatedAt         time.Time           `json:"createdAt" gorm:"index"`
}

// BeforeCreate sets UUID and the default start date before creating the record.
func (p *PromoCode) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.StartDate.IsZero() {
		p.StartDate = time.Now()
	}
	return nil
}

// ActiveAt reports whether the code is switched on and inside its validity window.
func (p *PromoCode) ActiveAt(now time.Time) bool {
	return p.IsActive && !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// Exhausted reports whether a usage limit is set and has been reached.
func (p *PromoCode) Exhausted() bool {
	return p.MaxUses != nil && p.CurrentUses >= *p.MaxUses
}
