package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Image references a stored product picture.
type Image struct {
	URL      string `json:"url" gorm:"size:1024"`
	Filename string `json:"filename" gorm:"size:255"`
}

// Product is a catalog item. Orders copy its name, price and image at checkout.
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string          `json:"name" gorm:"size:255;not null;index"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	Image       Image           `json:"image" gorm:"embedded;embeddedPrefix:image_"`
	CategoryID  uuid.UUID       `json:"categoryId" gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Relations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
