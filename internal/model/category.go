package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups products in the catalog.
type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:50;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
