package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents the fulfilment status of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the five order statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	FirstName string `json:"firstName" gorm:"size:100;not null"`
	LastName  string `json:"lastName" gorm:"size:100;not null"`
	Email     string `json:"email" gorm:"size:255;not null"`
	Phone     string `json:"phone" gorm:"size:32;not null"`
	Address   string `json:"address" gorm:"size:255;not null"`
	City      string `json:"city" gorm:"size:100;not null"`
	State     string `json:"state" gorm:"size:100;not null"`
	ZipCode   string `json:"zipCode" gorm:"size:20;not null"`
}

// AppliedPromoCode is the snapshot of promo terms at the time of checkout.
type AppliedPromoCode struct {
	Code          string              `json:"code,omitempty" gorm:"size:64"`
	DiscountType  DiscountType        `json:"discountType,omitempty" gorm:"type:varchar(20)"`
	DiscountValue decimal.NullDecimal `json:"discountValue" gorm:"type:decimal(20,2)"`
	PromoCodeID   *uuid.UUID          `json:"promoCodeId,omitempty" gorm:"type:char(36);index"`
}

// PaymentInfo holds the monetary breakdown of an order.
// Total is always subtotal + shipping + tax - discount as computed by the server.
type PaymentInfo struct {
	Subtotal  decimal.Decimal   `json:"subtotal" gorm:"type:decimal(20,2);not null"`
	Discount  decimal.Decimal   `json:"discount" gorm:"type:decimal(20,2);not null;default:0"`
	Shipping  decimal.Decimal   `json:"shipping" gorm:"type:decimal(20,2);not null;default:0"`
	Tax       decimal.Decimal   `json:"tax" gorm:"type:decimal(20,2);not null;default:0"`
	Total     decimal.Decimal   `json:"total" gorm:"type:decimal(20,2);not null"`
	PromoCode *AppliedPromoCode `json:"promoCode,omitempty" gorm:"embedded;embeddedPrefix:promo_"`
}

// Order is a customer's checkout record.
type Order struct {
	ID           uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID    `json:"user" gorm:"type:char(36);not null;index"`
	Items        []OrderItem  `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingInfo ShippingInfo `json:"shippingInfo" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentInfo  PaymentInfo  `json:"paymentInfo" gorm:"embedded;embeddedPrefix:payment_"`
	Status       OrderStatus  `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt    time.Time    `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	// Relations
	User *User `json:"userDetails,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is one cart line. Name, price and image are snapshots taken at checkout.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" gorm:"type:char(36);primaryKey"`
	OrderID   uuid.UUID       `json:"-" gorm:"type:char(36);not null;index"`
	Position  int             `json:"-" gorm:"not null;default:0"`
	ProductID uuid.UUID       `json:"product" gorm:"type:char(36);not null;index"`
	Name      string          `json:"name" gorm:"size:255"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	Image     Image           `json:"image" gorm:"embedded;embeddedPrefix:image_"`

	// Relations
	Product *Product `json:"productDetails,omitempty" gorm:"foreignKey:ProductID"`
}

// BeforeCreate sets UUID before creating the record.
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
