package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleAdmin    Role = "Admin"
)

// UserStatus is the account status of a user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "Active"
	UserStatusSuspended UserStatus = "Suspended"
)

// User represents an authenticated customer or the store administrator.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Username     string     `json:"username" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role       `json:"role" gorm:"type:varchar(20);not null;default:'Customer';index"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);not null;default:'Active'"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the Admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleCustomer || r == RoleAdmin
}

// ValidUserStatus reports whether s is a known status.
func ValidUserStatus(s UserStatus) bool {
	return s == UserStatusActive || s == UserStatusSuspended
}
