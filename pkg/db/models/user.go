package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// User represents the identity entity. The cart lives on the user row as a
// JSON document; Version guards concurrent cart writes.
type User struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Username     string          `gorm:"column:username;not null;uniqueIndex"`
	Email        string          `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Role         enums.UserRole  `gorm:"column:role;not null;default:'customer'"`
	Cart         types.CartLines `gorm:"column:cart;type:jsonb;not null"`
	Version      int             `gorm:"column:version;not null;default:1"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id and normalizes the zero-value cart and version.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Cart == nil {
		u.Cart = types.CartLines{}
	}
	if u.Version == 0 {
		u.Version = 1
	}
	if u.Role == "" {
		u.Role = enums.UserRoleCustomer
	}
	return nil
}
