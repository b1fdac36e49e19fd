package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Product represents a catalog entry.
type Product struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name           string            `gorm:"column:name;not null"`
	Description    string            `gorm:"column:description;not null"`
	Price          decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	Category       string            `gorm:"column:category;not null"`
	Size           enums.ProductSize `gorm:"column:size;not null"`
	Color          string            `gorm:"column:color;not null"`
	Brand          string            `gorm:"column:brand;not null"`
	Stock          int               `gorm:"column:stock;not null;default:0"`
	Image          string            `gorm:"column:image;not null"`
	Ratings        types.Ratings     `gorm:"embedded;embeddedPrefix:ratings_"`
	QuantityInCart int               `gorm:"column:quantity_in_cart;not null;default:0"`
	DateAdded      time.Time         `gorm:"column:date_added;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when the caller did not supply one.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
