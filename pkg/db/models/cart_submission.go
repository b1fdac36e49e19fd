package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// CartSubmission is the immutable record of a submitted cart.
type CartSubmission struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Items          types.SubmittedItems `gorm:"column:items;type:jsonb;not null"`
	SubmissionDate time.Time            `gorm:"column:submission_date;not null"`
	TotalAmount    decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
}

// TableName pins the table name used by migrations.
func (CartSubmission) TableName() string {
	return "cart_submissions"
}

// BeforeCreate assigns the id and submission timestamp.
func (s *CartSubmission) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SubmissionDate.IsZero() {
		s.SubmissionDate = time.Now().UTC()
	}
	if s.Items == nil {
		s.Items = types.SubmittedItems{}
	}
	return nil
}
