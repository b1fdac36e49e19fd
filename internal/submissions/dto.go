package submissions

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmissionDTO is the read shape of a cart submission.
type SubmissionDTO struct {
	ID             uuid.UUID            `json:"id"`
	UserID         uuid.UUID            `json:"userId"`
	Items          types.SubmittedItems `json:"items"`
	SubmissionDate time.Time            `json:"submissionDate"`
	TotalAmount    decimal.Decimal      `json:"totalAmount"`
}

func FromModel(s *models.CartSubmission) *SubmissionDTO {
	if s == nil {
		return nil
	}
	return &SubmissionDTO{
		ID:             s.ID,
		UserID:         s.UserID,
		Items:          append(types.SubmittedItems{}, s.Items...),
		SubmissionDate: s.SubmissionDate,
		TotalAmount:    s.TotalAmount,
	}
}

func FromModels(rows []models.CartSubmission) []SubmissionDTO {
	out := make([]SubmissionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
