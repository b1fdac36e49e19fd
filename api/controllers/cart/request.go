package cart

import "github.com/google/uuid"

type addToCartRequest struct {
	UserID    uuid.UUID `json:"userId" validate:"required"`
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=10000"`
}
