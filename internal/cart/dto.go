package cart

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineView is a stored cart line joined with the current catalog entry.
// Product is nil when the product has since been deleted.
type LineView struct {
	ProductID   uuid.UUID            `json:"productId"`
	Quantity    int                  `json:"quantity"`
	TotalPrice  decimal.Decimal      `json:"totalPrice"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	AddedAt     time.Time            `json:"addedAt"`
	Product     *products.ProductDTO `json:"product"`
}

func newLineView(line types.CartLine, product *products.ProductDTO) LineView {
	return LineView{
		ProductID:   line.ProductID,
		Quantity:    line.Quantity,
		TotalPrice:  line.TotalPrice,
		Name:        line.Name,
		Description: line.Description,
		AddedAt:     line.AddedAt,
		Product:     product,
	}
}
