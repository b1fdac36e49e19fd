package products

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Category       string          `json:"category"`
	Size           string          `json:"size"`
	Color          string          `json:"color"`
	Brand          string          `json:"brand"`
	Stock          int             `json:"stock"`
	Image          string          `json:"image"`
	Ratings        RatingsDTO      `json:"ratings"`
	QuantityInCart int             `json:"quantityInCart"`
	DateAdded      time.Time       `json:"dateAdded"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// RatingsDTO exposes the aggregate rating.
type RatingsDTO struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		Size:        product.Size.String(),
		Color:       product.Color,
		Brand:       product.Brand,
		Stock:       product.Stock,
		Image:       product.Image,
		Ratings: RatingsDTO{
			Average: product.Ratings.Average,
			Count:   product.Ratings.Count,
		},
		QuantityInCart: product.QuantityInCart,
		DateAdded:      product.DateAdded,
		UpdatedAt:      product.UpdatedAt,
	}
}

// NewProductDTOs maps a slice of models, preserving order.
func NewProductDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out
}
