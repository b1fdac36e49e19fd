package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/storage"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog management operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput, image *ImageUpload) (*ProductDTO, error)
	List(ctx context.Context) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput, image *ImageUpload) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
}

// CreateProductInput holds the payload to create a product.
type CreateProductInput struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	Category       string
	Size           enums.ProductSize
	Color          string
	Brand          string
	Stock          int
	Ratings        types.Ratings
	QuantityInCart int
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	Category       *string
	Size           *enums.ProductSize
	Color          *string
	Brand          *string
	Stock          *int
	RatingsAverage *float64
	RatingsCount   *int
	QuantityInCart *int
}

// ImageUpload is the product image received with a create or update request.
type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type service struct {
	repo  Repository
	store storage.Store
	logg  *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo Repository, store storage.Store, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("image store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, store: store, logg: logg}, nil
}

func productNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
}

func imageRequired() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "Image file is required")
}

func (s *service) Create(ctx context.Context, input CreateProductInput, image *ImageUpload) (*ProductDTO, error) {
	if image == nil || image.Body == nil {
		return nil, imageRequired()
	}

	product := &models.Product{
		Name:           strings.TrimSpace(input.Name),
		Description:    strings.TrimSpace(input.Description),
		Price:          input.Price,
		Category:       strings.TrimSpace(input.Category),
		Size:           input.Size,
		Color:          strings.TrimSpace(input.Color),
		Brand:          strings.TrimSpace(input.Brand),
		Stock:          input.Stock,
		Ratings:        input.Ratings,
		QuantityInCart: input.QuantityInCart,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	location, err := s.uploadImage(ctx, image)
	if err != nil {
		return nil, err
	}
	product.Image = location

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		s.discardImage(ctx, location)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert product")
	}

	s.logg.Info(s.logg.WithProductID(ctx, created.ID.String()), "product created")
	return NewProductDTO(created), nil
}

func (s *service) List(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return NewProductDTOs(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

// Update applies the provided fields and replaces the product image. The
// previous image is removed once the row is updated.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput, image *ImageUpload) (*ProductDTO, error) {
	if image == nil || image.Body == nil {
		return nil, imageRequired()
	}

	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate := *existing
	updates := applyUpdate(&candidate, input)
	if err := validateProduct(&candidate); err != nil {
		return nil, err
	}

	location, err := s.uploadImage(ctx, image)
	if err != nil {
		return nil, err
	}
	updates["image"] = location
	updates["updated_at"] = time.Now().UTC()

	if err := s.repo.Update(ctx, id, updates); err != nil {
		s.discardImage(ctx, location)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update product")
	}

	if existing.Image != location {
		s.discardImage(ctx, existing.Image)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithProductID(ctx, id.String()), "product updated")
	return NewProductDTO(updated), nil
}

// Delete removes the product and returns the row as it was before deletion.
// Carts that still reference it keep their snapshot lines.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete product")
	}
	s.discardImage(ctx, existing.Image)

	s.logg.Info(s.logg.WithProductID(ctx, id.String()), "product deleted")
	return NewProductDTO(existing), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func (s *service) uploadImage(ctx context.Context, image *ImageUpload) (string, error) {
	contentType, body, err := storage.DetectImage(image.Body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image file").
			WithDetails(map[string]string{"image": err.Error()})
	}
	location, err := s.store.Put(ctx, storage.Object{
		Key:         storage.ProductImageKey(image.Filename),
		ContentType: contentType,
		Size:        image.Size,
		Body:        body,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store product image")
	}
	return location, nil
}

// discardImage is best effort; a leftover object is logged and left behind.
func (s *service) discardImage(ctx context.Context, location string) {
	key := storage.KeyFromLocation(location)
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "image_key", key), fmt.Sprintf("failed to remove product image: %v", err))
	}
}

func applyUpdate(product *models.Product, input UpdateProductInput) map[string]any {
	updates := map[string]any{}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
		updates["name"] = product.Name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
		updates["description"] = product.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
		updates["price"] = product.Price
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
		updates["category"] = product.Category
	}
	if input.Size != nil {
		product.Size = *input.Size
		updates["size"] = product.Size
	}
	if input.Color != nil {
		product.Color = strings.TrimSpace(*input.Color)
		updates["color"] = product.Color
	}
	if input.Brand != nil {
		product.Brand = strings.TrimSpace(*input.Brand)
		updates["brand"] = product.Brand
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
		updates["stock"] = product.Stock
	}
	if input.RatingsAverage != nil {
		product.Ratings.Average = *input.RatingsAverage
		updates["ratings_average"] = product.Ratings.Average
	}
	if input.RatingsCount != nil {
		product.Ratings.Count = *input.RatingsCount
		updates["ratings_count"] = product.Ratings.Count
	}
	if input.QuantityInCart != nil {
		product.QuantityInCart = *input.QuantityInCart
		updates["quantity_in_cart"] = product.QuantityInCart
	}
	return updates
}

func validateProduct(product *models.Product) error {
	details := map[string]string{}
	required := map[string]string{
		"name":        product.Name,
		"description": product.Description,
		"category":    product.Category,
		"color":       product.Color,
		"brand":       product.Brand,
	}
	for field, value := range required {
		if value == "" {
			details[field] = "is required"
		}
	}
	if product.Price.IsNegative() {
		details["price"] = "must be at least 0"
	}
	if !product.Size.IsValid() {
		details["size"] = fmt.Sprintf("must be one of %s", sizeList())
	}
	if product.Stock < 0 {
		details["stock"] = "must be at least 0"
	}
	if err := product.Ratings.Validate(); err != nil {
		details["ratings"] = err.Error()
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func sizeList() string {
	sizes := enums.ProductSizes()
	names := make([]string, len(sizes))
	for i, size := range sizes {
		names[i] = size.String()
	}
	return strings.Join(names, ", ")
}
