package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/shopspring/decimal"
)

const productImageField = "image"

// CreateProduct handles multipart product creation with a required image.
func CreateProduct(svc productsvc.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		if err := validators.ParseMultipartForm(w, r, maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, err := parseProductForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := form.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, closeImage, err := productImage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeImage()

		product, err := svc.Create(r.Context(), input, image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMessage(w, http.StatusCreated, "Product added successfully", product)
	}
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMessage(w, http.StatusOK, "Data retrieved successfully", list)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMessage(w, http.StatusOK, "Data retrieved successfully", product)
	}
}

// UpdateProduct applies the submitted form fields and replaces the image.
func UpdateProduct(svc productsvc.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := validators.ParseMultipartForm(w, r, maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, err := parseProductForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, closeImage, err := productImage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeImage()

		product, err := svc.Update(r.Context(), id, form.toUpdateInput(), image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMessage(w, http.StatusOK, "Product updated successfully", product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMessage(w, http.StatusOK, "Product deleted successfully", product)
	}
}

type productForm struct {
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

func parseProductForm(r *http.Request) (*productForm, error) {
	form := &productForm{
		Name:        validators.FormString(r, "name"),
		Description: validators.FormString(r, "description"),
		Category:    validators.FormString(r, "category"),
		Color:       validators.FormString(r, "color"),
		Brand:       validators.FormString(r, "brand"),
	}

	var err error
	if form.Price, err = validators.FormDecimal(r, "price"); err != nil {
		return nil, err
	}

	if raw := validators.FormString(r, "size"); raw != nil {
		size, parseErr := enums.ParseProductSize(*raw)
		if parseErr != nil {
			// left as-is so validation reports the allowed sizes
			size = enums.ProductSize(*raw)
		}
		form.Size = &size
	}

	if form.Stock, err = validators.FormInt(r, "stock"); err != nil {
		return nil, err
	}
	if form.RatingsAverage, err = validators.FormFloat(r, "ratings.average"); err != nil {
		return nil, err
	}
	if form.RatingsCount, err = validators.FormInt(r, "ratings.count"); err != nil {
		return nil, err
	}
	if form.QuantityInCart, err = validators.FormInt(r, "quantityInCart"); err != nil {
		return nil, err
	}
	return form, nil
}

func (f *productForm) toCreateInput() (productsvc.CreateProductInput, error) {
	if f.Price == nil {
		return productsvc.CreateProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"price": "is required"})
	}
	input := productsvc.CreateProductInput{
		Name:           deref(f.Name),
		Description:    deref(f.Description),
		Price:          *f.Price,
		Category:       deref(f.Category),
		Color:          deref(f.Color),
		Brand:          deref(f.Brand),
		Stock:          derefInt(f.Stock),
		QuantityInCart: derefInt(f.QuantityInCart),
		Ratings: types.Ratings{
			Count: derefInt(f.RatingsCount),
		},
	}
	if f.Size != nil {
		input.Size = *f.Size
	}
	if f.RatingsAverage != nil {
		input.Ratings.Average = *f.RatingsAverage
	}
	return input, nil
}

func (f *productForm) toUpdateInput() productsvc.UpdateProductInput {
	return productsvc.UpdateProductInput{
		Name:           f.Name,
		Description:    f.Description,
		Category:       f.Category,
		Size:           f.Size,
		Color:          f.Color,
		Brand:          f.Brand,
		Price:          f.Price,
		Stock:          f.Stock,
		RatingsAverage: f.RatingsAverage,
		RatingsCount:   f.RatingsCount,
		QuantityInCart: f.QuantityInCart,
	}
}

func productImage(r *http.Request) (*productsvc.ImageUpload, func(), error) {
	file, header, err := validators.FormFile(r, productImageField)
	if err != nil {
		return nil, func() {}, err
	}
	if file == nil {
		return nil, func() {}, nil
	}
	upload := &productsvc.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	}
	return upload, func() { _ = file.Close() }, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefInt(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
