package validators

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const maxFormValueLen = 2000

// ParseMultipartForm caps the body at maxBytes and parses it. Bodies over the
// cap surface as CodePayloadTooLarge.
func ParseMultipartForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.Wrap(pkgerrors.CodePayloadTooLarge, err, "upload too large").
				WithDetails(map[string]any{"limit_bytes": maxBytes})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form").
			WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}

// FormFile returns the named upload, or nil when the field is absent.
func FormFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file upload").
			WithDetails(map[string]string{field: err.Error()})
	}
	return file, header, nil
}

// FormString returns the trimmed value of a form field, or nil when absent.
func FormString(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := SanitizeString(values[0], maxFormValueLen)
	return &v
}

func FormInt(r *http.Request, key string) (*int, error) {
	raw := FormString(r, key)
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(*raw)
	if err != nil {
		return nil, fieldError(key, "must be an integer")
	}
	return &v, nil
}

func FormFloat(r *http.Request, key string) (*float64, error) {
	raw := FormString(r, key)
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.ParseFloat(*raw, 64)
	if err != nil {
		return nil, fieldError(key, "must be a number")
	}
	return &v, nil
}

func FormDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := FormString(r, key)
	if raw == nil {
		return nil, nil
	}
	v, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, fieldError(key, "must be a decimal number")
	}
	return &v, nil
}

func fieldError(key, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid %s", strings.ReplaceAll(key, ".", " "))).
		WithDetails(map[string]string{key: msg})
}
