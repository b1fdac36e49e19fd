package enums

import (
	"fmt"
	"strings"
)

// ProductSize represents the garment sizes a catalog entry may carry.
type ProductSize string

const (
	ProductSizeXS      ProductSize = "XS"
	ProductSizeS       ProductSize = "S"
	ProductSizeM       ProductSize = "M"
	ProductSizeL       ProductSize = "L"
	ProductSizeXL      ProductSize = "XL"
	ProductSizeXXL     ProductSize = "XXL"
	ProductSizeOneSize ProductSize = "One Size"
)

var validProductSizes = []ProductSize{
	ProductSizeXS,
	ProductSizeS,
	ProductSizeM,
	ProductSizeL,
	ProductSizeXL,
	ProductSizeXXL,
	ProductSizeOneSize,
}

// String implements fmt.Stringer.
func (s ProductSize) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductSize.
func (s ProductSize) IsValid() bool {
	for _, candidate := range validProductSizes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSize converts raw input into a ProductSize. Matching ignores case
// and surrounding whitespace so "one size" resolves to "One Size".
func ParseProductSize(value string) (ProductSize, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validProductSizes {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product size %q", value)
}

// ProductSizes returns the accepted sizes in display order.
func ProductSizes() []ProductSize {
	out := make([]ProductSize, len(validProductSizes))
	copy(out, validProductSizes)
	return out
}
