package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as JSON numbers on the wire and inside JSON columns.
	decimal.MarshalJSONWithoutQuotes = true
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
