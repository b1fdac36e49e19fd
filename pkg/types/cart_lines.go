package types

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one entry of a user's cart. TotalPrice, Name and Description are
// snapshots taken when the line was added and are never recomputed in place.
type CartLine struct {
	ProductID   uuid.UUID       `json:"productId"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	AddedAt     time.Time       `json:"addedAt"`
}

// CartLines stores the ordered cart document inside a JSON column.
type CartLines []CartLine

// Value serializes the lines to JSON; a nil cart is stored as an empty array.
func (c CartLines) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	buf, err := json.Marshal([]CartLine(c))
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes the JSON column into the slice.
func (c *CartLines) Scan(value interface{}) error {
	if value == nil {
		*c = CartLines{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded []CartLine
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	if decoded == nil {
		decoded = []CartLine{}
	}
	*c = decoded
	return nil
}

// ProductIDs returns the distinct product ids referenced by the cart, in first-seen order.
func (c CartLines) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(c))
	ids := make([]uuid.UUID, 0, len(c))
	for _, line := range c {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

// Without returns a copy of the lines with every entry for productID dropped.
func (c CartLines) Without(productID uuid.UUID) CartLines {
	out := make(CartLines, 0, len(c))
	for _, line := range c {
		if line.ProductID == productID {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Total sums the snapshot line totals.
func (c CartLines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c {
		total = total.Add(line.TotalPrice)
	}
	return total
}

// SubmittedItem is a cart line frozen into a submission with the price in effect at submit time.
type SubmittedItem struct {
	ProductID   uuid.UUID       `json:"productId"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Size        string          `json:"size"`
}

// SubmittedItems stores a submission's items inside a JSON column.
type SubmittedItems []SubmittedItem

// Value serializes the items to JSON.
func (s SubmittedItems) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	buf, err := json.Marshal([]SubmittedItem(s))
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes the JSON column into the slice.
func (s *SubmittedItems) Scan(value interface{}) error {
	if value == nil {
		*s = SubmittedItems{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded []SubmittedItem
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	if decoded == nil {
		decoded = []SubmittedItem{}
	}
	*s = decoded
	return nil
}

// Total sums the item totals.
func (s SubmittedItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s {
		total = total.Add(item.TotalPrice)
	}
	return total
}
