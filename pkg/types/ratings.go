package types

import "errors"

// Ratings is the aggregate review score embedded on a product row.
type Ratings struct {
	Average float64 `gorm:"column:average;not null;default:0" json:"average"`
	Count   int     `gorm:"column:count;not null;default:0" json:"count"`
}

// Validate enforces 0 <= average <= 5 and a non-negative count.
func (r Ratings) Validate() error {
	if r.Average < 0 || r.Average > 5 {
		return errors.New("ratings average must be between 0 and 5")
	}
	if r.Count < 0 {
		return errors.New("ratings count must be non-negative")
	}
	return nil
}
