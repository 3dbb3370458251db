package inventory

import (
	"stockerp/internal/core/types"
)

// StockClass is the derived stock-level classification of a goods item.
type StockClass string

const (
	ClassOut    StockClass = "out"
	ClassLow    StockClass = "low"
	ClassOver   StockClass = "over"
	ClassNormal StockClass = "normal"
)

// Text returns the human-readable label for the class.
func (c StockClass) Text() string {
	switch c {
	case ClassOut:
		return "Out of stock"
	case ClassLow:
		return "Low stock"
	case ClassOver:
		return "Overstock"
	default:
		return "Normal"
	}
}

// IsWarning reports whether the class needs operator attention.
func (c StockClass) IsWarning() bool {
	return c != ClassNormal
}

// Classify derives the stock class from a balance and the goods thresholds.
//
// Precedence: out beats low, low is checked before over. A zero threshold
// means "not configured" and disables the corresponding check; threshold
// sanity (max >= min) is the master data's responsibility, not this
// function's.
func Classify(quantity, minStock, maxStock types.Quantity) StockClass {
	switch {
	case quantity <= 0:
		return ClassOut
	case minStock > 0 && quantity <= minStock:
		return ClassLow
	case maxStock > 0 && quantity >= maxStock:
		return ClassOver
	default:
		return ClassNormal
	}
}
