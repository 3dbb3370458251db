// Package goods provides the Goods catalog.
// Goods are the physical items tracked by the stock ledger.
package goods

import (
	"context"

	"github.com/shopspring/decimal"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/types"
)

// Goods represents one stock-keeping item.
type Goods struct {
	entity.Catalog

	// SKU is the stock keeping unit, unique when set
	SKU *string `db:"sku" json:"sku,omitempty"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// CategoryID is the reference to the category tree
	CategoryID *string `db:"category_id" json:"categoryId,omitempty"`

	// UnitID is the reference to base unit of measure
	UnitID *string `db:"unit_id" json:"unitId,omitempty"`

	// MinStock is the low-stock threshold, zero disables the check
	MinStock types.Quantity `db:"min_stock" json:"minStock"`

	// MaxStock is the overstock threshold, zero disables the check
	MaxStock types.Quantity `db:"max_stock" json:"maxStock"`

	// PurchasePrice is the default buying price per unit
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`

	// SalePrice is the default selling price per unit
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	// Weight in kg (for logistics)
	Weight decimal.Decimal `db:"weight" json:"weight"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`

	// Active items appear in pickers and stock reports
	Active bool `db:"active" json:"active"`
}

// NewGoods creates a new Goods with required fields.
func NewGoods(code, name string) *Goods {
	return &Goods{
		Catalog: entity.NewCatalog(code, name),
		Weight:  decimal.Zero,
		Active:  true,
	}
}

// Validate implements entity.Validatable interface.
func (g *Goods) Validate(ctx context.Context) error {
	if err := g.Catalog.Validate(ctx); err != nil {
		return err
	}

	if g.MinStock.IsNegative() {
		return apperror.NewValidation("minimum stock cannot be negative").
			WithDetail("field", "minStock")
	}
	if g.MaxStock.IsNegative() {
		return apperror.NewValidation("maximum stock cannot be negative").
			WithDetail("field", "maxStock")
	}
	if g.MinStock.IsPositive() && g.MaxStock.IsPositive() && g.MaxStock < g.MinStock {
		return apperror.NewValidation("maximum stock cannot be below minimum stock").
			WithDetail("field", "maxStock")
	}

	if g.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice")
	}
	if g.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice")
	}

	if g.Weight.IsNegative() {
		return apperror.NewValidation("weight cannot be negative").
			WithDetail("field", "weight")
	}

	return nil
}

// Thresholds returns the stock warning thresholds for classification.
func (g *Goods) Thresholds() (min, max types.Quantity) {
	return g.MinStock, g.MaxStock
}

// Margin returns the absolute markup per unit.
func (g *Goods) Margin() types.Money {
	return g.SalePrice.Sub(g.PurchasePrice)
}
