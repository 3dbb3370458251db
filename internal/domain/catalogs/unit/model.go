// Package unit provides the Unit catalog.
// Units represent measurement units for goods (pieces, kilograms, litres).
package unit

import (
	"context"

	"github.com/shopspring/decimal"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
)

// UnitType defines the type of measurement unit. Conversion is only
// meaningful within one type.
type UnitType string

const (
	TypePiece  UnitType = "piece"
	TypeWeight UnitType = "weight" // kg, g, t
	TypeLength UnitType = "length" // m, cm, mm
	TypeArea   UnitType = "area"
	TypeVolume UnitType = "volume" // l, ml, m3
	TypeTime   UnitType = "time"
	TypePack   UnitType = "pack"
)

var unitTypes = map[UnitType]struct{}{
	TypePiece:  {},
	TypeWeight: {},
	TypeLength: {},
	TypeArea:   {},
	TypeVolume: {},
	TypeTime:   {},
	TypePack:   {},
}

// Unit represents a measurement unit. Derived units reference a base unit
// of the same type and carry the factor that converts into it, e.g. "gram"
// with base "kilogram" has factor 0.001.
type Unit struct {
	entity.Catalog

	Type             UnitType        `db:"type" json:"type"`
	Symbol           string          `db:"symbol" json:"symbol"`
	BaseUnitID       *string         `db:"base_unit_id" json:"baseUnitId,omitempty"`
	ConversionFactor decimal.Decimal `db:"conversion_factor" json:"conversionFactor"`
	IsBase           bool            `db:"is_base" json:"isBase"`
	Description      *string         `db:"description" json:"description,omitempty"`
}

// NewUnit creates a base unit with conversion factor 1.
func NewUnit(code, name, symbol string, unitType UnitType) *Unit {
	return &Unit{
		Catalog:          entity.NewCatalog(code, name),
		Type:             unitType,
		Symbol:           symbol,
		ConversionFactor: decimal.NewFromInt(1),
		IsBase:           true,
	}
}

// Validate implements entity.Validatable.
func (u *Unit) Validate(ctx context.Context) error {
	if err := u.Catalog.Validate(ctx); err != nil {
		return err
	}

	if u.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}

	if _, ok := unitTypes[u.Type]; !ok {
		return apperror.NewValidation("invalid unit type").
			WithDetail("field", "type").
			WithDetail("value", string(u.Type))
	}

	if !u.ConversionFactor.IsPositive() {
		return apperror.NewValidation("conversion factor must be positive").
			WithDetail("field", "conversionFactor")
	}

	// A derived unit points at its base and cannot itself be base.
	if u.BaseUnitID != nil && *u.BaseUnitID != "" && u.IsBase {
		return apperror.NewValidation("unit with base unit reference cannot be marked as base").
			WithDetail("field", "isBase")
	}

	return nil
}

// ConvertTo converts a quantity from this unit to the target unit, rounded
// to 3 decimal places. Both units must share a type.
func (u *Unit) ConvertTo(qty decimal.Decimal, target *Unit) (decimal.Decimal, error) {
	if u.Type != target.Type {
		return decimal.Zero, apperror.NewValidation("cannot convert between different unit types").
			WithDetail("source", string(u.Type)).
			WithDetail("target", string(target.Type))
	}

	return qty.Mul(u.ConversionFactor).Div(target.ConversionFactor).Round(3), nil
}
