// Package adjustment provides the StockAdjustment document.
package adjustment

import (
	"context"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/documents"
)

// Direction of one adjustment line.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// StockAdjustment corrects on-hand quantities in one warehouse, e.g. after a
// physical count. Confirm applies every line in one transaction; unlike
// purchase/sale there is no partial state.
type StockAdjustment struct {
	entity.Document

	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Reason documents why the correction was made
	Reason string `db:"reason" json:"reason,omitempty"`

	// Table part: corrections
	Lines []AdjustmentLine `db:"-" json:"lines"`
}

// AdjustmentLine is one correction position. Before/After snapshots are
// filled during confirm from the mutation results.
type AdjustmentLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	GoodsID   id.ID          `db:"goods_id" json:"goodsId"`
	Direction Direction      `db:"direction" json:"direction"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`

	BeforeQuantity types.Quantity `db:"before_quantity" json:"beforeQuantity"`
	AfterQuantity  types.Quantity `db:"after_quantity" json:"afterQuantity"`
}

// NewStockAdjustment creates a new draft adjustment.
func NewStockAdjustment(warehouseID id.ID) *StockAdjustment {
	return &StockAdjustment{
		Document:    entity.NewDocument(),
		WarehouseID: warehouseID,
		Lines:       make([]AdjustmentLine, 0),
	}
}

// AddLine adds a correction position.
func (a *StockAdjustment) AddLine(goodsID id.ID, direction Direction, quantity types.Quantity) {
	a.Lines = append(a.Lines, AdjustmentLine{
		LineID:    id.New(),
		LineNo:    len(a.Lines) + 1,
		GoodsID:   goodsID,
		Direction: direction,
		Quantity:  quantity,
	})
}

// Validate implements entity.Validatable.
func (a *StockAdjustment) Validate(ctx context.Context) error {
	if err := a.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(a.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(a.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	// Lines dedup on (goods, direction): a count may legitimately correct
	// the same goods up in one line and down in another.
	type lineKey struct {
		goods     id.ID
		direction Direction
	}
	seen := make(map[lineKey]bool, len(a.Lines))
	for i, line := range a.Lines {
		if id.IsNil(line.GoodsID) {
			return apperror.NewValidation("goods is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Direction != DirectionIncrease && line.Direction != DirectionDecrease {
			return apperror.NewValidation("direction must be increase or decrease").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		key := lineKey{line.GoodsID, line.Direction}
		if seen[key] {
			return apperror.NewDuplicateLineItem(line.GoodsID.String())
		}
		seen[key] = true
	}
	return nil
}

// DocumentType returns the ledger reference type.
func (a *StockAdjustment) DocumentType() string { return documents.TypeStockAdjustment }
