// Package transfer provides the StockTransfer document.
package transfer

import (
	"context"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/documents"
)

// StockTransfer moves goods between two warehouses. Confirm produces two
// ledger entries per line (outbound at the source, inbound at the
// destination) and both legs commit or roll back together.
type StockTransfer struct {
	entity.Document

	SourceWarehouseID id.ID `db:"source_warehouse_id" json:"sourceWarehouseId"`
	DestWarehouseID   id.ID `db:"dest_warehouse_id" json:"destWarehouseId"`

	// Table part: transferred goods
	Lines []TransferLine `db:"-" json:"lines"`
}

// TransferLine is one transferred position.
type TransferLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	GoodsID  id.ID          `db:"goods_id" json:"goodsId"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// NewStockTransfer creates a new draft transfer.
func NewStockTransfer(sourceID, destID id.ID) *StockTransfer {
	return &StockTransfer{
		Document:          entity.NewDocument(),
		SourceWarehouseID: sourceID,
		DestWarehouseID:   destID,
		Lines:             make([]TransferLine, 0),
	}
}

// AddLine adds a transferred position.
func (t *StockTransfer) AddLine(goodsID id.ID, quantity types.Quantity) {
	t.Lines = append(t.Lines, TransferLine{
		LineID:   id.New(),
		LineNo:   len(t.Lines) + 1,
		GoodsID:  goodsID,
		Quantity: quantity,
	})
}

// Validate implements entity.Validatable.
func (t *StockTransfer) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(t.SourceWarehouseID) {
		return apperror.NewValidation("source warehouse is required").
			WithDetail("field", "sourceWarehouseId")
	}
	if id.IsNil(t.DestWarehouseID) {
		return apperror.NewValidation("destination warehouse is required").
			WithDetail("field", "destWarehouseId")
	}
	if t.SourceWarehouseID == t.DestWarehouseID {
		return apperror.NewValidation("source and destination warehouses must differ")
	}
	if len(t.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	seen := make(map[id.ID]bool, len(t.Lines))
	for i, line := range t.Lines {
		if id.IsNil(line.GoodsID) {
			return apperror.NewValidation("goods is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if seen[line.GoodsID] {
			return apperror.NewDuplicateLineItem(line.GoodsID.String())
		}
		seen[line.GoodsID] = true
	}
	return nil
}

// DocumentType returns the ledger reference type.
func (t *StockTransfer) DocumentType() string { return documents.TypeStockTransfer }
