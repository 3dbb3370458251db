// Package purchase provides the PurchaseOrder document.
package purchase

import (
	"context"
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/documents"
)

// PurchaseOrder records goods ordered from a supplier into a warehouse.
// Confirming a purchase order receives (part of) the ordered goods into
// stock; partially received orders stay in partial status until every line
// is fully resolved.
type PurchaseOrder struct {
	entity.Document

	SupplierID  id.ID `db:"supplier_id" json:"supplierId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// ExpectedDate is the agreed delivery date
	ExpectedDate *time.Time `db:"expected_date" json:"expectedDate,omitempty"`

	// Totals (calculated from lines)
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`

	// Table part: ordered goods
	Lines []PurchaseLine `db:"-" json:"lines"`
}

// PurchaseLine is one ordered position.
type PurchaseLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	GoodsID  id.ID          `db:"goods_id" json:"goodsId"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// ReceivedQuantity accumulates across partial receipts
	ReceivedQuantity types.Quantity `db:"received_quantity" json:"receivedQuantity"`

	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Amount    types.Money `db:"amount" json:"amount"`
}

// Unresolved returns the portion of the line not yet received into stock.
func (l PurchaseLine) Unresolved() types.Quantity {
	return l.Quantity - l.ReceivedQuantity
}

// NewPurchaseOrder creates a new draft purchase order.
func NewPurchaseOrder(supplierID, warehouseID id.ID) *PurchaseOrder {
	return &PurchaseOrder{
		Document:    entity.NewDocument(),
		SupplierID:  supplierID,
		WarehouseID: warehouseID,
		Lines:       make([]PurchaseLine, 0),
	}
}

// AddLine adds an ordered position and recalculates totals.
func (p *PurchaseOrder) AddLine(goodsID id.ID, quantity types.Quantity, unitPrice types.Money) {
	line := PurchaseLine{
		LineID:    id.New(),
		LineNo:    len(p.Lines) + 1,
		GoodsID:   goodsID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    unitPrice.Mul(types.NewMoney(quantity.Float64())),
	}
	p.Lines = append(p.Lines, line)
	p.RecalculateTotals()
}

// RecalculateTotals recomputes header totals from lines.
func (p *PurchaseOrder) RecalculateTotals() {
	p.TotalQuantity = 0
	p.TotalAmount = types.ZeroMoney()
	for _, line := range p.Lines {
		p.TotalQuantity += line.Quantity
		p.TotalAmount = p.TotalAmount.Add(line.Amount)
	}
}

// IsFullyReceived reports whether every line is resolved.
func (p *PurchaseOrder) IsFullyReceived() bool {
	for _, line := range p.Lines {
		if line.Unresolved().IsPositive() {
			return false
		}
	}
	return true
}

// Validate implements entity.Validatable.
func (p *PurchaseOrder) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if id.IsNil(p.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	seen := make(map[id.ID]bool, len(p.Lines))
	for i, line := range p.Lines {
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
func (p *PurchaseOrder) DocumentType() string { return documents.TypePurchaseOrder }
