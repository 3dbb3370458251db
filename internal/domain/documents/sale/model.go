// Package sale provides the SaleOrder document.
package sale

import (
	"context"
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/documents"
)

// SaleOrder records goods sold to a customer from a warehouse.
// Confirming ships (part of) the ordered goods out of stock; partially
// shipped orders stay in partial status until every line is resolved.
type SaleOrder struct {
	entity.Document

	CustomerID  id.ID `db:"customer_id" json:"customerId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// ShipDate is the promised shipment date
	ShipDate *time.Time `db:"ship_date" json:"shipDate,omitempty"`

	// Totals (calculated from lines)
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`

	// Table part: sold goods
	Lines []SaleLine `db:"-" json:"lines"`
}

// SaleLine is one sold position.
type SaleLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	GoodsID  id.ID          `db:"goods_id" json:"goodsId"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// ShippedQuantity accumulates across partial shipments
	ShippedQuantity types.Quantity `db:"shipped_quantity" json:"shippedQuantity"`

	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Amount    types.Money `db:"amount" json:"amount"`
}

// Unresolved returns the portion of the line not yet shipped.
func (l SaleLine) Unresolved() types.Quantity {
	return l.Quantity - l.ShippedQuantity
}

// NewSaleOrder creates a new draft sale order.
func NewSaleOrder(customerID, warehouseID id.ID) *SaleOrder {
	return &SaleOrder{
		Document:    entity.NewDocument(),
		CustomerID:  customerID,
		WarehouseID: warehouseID,
		Lines:       make([]SaleLine, 0),
	}
}

// AddLine adds a sold position and recalculates totals.
func (s *SaleOrder) AddLine(goodsID id.ID, quantity types.Quantity, unitPrice types.Money) {
	line := SaleLine{
		LineID:    id.New(),
		LineNo:    len(s.Lines) + 1,
		GoodsID:   goodsID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    unitPrice.Mul(types.NewMoney(quantity.Float64())),
	}
	s.Lines = append(s.Lines, line)
	s.RecalculateTotals()
}

// RecalculateTotals recomputes header totals from lines.
func (s *SaleOrder) RecalculateTotals() {
	s.TotalQuantity = 0
	s.TotalAmount = types.ZeroMoney()
	for _, line := range s.Lines {
		s.TotalQuantity += line.Quantity
		s.TotalAmount = s.TotalAmount.Add(line.Amount)
	}
}

// IsFullyShipped reports whether every line is resolved.
func (s *SaleOrder) IsFullyShipped() bool {
	for _, line := range s.Lines {
		if line.Unresolved().IsPositive() {
			return false
		}
	}
	return true
}

// Validate implements entity.Validatable.
func (s *SaleOrder) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(s.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if id.IsNil(s.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	seen := make(map[id.ID]bool, len(s.Lines))
	for i, line := range s.Lines {
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
func (s *SaleOrder) DocumentType() string { return documents.TypeSaleOrder }
