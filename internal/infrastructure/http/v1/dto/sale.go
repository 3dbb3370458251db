package dto

import (
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/documents/sale"
)

// --- Request DTOs ---

// SaleLineRequest is one sold position in a sale order request.
type SaleLineRequest struct {
	GoodsID   string         `json:"goodsId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// CreateSaleOrderRequest is the request body for creating a sale order.
type CreateSaleOrderRequest struct {
	CustomerID  string            `json:"customerId" binding:"required"`
	WarehouseID string            `json:"warehouseId" binding:"required"`
	Date        *time.Time        `json:"date"`
	ShipDate    *time.Time        `json:"shipDate"`
	Comment     string            `json:"comment"`
	Lines       []SaleLineRequest `json:"lines" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSaleOrderRequest) ToEntity() (*sale.SaleOrder, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return nil, apperror.NewValidation("invalid customerId format")
	}
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid warehouseId format")
	}

	doc := sale.NewSaleOrder(customerID, warehouseID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.ShipDate = r.ShipDate
	doc.Comment = r.Comment

	for i, line := range r.Lines {
		goodsID, err := id.Parse(line.GoodsID)
		if err != nil {
			return nil, apperror.NewValidation("invalid goodsId format").
				WithDetail("lineNo", i+1)
		}
		doc.AddLine(goodsID, line.Quantity, line.UnitPrice)
	}
	return doc, nil
}

// UpdateSaleOrderRequest is the request body for updating a draft sale
// order. Lines replace the existing table part entirely.
type UpdateSaleOrderRequest struct {
	CustomerID  string            `json:"customerId" binding:"required"`
	WarehouseID string            `json:"warehouseId" binding:"required"`
	Date        *time.Time        `json:"date"`
	ShipDate    *time.Time        `json:"shipDate"`
	Comment     string            `json:"comment"`
	Lines       []SaleLineRequest `json:"lines" binding:"required"`
	Version     int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateSaleOrderRequest) ApplyTo(doc *sale.SaleOrder) error {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return apperror.NewValidation("invalid customerId format")
	}
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return apperror.NewValidation("invalid warehouseId format")
	}

	doc.CustomerID = customerID
	doc.WarehouseID = warehouseID
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.ShipDate = r.ShipDate
	doc.Comment = r.Comment
	doc.Version = r.Version

	doc.Lines = doc.Lines[:0]
	for i, line := range r.Lines {
		goodsID, err := id.Parse(line.GoodsID)
		if err != nil {
			return apperror.NewValidation("invalid goodsId format").
				WithDetail("lineNo", i+1)
		}
		doc.AddLine(goodsID, line.Quantity, line.UnitPrice)
	}
	return nil
}

// ConfirmSaleOrderRequest narrows a confirm to specific lines and
// quantities. An empty body ships every unresolved quantity in full.
type ConfirmSaleOrderRequest struct {
	Shipments []ShipmentRequest `json:"shipments"`
}

// ShipmentRequest is one partial-shipment position.
type ShipmentRequest struct {
	LineID   string         `json:"lineId" binding:"required"`
	Quantity types.Quantity `json:"quantity" binding:"required"`
}

// ToShipments converts the request to domain shipments.
func (r *ConfirmSaleOrderRequest) ToShipments() ([]sale.Shipment, error) {
	if len(r.Shipments) == 0 {
		return nil, nil
	}
	shipments := make([]sale.Shipment, 0, len(r.Shipments))
	for _, item := range r.Shipments {
		lineID, err := id.Parse(item.LineID)
		if err != nil {
			return nil, apperror.NewValidation("invalid lineId format").
				WithDetail("lineId", item.LineID)
		}
		shipments = append(shipments, sale.Shipment{LineID: lineID, Quantity: item.Quantity})
	}
	return shipments, nil
}

// --- Response DTOs ---

// SaleLineResponse is one sold position in a sale order response.
type SaleLineResponse struct {
	LineID          string         `json:"lineId"`
	LineNo          int            `json:"lineNo"`
	GoodsID         string         `json:"goodsId"`
	Quantity        types.Quantity `json:"quantity"`
	ShippedQuantity types.Quantity `json:"shippedQuantity"`
	UnitPrice       types.Money    `json:"unitPrice"`
	Amount          types.Money    `json:"amount"`
}

// SaleOrderResponse is the response body for a sale order.
type SaleOrderResponse struct {
	DocumentResponse
	CustomerID    string             `json:"customerId"`
	WarehouseID   string             `json:"warehouseId"`
	ShipDate      *time.Time         `json:"shipDate,omitempty"`
	TotalQuantity types.Quantity     `json:"totalQuantity"`
	TotalAmount   types.Money        `json:"totalAmount"`
	Lines         []SaleLineResponse `json:"lines"`
}

// FromSaleOrder creates response DTO from domain entity.
func FromSaleOrder(doc *sale.SaleOrder) *SaleOrderResponse {
	lines := make([]SaleLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		lines[i] = SaleLineResponse{
			LineID:          line.LineID.String(),
			LineNo:          line.LineNo,
			GoodsID:         line.GoodsID.String(),
			Quantity:        line.Quantity,
			ShippedQuantity: line.ShippedQuantity,
			UnitPrice:       line.UnitPrice,
			Amount:          line.Amount,
		}
	}
	return &SaleOrderResponse{
		DocumentResponse: FromDocument(doc.Document),
		CustomerID:       doc.CustomerID.String(),
		WarehouseID:      doc.WarehouseID.String(),
		ShipDate:         doc.ShipDate,
		TotalQuantity:    doc.TotalQuantity,
		TotalAmount:      doc.TotalAmount,
		Lines:            lines,
	}
}
