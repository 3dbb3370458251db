package dto

import (
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/documents/purchase"
)

// --- Request DTOs ---

// PurchaseLineRequest is one ordered position in a purchase order request.
type PurchaseLineRequest struct {
	GoodsID   string         `json:"goodsId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// CreatePurchaseOrderRequest is the request body for creating a purchase order.
type CreatePurchaseOrderRequest struct {
	SupplierID   string                `json:"supplierId" binding:"required"`
	WarehouseID  string                `json:"warehouseId" binding:"required"`
	Date         *time.Time            `json:"date"`
	ExpectedDate *time.Time            `json:"expectedDate"`
	Comment      string                `json:"comment"`
	Lines        []PurchaseLineRequest `json:"lines" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePurchaseOrderRequest) ToEntity() (*purchase.PurchaseOrder, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return nil, apperror.NewValidation("invalid supplierId format")
	}
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid warehouseId format")
	}

	doc := purchase.NewPurchaseOrder(supplierID, warehouseID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.ExpectedDate = r.ExpectedDate
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

// UpdatePurchaseOrderRequest is the request body for updating a draft
// purchase order. Lines replace the existing table part entirely.
type UpdatePurchaseOrderRequest struct {
	SupplierID   string                `json:"supplierId" binding:"required"`
	WarehouseID  string                `json:"warehouseId" binding:"required"`
	Date         *time.Time            `json:"date"`
	ExpectedDate *time.Time            `json:"expectedDate"`
	Comment      string                `json:"comment"`
	Lines        []PurchaseLineRequest `json:"lines" binding:"required"`
	Version      int                   `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdatePurchaseOrderRequest) ApplyTo(doc *purchase.PurchaseOrder) error {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return apperror.NewValidation("invalid supplierId format")
	}
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return apperror.NewValidation("invalid warehouseId format")
	}

	doc.SupplierID = supplierID
	doc.WarehouseID = warehouseID
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.ExpectedDate = r.ExpectedDate
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

// ConfirmPurchaseOrderRequest narrows a confirm to specific lines and
// quantities. An empty body receives every unresolved quantity in full.
type ConfirmPurchaseOrderRequest struct {
	Receipts []ReceiptRequest `json:"receipts"`
}

// ReceiptRequest is one partial-receipt position.
type ReceiptRequest struct {
	LineID   string         `json:"lineId" binding:"required"`
	Quantity types.Quantity `json:"quantity" binding:"required"`
}

// ToReceipts converts the request to domain receipts.
func (r *ConfirmPurchaseOrderRequest) ToReceipts() ([]purchase.Receipt, error) {
	if len(r.Receipts) == 0 {
		return nil, nil
	}
	receipts := make([]purchase.Receipt, 0, len(r.Receipts))
	for _, item := range r.Receipts {
		lineID, err := id.Parse(item.LineID)
		if err != nil {
			return nil, apperror.NewValidation("invalid lineId format").
				WithDetail("lineId", item.LineID)
		}
		receipts = append(receipts, purchase.Receipt{LineID: lineID, Quantity: item.Quantity})
	}
	return receipts, nil
}

// --- Response DTOs ---

// PurchaseLineResponse is one ordered position in a purchase order response.
type PurchaseLineResponse struct {
	LineID           string         `json:"lineId"`
	LineNo           int            `json:"lineNo"`
	GoodsID          string         `json:"goodsId"`
	Quantity         types.Quantity `json:"quantity"`
	ReceivedQuantity types.Quantity `json:"receivedQuantity"`
	UnitPrice        types.Money    `json:"unitPrice"`
	Amount           types.Money    `json:"amount"`
}

// PurchaseOrderResponse is the response body for a purchase order.
type PurchaseOrderResponse struct {
	DocumentResponse
	SupplierID    string                 `json:"supplierId"`
	WarehouseID   string                 `json:"warehouseId"`
	ExpectedDate  *time.Time             `json:"expectedDate,omitempty"`
	TotalQuantity types.Quantity         `json:"totalQuantity"`
	TotalAmount   types.Money            `json:"totalAmount"`
	Lines         []PurchaseLineResponse `json:"lines"`
}

// FromPurchaseOrder creates response DTO from domain entity.
func FromPurchaseOrder(doc *purchase.PurchaseOrder) *PurchaseOrderResponse {
	lines := make([]PurchaseLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		lines[i] = PurchaseLineResponse{
			LineID:           line.LineID.String(),
			LineNo:           line.LineNo,
			GoodsID:          line.GoodsID.String(),
			Quantity:         line.Quantity,
			ReceivedQuantity: line.ReceivedQuantity,
			UnitPrice:        line.UnitPrice,
			Amount:           line.Amount,
		}
	}
	return &PurchaseOrderResponse{
		DocumentResponse: FromDocument(doc.Document),
		SupplierID:       doc.SupplierID.String(),
		WarehouseID:      doc.WarehouseID.String(),
		ExpectedDate:     doc.ExpectedDate,
		TotalQuantity:    doc.TotalQuantity,
		TotalAmount:      doc.TotalAmount,
		Lines:            lines,
	}
}
