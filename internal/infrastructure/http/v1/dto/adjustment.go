package dto

import (
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/documents/adjustment"
)

// --- Request DTOs ---

// AdjustmentLineRequest is one correction position in an adjustment request.
type AdjustmentLineRequest struct {
	GoodsID   string               `json:"goodsId" binding:"required"`
	Direction adjustment.Direction `json:"direction" binding:"required"`
	Quantity  types.Quantity       `json:"quantity" binding:"required"`
}

// CreateStockAdjustmentRequest is the request body for creating an adjustment.
type CreateStockAdjustmentRequest struct {
	WarehouseID string                  `json:"warehouseId" binding:"required"`
	Date        *time.Time              `json:"date"`
	Reason      string                  `json:"reason"`
	Comment     string                  `json:"comment"`
	Lines       []AdjustmentLineRequest `json:"lines" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateStockAdjustmentRequest) ToEntity() (*adjustment.StockAdjustment, error) {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid warehouseId format")
	}

	doc := adjustment.NewStockAdjustment(warehouseID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Reason = r.Reason
	doc.Comment = r.Comment

	for i, line := range r.Lines {
		goodsID, err := id.Parse(line.GoodsID)
		if err != nil {
			return nil, apperror.NewValidation("invalid goodsId format").
				WithDetail("lineNo", i+1)
		}
		doc.AddLine(goodsID, line.Direction, line.Quantity)
	}
	return doc, nil
}

// UpdateStockAdjustmentRequest is the request body for updating a draft
// adjustment. Lines replace the existing table part entirely.
type UpdateStockAdjustmentRequest struct {
	WarehouseID string                  `json:"warehouseId" binding:"required"`
	Date        *time.Time              `json:"date"`
	Reason      string                  `json:"reason"`
	Comment     string                  `json:"comment"`
	Lines       []AdjustmentLineRequest `json:"lines" binding:"required"`
	Version     int                     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateStockAdjustmentRequest) ApplyTo(doc *adjustment.StockAdjustment) error {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return apperror.NewValidation("invalid warehouseId format")
	}

	doc.WarehouseID = warehouseID
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Reason = r.Reason
	doc.Comment = r.Comment
	doc.Version = r.Version

	doc.Lines = doc.Lines[:0]
	for i, line := range r.Lines {
		goodsID, err := id.Parse(line.GoodsID)
		if err != nil {
			return apperror.NewValidation("invalid goodsId format").
				WithDetail("lineNo", i+1)
		}
		doc.AddLine(goodsID, line.Direction, line.Quantity)
	}
	return nil
}

// --- Response DTOs ---

// AdjustmentLineResponse is one correction position in an adjustment response.
type AdjustmentLineResponse struct {
	LineID         string               `json:"lineId"`
	LineNo         int                  `json:"lineNo"`
	GoodsID        string               `json:"goodsId"`
	Direction      adjustment.Direction `json:"direction"`
	Quantity       types.Quantity       `json:"quantity"`
	BeforeQuantity types.Quantity       `json:"beforeQuantity"`
	AfterQuantity  types.Quantity       `json:"afterQuantity"`
}

// StockAdjustmentResponse is the response body for a stock adjustment.
type StockAdjustmentResponse struct {
	DocumentResponse
	WarehouseID string                   `json:"warehouseId"`
	Reason      string                   `json:"reason,omitempty"`
	Lines       []AdjustmentLineResponse `json:"lines"`
}

// FromStockAdjustment creates response DTO from domain entity.
func FromStockAdjustment(doc *adjustment.StockAdjustment) *StockAdjustmentResponse {
	lines := make([]AdjustmentLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		lines[i] = AdjustmentLineResponse{
			LineID:         line.LineID.String(),
			LineNo:         line.LineNo,
			GoodsID:        line.GoodsID.String(),
			Direction:      line.Direction,
			Quantity:       line.Quantity,
			BeforeQuantity: line.BeforeQuantity,
			AfterQuantity:  line.AfterQuantity,
		}
	}
	return &StockAdjustmentResponse{
		DocumentResponse: FromDocument(doc.Document),
		WarehouseID:      doc.WarehouseID.String(),
		Reason:           doc.Reason,
		Lines:            lines,
	}
}
