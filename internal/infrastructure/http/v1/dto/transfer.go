package dto

import (
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/documents/transfer"
)

// --- Request DTOs ---

// TransferLineRequest is one transferred position in a transfer request.
type TransferLineRequest struct {
	GoodsID  string         `json:"goodsId" binding:"required"`
	Quantity types.Quantity `json:"quantity" binding:"required"`
}

// CreateStockTransferRequest is the request body for creating a transfer.
type CreateStockTransferRequest struct {
	SourceWarehouseID string                `json:"sourceWarehouseId" binding:"required"`
	DestWarehouseID   string                `json:"destWarehouseId" binding:"required"`
	Date              *time.Time            `json:"date"`
	Comment           string                `json:"comment"`
	Lines             []TransferLineRequest `json:"lines" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateStockTransferRequest) ToEntity() (*transfer.StockTransfer, error) {
	sourceID, err := id.Parse(r.SourceWarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid sourceWarehouseId format")
	}
	destID, err := id.Parse(r.DestWarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid destWarehouseId format")
	}

	doc := transfer.NewStockTransfer(sourceID, destID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment

	for i, line := range r.Lines {
		goodsID, err := id.Parse(line.GoodsID)
		if err != nil {
			return nil, apperror.NewValidation("invalid goodsId format").
				WithDetail("lineNo", i+1)
		}
		doc.AddLine(goodsID, line.Quantity)
	}
	return doc, nil
}

// UpdateStockTransferRequest is the request body for updating a draft
// transfer. Lines replace the existing table part entirely.
type UpdateStockTransferRequest struct {
	SourceWarehouseID string                `json:"sourceWarehouseId" binding:"required"`
	DestWarehouseID   string                `json:"destWarehouseId" binding:"required"`
	Date              *time.Time            `json:"date"`
	Comment           string                `json:"comment"`
	Lines             []TransferLineRequest `json:"lines" binding:"required"`
	Version           int                   `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateStockTransferRequest) ApplyTo(doc *transfer.StockTransfer) error {
	sourceID, err := id.Parse(r.SourceWarehouseID)
	if err != nil {
		return apperror.NewValidation("invalid sourceWarehouseId format")
	}
	destID, err := id.Parse(r.DestWarehouseID)
	if err != nil {
		return apperror.NewValidation("invalid destWarehouseId format")
	}

	doc.SourceWarehouseID = sourceID
	doc.DestWarehouseID = destID
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment
	doc.Version = r.Version

	doc.Lines = doc.Lines[:0]
	for i, line := range r.Lines {
		goodsID, err := id.Parse(line.GoodsID)
		if err != nil {
			return apperror.NewValidation("invalid goodsId format").
				WithDetail("lineNo", i+1)
		}
		doc.AddLine(goodsID, line.Quantity)
	}
	return nil
}

// --- Response DTOs ---

// TransferLineResponse is one transferred position in a transfer response.
type TransferLineResponse struct {
	LineID   string         `json:"lineId"`
	LineNo   int            `json:"lineNo"`
	GoodsID  string         `json:"goodsId"`
	Quantity types.Quantity `json:"quantity"`
}

// StockTransferResponse is the response body for a stock transfer.
type StockTransferResponse struct {
	DocumentResponse
	SourceWarehouseID string                 `json:"sourceWarehouseId"`
	DestWarehouseID   string                 `json:"destWarehouseId"`
	Lines             []TransferLineResponse `json:"lines"`
}

// FromStockTransfer creates response DTO from domain entity.
func FromStockTransfer(doc *transfer.StockTransfer) *StockTransferResponse {
	lines := make([]TransferLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		lines[i] = TransferLineResponse{
			LineID:   line.LineID.String(),
			LineNo:   line.LineNo,
			GoodsID:  line.GoodsID.String(),
			Quantity: line.Quantity,
		}
	}
	return &StockTransferResponse{
		DocumentResponse:  FromDocument(doc.Document),
		SourceWarehouseID: doc.SourceWarehouseID.String(),
		DestWarehouseID:   doc.DestWarehouseID.String(),
		Lines:             lines,
	}
}
