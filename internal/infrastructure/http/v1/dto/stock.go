package dto

import (
	"time"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/types"
)

// --- Stock balances ---

// StockBalanceResponse represents a stock balance in API responses.
type StockBalanceResponse struct {
	GoodsID     string         `json:"goodsId"`
	WarehouseID string         `json:"warehouseId"`
	Quantity    types.Quantity `json:"quantity"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty"`
}

// FromStockBalance converts entity to response DTO. A zero UpdatedAt (pair
// never tracked) serializes as a missing field, not "0001-01-01".
func FromStockBalance(b entity.StockBalance) StockBalanceResponse {
	var updatedAt *time.Time
	if !b.UpdatedAt.IsZero() {
		val := b.UpdatedAt
		updatedAt = &val
	}
	return StockBalanceResponse{
		GoodsID:     b.GoodsID.String(),
		WarehouseID: b.WarehouseID.String(),
		Quantity:    b.Quantity,
		UpdatedAt:   updatedAt,
	}
}

// StockBalanceListResponse represents a list of stock balances.
type StockBalanceListResponse struct {
	Items         []StockBalanceResponse `json:"items"`
	TotalQuantity types.Quantity         `json:"totalQuantity"`
}

// --- Stock movements ---

// StockMovementResponse represents one ledger entry in API responses.
type StockMovementResponse struct {
	ID             string         `json:"id"`
	GoodsID        string         `json:"goodsId"`
	WarehouseID    string         `json:"warehouseId"`
	Kind           string         `json:"kind"`
	ChangeQuantity types.Quantity `json:"changeQuantity"`
	BeforeQuantity types.Quantity `json:"beforeQuantity"`
	AfterQuantity  types.Quantity `json:"afterQuantity"`
	RefDocType     string         `json:"refDocType,omitempty"`
	RefDocID       string         `json:"refDocId,omitempty"`
	Note           string         `json:"note,omitempty"`
	CreatedBy      string         `json:"createdBy"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// FromStockMovement converts entity to response DTO.
func FromStockMovement(m entity.StockMovement) StockMovementResponse {
	resp := StockMovementResponse{
		ID:             m.ID.String(),
		GoodsID:        m.GoodsID.String(),
		WarehouseID:    m.WarehouseID.String(),
		Kind:           string(m.Kind),
		ChangeQuantity: m.ChangeQuantity,
		BeforeQuantity: m.BeforeQuantity,
		AfterQuantity:  m.AfterQuantity,
		RefDocType:     m.RefDocType,
		Note:           m.Note,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
	if m.RefDocType != "" {
		resp.RefDocID = m.RefDocID.String()
	}
	return resp
}

// StockMovementListResponse represents a list of stock movements.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
}

// --- Manual stock operations ---

// StockOperationRequest is the request body for a manual receipt or issue.
type StockOperationRequest struct {
	GoodsID     string         `json:"goodsId" binding:"required"`
	WarehouseID string         `json:"warehouseId" binding:"required"`
	Quantity    types.Quantity `json:"quantity" binding:"required"`
	Note        string         `json:"note"`
}

// TransferStockRequest is the request body for a manual transfer.
type TransferStockRequest struct {
	GoodsID           string         `json:"goodsId" binding:"required"`
	SourceWarehouseID string         `json:"sourceWarehouseId" binding:"required"`
	DestWarehouseID   string         `json:"destWarehouseId" binding:"required"`
	Quantity          types.Quantity `json:"quantity" binding:"required"`
	Note              string         `json:"note"`
}

// --- Consistency auditor ---

// FixDiscrepancyRequest names the (goods, warehouse) pair to repair.
type FixDiscrepancyRequest struct {
	GoodsID     string `json:"goodsId" binding:"required"`
	WarehouseID string `json:"warehouseId" binding:"required"`
}
