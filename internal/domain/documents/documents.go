// Package documents holds contracts shared by the stock-affecting document
// types (purchase orders, sale orders, adjustments, transfers).
package documents

import (
	"context"

	"stockerp/internal/core/entity"
	"stockerp/internal/domain/inventory"
)

// Document type names used in ledger references (ref_doc_type).
const (
	TypePurchaseOrder   = "PurchaseOrder"
	TypeSaleOrder       = "SaleOrder"
	TypeStockAdjustment = "StockAdjustment"
	TypeStockTransfer   = "StockTransfer"
)

// StockMover is the slice of the inventory mutation service that confirm
// workflows depend on. Confirm handlers never touch balances directly; every
// stock change goes through these operations.
type StockMover interface {
	StockIn(ctx context.Context, m inventory.Mutation) (entity.StockBalance, error)
	StockOut(ctx context.Context, m inventory.Mutation) (entity.StockBalance, error)
	AdjustIncrease(ctx context.Context, m inventory.Mutation) (entity.StockBalance, error)
	AdjustDecrease(ctx context.Context, m inventory.Mutation) (entity.StockBalance, error)
	Transfer(ctx context.Context, req inventory.TransferRequest) error
}

var _ StockMover = (*inventory.Service)(nil)
