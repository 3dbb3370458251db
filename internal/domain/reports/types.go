// Package reports provides read-only reporting over stock and documents.
package reports

import (
	"time"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/inventory"
)

// --- Stock Status ---

// StockStatusFilter defines filter for the stock status report.
type StockStatusFilter struct {
	GoodsIDs     []id.ID
	WarehouseIDs []id.ID

	// WarningsOnly keeps only rows classified out/low/over
	WarningsOnly bool

	// ExcludeZero drops zero balances
	ExcludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// StockStatusRow is one (goods, warehouse) position with its classification.
type StockStatusRow struct {
	GoodsID       id.ID          `db:"goods_id" json:"goodsId"`
	GoodsName     string         `db:"goods_name" json:"goodsName"`
	SKU           string         `db:"sku" json:"sku,omitempty"`
	WarehouseID   id.ID          `db:"warehouse_id" json:"warehouseId"`
	WarehouseName string         `db:"warehouse_name" json:"warehouseName"`
	UnitSymbol    string         `db:"unit_symbol" json:"unitSymbol,omitempty"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	MinStock      types.Quantity `db:"min_stock" json:"minStock"`
	MaxStock      types.Quantity `db:"max_stock" json:"maxStock"`

	// Filled by the service from quantity and thresholds
	Class     inventory.StockClass `db:"-" json:"class"`
	ClassText string               `db:"-" json:"classText"`
}

// StockStatusReport is the classified stock listing.
type StockStatusReport struct {
	Items      []StockStatusRow `json:"items"`
	TotalCount int              `json:"totalCount"`

	// WarningCount counts rows classified out/low/over on this page
	WarningCount int `json:"warningCount"`
}

// --- Inventory Detail ---

// InventoryDetailFilter selects one goods across warehouses.
type InventoryDetailFilter struct {
	GoodsID id.ID

	// IncludeMovements attaches recent ledger entries
	IncludeMovements bool
	MovementLimit    int
}

// WarehouseQuantity is the per-warehouse slice of one goods' stock.
type WarehouseQuantity struct {
	WarehouseID   id.ID          `db:"warehouse_id" json:"warehouseId"`
	WarehouseName string         `db:"warehouse_name" json:"warehouseName"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
}

// InventoryDetail is the full stock picture of one goods.
type InventoryDetail struct {
	GoodsID      id.ID          `json:"goodsId"`
	GoodsName    string         `json:"goodsName"`
	SKU          string         `json:"sku,omitempty"`
	CategoryName string         `json:"categoryName,omitempty"`
	UnitSymbol   string         `json:"unitSymbol,omitempty"`
	MinStock     types.Quantity `json:"minStock"`
	MaxStock     types.Quantity `json:"maxStock"`

	TotalQuantity types.Quantity      `json:"totalQuantity"`
	ByWarehouse   []WarehouseQuantity `json:"byWarehouse"`

	// Classification of the total against the goods thresholds
	Class     inventory.StockClass `json:"class"`
	ClassText string               `json:"classText"`

	// RecentMovements is filled when requested
	RecentMovements []entity.StockMovement `json:"recentMovements,omitempty"`
}

// --- Stock Summary ---

// SummaryRow is one (goods, warehouse) position with valuation prices,
// the raw material for the dashboard summary.
type SummaryRow struct {
	GoodsID       id.ID          `db:"goods_id" json:"goodsId"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	MinStock      types.Quantity `db:"min_stock" json:"minStock"`
	MaxStock      types.Quantity `db:"max_stock" json:"maxStock"`
	PurchasePrice types.Money    `db:"purchase_price" json:"purchasePrice"`
	SalePrice     types.Money    `db:"sale_price" json:"salePrice"`
}

// StockSummary is the dashboard aggregate over the whole stock.
type StockSummary struct {
	GoodsTracked  int            `json:"goodsTracked"`
	TotalQuantity types.Quantity `json:"totalQuantity"`

	// Valuation at catalog prices
	PurchaseValue types.Money `json:"purchaseValue"`
	SaleValue     types.Money `json:"saleValue"`

	// Warning counters across all tracked goods
	OutOfStockCount int `json:"outOfStockCount"`
	LowStockCount   int `json:"lowStockCount"`
	OverstockCount  int `json:"overstockCount"`
}

// --- Stock Turnover ---

// StockTurnoverFilter defines filter for the turnover report.
type StockTurnoverFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	WarehouseIDs []id.ID
	GoodsIDs     []id.ID

	// IncludeZero keeps rows with no movement in the period
	IncludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// StockTurnoverRow is one row of the turnover report.
// ClosingBalance = OpeningBalance + Inbound - Outbound.
type StockTurnoverRow struct {
	GoodsID       id.ID  `db:"goods_id" json:"goodsId"`
	GoodsName     string `db:"goods_name" json:"goodsName"`
	SKU           string `db:"sku" json:"sku,omitempty"`
	WarehouseID   id.ID  `db:"warehouse_id" json:"warehouseId"`
	WarehouseName string `db:"warehouse_name" json:"warehouseName"`

	OpeningBalance types.Quantity `db:"opening_balance" json:"openingBalance"`
	Inbound        types.Quantity `db:"inbound" json:"inbound"`
	Outbound       types.Quantity `db:"outbound" json:"outbound"`
	ClosingBalance types.Quantity `db:"closing_balance" json:"closingBalance"`
}

// StockTurnoverReport is the full turnover report.
type StockTurnoverReport struct {
	FromDate   time.Time          `json:"fromDate"`
	ToDate     time.Time          `json:"toDate"`
	Items      []StockTurnoverRow `json:"items"`
	TotalCount int                `json:"totalCount"`

	// Summary totals over the page
	TotalOpening types.Quantity `json:"totalOpening"`
	TotalInbound types.Quantity `json:"totalInbound"`
	TotalOutbound types.Quantity `json:"totalOutbound"`
	TotalClosing types.Quantity `json:"totalClosing"`
}

// --- Document Journal ---

// DocumentJournalFilter defines filter for the cross-type document journal.
type DocumentJournalFilter struct {
	// Period
	FromDate *time.Time
	ToDate   *time.Time

	// Document types filter (purchase_order, sale_order, ...)
	DocumentTypes []string

	// Status filter
	Status *entity.DocStatus

	// Search by number
	NumberContains string

	// Filters by references
	WarehouseIDs []id.ID

	// Sorting
	SortBy    string // "date", "number", "type"
	SortOrder string // "asc", "desc"

	// Pagination
	Limit  int
	Offset int
}

// DocumentJournalItem represents a document in the journal.
type DocumentJournalItem struct {
	ID           id.ID            `db:"id" json:"id"`
	DocumentType string           `db:"document_type" json:"documentType"`
	Number       string           `db:"number" json:"number"`
	Date         time.Time        `db:"date" json:"date"`
	Status       entity.DocStatus `db:"status" json:"status"`

	// Counterparty info (supplier or customer, depending on type)
	CounterpartyName string `db:"counterparty_name" json:"counterpartyName,omitempty"`

	// Warehouse info
	WarehouseName string `db:"warehouse_name" json:"warehouseName,omitempty"`

	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DocumentJournal represents the document journal result.
type DocumentJournal struct {
	Items      []DocumentJournalItem `json:"items"`
	TotalCount int                   `json:"totalCount"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`

	// Summary by document type
	Summary []DocumentTypeSummary `json:"summary,omitempty"`
}

// DocumentTypeSummary provides counts by document type.
type DocumentTypeSummary struct {
	DocumentType   string `db:"document_type" json:"documentType"`
	Count          int    `db:"count" json:"count"`
	CompletedCount int    `db:"completed_count" json:"completedCount"`
}
