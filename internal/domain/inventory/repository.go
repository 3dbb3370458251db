// Package inventory implements the stock ledger: per-(goods, warehouse)
// balances, the append-only movement log, the only code path allowed to
// mutate a balance, and the consistency auditor over both.
package inventory

import (
	"context"
	"time"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
)

// Repository defines storage operations for the stock ledger.
// Implementations must honor the locking contract: *ForUpdate methods hold a
// row-level exclusive lock until the enclosing transaction commits.
type Repository interface {
	// Movement operations (append-only)

	// CreateMovement appends one ledger entry.
	CreateMovement(ctx context.Context, m entity.StockMovement) error

	// CreateMovements batch inserts ledger entries (COPY fast path).
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// ListMovements returns ledger entries matching the filter, ordered by
	// creation time ascending.
	ListMovements(ctx context.Context, filter MovementFilter) ([]entity.StockMovement, error)

	// ListMovementsByRef returns all entries recorded for a document.
	ListMovementsByRef(ctx context.Context, refType string, refID id.ID) ([]entity.StockMovement, error)

	// Balance operations

	// GetBalance returns the stored balance; found=false when the pair has
	// never been tracked.
	GetBalance(ctx context.Context, goodsID, warehouseID id.ID) (entity.StockBalance, bool, error)

	// LockBalanceForUpdate returns the balance row locked FOR UPDATE;
	// found=false (no lock taken) when the row does not exist.
	LockBalanceForUpdate(ctx context.Context, goodsID, warehouseID id.ID) (entity.StockBalance, bool, error)

	// UpsertBalanceForUpdate inserts a zero-quantity row when absent and
	// returns it locked FOR UPDATE.
	UpsertBalanceForUpdate(ctx context.Context, goodsID, warehouseID id.ID) (entity.StockBalance, error)

	// ApplyBalance overwrites the quantity of a locked balance row.
	ApplyBalance(ctx context.Context, goodsID, warehouseID id.ID, quantity types.Quantity) error

	// DeleteBalance removes a balance row. Callers must ensure quantity == 0.
	DeleteBalance(ctx context.Context, goodsID, warehouseID id.ID) error

	// ListBalances returns stored balances matching the filter.
	ListBalances(ctx context.Context, filter BalanceFilter) ([]entity.StockBalance, error)

	// Auditing

	// CompareBalances returns, per (goods, warehouse) pair in scope, the
	// stored balance next to the ledger-replayed sum of signed changes.
	// Pairs present only in the ledger report a stored quantity of zero.
	CompareBalances(ctx context.Context, goodsID *id.ID) ([]BalanceComparison, error)

	// ReplaySum recomputes the signed-change sum for one pair. Used by the
	// repair path inside a transaction holding the balance row lock.
	ReplaySum(ctx context.Context, goodsID, warehouseID id.ID) (types.Quantity, error)

	// Reporting

	// GetTurnover calculates opening/inbound/outbound/closing for a period.
	GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error)
}

// BalanceFilter narrows balance queries.
type BalanceFilter struct {
	GoodsIDs    []id.ID
	WarehouseID *id.ID
	ExcludeZero bool
	Limit       int
	Offset      int
}

// MovementFilter narrows ledger queries.
type MovementFilter struct {
	GoodsID     *id.ID
	WarehouseID *id.ID
	Kind        *entity.MovementKind
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}

// BalanceComparison pairs a stored balance with its ledger replay.
type BalanceComparison struct {
	GoodsID        id.ID          `db:"goods_id"`
	WarehouseID    id.ID          `db:"warehouse_id"`
	StoredQuantity types.Quantity `db:"stored_quantity"`
	ReplayQuantity types.Quantity `db:"replay_quantity"`
}

// TurnoverFilter scopes a turnover report.
type TurnoverFilter struct {
	WarehouseID *id.ID
	GoodsID     *id.ID
	FromDate    time.Time
	ToDate      time.Time
}

// Turnover represents inbound/outbound totals over a period.
type Turnover struct {
	WarehouseID    id.ID          `json:"warehouseId,omitempty"`
	GoodsID        id.ID          `json:"goodsId,omitempty"`
	OpeningBalance types.Quantity `json:"openingBalance"`
	Inbound        types.Quantity `json:"inbound"`
	Outbound       types.Quantity `json:"outbound"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}
