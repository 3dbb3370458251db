// Package inventory_repo provides the PostgreSQL implementation of the stock
// ledger repository: the append-only movement log and the materialized
// balance table with its row-locking contract.
package inventory_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/inventory"
	"stockerp/internal/infrastructure/storage/postgres"
)

const (
	stockMovementsTable = "stock_movements"
	stockBalancesTable  = "stock_balances"
)

var movementColumns = []string{
	"id", "goods_id", "warehouse_id", "kind",
	"change_quantity", "before_quantity", "after_quantity",
	"ref_doc_type", "ref_doc_id", "note", "created_by", "created_at",
}

// StockRepo implements inventory.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txm tx.Manager) *StockRepo {
	return &StockRepo{
		txManager: postgres.AsTxManager(txm),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func movementRow(m entity.StockMovement) []any {
	return []any{
		m.ID, m.GoodsID, m.WarehouseID, string(m.Kind),
		m.ChangeQuantity.Int64Scaled(), m.BeforeQuantity.Int64Scaled(), m.AfterQuantity.Int64Scaled(),
		m.RefDocType, m.RefDocID, m.Note, m.CreatedBy, m.CreatedAt,
	}
}

// CreateMovement appends one ledger entry.
func (r *StockRepo) CreateMovement(ctx context.Context, m entity.StockMovement) error {
	q := r.builder.Insert(stockMovementsTable).
		Columns(movementColumns...).
		Values(movementRow(m)...)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// CreateMovements batch inserts ledger entries.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, movementRow(m))
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback: multi-VALUES insert outside a transaction.
	q := r.builder.Insert(stockMovementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(movementRow(m)...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// ListMovements returns ledger entries matching the filter.
func (r *StockRepo) ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).From(stockMovementsTable)

	if filter.GoodsID != nil {
		q = q.Where(squirrel.Eq{"goods_id": *filter.GoodsID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": string(*filter.Kind)})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	// id breaks ties: UUIDv7 carries the insert order within a timestamp
	q = q.OrderBy("created_at", "id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// ListMovementsByRef returns all entries recorded for a document.
func (r *StockRepo) ListMovementsByRef(ctx context.Context, refType string, refID id.ID) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).From(stockMovementsTable).
		Where(squirrel.Eq{
			"ref_doc_type": refType,
			"ref_doc_id":   refID,
		}).
		OrderBy("created_at", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetBalance returns the stored balance; found=false when the pair has never
// been tracked.
func (r *StockRepo) GetBalance(ctx context.Context, goodsID, warehouseID id.ID) (entity.StockBalance, bool, error) {
	var balance entity.StockBalance

	q := r.builder.Select("goods_id", "warehouse_id", "quantity", "updated_at").
		From(stockBalancesTable).
		Where(squirrel.Eq{
			"goods_id":     goodsID,
			"warehouse_id": warehouseID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, false, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.StockBalance{}, false, nil
		}
		return balance, false, fmt.Errorf("get balance: %w", err)
	}

	return balance, true, nil
}

// LockBalanceForUpdate returns the balance row locked FOR UPDATE.
func (r *StockRepo) LockBalanceForUpdate(ctx context.Context, goodsID, warehouseID id.ID) (entity.StockBalance, bool, error) {
	var balance entity.StockBalance

	sql := `
		SELECT goods_id, warehouse_id, quantity, updated_at
		FROM stock_balances
		WHERE goods_id = $1 AND warehouse_id = $2
		FOR UPDATE
	`

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, goodsID, warehouseID); err != nil {
		if pgxscan.NotFound(err) {
			return entity.StockBalance{}, false, nil
		}
		return balance, false, fmt.Errorf("lock balance: %w", err)
	}

	return balance, true, nil
}

// UpsertBalanceForUpdate inserts a zero-quantity row when absent and returns
// it locked FOR UPDATE. The insert and the lock run as two statements: the
// ON CONFLICT no-op keeps concurrent inserters from failing, the second
// statement takes the lock on whichever row won.
func (r *StockRepo) UpsertBalanceForUpdate(ctx context.Context, goodsID, warehouseID id.ID) (entity.StockBalance, error) {
	var balance entity.StockBalance

	insertSQL := `
		INSERT INTO stock_balances (goods_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (goods_id, warehouse_id) DO NOTHING
	`

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, insertSQL, goodsID, warehouseID, time.Now().UTC()); err != nil {
		return balance, fmt.Errorf("upsert balance: %w", err)
	}

	lockSQL := `
		SELECT goods_id, warehouse_id, quantity, updated_at
		FROM stock_balances
		WHERE goods_id = $1 AND warehouse_id = $2
		FOR UPDATE
	`

	if err := pgxscan.Get(ctx, querier, &balance, lockSQL, goodsID, warehouseID); err != nil {
		return balance, fmt.Errorf("lock upserted balance: %w", err)
	}

	return balance, nil
}

// ApplyBalance overwrites the quantity of a locked balance row.
func (r *StockRepo) ApplyBalance(ctx context.Context, goodsID, warehouseID id.ID, quantity types.Quantity) error {
	q := r.builder.Update(stockBalancesTable).
		Set("quantity", quantity.Int64Scaled()).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{
			"goods_id":     goodsID,
			"warehouse_id": warehouseID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("apply balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("apply balance: row %s/%s not found", goodsID, warehouseID)
	}

	return nil
}

// DeleteBalance removes a balance row.
func (r *StockRepo) DeleteBalance(ctx context.Context, goodsID, warehouseID id.ID) error {
	q := r.builder.Delete(stockBalancesTable).
		Where(squirrel.Eq{
			"goods_id":     goodsID,
			"warehouse_id": warehouseID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete balance: %w", err)
	}

	return nil
}

// ListBalances returns stored balances matching the filter.
func (r *StockRepo) ListBalances(ctx context.Context, filter inventory.BalanceFilter) ([]entity.StockBalance, error) {
	q := r.builder.Select("goods_id", "warehouse_id", "quantity", "updated_at").
		From(stockBalancesTable)

	if len(filter.GoodsIDs) > 0 {
		q = q.Where(squirrel.Eq{"goods_id": filter.GoodsIDs})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}

	q = q.OrderBy("goods_id", "warehouse_id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// CompareBalances joins the balance table against the replayed ledger sums.
// The FULL OUTER JOIN surfaces pairs present on either side only: a ledger
// pair without a balance row reports a stored quantity of zero, a balance
// row without ledger entries reports a replay of zero.
func (r *StockRepo) CompareBalances(ctx context.Context, goodsID *id.ID) ([]inventory.BalanceComparison, error) {
	sql := `
		SELECT
			COALESCE(b.goods_id, m.goods_id) AS goods_id,
			COALESCE(b.warehouse_id, m.warehouse_id) AS warehouse_id,
			COALESCE(b.quantity, 0) AS stored_quantity,
			COALESCE(m.replay, 0)::bigint AS replay_quantity
		FROM stock_balances b
		FULL OUTER JOIN (
			SELECT goods_id, warehouse_id, SUM(change_quantity) AS replay
			FROM stock_movements
			GROUP BY goods_id, warehouse_id
		) m ON m.goods_id = b.goods_id AND m.warehouse_id = b.warehouse_id
	`

	args := []any{}
	if goodsID != nil {
		sql += ` WHERE COALESCE(b.goods_id, m.goods_id) = $1`
		args = append(args, *goodsID)
	}
	sql += ` ORDER BY 1, 2`

	var comparisons []inventory.BalanceComparison
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &comparisons, sql, args...); err != nil {
		return nil, fmt.Errorf("compare balances: %w", err)
	}

	return comparisons, nil
}

// ReplaySum recomputes the signed-change sum for one pair.
func (r *StockRepo) ReplaySum(ctx context.Context, goodsID, warehouseID id.ID) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(change_quantity), 0)::bigint
		FROM stock_movements
		WHERE goods_id = $1 AND warehouse_id = $2
	`

	var sumScaled int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, goodsID, warehouseID).Scan(&sumScaled)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("replay sum: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(sumScaled), nil
}

// GetTurnover calculates opening/inbound/outbound/closing for a period.
func (r *StockRepo) GetTurnover(ctx context.Context, filter inventory.TurnoverFilter) (inventory.Turnover, error) {
	var result inventory.Turnover

	args := []any{filter.FromDate, filter.ToDate}
	conditions := "created_at >= $1 AND created_at < $2"
	argIndex := 3

	if filter.WarehouseID != nil {
		conditions += fmt.Sprintf(" AND warehouse_id = $%d", argIndex)
		args = append(args, *filter.WarehouseID)
		result.WarehouseID = *filter.WarehouseID
		argIndex++
	}
	if filter.GoodsID != nil {
		conditions += fmt.Sprintf(" AND goods_id = $%d", argIndex)
		args = append(args, *filter.GoodsID)
		result.GoodsID = *filter.GoodsID
	}

	sql := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN change_quantity > 0 THEN change_quantity ELSE 0 END), 0)::bigint AS inbound,
			COALESCE(SUM(CASE WHEN change_quantity < 0 THEN -change_quantity ELSE 0 END), 0)::bigint AS outbound
		FROM stock_movements
		WHERE %s
	`, conditions)

	querier := r.txManager.GetQuerier(ctx)
	var inboundScaled, outboundScaled int64
	err := querier.QueryRow(ctx, sql, args...).Scan(&inboundScaled, &outboundScaled)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}
	result.Inbound = types.NewQuantityFromInt64Scaled(inboundScaled)
	result.Outbound = types.NewQuantityFromInt64Scaled(outboundScaled)

	// Opening balance: replay everything before the period start.
	openingArgs := []any{filter.FromDate}
	openingConditions := "created_at < $1"
	argIndex = 2

	if filter.WarehouseID != nil {
		openingConditions += fmt.Sprintf(" AND warehouse_id = $%d", argIndex)
		openingArgs = append(openingArgs, *filter.WarehouseID)
		argIndex++
	}
	if filter.GoodsID != nil {
		openingConditions += fmt.Sprintf(" AND goods_id = $%d", argIndex)
		openingArgs = append(openingArgs, *filter.GoodsID)
	}

	openingSQL := fmt.Sprintf(`
		SELECT COALESCE(SUM(change_quantity), 0)::bigint
		FROM stock_movements
		WHERE %s
	`, openingConditions)

	var openingScaled int64
	err = querier.QueryRow(ctx, openingSQL, openingArgs...).Scan(&openingScaled)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate opening balance: %w", err)
	}
	result.OpeningBalance = types.NewQuantityFromInt64Scaled(openingScaled)

	result.ClosingBalance = result.OpeningBalance + result.Inbound - result.Outbound

	return result, nil
}

// Ensure interface compliance.
var _ inventory.Repository = (*StockRepo)(nil)
