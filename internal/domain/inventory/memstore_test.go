package inventory

import (
	"context"
	"sync"
	"time"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/audit"
)

// In-memory fakes for the Repository and tx.Manager contracts. The tx fake
// serializes transactions with a global mutex and restores a snapshot on
// error, which is exactly the visibility the row-lock contract promises for
// a single (goods, warehouse) pair.

type pairKey struct {
	goods     id.ID
	warehouse id.ID
}

type memRepo struct {
	mu        sync.Mutex
	balances  map[pairKey]entity.StockBalance
	movements []entity.StockMovement
}

func newMemRepo() *memRepo {
	return &memRepo{balances: make(map[pairKey]entity.StockBalance)}
}

func (r *memRepo) snapshot() ([]entity.StockMovement, map[pairKey]entity.StockBalance) {
	movements := make([]entity.StockMovement, len(r.movements))
	copy(movements, r.movements)
	balances := make(map[pairKey]entity.StockBalance, len(r.balances))
	for k, v := range r.balances {
		balances[k] = v
	}
	return movements, balances
}

func (r *memRepo) restore(movements []entity.StockMovement, balances map[pairKey]entity.StockBalance) {
	r.movements = movements
	r.balances = balances
}

func (r *memRepo) CreateMovement(ctx context.Context, m entity.StockMovement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *memRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memRepo) ListMovements(ctx context.Context, f MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if f.GoodsID != nil && m.GoodsID != *f.GoodsID {
			continue
		}
		if f.WarehouseID != nil && m.WarehouseID != *f.WarehouseID {
			continue
		}
		if f.Kind != nil && m.Kind != *f.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memRepo) ListMovementsByRef(ctx context.Context, refType string, refID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if m.RefDocType == refType && m.RefDocID == refID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) GetBalance(ctx context.Context, goodsID, warehouseID id.ID) (entity.StockBalance, bool, error) {
	b, ok := r.balances[pairKey{goodsID, warehouseID}]
	return b, ok, nil
}

func (r *memRepo) LockBalanceForUpdate(ctx context.Context, goodsID, warehouseID id.ID) (entity.StockBalance, bool, error) {
	return r.GetBalance(ctx, goodsID, warehouseID)
}

func (r *memRepo) UpsertBalanceForUpdate(ctx context.Context, goodsID, warehouseID id.ID) (entity.StockBalance, error) {
	key := pairKey{goodsID, warehouseID}
	if b, ok := r.balances[key]; ok {
		return b, nil
	}
	b := entity.StockBalance{
		GoodsID:     goodsID,
		WarehouseID: warehouseID,
		UpdatedAt:   time.Now().UTC(),
	}
	r.balances[key] = b
	return b, nil
}

func (r *memRepo) ApplyBalance(ctx context.Context, goodsID, warehouseID id.ID, quantity types.Quantity) error {
	key := pairKey{goodsID, warehouseID}
	b := r.balances[key]
	b.GoodsID = goodsID
	b.WarehouseID = warehouseID
	b.Quantity = quantity
	b.UpdatedAt = time.Now().UTC()
	r.balances[key] = b
	return nil
}

func (r *memRepo) DeleteBalance(ctx context.Context, goodsID, warehouseID id.ID) error {
	delete(r.balances, pairKey{goodsID, warehouseID})
	return nil
}

func (r *memRepo) ListBalances(ctx context.Context, f BalanceFilter) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	for _, b := range r.balances {
		if len(f.GoodsIDs) > 0 && !containsID(f.GoodsIDs, b.GoodsID) {
			continue
		}
		if f.WarehouseID != nil && b.WarehouseID != *f.WarehouseID {
			continue
		}
		if f.ExcludeZero && b.Quantity.IsZero() {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *memRepo) CompareBalances(ctx context.Context, goodsID *id.ID) ([]BalanceComparison, error) {
	replayed := make(map[pairKey]types.Quantity)
	for _, m := range r.movements {
		replayed[pairKey{m.GoodsID, m.WarehouseID}] += m.ChangeQuantity
	}

	seen := make(map[pairKey]bool)
	var out []BalanceComparison
	for key, b := range r.balances {
		if goodsID != nil && key.goods != *goodsID {
			continue
		}
		seen[key] = true
		out = append(out, BalanceComparison{
			GoodsID:        key.goods,
			WarehouseID:    key.warehouse,
			StoredQuantity: b.Quantity,
			ReplayQuantity: replayed[key],
		})
	}
	for key, sum := range replayed {
		if seen[key] {
			continue
		}
		if goodsID != nil && key.goods != *goodsID {
			continue
		}
		out = append(out, BalanceComparison{
			GoodsID:        key.goods,
			WarehouseID:    key.warehouse,
			ReplayQuantity: sum,
		})
	}
	return out, nil
}

func (r *memRepo) ReplaySum(ctx context.Context, goodsID, warehouseID id.ID) (types.Quantity, error) {
	var sum types.Quantity
	for _, m := range r.movements {
		if m.GoodsID == goodsID && m.WarehouseID == warehouseID {
			sum += m.ChangeQuantity
		}
	}
	return sum, nil
}

func (r *memRepo) GetTurnover(ctx context.Context, f TurnoverFilter) (Turnover, error) {
	var t Turnover
	for _, m := range r.movements {
		if f.GoodsID != nil && m.GoodsID != *f.GoodsID {
			continue
		}
		if f.WarehouseID != nil && m.WarehouseID != *f.WarehouseID {
			continue
		}
		switch {
		case m.CreatedAt.Before(f.FromDate):
			t.OpeningBalance += m.ChangeQuantity
		case m.CreatedAt.After(f.ToDate):
			// outside period
		case m.ChangeQuantity.IsPositive():
			t.Inbound += m.ChangeQuantity
		default:
			t.Outbound += m.ChangeQuantity.Abs()
		}
	}
	t.ClosingBalance = t.OpeningBalance + t.Inbound - t.Outbound
	return t, nil
}

func containsID(ids []id.ID, v id.ID) bool {
	for _, x := range ids {
		if x == v {
			return true
		}
	}
	return false
}

// serialTxManager serializes transactions and rolls the repo back to a
// snapshot when the body fails. Nested calls join the outer transaction.
type serialTxManager struct {
	mu   sync.Mutex
	repo *memRepo
}

type fakeTxKey struct{}

func (m *serialTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	movements, balances := m.repo.snapshot()
	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		m.repo.restore(movements, balances)
		return err
	}
	return nil
}

func newTestService() (*Service, *Auditor, *memRepo) {
	repo := newMemRepo()
	txm := &serialTxManager{repo: repo}
	return NewService(txm, repo, nil), NewAuditor(txm, repo, audit.Nop{}), repo
}
