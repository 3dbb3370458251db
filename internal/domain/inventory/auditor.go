package inventory

import (
	"context"
	"fmt"

	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/audit"
	"stockerp/pkg/logger"
)

// Auditor recomputes balances from the ledger and repairs divergence.
// Discrepancies found during a scan are data, not errors.
type Auditor struct {
	txm  tx.Manager
	repo Repository
	rec  audit.Recorder
}

// NewAuditor creates a consistency auditor over the stock ledger. rec may
// be nil when repairs need no audit trail.
func NewAuditor(txm tx.Manager, repo Repository, rec audit.Recorder) *Auditor {
	return &Auditor{txm: txm, repo: repo, rec: rec}
}

// Discrepancy is a divergence between a stored balance and its ledger replay.
type Discrepancy struct {
	GoodsID        id.ID          `json:"goodsId"`
	WarehouseID    id.ID          `json:"warehouseId"`
	StoredQuantity types.Quantity `json:"storedQuantity"`
	ReplayQuantity types.Quantity `json:"replayQuantity"`
	Difference     types.Quantity `json:"difference"`
}

// FixResult reports the outcome of one repair.
type FixResult struct {
	GoodsID     id.ID          `json:"goodsId"`
	WarehouseID id.ID          `json:"warehouseId"`
	OldQuantity types.Quantity `json:"oldQuantity"`
	NewQuantity types.Quantity `json:"newQuantity"`
	Changed     bool           `json:"changed"`
}

// CheckConsistency replays the signed ledger changes per (goods, warehouse)
// pair and compares the result to the stored balance. goodsID narrows the
// scan to one goods; nil scans everything. Pairs are reported only when the
// divergence exceeds the 0.01 tolerance.
func (a *Auditor) CheckConsistency(ctx context.Context, goodsID *id.ID) ([]Discrepancy, error) {
	// A read-only transaction gives the scan one consistent snapshot of
	// ledger and balances.
	var comparisons []BalanceComparison
	scan := func(ctx context.Context) error {
		var err error
		comparisons, err = a.repo.CompareBalances(ctx, goodsID)
		return err
	}

	var err error
	if rom, ok := a.txm.(tx.ReadOnlyManager); ok {
		err = rom.ReadOnly(ctx, scan)
	} else {
		err = scan(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("compare balances: %w", err)
	}

	var out []Discrepancy
	for _, c := range comparisons {
		diff := c.StoredQuantity - c.ReplayQuantity
		if diff.Abs() <= types.QuantityEpsilon {
			continue
		}
		out = append(out, Discrepancy{
			GoodsID:        c.GoodsID,
			WarehouseID:    c.WarehouseID,
			StoredQuantity: c.StoredQuantity,
			ReplayQuantity: c.ReplayQuantity,
			Difference:     diff,
		})
	}

	if len(out) > 0 {
		logger.Warn(ctx, "stock consistency check found discrepancies",
			"count", len(out),
		)
	}
	return out, nil
}

// FixDiscrepancy overwrites the stored balance with the ledger-replayed
// value. The ledger stays untouched: it is the source of truth and the
// balance is the materialized view being refreshed, so the repair does not
// emit a movement row. Idempotent: fixing an already-consistent pair is a
// no-op.
func (a *Auditor) FixDiscrepancy(ctx context.Context, goodsID, warehouseID id.ID, actor string) (FixResult, error) {
	// Serializable isolation, where the manager supports it, makes a
	// concurrent mutation of the same pair fail the repair instead of
	// interleaving with it.
	run := a.txm.RunInTransaction
	if sm, ok := a.txm.(tx.SerializableManager); ok {
		run = sm.RunSerializable
	}

	var result FixResult
	err := run(ctx, func(ctx context.Context) error {
		// Lock first so concurrent mutations cannot slip between the replay
		// and the overwrite.
		balance, err := a.repo.UpsertBalanceForUpdate(ctx, goodsID, warehouseID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		replayed, err := a.repo.ReplaySum(ctx, goodsID, warehouseID)
		if err != nil {
			return fmt.Errorf("replay ledger: %w", err)
		}

		result = FixResult{
			GoodsID:     goodsID,
			WarehouseID: warehouseID,
			OldQuantity: balance.Quantity,
			NewQuantity: replayed,
		}

		if (balance.Quantity - replayed).Abs() <= types.QuantityEpsilon {
			result.NewQuantity = balance.Quantity
			return nil
		}

		if err := a.repo.ApplyBalance(ctx, goodsID, warehouseID, replayed); err != nil {
			return fmt.Errorf("apply balance: %w", err)
		}
		result.Changed = true

		if a.rec != nil {
			err := a.rec.Record(ctx, audit.Entry{
				EntityType: "stock_balance",
				EntityID:   goodsID,
				Action:     audit.ActionRepair,
				Actor:      actor,
				Changes: map[string]any{
					"warehouse_id": warehouseID.String(),
					"old":          result.OldQuantity.String(),
					"new":          result.NewQuantity.String(),
				},
			})
			if err != nil {
				return fmt.Errorf("record repair: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return FixResult{}, err
	}

	if result.Changed {
		logger.Warn(ctx, "stock balance repaired from ledger",
			"goods_id", goodsID,
			"warehouse_id", warehouseID,
			"old", result.OldQuantity.String(),
			"new", result.NewQuantity.String(),
			"actor", actor,
		)
	}
	return result, nil
}
