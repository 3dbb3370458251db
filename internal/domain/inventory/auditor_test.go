package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
)

func TestCheckConsistency_CleanLedger(t *testing.T) {
	svc, auditor, _ := newTestService()
	ctx := context.Background()
	goods, wh := id.New(), id.New()

	_, err := svc.StockIn(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(10), Actor: "tester"})
	require.NoError(t, err)
	_, err = svc.StockOut(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(4), Actor: "tester"})
	require.NoError(t, err)

	discrepancies, err := auditor.CheckConsistency(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, discrepancies)
}

func TestCheckConsistency_DetectsInjectedDrift(t *testing.T) {
	svc, auditor, repo := newTestService()
	ctx := context.Background()
	goods, wh := id.New(), id.New()

	_, err := svc.StockIn(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(10), Actor: "tester"})
	require.NoError(t, err)

	// Corrupt the stored balance behind the ledger's back.
	require.NoError(t, repo.ApplyBalance(ctx, goods, wh, qty(13)))

	discrepancies, err := auditor.CheckConsistency(ctx, &goods)
	require.NoError(t, err)
	require.Len(t, discrepancies, 1)

	d := discrepancies[0]
	assert.Equal(t, goods, d.GoodsID)
	assert.Equal(t, wh, d.WarehouseID)
	assert.Equal(t, qty(13), d.StoredQuantity)
	assert.Equal(t, qty(10), d.ReplayQuantity)
	assert.Equal(t, qty(3), d.Difference)
}

func TestCheckConsistency_ToleratesEpsilon(t *testing.T) {
	svc, auditor, repo := newTestService()
	ctx := context.Background()
	goods, wh := id.New(), id.New()

	_, err := svc.StockIn(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(10), Actor: "tester"})
	require.NoError(t, err)

	// Drift exactly at the 0.01 tolerance is not a discrepancy.
	require.NoError(t, repo.ApplyBalance(ctx, goods, wh, qty(10)+types.QuantityEpsilon))

	discrepancies, err := auditor.CheckConsistency(ctx, &goods)
	require.NoError(t, err)
	assert.Empty(t, discrepancies)
}

func TestCheckConsistency_ScopedToGoods(t *testing.T) {
	svc, auditor, repo := newTestService()
	ctx := context.Background()
	g1, g2, wh := id.New(), id.New(), id.New()

	_, err := svc.StockIn(ctx, Mutation{GoodsID: g1, WarehouseID: wh, Quantity: qty(5), Actor: "tester"})
	require.NoError(t, err)
	_, err = svc.StockIn(ctx, Mutation{GoodsID: g2, WarehouseID: wh, Quantity: qty(5), Actor: "tester"})
	require.NoError(t, err)

	require.NoError(t, repo.ApplyBalance(ctx, g2, wh, qty(9)))

	discrepancies, err := auditor.CheckConsistency(ctx, &g1)
	require.NoError(t, err)
	assert.Empty(t, discrepancies)

	discrepancies, err = auditor.CheckConsistency(ctx, nil)
	require.NoError(t, err)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, g2, discrepancies[0].GoodsID)
}

func TestFixDiscrepancy_OverwritesFromLedger(t *testing.T) {
	svc, auditor, repo := newTestService()
	ctx := context.Background()
	goods, wh := id.New(), id.New()

	_, err := svc.StockIn(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(10), Actor: "tester"})
	require.NoError(t, err)
	require.NoError(t, repo.ApplyBalance(ctx, goods, wh, qty(42)))

	result, err := auditor.FixDiscrepancy(ctx, goods, wh, "admin")
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, qty(42), result.OldQuantity)
	assert.Equal(t, qty(10), result.NewQuantity)

	balance, err := svc.GetBalance(ctx, goods, wh)
	require.NoError(t, err)
	assert.Equal(t, qty(10), balance.Quantity)

	// The repair refreshes the cache only; the ledger stays untouched.
	assert.Len(t, repo.movements, 1)

	discrepancies, err := auditor.CheckConsistency(ctx, &goods)
	require.NoError(t, err)
	assert.Empty(t, discrepancies)
}

func TestFixDiscrepancy_IdempotentOnConsistentPair(t *testing.T) {
	svc, auditor, repo := newTestService()
	ctx := context.Background()
	goods, wh := id.New(), id.New()

	_, err := svc.StockIn(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(10), Actor: "tester"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		result, err := auditor.FixDiscrepancy(ctx, goods, wh, "admin")
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Equal(t, qty(10), result.OldQuantity)
		assert.Equal(t, qty(10), result.NewQuantity)
	}

	balance, err := svc.GetBalance(ctx, goods, wh)
	require.NoError(t, err)
	assert.Equal(t, qty(10), balance.Quantity)
	assert.Len(t, repo.movements, 1)
}
