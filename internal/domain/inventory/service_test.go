package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
)

func qty(v float64) types.Quantity {
	return types.NewQuantityFromFloat64(v)
}

func TestStockIn_CreatesBalanceAndLedgerEntry(t *testing.T) {
	svc, _, repo := newTestService()
	ctx := context.Background()
	goods, wh := id.New(), id.New()

	balance, err := svc.StockIn(ctx, Mutation{
		GoodsID:     goods,
		WarehouseID: wh,
		Quantity:    qty(10),
		Note:        "initial receipt",
		Actor:       "tester",
	})
	require.NoError(t, err)
	assert.Equal(t, qty(10), balance.Quantity)

	movements, err := repo.ListMovements(ctx, MovementFilter{GoodsID: &goods})
	require.NoError(t, err)
	require.Len(t, movements, 1)

	m := movements[0]
	assert.Equal(t, entity.MovementInbound, m.Kind)
	assert.Equal(t, qty(10), m.ChangeQuantity)
	assert.Equal(t, qty(0), m.BeforeQuantity)
	assert.Equal(t, qty(10), m.AfterQuantity)
	assert.Equal(t, "tester", m.CreatedBy)
}

func TestStockIn_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _, repo := newTestService()
	ctx := context.Background()

	for _, q := range []types.Quantity{qty(0), qty(-5)} {
		_, err := svc.StockIn(ctx, Mutation{
			GoodsID:     id.New(),
			WarehouseID: id.New(),
			Quantity:    q,
			Actor:       "tester",
		})
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))
	}
	assert.Empty(t, repo.movements)
}

func TestStockOut_NoSuchBalance(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.StockOut(context.Background(), Mutation{
		GoodsID:     id.New(),
		WarehouseID: id.New(),
		Quantity:    qty(1),
		Actor:       "tester",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNoSuchBalance))
}

func TestStockOut_InsufficientStockReportsCurrentBalance(t *testing.T) {
	svc, _, repo := newTestService()
	ctx := context.Background()
	goods, wh := id.New(), id.New()

	_, err := svc.StockIn(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(10), Actor: "tester"})
	require.NoError(t, err)

	_, err = svc.StockOut(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(15), Actor: "tester"})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Contains(t, appErr.Message, "10.0000")

	// Balance untouched, no second ledger row.
	balance, err := svc.GetBalance(ctx, goods, wh)
	require.NoError(t, err)
	assert.Equal(t, qty(10), balance.Quantity)
	assert.Len(t, repo.movements, 1)
}

func TestStockRoundTrip(t *testing.T) {
	svc, _, repo := newTestService()
	ctx := context.Background()
	goods, wh := id.New(), id.New()

	_, err := svc.StockIn(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(7.5), Actor: "tester"})
	require.NoError(t, err)
	balance, err := svc.StockOut(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(7.5), Actor: "tester"})
	require.NoError(t, err)

	assert.True(t, balance.Quantity.IsZero())
	assert.Len(t, repo.movements, 2)

	// Every row satisfies before + change == after.
	for _, m := range repo.movements {
		assert.Equal(t, m.AfterQuantity, m.BeforeQuantity+m.ChangeQuantity)
	}
}

func TestTransfer_MovesBothLegsAtomically(t *testing.T) {
	svc, _, repo := newTestService()
	ctx := context.Background()
	goods, src, dst := id.New(), id.New(), id.New()
	ref := entity.DocRef{Type: "StockTransfer", ID: id.New()}

	_, err := svc.StockIn(ctx, Mutation{GoodsID: goods, WarehouseID: src, Quantity: qty(15), Actor: "tester"})
	require.NoError(t, err)

	err = svc.Transfer(ctx, TransferRequest{
		GoodsID:       goods,
		SourceID:      src,
		DestinationID: dst,
		Quantity:      qty(4),
		Ref:           ref,
		Actor:         "tester",
	})
	require.NoError(t, err)

	srcBalance, err := svc.GetBalance(ctx, goods, src)
	require.NoError(t, err)
	dstBalance, err := svc.GetBalance(ctx, goods, dst)
	require.NoError(t, err)
	assert.Equal(t, qty(11), srcBalance.Quantity)
	assert.Equal(t, qty(4), dstBalance.Quantity)

	legs, err := repo.ListMovementsByRef(ctx, ref.Type, ref.ID)
	require.NoError(t, err)
	require.Len(t, legs, 2)
	for _, leg := range legs {
		assert.Equal(t, entity.MovementTransfer, leg.Kind)
	}
}

func TestTransfer_RollsBackSourceLegWhenInsufficient(t *testing.T) {
	svc, _, repo := newTestService()
	ctx := context.Background()
	goods, src, dst := id.New(), id.New(), id.New()

	_, err := svc.StockIn(ctx, Mutation{GoodsID: goods, WarehouseID: src, Quantity: qty(3), Actor: "tester"})
	require.NoError(t, err)

	err = svc.Transfer(ctx, TransferRequest{
		GoodsID:       goods,
		SourceID:      src,
		DestinationID: dst,
		Quantity:      qty(5),
		Actor:         "tester",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	srcBalance, err := svc.GetBalance(ctx, goods, src)
	require.NoError(t, err)
	assert.Equal(t, qty(3), srcBalance.Quantity)

	_, found, err := repo.GetBalance(ctx, goods, dst)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Len(t, repo.movements, 1)
}

func TestTransfer_SameWarehouseRejected(t *testing.T) {
	svc, _, _ := newTestService()
	wh := id.New()

	err := svc.Transfer(context.Background(), TransferRequest{
		GoodsID:       id.New(),
		SourceID:      wh,
		DestinationID: wh,
		Quantity:      qty(1),
		Actor:         "tester",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestConcurrentStockOut_NeverOversells(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	goods, wh := id.New(), id.New()

	// Balance 10, 8 workers each taking 3: at most 3 can succeed.
	_, err := svc.StockIn(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(10), Actor: "tester"})
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.StockOut(ctx, Mutation{
				GoodsID:     goods,
				WarehouseID: wh,
				Quantity:    qty(3),
				Actor:       "tester",
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
		}
	}
	assert.Equal(t, 3, successes)

	balance, err := svc.GetBalance(ctx, goods, wh)
	require.NoError(t, err)
	assert.Equal(t, qty(1), balance.Quantity)
	assert.False(t, balance.Quantity.IsNegative())
}

func TestDeleteBalance_OnlyWhenZero(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	goods, wh := id.New(), id.New()

	_, err := svc.StockIn(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(2), Actor: "tester"})
	require.NoError(t, err)

	err = svc.DeleteBalance(ctx, goods, wh)
	require.Error(t, err)

	_, err = svc.StockOut(ctx, Mutation{GoodsID: goods, WarehouseID: wh, Quantity: qty(2), Actor: "tester"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBalance(ctx, goods, wh))

	_, found, err := svc.repo.GetBalance(ctx, goods, wh)
	require.NoError(t, err)
	assert.False(t, found)
}
