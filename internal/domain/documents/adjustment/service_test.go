package adjustment

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
	"stockerp/internal/domain"
	"stockerp/internal/domain/audit"
	"stockerp/internal/domain/inventory"
)

type world struct {
	mu        sync.Mutex
	docs      map[id.ID]*StockAdjustment
	lines     map[id.ID][]AdjustmentLine
	balances  map[[2]id.ID]types.Quantity // goods, warehouse
	movements []entity.StockMovement
}

func newWorld() *world {
	return &world{
		docs:     make(map[id.ID]*StockAdjustment),
		lines:    make(map[id.ID][]AdjustmentLine),
		balances: make(map[[2]id.ID]types.Quantity),
	}
}

func (w *world) Create(ctx context.Context, doc *StockAdjustment) error {
	cp := *doc
	w.docs[doc.ID] = &cp
	return nil
}

func (w *world) GetByID(ctx context.Context, docID id.ID) (*StockAdjustment, error) {
	doc, ok := w.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("stock adjustment", docID)
	}
	cp := *doc
	return &cp, nil
}

func (w *world) GetByNumber(ctx context.Context, number string) (*StockAdjustment, error) {
	for _, doc := range w.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("stock adjustment", number)
}

func (w *world) Update(ctx context.Context, doc *StockAdjustment) error {
	cp := *doc
	w.docs[doc.ID] = &cp
	return nil
}

func (w *world) Delete(ctx context.Context, docID id.ID) error {
	delete(w.docs, docID)
	return nil
}

func (w *world) GetLines(ctx context.Context, docID id.ID) ([]AdjustmentLine, error) {
	lines := make([]AdjustmentLine, len(w.lines[docID]))
	copy(lines, w.lines[docID])
	return lines, nil
}

func (w *world) SaveLines(ctx context.Context, docID id.ID, lines []AdjustmentLine) error {
	cp := make([]AdjustmentLine, len(lines))
	copy(cp, lines)
	w.lines[docID] = cp
	return nil
}

func (w *world) List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockAdjustment], error) {
	var items []*StockAdjustment
	for _, doc := range w.docs {
		cp := *doc
		items = append(items, &cp)
	}
	return domain.ListResult[*StockAdjustment]{Items: items, TotalCount: int64(len(items))}, nil
}

func (w *world) GetForUpdate(ctx context.Context, docID id.ID) (*StockAdjustment, error) {
	return w.GetByID(ctx, docID)
}

func (w *world) StockIn(ctx context.Context, m inventory.Mutation) (entity.StockBalance, error) {
	if !m.Quantity.IsPositive() {
		return entity.StockBalance{}, apperror.NewInvalidQuantity(m.Quantity.String())
	}
	key := [2]id.ID{m.GoodsID, m.WarehouseID}
	before := w.balances[key]
	w.balances[key] = before + m.Quantity
	w.movements = append(w.movements, entity.NewStockMovement(
		m.GoodsID, m.WarehouseID, entity.MovementAdjust, m.Quantity, before, m.Ref, m.Note, m.Actor))
	return entity.StockBalance{GoodsID: m.GoodsID, WarehouseID: m.WarehouseID, Quantity: before + m.Quantity}, nil
}

func (w *world) StockOut(ctx context.Context, m inventory.Mutation) (entity.StockBalance, error) {
	key := [2]id.ID{m.GoodsID, m.WarehouseID}
	before, ok := w.balances[key]
	if !ok {
		return entity.StockBalance{}, apperror.NewNoSuchBalance(m.GoodsID.String(), m.WarehouseID.String())
	}
	if before < m.Quantity {
		return entity.StockBalance{}, apperror.NewInsufficientStock(m.GoodsID.String(), m.Quantity.String(), before.String())
	}
	w.balances[key] = before - m.Quantity
	w.movements = append(w.movements, entity.NewStockMovement(
		m.GoodsID, m.WarehouseID, entity.MovementAdjust, m.Quantity.Neg(), before, m.Ref, m.Note, m.Actor))
	return entity.StockBalance{GoodsID: m.GoodsID, WarehouseID: m.WarehouseID, Quantity: before - m.Quantity}, nil
}

func (w *world) AdjustIncrease(ctx context.Context, m inventory.Mutation) (entity.StockBalance, error) {
	return w.StockIn(ctx, m)
}

func (w *world) AdjustDecrease(ctx context.Context, m inventory.Mutation) (entity.StockBalance, error) {
	return w.StockOut(ctx, m)
}

func (w *world) Transfer(ctx context.Context, req inventory.TransferRequest) error {
	out := inventory.Mutation{GoodsID: req.GoodsID, WarehouseID: req.SourceID, Quantity: req.Quantity, Ref: req.Ref, Note: req.Note, Actor: req.Actor}
	if _, err := w.StockOut(ctx, out); err != nil {
		return err
	}
	in := out
	in.WarehouseID = req.DestinationID
	_, err := w.StockIn(ctx, in)
	return err
}

type worldTxKey struct{}

func (w *world) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(worldTxKey{}) != nil {
		return fn(ctx)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	docs := make(map[id.ID]*StockAdjustment, len(w.docs))
	for k, v := range w.docs {
		cp := *v
		docs[k] = &cp
	}
	lines := make(map[id.ID][]AdjustmentLine, len(w.lines))
	for k, v := range w.lines {
		cp := make([]AdjustmentLine, len(v))
		copy(cp, v)
		lines[k] = cp
	}
	balances := make(map[[2]id.ID]types.Quantity, len(w.balances))
	for k, v := range w.balances {
		balances[k] = v
	}
	movements := make([]entity.StockMovement, len(w.movements))
	copy(movements, w.movements)

	if err := fn(context.WithValue(ctx, worldTxKey{}, true)); err != nil {
		w.docs, w.lines, w.balances, w.movements = docs, lines, balances, movements
		return err
	}
	return nil
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func newTestService(t *testing.T) (*Service, *world) {
	w := newWorld()
	return NewService(w, w, nil, w, audit.Nop{}), w
}

func draftAdjustment(t *testing.T, svc *Service, warehouseID id.ID, lines ...AdjustmentLine) *StockAdjustment {
	t.Helper()
	doc := NewStockAdjustment(warehouseID)
	doc.Number = "ADJ202602180001"
	doc.Reason = "physical count"
	for _, l := range lines {
		doc.AddLine(l.GoodsID, l.Direction, l.Quantity)
	}
	require.NoError(t, svc.Create(context.Background(), doc))
	return doc
}

func TestConfirm_AppliesBothDirectionsAndSnapshots(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	surplus, shortage, warehouse := id.New(), id.New(), id.New()
	w.balances[[2]id.ID{surplus, warehouse}] = qty(10)
	w.balances[[2]id.ID{shortage, warehouse}] = qty(10)

	doc := draftAdjustment(t, svc, warehouse,
		AdjustmentLine{GoodsID: surplus, Direction: DirectionIncrease, Quantity: qty(5)},
		AdjustmentLine{GoodsID: shortage, Direction: DirectionDecrease, Quantity: qty(3)},
	)

	confirmed, err := svc.Confirm(ctx, doc.ID, "counter")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, confirmed.Status)

	assert.Equal(t, qty(15), w.balances[[2]id.ID{surplus, warehouse}])
	assert.Equal(t, qty(7), w.balances[[2]id.ID{shortage, warehouse}])

	assert.Equal(t, qty(10), confirmed.Lines[0].BeforeQuantity)
	assert.Equal(t, qty(15), confirmed.Lines[0].AfterQuantity)
	assert.Equal(t, qty(10), confirmed.Lines[1].BeforeQuantity)
	assert.Equal(t, qty(7), confirmed.Lines[1].AfterQuantity)

	require.Len(t, w.movements, 2)
	for _, mv := range w.movements {
		assert.Equal(t, doc.ID, mv.RefDocID)
	}
}

func TestValidate_SameGoodsBothDirectionsIsAllowed(t *testing.T) {
	ctx := context.Background()
	goods, warehouse := id.New(), id.New()

	doc := NewStockAdjustment(warehouse)
	doc.Number = "ADJ202602180002"
	doc.AddLine(goods, DirectionIncrease, qty(5))
	doc.AddLine(goods, DirectionDecrease, qty(2))
	require.NoError(t, doc.Validate(ctx))

	doc.AddLine(goods, DirectionDecrease, qty(1))
	err := doc.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicateLineItem))
}

func TestConfirm_NoPartialState(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	goods, warehouse := id.New(), id.New()
	w.balances[[2]id.ID{goods, warehouse}] = qty(10)

	doc := draftAdjustment(t, svc, warehouse,
		AdjustmentLine{GoodsID: goods, Direction: DirectionIncrease, Quantity: qty(1)})

	_, err := svc.Confirm(ctx, doc.ID, "counter")
	require.NoError(t, err)

	// Completed is terminal even though purchase/sale allow re-confirming.
	_, err = svc.Confirm(ctx, doc.ID, "counter")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
	require.Len(t, w.movements, 1)
}

func TestConfirm_DecreaseBelowStockAbortsAllLines(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	first, second, warehouse := id.New(), id.New(), id.New()
	w.balances[[2]id.ID{first, warehouse}] = qty(10)
	w.balances[[2]id.ID{second, warehouse}] = qty(2)

	doc := draftAdjustment(t, svc, warehouse,
		AdjustmentLine{GoodsID: first, Direction: DirectionDecrease, Quantity: qty(4)},
		AdjustmentLine{GoodsID: second, Direction: DirectionDecrease, Quantity: qty(5)},
	)

	_, err := svc.Confirm(ctx, doc.ID, "counter")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	assert.Equal(t, qty(10), w.balances[[2]id.ID{first, warehouse}])
	assert.Equal(t, qty(2), w.balances[[2]id.ID{second, warehouse}])
	assert.Empty(t, w.movements)

	stored, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, stored.Status)
}
