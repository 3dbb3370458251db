package sale

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

// world is an in-memory document store plus stock mover plus tx manager,
// all in one, so a rolled-back confirm restores documents and balances
// together the way a real transaction would.
type world struct {
	mu        sync.Mutex
	docs      map[id.ID]*SaleOrder
	lines     map[id.ID][]SaleLine
	balances  map[[2]id.ID]types.Quantity // goods, warehouse
	movements []entity.StockMovement
}

func newWorld() *world {
	return &world{
		docs:     make(map[id.ID]*SaleOrder),
		lines:    make(map[id.ID][]SaleLine),
		balances: make(map[[2]id.ID]types.Quantity),
	}
}

func (w *world) Create(ctx context.Context, doc *SaleOrder) error {
	cp := *doc
	w.docs[doc.ID] = &cp
	return nil
}

func (w *world) GetByID(ctx context.Context, docID id.ID) (*SaleOrder, error) {
	doc, ok := w.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("sale order", docID)
	}
	cp := *doc
	return &cp, nil
}

func (w *world) GetByNumber(ctx context.Context, number string) (*SaleOrder, error) {
	for _, doc := range w.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("sale order", number)
}

func (w *world) Update(ctx context.Context, doc *SaleOrder) error {
	cp := *doc
	w.docs[doc.ID] = &cp
	return nil
}

func (w *world) Delete(ctx context.Context, docID id.ID) error {
	delete(w.docs, docID)
	return nil
}

func (w *world) GetLines(ctx context.Context, docID id.ID) ([]SaleLine, error) {
	lines := make([]SaleLine, len(w.lines[docID]))
	copy(lines, w.lines[docID])
	return lines, nil
}

func (w *world) SaveLines(ctx context.Context, docID id.ID, lines []SaleLine) error {
	cp := make([]SaleLine, len(lines))
	copy(cp, lines)
	w.lines[docID] = cp
	return nil
}

func (w *world) List(ctx context.Context, filter ListFilter) (domain.ListResult[*SaleOrder], error) {
	var items []*SaleOrder
	for _, doc := range w.docs {
		cp := *doc
		items = append(items, &cp)
	}
	return domain.ListResult[*SaleOrder]{Items: items, TotalCount: int64(len(items))}, nil
}

func (w *world) GetForUpdate(ctx context.Context, docID id.ID) (*SaleOrder, error) {
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
		m.GoodsID, m.WarehouseID, entity.MovementInbound, m.Quantity, before, m.Ref, m.Note, m.Actor))
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
		m.GoodsID, m.WarehouseID, entity.MovementOutbound, m.Quantity.Neg(), before, m.Ref, m.Note, m.Actor))
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

	docs := make(map[id.ID]*SaleOrder, len(w.docs))
	for k, v := range w.docs {
		cp := *v
		docs[k] = &cp
	}
	lines := make(map[id.ID][]SaleLine, len(w.lines))
	for k, v := range w.lines {
		cp := make([]SaleLine, len(v))
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

func draftOrder(t *testing.T, svc *Service, warehouseID id.ID, lines ...SaleLine) *SaleOrder {
	t.Helper()
	doc := NewSaleOrder(id.New(), warehouseID)
	doc.Number = "SO202602180001"
	for _, l := range lines {
		doc.AddLine(l.GoodsID, l.Quantity, l.UnitPrice)
	}
	require.NoError(t, svc.Create(context.Background(), doc))
	return doc
}

func TestConfirm_FullShipmentCompletesOrder(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	goods, warehouse := id.New(), id.New()
	w.balances[[2]id.ID{goods, warehouse}] = qty(20)

	doc := draftOrder(t, svc, warehouse, SaleLine{GoodsID: goods, Quantity: qty(8), UnitPrice: types.NewMoney(5)})

	confirmed, err := svc.Confirm(ctx, doc.ID, "seller", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, confirmed.Status)
	assert.Equal(t, qty(8), confirmed.Lines[0].ShippedQuantity)
	assert.Equal(t, qty(12), w.balances[[2]id.ID{goods, warehouse}])

	require.Len(t, w.movements, 1)
	assert.Equal(t, qty(8).Neg(), w.movements[0].ChangeQuantity)
	assert.Equal(t, doc.ID, w.movements[0].RefDocID)
}

func TestConfirm_InsufficientStockAbortsEveryLine(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	plenty, scarce, warehouse := id.New(), id.New(), id.New()
	w.balances[[2]id.ID{plenty, warehouse}] = qty(100)
	w.balances[[2]id.ID{scarce, warehouse}] = qty(1)

	doc := draftOrder(t, svc, warehouse,
		SaleLine{GoodsID: plenty, Quantity: qty(10), UnitPrice: types.NewMoney(5)},
		SaleLine{GoodsID: scarce, Quantity: qty(3), UnitPrice: types.NewMoney(5)},
	)

	_, err := svc.Confirm(ctx, doc.ID, "seller", nil)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// The first line had enough stock but its shipment must not survive.
	assert.Equal(t, qty(100), w.balances[[2]id.ID{plenty, warehouse}])
	assert.Equal(t, qty(1), w.balances[[2]id.ID{scarce, warehouse}])
	assert.Empty(t, w.movements)

	stored, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, stored.Status)
	assert.True(t, stored.Lines[0].ShippedQuantity.IsZero())
}

func TestConfirm_PartialShipmentThenComplete(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	goods, warehouse := id.New(), id.New()
	w.balances[[2]id.ID{goods, warehouse}] = qty(50)

	doc := draftOrder(t, svc, warehouse, SaleLine{GoodsID: goods, Quantity: qty(10), UnitPrice: types.NewMoney(5)})
	lineID := w.lines[doc.ID][0].LineID

	confirmed, err := svc.Confirm(ctx, doc.ID, "seller", []Shipment{{LineID: lineID, Quantity: qty(6)}})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPartial, confirmed.Status)
	assert.Equal(t, qty(6), confirmed.Lines[0].ShippedQuantity)

	confirmed, err = svc.Confirm(ctx, doc.ID, "seller", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, confirmed.Status)
	assert.Equal(t, qty(40), w.balances[[2]id.ID{goods, warehouse}])
	require.Len(t, w.movements, 2)
}

func TestConfirm_CancelledOrderRejected(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	goods, warehouse := id.New(), id.New()
	w.balances[[2]id.ID{goods, warehouse}] = qty(10)

	doc := draftOrder(t, svc, warehouse, SaleLine{GoodsID: goods, Quantity: qty(2), UnitPrice: types.NewMoney(5)})
	require.NoError(t, svc.Cancel(ctx, doc.ID, "seller"))

	_, err := svc.Confirm(ctx, doc.ID, "seller", nil)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
	assert.Empty(t, w.movements)
}
