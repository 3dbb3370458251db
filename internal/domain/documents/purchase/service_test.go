package purchase

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

// Local fakes: an in-memory document store, a stock mover backed by a plain
// balance map, and a tx manager that snapshots both and restores on error.

type world struct {
	mu        sync.Mutex
	docs      map[id.ID]*PurchaseOrder
	lines     map[id.ID][]PurchaseLine
	balances  map[[2]id.ID]types.Quantity // goods, warehouse
	movements []entity.StockMovement
}

func newWorld() *world {
	return &world{
		docs:     make(map[id.ID]*PurchaseOrder),
		lines:    make(map[id.ID][]PurchaseLine),
		balances: make(map[[2]id.ID]types.Quantity),
	}
}

// --- Repository ---

func (w *world) Create(ctx context.Context, doc *PurchaseOrder) error {
	cp := *doc
	w.docs[doc.ID] = &cp
	return nil
}

func (w *world) GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	doc, ok := w.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("purchase order", docID)
	}
	cp := *doc
	return &cp, nil
}

func (w *world) GetByNumber(ctx context.Context, number string) (*PurchaseOrder, error) {
	for _, doc := range w.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("purchase order", number)
}

func (w *world) Update(ctx context.Context, doc *PurchaseOrder) error {
	cp := *doc
	w.docs[doc.ID] = &cp
	return nil
}

func (w *world) Delete(ctx context.Context, docID id.ID) error {
	delete(w.docs, docID)
	return nil
}

func (w *world) GetLines(ctx context.Context, docID id.ID) ([]PurchaseLine, error) {
	lines := make([]PurchaseLine, len(w.lines[docID]))
	copy(lines, w.lines[docID])
	return lines, nil
}

func (w *world) SaveLines(ctx context.Context, docID id.ID, lines []PurchaseLine) error {
	cp := make([]PurchaseLine, len(lines))
	copy(cp, lines)
	w.lines[docID] = cp
	return nil
}

func (w *world) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	var items []*PurchaseOrder
	for _, doc := range w.docs {
		cp := *doc
		items = append(items, &cp)
	}
	return domain.ListResult[*PurchaseOrder]{Items: items, TotalCount: int64(len(items))}, nil
}

func (w *world) GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	return w.GetByID(ctx, docID)
}

// --- StockMover ---

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

// --- tx.Manager ---

type worldTxKey struct{}

func (w *world) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(worldTxKey{}) != nil {
		return fn(ctx)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	docs := make(map[id.ID]*PurchaseOrder, len(w.docs))
	for k, v := range w.docs {
		cp := *v
		docs[k] = &cp
	}
	lines := make(map[id.ID][]PurchaseLine, len(w.lines))
	for k, v := range w.lines {
		cp := make([]PurchaseLine, len(v))
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

func draftOrder(t *testing.T, svc *Service, w *world, lines ...PurchaseLine) *PurchaseOrder {
	t.Helper()
	doc := NewPurchaseOrder(id.New(), id.New())
	doc.Number = "PO202602180001"
	for _, l := range lines {
		doc.AddLine(l.GoodsID, l.Quantity, l.UnitPrice)
	}
	require.NoError(t, svc.Create(context.Background(), doc))
	return doc
}

func TestValidate_DuplicateGoodsRejected(t *testing.T) {
	doc := NewPurchaseOrder(id.New(), id.New())
	goods := id.New()
	doc.AddLine(goods, qty(5), types.NewMoney(10))
	doc.AddLine(goods, qty(3), types.NewMoney(10))

	err := doc.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicateLineItem))
}

func TestConfirm_FullReceiptCompletesOrder(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	goods := id.New()

	doc := draftOrder(t, svc, w, PurchaseLine{GoodsID: goods, Quantity: qty(10), UnitPrice: types.NewMoney(2)})

	confirmed, err := svc.Confirm(ctx, doc.ID, "buyer", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, confirmed.Status)
	assert.Equal(t, qty(10), confirmed.Lines[0].ReceivedQuantity)
	assert.Equal(t, qty(10), w.balances[[2]id.ID{goods, doc.WarehouseID}])

	require.Len(t, w.movements, 1)
	assert.Equal(t, doc.ID, w.movements[0].RefDocID)
	assert.Equal(t, "buyer", w.movements[0].CreatedBy)
}

func TestConfirm_PartialReceiptThenComplete(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	goods := id.New()

	doc := draftOrder(t, svc, w, PurchaseLine{GoodsID: goods, Quantity: qty(10), UnitPrice: types.NewMoney(2)})
	lineID := w.lines[doc.ID][0].LineID

	confirmed, err := svc.Confirm(ctx, doc.ID, "buyer", []Receipt{{LineID: lineID, Quantity: qty(4)}})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPartial, confirmed.Status)
	assert.Equal(t, qty(4), confirmed.Lines[0].ReceivedQuantity)

	// Unresolved quantity shrinks; a second confirm finishes the rest.
	confirmed, err = svc.Confirm(ctx, doc.ID, "buyer", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, confirmed.Status)
	assert.Equal(t, qty(10), w.balances[[2]id.ID{goods, doc.WarehouseID}])
}

func TestConfirm_CompletedOrderRejectsReconfirm(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	doc := draftOrder(t, svc, nil, PurchaseLine{GoodsID: id.New(), Quantity: qty(1), UnitPrice: types.NewMoney(1)})
	_, err := svc.Confirm(ctx, doc.ID, "buyer", nil)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, doc.ID, "buyer", nil)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
}

func TestConfirm_OverReceiptRejectedAndRolledBack(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	goods := id.New()

	doc := draftOrder(t, svc, w, PurchaseLine{GoodsID: goods, Quantity: qty(10), UnitPrice: types.NewMoney(2)})
	lineID := w.lines[doc.ID][0].LineID

	_, err := svc.Confirm(ctx, doc.ID, "buyer", []Receipt{{LineID: lineID, Quantity: qty(12)}})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	// Nothing moved, document still draft.
	stored, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, stored.Status)
	assert.Empty(t, w.movements)
	assert.Empty(t, w.balances)
}

func TestCancel_DraftOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	doc := draftOrder(t, svc, nil, PurchaseLine{GoodsID: id.New(), Quantity: qty(1), UnitPrice: types.NewMoney(1)})
	require.NoError(t, svc.Cancel(ctx, doc.ID, "buyer"))

	stored, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, stored.Status)

	// Cancelled is terminal.
	err = svc.Cancel(ctx, doc.ID, "buyer")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
}
