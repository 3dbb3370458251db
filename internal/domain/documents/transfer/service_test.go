package transfer

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
	docs      map[id.ID]*StockTransfer
	lines     map[id.ID][]TransferLine
	balances  map[[2]id.ID]types.Quantity // goods, warehouse
	movements []entity.StockMovement
}

func newWorld() *world {
	return &world{
		docs:     make(map[id.ID]*StockTransfer),
		lines:    make(map[id.ID][]TransferLine),
		balances: make(map[[2]id.ID]types.Quantity),
	}
}

func (w *world) Create(ctx context.Context, doc *StockTransfer) error {
	cp := *doc
	w.docs[doc.ID] = &cp
	return nil
}

func (w *world) GetByID(ctx context.Context, docID id.ID) (*StockTransfer, error) {
	doc, ok := w.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("stock transfer", docID)
	}
	cp := *doc
	return &cp, nil
}

func (w *world) GetByNumber(ctx context.Context, number string) (*StockTransfer, error) {
	for _, doc := range w.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("stock transfer", number)
}

func (w *world) Update(ctx context.Context, doc *StockTransfer) error {
	cp := *doc
	w.docs[doc.ID] = &cp
	return nil
}

func (w *world) Delete(ctx context.Context, docID id.ID) error {
	delete(w.docs, docID)
	return nil
}

func (w *world) GetLines(ctx context.Context, docID id.ID) ([]TransferLine, error) {
	lines := make([]TransferLine, len(w.lines[docID]))
	copy(lines, w.lines[docID])
	return lines, nil
}

func (w *world) SaveLines(ctx context.Context, docID id.ID, lines []TransferLine) error {
	cp := make([]TransferLine, len(lines))
	copy(cp, lines)
	w.lines[docID] = cp
	return nil
}

func (w *world) List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockTransfer], error) {
	var items []*StockTransfer
	for _, doc := range w.docs {
		cp := *doc
		items = append(items, &cp)
	}
	return domain.ListResult[*StockTransfer]{Items: items, TotalCount: int64(len(items))}, nil
}

func (w *world) GetForUpdate(ctx context.Context, docID id.ID) (*StockTransfer, error) {
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
		m.GoodsID, m.WarehouseID, entity.MovementTransfer, m.Quantity, before, m.Ref, m.Note, m.Actor))
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
		m.GoodsID, m.WarehouseID, entity.MovementTransfer, m.Quantity.Neg(), before, m.Ref, m.Note, m.Actor))
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

	docs := make(map[id.ID]*StockTransfer, len(w.docs))
	for k, v := range w.docs {
		cp := *v
		docs[k] = &cp
	}
	lines := make(map[id.ID][]TransferLine, len(w.lines))
	for k, v := range w.lines {
		cp := make([]TransferLine, len(v))
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

func draftTransfer(t *testing.T, svc *Service, source, dest id.ID, lines ...TransferLine) *StockTransfer {
	t.Helper()
	doc := NewStockTransfer(source, dest)
	doc.Number = "TRF202602180001"
	for _, l := range lines {
		doc.AddLine(l.GoodsID, l.Quantity)
	}
	require.NoError(t, svc.Create(context.Background(), doc))
	return doc
}

func TestValidate_SameWarehouseRejected(t *testing.T) {
	warehouse := id.New()
	doc := NewStockTransfer(warehouse, warehouse)
	doc.AddLine(id.New(), qty(1))

	err := doc.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestConfirm_MovesBothLegs(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	goods, source, dest := id.New(), id.New(), id.New()
	w.balances[[2]id.ID{goods, source}] = qty(15)
	w.balances[[2]id.ID{goods, dest}] = qty(0)

	doc := draftTransfer(t, svc, source, dest, TransferLine{GoodsID: goods, Quantity: qty(4)})

	confirmed, err := svc.Confirm(ctx, doc.ID, "mover")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, confirmed.Status)
	assert.Equal(t, qty(11), w.balances[[2]id.ID{goods, source}])
	assert.Equal(t, qty(4), w.balances[[2]id.ID{goods, dest}])

	// Two ledger entries per line, both pointing at the document.
	require.Len(t, w.movements, 2)
	assert.Equal(t, qty(4).Neg(), w.movements[0].ChangeQuantity)
	assert.Equal(t, source, w.movements[0].WarehouseID)
	assert.Equal(t, qty(4), w.movements[1].ChangeQuantity)
	assert.Equal(t, dest, w.movements[1].WarehouseID)
	for _, mv := range w.movements {
		assert.Equal(t, doc.ID, mv.RefDocID)
	}
}

func TestConfirm_InsufficientSourceAbortsEverything(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	plenty, scarce, source, dest := id.New(), id.New(), id.New(), id.New()
	w.balances[[2]id.ID{plenty, source}] = qty(50)
	w.balances[[2]id.ID{scarce, source}] = qty(1)

	doc := draftTransfer(t, svc, source, dest,
		TransferLine{GoodsID: plenty, Quantity: qty(5)},
		TransferLine{GoodsID: scarce, Quantity: qty(2)},
	)

	_, err := svc.Confirm(ctx, doc.ID, "mover")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// The first line's legs must not survive the failed second line.
	assert.Equal(t, qty(50), w.balances[[2]id.ID{plenty, source}])
	assert.Equal(t, qty(1), w.balances[[2]id.ID{scarce, source}])
	assert.Empty(t, w.movements)

	stored, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, stored.Status)
}

func TestConfirm_CompletedTransferRejected(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()
	goods, source, dest := id.New(), id.New(), id.New()
	w.balances[[2]id.ID{goods, source}] = qty(10)

	doc := draftTransfer(t, svc, source, dest, TransferLine{GoodsID: goods, Quantity: qty(2)})

	_, err := svc.Confirm(ctx, doc.ID, "mover")
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, doc.ID, "mover")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
	require.Len(t, w.movements, 2)
}
