package payment

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
)

type world struct {
	mu   sync.Mutex
	docs map[id.ID]*Payment
}

func newWorld() *world {
	return &world{docs: make(map[id.ID]*Payment)}
}

func (w *world) Create(ctx context.Context, doc *Payment) error {
	cp := *doc
	w.docs[doc.ID] = &cp
	return nil
}

func (w *world) GetByID(ctx context.Context, docID id.ID) (*Payment, error) {
	doc, ok := w.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("payment", docID)
	}
	cp := *doc
	return &cp, nil
}

func (w *world) GetByNumber(ctx context.Context, number string) (*Payment, error) {
	for _, doc := range w.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("payment", number)
}

func (w *world) Update(ctx context.Context, doc *Payment) error {
	cp := *doc
	w.docs[doc.ID] = &cp
	return nil
}

func (w *world) Delete(ctx context.Context, docID id.ID) error {
	delete(w.docs, docID)
	return nil
}

func (w *world) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error) {
	var items []*Payment
	for _, doc := range w.docs {
		cp := *doc
		items = append(items, &cp)
	}
	return domain.ListResult[*Payment]{Items: items, TotalCount: int64(len(items))}, nil
}

func (w *world) GetForUpdate(ctx context.Context, docID id.ID) (*Payment, error) {
	return w.GetByID(ctx, docID)
}

type worldTxKey struct{}

func (w *world) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(worldTxKey{}) != nil {
		return fn(ctx)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	docs := make(map[id.ID]*Payment, len(w.docs))
	for k, v := range w.docs {
		cp := *v
		docs[k] = &cp
	}
	if err := fn(context.WithValue(ctx, worldTxKey{}, true)); err != nil {
		w.docs = docs
		return err
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *world) {
	w := newWorld()
	return NewService(w, nil, w, audit.Nop{}), w
}

func draftPayment(t *testing.T, svc *Service, kind Kind, partyType PartyType) *Payment {
	t.Helper()
	doc := NewPayment(kind, partyType, id.New(), types.MustMoney("150.00"))
	doc.Number = "PR202602180001"
	if kind == KindPay {
		doc.Number = "PY202602180001"
	}
	doc.Method = "bank transfer"
	require.NoError(t, svc.Create(context.Background(), doc))
	return doc
}

func TestValidate_KindPinsPartyType(t *testing.T) {
	ctx := context.Background()

	receive := NewPayment(KindReceive, PartyCustomer, id.New(), types.MustMoney("10.00"))
	require.NoError(t, receive.Validate(ctx))

	receive.PartyType = PartySupplier
	err := receive.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	pay := NewPayment(KindPay, PartyCustomer, id.New(), types.MustMoney("10.00"))
	err = pay.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	pay.PartyType = PartySupplier
	require.NoError(t, pay.Validate(ctx))
}

func TestValidate_AmountMustBePositive(t *testing.T) {
	ctx := context.Background()

	doc := NewPayment(KindReceive, PartyCustomer, id.New(), types.ZeroMoney())
	err := doc.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	doc.Amount = types.MustMoney("-5.00")
	err = doc.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestConfirm_StampsAndIsTerminal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	doc := draftPayment(t, svc, KindReceive, PartyCustomer)

	confirmed, err := svc.Confirm(ctx, doc.ID, "cashier")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, "cashier", confirmed.ConfirmedBy)

	// Completed is terminal; there is no partial state for payments.
	_, err = svc.Confirm(ctx, doc.ID, "cashier")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
}

func TestCancel_OnlyFromDraft(t *testing.T) {
	svc, w := newTestService(t)
	ctx := context.Background()

	doc := draftPayment(t, svc, KindPay, PartySupplier)
	require.NoError(t, svc.Cancel(ctx, doc.ID, "cashier"))

	stored, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, stored.Status)

	confirmed := draftPayment(t, svc, KindPay, PartySupplier)
	confirmed.Number = "PY202602180002"
	require.NoError(t, w.Update(ctx, confirmed))
	_, err = svc.Confirm(ctx, confirmed.ID, "cashier")
	require.NoError(t, err)

	err = svc.Cancel(ctx, confirmed.ID, "cashier")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
}

func TestUpdate_RejectsConfirmed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	doc := draftPayment(t, svc, KindReceive, PartyCustomer)
	confirmed, err := svc.Confirm(ctx, doc.ID, "cashier")
	require.NoError(t, err)

	confirmed.Method = "cash"
	err = svc.Update(ctx, confirmed)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
}
