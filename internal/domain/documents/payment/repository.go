package payment

import (
	"context"
	"time"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/domain"
)

// Repository defines storage operations for payments. Payments carry no
// table part, so there is no line storage.
type Repository interface {
	Create(ctx context.Context, doc *Payment) error
	GetByID(ctx context.Context, docID id.ID) (*Payment, error)
	GetByNumber(ctx context.Context, number string) (*Payment, error)
	Update(ctx context.Context, doc *Payment) error
	Delete(ctx context.Context, docID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error)

	// GetForUpdate locks the header row for the confirm transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (*Payment, error)
}

// ListFilter for filtering payments.
type ListFilter struct {
	domain.ListFilter

	Kind     *Kind
	PartyID  *id.ID
	Status   *entity.DocStatus
	DateFrom *time.Time
	DateTo   *time.Time
}
