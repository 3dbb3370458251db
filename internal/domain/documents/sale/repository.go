package sale

import (
	"context"
	"time"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/domain"
)

// Repository defines storage operations for sale orders.
type Repository interface {
	Create(ctx context.Context, doc *SaleOrder) error
	GetByID(ctx context.Context, docID id.ID) (*SaleOrder, error)
	GetByNumber(ctx context.Context, number string) (*SaleOrder, error)
	Update(ctx context.Context, doc *SaleOrder) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]SaleLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []SaleLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*SaleOrder], error)

	// GetForUpdate locks the header row for the confirm transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (*SaleOrder, error)
}

// ListFilter for filtering sale orders.
type ListFilter struct {
	domain.ListFilter

	CustomerID  *id.ID
	WarehouseID *id.ID
	Status      *entity.DocStatus
	DateFrom    *time.Time
	DateTo      *time.Time
}
