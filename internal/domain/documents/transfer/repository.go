package transfer

import (
	"context"
	"time"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/domain"
)

// Repository defines storage operations for stock transfers.
type Repository interface {
	Create(ctx context.Context, doc *StockTransfer) error
	GetByID(ctx context.Context, docID id.ID) (*StockTransfer, error)
	GetByNumber(ctx context.Context, number string) (*StockTransfer, error)
	Update(ctx context.Context, doc *StockTransfer) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]TransferLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []TransferLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockTransfer], error)

	// GetForUpdate locks the header row for the confirm transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (*StockTransfer, error)
}

// ListFilter for filtering stock transfers.
type ListFilter struct {
	domain.ListFilter

	SourceWarehouseID *id.ID
	DestWarehouseID   *id.ID
	Status            *entity.DocStatus
	DateFrom          *time.Time
	DateTo            *time.Time
}
