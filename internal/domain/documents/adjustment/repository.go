package adjustment

import (
	"context"
	"time"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/domain"
)

// Repository defines storage operations for stock adjustments.
type Repository interface {
	Create(ctx context.Context, doc *StockAdjustment) error
	GetByID(ctx context.Context, docID id.ID) (*StockAdjustment, error)
	GetByNumber(ctx context.Context, number string) (*StockAdjustment, error)
	Update(ctx context.Context, doc *StockAdjustment) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]AdjustmentLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []AdjustmentLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockAdjustment], error)

	// GetForUpdate locks the header row for the confirm transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (*StockAdjustment, error)
}

// ListFilter for filtering stock adjustments.
type ListFilter struct {
	domain.ListFilter

	WarehouseID *id.ID
	Status      *entity.DocStatus
	DateFrom    *time.Time
	DateTo      *time.Time
}
