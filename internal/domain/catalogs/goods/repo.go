package goods

import (
	"context"

	"stockerp/internal/core/id"
	"stockerp/internal/domain"
)

// Repository defines the interface for Goods persistence.
type Repository interface {
	domain.CatalogRepository[*Goods]

	// FindBySKU retrieves goods by SKU.
	FindBySKU(ctx context.Context, sku string) (*Goods, error)

	// FindByBarcode retrieves goods by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Goods, error)

	// GetForUpdate retrieves goods with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Goods, error)

	// FindByCategory retrieves goods inside a category (without subcategories).
	FindByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*Goods], error)
}
