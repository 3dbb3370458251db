package category

import (
	"context"

	"stockerp/internal/core/id"
	"stockerp/internal/domain"
)

// Repository defines the interface for Category persistence.
type Repository interface {
	domain.CatalogRepository[*Category]

	// HasChildren reports whether any category points at this one as parent.
	HasChildren(ctx context.Context, categoryID id.ID) (bool, error)

	// HasGoods reports whether any goods reference this category.
	HasGoods(ctx context.Context, categoryID id.ID) (bool, error)
}
