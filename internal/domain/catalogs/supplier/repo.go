package supplier

import (
	"context"

	"stockerp/internal/domain"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// FindByTaxID retrieves supplier by tax identification number.
	FindByTaxID(ctx context.Context, taxID string) (*Supplier, error)
}
