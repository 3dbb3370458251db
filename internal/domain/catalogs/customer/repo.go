package customer

import (
	"context"

	"stockerp/internal/domain"
)

// Repository defines the interface for Customer persistence.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// FindByTaxID retrieves customer by tax identification number.
	FindByTaxID(ctx context.Context, taxID string) (*Customer, error)
}
