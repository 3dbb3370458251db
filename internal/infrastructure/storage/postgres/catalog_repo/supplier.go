package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/tx"
	"stockerp/internal/domain/catalogs/supplier"
	"stockerp/internal/infrastructure/storage/postgres"
)

const supplierTable = "cat_suppliers"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txm tx.Manager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*supplier.Supplier](
			txm,
			supplierTable,
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// FindByTaxID retrieves supplier by tax identification number.
func (r *SupplierRepo) FindByTaxID(ctx context.Context, taxID string) (*supplier.Supplier, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"tax_id": taxID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("supplier", taxID)
		}
		return nil, err
	}
	return item, nil
}

var _ supplier.Repository = (*SupplierRepo)(nil)
