package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/tx"
	"stockerp/internal/domain/catalogs/customer"
	"stockerp/internal/infrastructure/storage/postgres"
)

const customerTable = "cat_customers"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm tx.Manager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*customer.Customer](
			txm,
			customerTable,
			postgres.ExtractDBColumns[customer.Customer](),
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// FindByTaxID retrieves customer by tax identification number.
func (r *CustomerRepo) FindByTaxID(ctx context.Context, taxID string) (*customer.Customer, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"tax_id": taxID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("customer", taxID)
		}
		return nil, err
	}
	return item, nil
}

var _ customer.Repository = (*CustomerRepo)(nil)
