package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/domain"
	"stockerp/internal/domain/catalogs/goods"
	"stockerp/internal/infrastructure/storage/postgres"
)

const goodsTable = "cat_goods"

// GoodsRepo implements goods.Repository.
type GoodsRepo struct {
	*BaseCatalogRepo[*goods.Goods]
}

// NewGoodsRepo creates a new goods repository.
func NewGoodsRepo(txm tx.Manager) *GoodsRepo {
	return &GoodsRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*goods.Goods](
			txm,
			goodsTable,
			postgres.ExtractDBColumns[goods.Goods](),
			func() *goods.Goods { return &goods.Goods{} },
		),
	}
}

// FindBySKU retrieves goods by SKU.
func (r *GoodsRepo) FindBySKU(ctx context.Context, sku string) (*goods.Goods, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"sku": sku}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("goods", sku)
		}
		return nil, err
	}
	return item, nil
}

// FindByBarcode retrieves goods by barcode.
func (r *GoodsRepo) FindByBarcode(ctx context.Context, barcode string) (*goods.Goods, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("goods", barcode)
		}
		return nil, err
	}
	return item, nil
}

// FindByCategory retrieves goods inside a category (without subcategories).
func (r *GoodsRepo) FindByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*goods.Goods], error) {
	result := domain.ListResult[*goods.Goods]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"category_id": categoryID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	countQ := r.Builder().
		Select("COUNT(*)").
		From(goodsTable).
		Where(squirrel.Eq{"category_id": categoryID}).
		Where(squirrel.Eq{"deletion_mark": false})

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var items []*goods.Goods
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return result, fmt.Errorf("find by category: %w", err)
	}
	result.Items = items

	return result, nil
}

var _ goods.Repository = (*GoodsRepo)(nil)
