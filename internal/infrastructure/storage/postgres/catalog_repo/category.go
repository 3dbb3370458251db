package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/domain/catalogs/category"
	"stockerp/internal/infrastructure/storage/postgres"
)

const categoryTable = "cat_categories"

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	*BaseCatalogRepo[*category.Category]
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txm tx.Manager) *CategoryRepo {
	return &CategoryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*category.Category](
			txm,
			categoryTable,
			postgres.ExtractDBColumns[category.Category](),
			func() *category.Category { return &category.Category{} },
		),
	}
}

// HasChildren reports whether any category points at this one as parent.
func (r *CategoryRepo) HasChildren(ctx context.Context, categoryID id.ID) (bool, error) {
	q := r.Builder().
		Select("1").
		From(categoryTable).
		Where(squirrel.Eq{"parent_id": categoryID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	querier := r.Querier(ctx)
	var exists int
	err = querier.QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has children: %w", err)
	}

	return true, nil
}

// HasGoods reports whether any goods reference this category.
func (r *CategoryRepo) HasGoods(ctx context.Context, categoryID id.ID) (bool, error) {
	q := r.Builder().
		Select("1").
		From(goodsTable).
		Where(squirrel.Eq{"category_id": categoryID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	querier := r.Querier(ctx)
	var exists int
	err = querier.QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has goods: %w", err)
	}

	return true, nil
}

var _ category.Repository = (*CategoryRepo)(nil)
