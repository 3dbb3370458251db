package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/domain"
	"stockerp/internal/domain/documents/sale"
	"stockerp/internal/infrastructure/storage/postgres"
)

const (
	saleOrdersTable     = "doc_sale_orders"
	saleOrderLinesTable = "doc_sale_order_lines"
)

// SaleOrderRepo implements sale.Repository.
type SaleOrderRepo struct {
	*BaseDocumentRepo[*sale.SaleOrder]
}

// NewSaleOrderRepo creates a new sale order repository.
func NewSaleOrderRepo(txm tx.Manager) *SaleOrderRepo {
	return &SaleOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*sale.SaleOrder](
			txm,
			saleOrdersTable,
			postgres.ExtractDBColumns[sale.SaleOrder](),
			func() *sale.SaleOrder { return &sale.SaleOrder{} },
		),
	}
}

// GetLines retrieves lines for a sale order.
func (r *SaleOrderRepo) GetLines(ctx context.Context, docID id.ID) ([]sale.SaleLine, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "goods_id",
			"quantity", "shipped_quantity", "unit_price", "amount",
		).
		From(saleOrderLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sale.SaleLine
	querier := r.Querier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a sale order (delete existing + insert new).
func (r *SaleOrderRepo) SaveLines(ctx context.Context, docID id.ID, lines []sale.SaleLine) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + saleOrderLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(saleOrderLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "goods_id",
			"quantity", "shipped_quantity", "unit_price", "amount",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.GoodsID,
			line.Quantity.Int64Scaled(), line.ShippedQuantity.Int64Scaled(),
			line.UnitPrice, line.Amount,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// List retrieves sale orders with filtering.
func (r *SaleOrderRepo) List(ctx context.Context, filter sale.ListFilter) (domain.ListResult[*sale.SaleOrder], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	return r.finishList(ctx, q, filter.ListFilter)
}

var _ sale.Repository = (*SaleOrderRepo)(nil)
