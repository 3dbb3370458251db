package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/domain"
	"stockerp/internal/domain/documents/transfer"
	"stockerp/internal/infrastructure/storage/postgres"
)

const (
	transfersTable     = "doc_stock_transfers"
	transferLinesTable = "doc_stock_transfer_lines"
)

// TransferRepo implements transfer.Repository.
type TransferRepo struct {
	*BaseDocumentRepo[*transfer.StockTransfer]
}

// NewTransferRepo creates a new stock transfer repository.
func NewTransferRepo(txm tx.Manager) *TransferRepo {
	return &TransferRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*transfer.StockTransfer](
			txm,
			transfersTable,
			postgres.ExtractDBColumns[transfer.StockTransfer](),
			func() *transfer.StockTransfer { return &transfer.StockTransfer{} },
		),
	}
}

// GetLines retrieves lines for a stock transfer.
func (r *TransferRepo) GetLines(ctx context.Context, docID id.ID) ([]transfer.TransferLine, error) {
	q := r.Builder().
		Select("line_id", "line_no", "goods_id", "quantity").
		From(transferLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []transfer.TransferLine
	querier := r.Querier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a stock transfer (delete existing + insert new).
func (r *TransferRepo) SaveLines(ctx context.Context, docID id.ID, lines []transfer.TransferLine) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + transferLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(transferLinesTable).
		Columns("line_id", "document_id", "line_no", "goods_id", "quantity")

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.GoodsID,
			line.Quantity.Int64Scaled(),
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

// List retrieves stock transfers with filtering.
func (r *TransferRepo) List(ctx context.Context, filter transfer.ListFilter) (domain.ListResult[*transfer.StockTransfer], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.SourceWarehouseID != nil {
		q = q.Where(squirrel.Eq{"source_warehouse_id": *filter.SourceWarehouseID})
	}
	if filter.DestWarehouseID != nil {
		q = q.Where(squirrel.Eq{"dest_warehouse_id": *filter.DestWarehouseID})
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

var _ transfer.Repository = (*TransferRepo)(nil)
