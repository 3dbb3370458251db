// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/documents"
	"stockerp/internal/domain/reports"
	"stockerp/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm tx.Manager) *ReportRepo {
	return &ReportRepo{
		txManager: postgres.AsTxManager(txm),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetStockStatusRows returns (goods, warehouse) positions with thresholds.
func (r *ReportRepo) GetStockStatusRows(ctx context.Context, filter reports.StockStatusFilter) ([]reports.StockStatusRow, int, error) {
	q := r.builder.Select(
		"b.goods_id",
		"g.name AS goods_name",
		"COALESCE(g.sku, '') AS sku",
		"b.warehouse_id",
		"w.name AS warehouse_name",
		"COALESCE(u.symbol, '') AS unit_symbol",
		"b.quantity",
		"g.min_stock",
		"g.max_stock",
	).
		From("stock_balances b").
		Join("cat_goods g ON g.id = b.goods_id").
		Join("cat_warehouses w ON w.id = b.warehouse_id").
		LeftJoin("cat_units u ON u.id::text = g.unit_id").
		Where(squirrel.Eq{"g.deletion_mark": false}).
		Where(squirrel.Eq{"w.deletion_mark": false})

	if len(filter.GoodsIDs) > 0 {
		q = q.Where(squirrel.Eq{"b.goods_id": filter.GoodsIDs})
	}
	if len(filter.WarehouseIDs) > 0 {
		q = q.Where(squirrel.Eq{"b.warehouse_id": filter.WarehouseIDs})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"b.quantity": int64(0)})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock status: %w", err)
	}

	q = q.OrderBy("g.name", "w.name")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.StockStatusRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("stock status rows: %w", err)
	}

	return rows, total, nil
}

// goodsHeader is the scan target for the inventory detail header query.
type goodsHeader struct {
	GoodsID      id.ID          `db:"goods_id"`
	GoodsName    string         `db:"goods_name"`
	SKU          string         `db:"sku"`
	CategoryName string         `db:"category_name"`
	UnitSymbol   string         `db:"unit_symbol"`
	MinStock     types.Quantity `db:"min_stock"`
	MaxStock     types.Quantity `db:"max_stock"`
}

// GetInventoryDetail returns the full stock picture of one goods.
func (r *ReportRepo) GetInventoryDetail(ctx context.Context, filter reports.InventoryDetailFilter) (*reports.InventoryDetail, error) {
	querier := r.txManager.GetQuerier(ctx)

	headerSQL := `
		SELECT
			g.id AS goods_id,
			g.name AS goods_name,
			COALESCE(g.sku, '') AS sku,
			COALESCE(c.name, '') AS category_name,
			COALESCE(u.symbol, '') AS unit_symbol,
			g.min_stock,
			g.max_stock
		FROM cat_goods g
		LEFT JOIN cat_categories c ON c.id::text = g.category_id
		LEFT JOIN cat_units u ON u.id::text = g.unit_id
		WHERE g.id = $1
	`

	var header goodsHeader
	if err := pgxscan.Get(ctx, querier, &header, headerSQL, filter.GoodsID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("goods", filter.GoodsID.String())
		}
		return nil, fmt.Errorf("get goods header: %w", err)
	}

	detail := &reports.InventoryDetail{
		GoodsID:      header.GoodsID,
		GoodsName:    header.GoodsName,
		SKU:          header.SKU,
		CategoryName: header.CategoryName,
		UnitSymbol:   header.UnitSymbol,
		MinStock:     header.MinStock,
		MaxStock:     header.MaxStock,
	}

	balancesSQL := `
		SELECT b.warehouse_id, w.name AS warehouse_name, b.quantity
		FROM stock_balances b
		JOIN cat_warehouses w ON w.id = b.warehouse_id
		WHERE b.goods_id = $1 AND b.quantity != 0
		ORDER BY w.name
	`

	if err := pgxscan.Select(ctx, querier, &detail.ByWarehouse, balancesSQL, filter.GoodsID); err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}
	for _, wq := range detail.ByWarehouse {
		detail.TotalQuantity += wq.Quantity
	}

	if filter.IncludeMovements {
		movementsSQL := `
			SELECT id, goods_id, warehouse_id, kind,
			       change_quantity, before_quantity, after_quantity,
			       ref_doc_type, ref_doc_id, note, created_by, created_at
			FROM stock_movements
			WHERE goods_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`
		if err := pgxscan.Select(ctx, querier, &detail.RecentMovements, movementsSQL, filter.GoodsID, filter.MovementLimit); err != nil {
			return nil, fmt.Errorf("get recent movements: %w", err)
		}
	}

	return detail, nil
}

// GetStockSummaryRows returns every position with valuation prices.
func (r *ReportRepo) GetStockSummaryRows(ctx context.Context) ([]reports.SummaryRow, error) {
	sql := `
		SELECT b.goods_id, b.quantity,
		       g.min_stock, g.max_stock, g.purchase_price, g.sale_price
		FROM stock_balances b
		JOIN cat_goods g ON g.id = b.goods_id
		WHERE g.deletion_mark = false
		ORDER BY b.goods_id, b.warehouse_id
	`

	var rows []reports.SummaryRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql); err != nil {
		return nil, fmt.Errorf("stock summary rows: %w", err)
	}

	return rows, nil
}

// GetStockTurnoverReport aggregates ledger entries into per-position turnover.
func (r *ReportRepo) GetStockTurnoverReport(ctx context.Context, filter reports.StockTurnoverFilter) (*reports.StockTurnoverReport, error) {
	queryArgs := []any{filter.FromDate, filter.ToDate}
	conditions := "m.created_at < $2"
	argIndex := 3

	if len(filter.WarehouseIDs) > 0 {
		placeholders := make([]string, len(filter.WarehouseIDs))
		for i, whID := range filter.WarehouseIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			queryArgs = append(queryArgs, whID)
			argIndex++
		}
		conditions += fmt.Sprintf(" AND m.warehouse_id IN (%s)", strings.Join(placeholders, ","))
	}
	if len(filter.GoodsIDs) > 0 {
		placeholders := make([]string, len(filter.GoodsIDs))
		for i, gID := range filter.GoodsIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			queryArgs = append(queryArgs, gID)
			argIndex++
		}
		conditions += fmt.Sprintf(" AND m.goods_id IN (%s)", strings.Join(placeholders, ","))
	}

	having := ""
	if !filter.IncludeZero {
		having = "HAVING COUNT(*) FILTER (WHERE m.created_at >= $1) > 0"
	}

	grouped := fmt.Sprintf(`
		SELECT
			m.goods_id,
			g.name AS goods_name,
			COALESCE(g.sku, '') AS sku,
			m.warehouse_id,
			w.name AS warehouse_name,
			COALESCE(SUM(m.change_quantity) FILTER (WHERE m.created_at < $1), 0)::bigint AS opening_balance,
			COALESCE(SUM(m.change_quantity) FILTER (WHERE m.created_at >= $1 AND m.change_quantity > 0), 0)::bigint AS inbound,
			COALESCE(SUM(-m.change_quantity) FILTER (WHERE m.created_at >= $1 AND m.change_quantity < 0), 0)::bigint AS outbound,
			COALESCE(SUM(m.change_quantity), 0)::bigint AS closing_balance
		FROM stock_movements m
		JOIN cat_goods g ON g.id = m.goods_id
		JOIN cat_warehouses w ON w.id = m.warehouse_id
		WHERE %s
		GROUP BY m.goods_id, g.name, g.sku, m.warehouse_id, w.name
		%s
	`, conditions, having)

	querier := r.txManager.GetQuerier(ctx)

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM (%s) sub", grouped)
	var total int
	if err := querier.QueryRow(ctx, countSQL, queryArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count turnover rows: %w", err)
	}

	pageSQL := grouped + " ORDER BY goods_name, warehouse_name"
	if filter.Limit > 0 {
		pageSQL += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		pageSQL += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.StockTurnoverRow
	if err := pgxscan.Select(ctx, querier, &items, pageSQL, queryArgs...); err != nil {
		return nil, fmt.Errorf("stock turnover report: %w", err)
	}

	return &reports.StockTurnoverReport{
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
		Items:      items,
		TotalCount: total,
	}, nil
}

// journalSource describes how one document type maps onto the journal columns.
type journalSource struct {
	docType          string
	table            string
	counterpartyJoin string
	counterpartyExpr string
	warehouseJoin    string
	warehouseExpr    string
	quantityExpr     string
	amountExpr       string
	warehouseCond    string
}

func journalSources() []journalSource {
	return []journalSource{
		{
			docType:          documents.TypePurchaseOrder,
			table:            "doc_purchase_orders",
			counterpartyJoin: "LEFT JOIN cat_suppliers cp ON cp.id = d.supplier_id",
			counterpartyExpr: "COALESCE(cp.name, '')",
			warehouseJoin:    "LEFT JOIN cat_warehouses w ON w.id = d.warehouse_id",
			warehouseExpr:    "COALESCE(w.name, '')",
			quantityExpr:     "d.total_quantity",
			amountExpr:       "d.total_amount",
			warehouseCond:    "d.warehouse_id",
		},
		{
			docType:          documents.TypeSaleOrder,
			table:            "doc_sale_orders",
			counterpartyJoin: "LEFT JOIN cat_customers cp ON cp.id = d.customer_id",
			counterpartyExpr: "COALESCE(cp.name, '')",
			warehouseJoin:    "LEFT JOIN cat_warehouses w ON w.id = d.warehouse_id",
			warehouseExpr:    "COALESCE(w.name, '')",
			quantityExpr:     "d.total_quantity",
			amountExpr:       "d.total_amount",
			warehouseCond:    "d.warehouse_id",
		},
		{
			docType:          documents.TypeStockAdjustment,
			table:            "doc_stock_adjustments",
			counterpartyExpr: "''",
			warehouseJoin:    "LEFT JOIN cat_warehouses w ON w.id = d.warehouse_id",
			warehouseExpr:    "COALESCE(w.name, '')",
			quantityExpr:     "0",
			amountExpr:       "0",
			warehouseCond:    "d.warehouse_id",
		},
		{
			docType:          documents.TypeStockTransfer,
			table:            "doc_stock_transfers",
			counterpartyExpr: "''",
			warehouseJoin:    "LEFT JOIN cat_warehouses w ON w.id = d.source_warehouse_id",
			warehouseExpr:    "COALESCE(w.name, '')",
			quantityExpr:     "0",
			amountExpr:       "0",
			warehouseCond:    "d.source_warehouse_id",
		},
	}
}

// GetDocumentJournal retrieves documents of every type for the journal view.
func (r *ReportRepo) GetDocumentJournal(ctx context.Context, filter reports.DocumentJournalFilter) (*reports.DocumentJournal, error) {
	unionSQL, queryArgs := r.buildJournalUnion(filter)
	if unionSQL == "" {
		return &reports.DocumentJournal{
			Items:  []reports.DocumentJournalItem{},
			Limit:  filter.Limit,
			Offset: filter.Offset,
		}, nil
	}

	querier := r.txManager.GetQuerier(ctx)

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM (%s) sub", unionSQL)
	var total int
	if err := querier.QueryRow(ctx, countSQL, queryArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count journal: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM (%s) sub ORDER BY %s", unionSQL, journalOrderBy(filter))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.DocumentJournalItem
	if err := pgxscan.Select(ctx, querier, &items, query, queryArgs...); err != nil {
		return nil, fmt.Errorf("document journal: %w", err)
	}

	return &reports.DocumentJournal{
		Items:      items,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// buildJournalUnion assembles the UNION ALL over the requested document types.
func (r *ReportRepo) buildJournalUnion(filter reports.DocumentJournalFilter) (string, []any) {
	wanted := make(map[string]bool, len(filter.DocumentTypes))
	for _, t := range filter.DocumentTypes {
		wanted[t] = true
	}

	var unions []string
	var queryArgs []any
	argIndex := 1

	for _, src := range journalSources() {
		if len(wanted) > 0 && !wanted[src.docType] {
			continue
		}

		q := fmt.Sprintf(`
			SELECT
				d.id, '%s' AS document_type, d.number, d.date, d.status,
				%s AS counterparty_name,
				%s AS warehouse_name,
				%s AS total_quantity,
				%s AS total_amount,
				d.created_at, d.updated_at
			FROM %s d
			%s
			%s
			WHERE d.deletion_mark = false
		`, src.docType, src.counterpartyExpr, src.warehouseExpr,
			src.quantityExpr, src.amountExpr,
			src.table, src.counterpartyJoin, src.warehouseJoin)

		if filter.FromDate != nil {
			q += fmt.Sprintf(" AND d.date >= $%d", argIndex)
			queryArgs = append(queryArgs, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			q += fmt.Sprintf(" AND d.date < $%d", argIndex)
			queryArgs = append(queryArgs, *filter.ToDate)
			argIndex++
		}
		if filter.Status != nil {
			q += fmt.Sprintf(" AND d.status = $%d", argIndex)
			queryArgs = append(queryArgs, string(*filter.Status))
			argIndex++
		}
		if filter.NumberContains != "" {
			q += fmt.Sprintf(" AND d.number ILIKE $%d", argIndex)
			queryArgs = append(queryArgs, "%"+filter.NumberContains+"%")
			argIndex++
		}
		if len(filter.WarehouseIDs) > 0 {
			placeholders := make([]string, len(filter.WarehouseIDs))
			for i, whID := range filter.WarehouseIDs {
				placeholders[i] = fmt.Sprintf("$%d", argIndex)
				queryArgs = append(queryArgs, whID)
				argIndex++
			}
			q += fmt.Sprintf(" AND %s IN (%s)", src.warehouseCond, strings.Join(placeholders, ","))
		}

		unions = append(unions, q)
	}

	return strings.Join(unions, " UNION ALL "), queryArgs
}

func journalOrderBy(filter reports.DocumentJournalFilter) string {
	field := "date"
	switch filter.SortBy {
	case "number":
		field = "number"
	case "type":
		field = "document_type"
	}

	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}

	// Stable secondary sort
	return field + " " + direction + ", number"
}

// GetDocumentTypeSummary returns document counts by type.
func (r *ReportRepo) GetDocumentTypeSummary(ctx context.Context, filter reports.DocumentJournalFilter) ([]reports.DocumentTypeSummary, error) {
	wanted := make(map[string]bool, len(filter.DocumentTypes))
	for _, t := range filter.DocumentTypes {
		wanted[t] = true
	}

	querier := r.txManager.GetQuerier(ctx)

	var result []reports.DocumentTypeSummary
	for _, src := range journalSources() {
		if len(wanted) > 0 && !wanted[src.docType] {
			continue
		}

		query := fmt.Sprintf(`
			SELECT
				COUNT(*) AS count,
				COUNT(*) FILTER (WHERE status = $1) AS completed_count
			FROM %s
			WHERE deletion_mark = false
		`, src.table)
		queryArgs := []any{string(entity.StatusCompleted)}
		argIndex := 2

		if filter.FromDate != nil {
			query += fmt.Sprintf(" AND date >= $%d", argIndex)
			queryArgs = append(queryArgs, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			query += fmt.Sprintf(" AND date < $%d", argIndex)
			queryArgs = append(queryArgs, *filter.ToDate)
		}

		summary := reports.DocumentTypeSummary{DocumentType: src.docType}
		if err := querier.QueryRow(ctx, query, queryArgs...).Scan(&summary.Count, &summary.CompletedCount); err != nil {
			return nil, fmt.Errorf("document type summary for %s: %w", src.docType, err)
		}

		result = append(result, summary)
	}

	return result, nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
