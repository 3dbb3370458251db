package reports

import (
	"context"
	"fmt"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/inventory"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetStockStatus lists classified (goods, warehouse) positions.
func (s *Service) GetStockStatus(ctx context.Context, filter StockStatusFilter) (*StockStatusReport, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	rows, total, err := s.repo.GetStockStatusRows(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock status rows: %w", err)
	}

	report := &StockStatusReport{
		Items:      make([]StockStatusRow, 0, len(rows)),
		TotalCount: total,
	}
	for _, row := range rows {
		row.Class = inventory.Classify(row.Quantity, row.MinStock, row.MaxStock)
		row.ClassText = row.Class.Text()
		if row.Class.IsWarning() {
			report.WarningCount++
		}
		if filter.WarningsOnly && !row.Class.IsWarning() {
			continue
		}
		report.Items = append(report.Items, row)
	}

	return report, nil
}

// GetStockWarnings lists only positions classified out/low/over.
func (s *Service) GetStockWarnings(ctx context.Context, filter StockStatusFilter) (*StockStatusReport, error) {
	filter.WarningsOnly = true
	return s.GetStockStatus(ctx, filter)
}

// GetInventoryDetail returns the full stock picture of one goods.
func (s *Service) GetInventoryDetail(ctx context.Context, filter InventoryDetailFilter) (*InventoryDetail, error) {
	if filter.IncludeMovements && filter.MovementLimit <= 0 {
		filter.MovementLimit = 20
	}

	detail, err := s.repo.GetInventoryDetail(ctx, filter)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("goods", filter.GoodsID.String())
		}
		return nil, fmt.Errorf("get inventory detail: %w", err)
	}

	detail.Class = inventory.Classify(detail.TotalQuantity, detail.MinStock, detail.MaxStock)
	detail.ClassText = detail.Class.Text()

	return detail, nil
}

// GetStockSummary aggregates the whole stock into dashboard counters.
func (s *Service) GetStockSummary(ctx context.Context) (*StockSummary, error) {
	rows, err := s.repo.GetStockSummaryRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("get stock summary rows: %w", err)
	}

	summary := &StockSummary{
		PurchaseValue: types.ZeroMoney(),
		SaleValue:     types.ZeroMoney(),
	}
	seenGoods := make(map[string]bool, len(rows))
	for _, row := range rows {
		if !seenGoods[row.GoodsID.String()] {
			seenGoods[row.GoodsID.String()] = true
			summary.GoodsTracked++
		}
		summary.TotalQuantity += row.Quantity

		qty := types.NewMoney(row.Quantity.Float64())
		summary.PurchaseValue = summary.PurchaseValue.Add(row.PurchasePrice.Mul(qty))
		summary.SaleValue = summary.SaleValue.Add(row.SalePrice.Mul(qty))

		switch inventory.Classify(row.Quantity, row.MinStock, row.MaxStock) {
		case inventory.ClassOut:
			summary.OutOfStockCount++
		case inventory.ClassLow:
			summary.LowStockCount++
		case inventory.ClassOver:
			summary.OverstockCount++
		}
	}

	return summary, nil
}

// GetStockTurnover generates the turnover report for a period.
func (s *Service) GetStockTurnover(ctx context.Context, filter StockTurnoverFilter) (*StockTurnoverReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, apperror.NewValidation("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetStockTurnoverReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock turnover report: %w", err)
	}

	for _, row := range report.Items {
		report.TotalOpening += row.OpeningBalance
		report.TotalInbound += row.Inbound
		report.TotalOutbound += row.Outbound
		report.TotalClosing += row.ClosingBalance
	}

	return report, nil
}

// GetDocumentJournal returns the cross-type document journal.
func (s *Service) GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}

	// Default sort
	if filter.SortBy == "" {
		filter.SortBy = "date"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	journal, err := s.repo.GetDocumentJournal(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get document journal: %w", err)
	}

	// Summary only on the first page
	if filter.Offset == 0 {
		summary, err := s.repo.GetDocumentTypeSummary(ctx, filter)
		if err == nil {
			journal.Summary = summary
		}
	}

	return journal, nil
}
