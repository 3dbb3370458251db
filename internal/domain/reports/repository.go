package reports

import (
	"context"
)

// Repository defines report data access interface. Rows come back with raw
// quantities and thresholds; classification happens in the service.
type Repository interface {
	// Stock reports
	GetStockStatusRows(ctx context.Context, filter StockStatusFilter) ([]StockStatusRow, int, error)
	GetInventoryDetail(ctx context.Context, filter InventoryDetailFilter) (*InventoryDetail, error)
	GetStockSummaryRows(ctx context.Context) ([]SummaryRow, error)
	GetStockTurnoverReport(ctx context.Context, filter StockTurnoverFilter) (*StockTurnoverReport, error)

	// Document journal
	GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error)
	GetDocumentTypeSummary(ctx context.Context, filter DocumentJournalFilter) ([]DocumentTypeSummary, error)
}
