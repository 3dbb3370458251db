package reports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/inventory"
)

type stubRepo struct {
	statusRows  []StockStatusRow
	summaryRows []SummaryRow
	detail      *InventoryDetail
}

func (r *stubRepo) GetStockStatusRows(ctx context.Context, filter StockStatusFilter) ([]StockStatusRow, int, error) {
	return r.statusRows, len(r.statusRows), nil
}

func (r *stubRepo) GetInventoryDetail(ctx context.Context, filter InventoryDetailFilter) (*InventoryDetail, error) {
	return r.detail, nil
}

func (r *stubRepo) GetStockSummaryRows(ctx context.Context) ([]SummaryRow, error) {
	return r.summaryRows, nil
}

func (r *stubRepo) GetStockTurnoverReport(ctx context.Context, filter StockTurnoverFilter) (*StockTurnoverReport, error) {
	return &StockTurnoverReport{FromDate: filter.FromDate, ToDate: filter.ToDate}, nil
}

func (r *stubRepo) GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error) {
	return &DocumentJournal{}, nil
}

func (r *stubRepo) GetDocumentTypeSummary(ctx context.Context, filter DocumentJournalFilter) ([]DocumentTypeSummary, error) {
	return nil, nil
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func TestGetStockStatus_ClassifiesRows(t *testing.T) {
	repo := &stubRepo{statusRows: []StockStatusRow{
		{GoodsID: id.New(), Quantity: qty(0), MinStock: qty(2), MaxStock: qty(20)},
		{GoodsID: id.New(), Quantity: qty(1), MinStock: qty(2), MaxStock: qty(20)},
		{GoodsID: id.New(), Quantity: qty(10), MinStock: qty(2), MaxStock: qty(20)},
		{GoodsID: id.New(), Quantity: qty(25), MinStock: qty(2), MaxStock: qty(20)},
	}}
	svc := NewService(repo)

	report, err := svc.GetStockStatus(context.Background(), StockStatusFilter{})
	require.NoError(t, err)

	require.Len(t, report.Items, 4)
	assert.Equal(t, inventory.ClassOut, report.Items[0].Class)
	assert.Equal(t, inventory.ClassLow, report.Items[1].Class)
	assert.Equal(t, inventory.ClassNormal, report.Items[2].Class)
	assert.Equal(t, inventory.ClassOver, report.Items[3].Class)
	assert.Equal(t, 3, report.WarningCount)
}

func TestGetStockWarnings_FiltersNormalRows(t *testing.T) {
	repo := &stubRepo{statusRows: []StockStatusRow{
		{GoodsID: id.New(), Quantity: qty(10), MinStock: qty(2), MaxStock: qty(20)},
		{GoodsID: id.New(), Quantity: qty(0), MinStock: qty(2), MaxStock: qty(20)},
	}}
	svc := NewService(repo)

	report, err := svc.GetStockWarnings(context.Background(), StockStatusFilter{})
	require.NoError(t, err)

	require.Len(t, report.Items, 1)
	assert.Equal(t, inventory.ClassOut, report.Items[0].Class)
}

func TestGetStockSummary_CountsAndValues(t *testing.T) {
	shared := id.New()
	repo := &stubRepo{summaryRows: []SummaryRow{
		// same goods on two warehouses counts once
		{GoodsID: shared, Quantity: qty(5), MinStock: qty(2), PurchasePrice: types.NewMoney(10), SalePrice: types.NewMoney(15)},
		{GoodsID: shared, Quantity: qty(1), MinStock: qty(2), PurchasePrice: types.NewMoney(10), SalePrice: types.NewMoney(15)},
		{GoodsID: id.New(), Quantity: qty(0), MinStock: qty(1), PurchasePrice: types.NewMoney(3), SalePrice: types.NewMoney(4)},
	}}
	svc := NewService(repo)

	summary, err := svc.GetStockSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.GoodsTracked)
	assert.Equal(t, qty(6), summary.TotalQuantity)
	assert.Equal(t, 1, summary.OutOfStockCount)
	assert.Equal(t, 1, summary.LowStockCount)
	assert.True(t, summary.PurchaseValue.Equal(types.NewMoney(60)))
	assert.True(t, summary.SaleValue.Equal(types.NewMoney(90)))
}

func TestGetStockTurnover_RequiresPeriod(t *testing.T) {
	svc := NewService(&stubRepo{})

	_, err := svc.GetStockTurnover(context.Background(), StockTurnoverFilter{})
	require.Error(t, err)
}
