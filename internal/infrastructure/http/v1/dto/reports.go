package dto

import (
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/domain/reports"
)

// Report responses reuse the domain report types directly: they carry JSON
// tags for exactly this purpose. Only the query-param requests live here.

// --- Stock Status ---

// StockStatusReportRequest represents query params of the stock status report.
type StockStatusReportRequest struct {
	GoodsIDs     []string `form:"goodsId"`
	WarehouseIDs []string `form:"warehouseId"`
	WarningsOnly bool     `form:"warningsOnly"`
	ExcludeZero  bool     `form:"excludeZero"`
	Limit        int      `form:"limit"`
	Offset       int      `form:"offset"`
}

// ToFilter converts the request to a domain filter.
func (r *StockStatusReportRequest) ToFilter() (reports.StockStatusFilter, error) {
	goodsIDs, err := parseIDList(r.GoodsIDs, "goodsId")
	if err != nil {
		return reports.StockStatusFilter{}, err
	}
	warehouseIDs, err := parseIDList(r.WarehouseIDs, "warehouseId")
	if err != nil {
		return reports.StockStatusFilter{}, err
	}
	return reports.StockStatusFilter{
		GoodsIDs:     goodsIDs,
		WarehouseIDs: warehouseIDs,
		WarningsOnly: r.WarningsOnly,
		ExcludeZero:  r.ExcludeZero,
		Limit:        r.Limit,
		Offset:       r.Offset,
	}, nil
}

// --- Inventory Detail ---

// InventoryDetailRequest represents query params of the inventory detail report.
type InventoryDetailRequest struct {
	IncludeMovements bool `form:"includeMovements"`
	MovementLimit    int  `form:"movementLimit"`
}

// --- Stock Turnover ---

// StockTurnoverReportRequest represents query params of the turnover report.
type StockTurnoverReportRequest struct {
	FromDate     string   `form:"fromDate" binding:"required"`
	ToDate       string   `form:"toDate" binding:"required"`
	GoodsIDs     []string `form:"goodsId"`
	WarehouseIDs []string `form:"warehouseId"`
	IncludeZero  bool     `form:"includeZero"`
	Limit        int      `form:"limit"`
	Offset       int      `form:"offset"`
}

// ToFilter converts the request to a domain filter.
func (r *StockTurnoverReportRequest) ToFilter() (reports.StockTurnoverFilter, error) {
	fromDate, err := parseReportDate(r.FromDate, "fromDate")
	if err != nil {
		return reports.StockTurnoverFilter{}, err
	}
	toDate, err := parseReportDate(r.ToDate, "toDate")
	if err != nil {
		return reports.StockTurnoverFilter{}, err
	}
	goodsIDs, err := parseIDList(r.GoodsIDs, "goodsId")
	if err != nil {
		return reports.StockTurnoverFilter{}, err
	}
	warehouseIDs, err := parseIDList(r.WarehouseIDs, "warehouseId")
	if err != nil {
		return reports.StockTurnoverFilter{}, err
	}
	return reports.StockTurnoverFilter{
		FromDate:     fromDate,
		ToDate:       toDate,
		GoodsIDs:     goodsIDs,
		WarehouseIDs: warehouseIDs,
		IncludeZero:  r.IncludeZero,
		Limit:        r.Limit,
		Offset:       r.Offset,
	}, nil
}

// --- Document Journal ---

// DocumentJournalRequest represents query params of the document journal.
type DocumentJournalRequest struct {
	FromDate       string   `form:"fromDate"`
	ToDate         string   `form:"toDate"`
	DocumentTypes  []string `form:"documentType"`
	Status         string   `form:"status"`
	NumberContains string   `form:"number"`
	WarehouseIDs   []string `form:"warehouseId"`
	SortBy         string   `form:"sortBy"`
	SortOrder      string   `form:"sortOrder"`
	Limit          int      `form:"limit"`
	Offset         int      `form:"offset"`
}

// ToFilter converts the request to a domain filter.
func (r *DocumentJournalRequest) ToFilter() (reports.DocumentJournalFilter, error) {
	filter := reports.DocumentJournalFilter{
		DocumentTypes:  r.DocumentTypes,
		NumberContains: r.NumberContains,
		SortBy:         r.SortBy,
		SortOrder:      r.SortOrder,
		Limit:          r.Limit,
		Offset:         r.Offset,
	}

	if r.FromDate != "" {
		from, err := parseReportDate(r.FromDate, "fromDate")
		if err != nil {
			return reports.DocumentJournalFilter{}, err
		}
		filter.FromDate = &from
	}
	if r.ToDate != "" {
		to, err := parseReportDate(r.ToDate, "toDate")
		if err != nil {
			return reports.DocumentJournalFilter{}, err
		}
		filter.ToDate = &to
	}
	if r.Status != "" {
		status := entity.DocStatus(r.Status)
		switch status {
		case entity.StatusDraft, entity.StatusPartial, entity.StatusCompleted, entity.StatusCancelled:
			filter.Status = &status
		default:
			return reports.DocumentJournalFilter{}, apperror.NewValidation("invalid status").
				WithDetail("status", r.Status)
		}
	}

	warehouseIDs, err := parseIDList(r.WarehouseIDs, "warehouseId")
	if err != nil {
		return reports.DocumentJournalFilter{}, err
	}
	filter.WarehouseIDs = warehouseIDs
	return filter, nil
}

// --- helpers ---

func parseIDList(raw []string, field string) ([]id.ID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]id.ID, 0, len(raw))
	for _, s := range raw {
		parsed, err := id.Parse(s)
		if err != nil {
			return nil, apperror.NewValidation("invalid " + field + " format").
				WithDetail(field, s)
		}
		out = append(out, parsed)
	}
	return out, nil
}

func parseReportDate(raw, field string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperror.NewValidation("invalid "+field+" format").
		WithDetail(field, raw)
}
