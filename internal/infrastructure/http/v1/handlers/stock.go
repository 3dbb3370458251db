package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/domain/inventory"
	"stockerp/internal/infrastructure/http/v1/dto"
)

// StockHandler exposes the stock ledger: balances, movement history, manual
// mutations and the consistency auditor.
type StockHandler struct {
	*BaseHandler
	service *inventory.Service
	auditor *inventory.Auditor
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *inventory.Service, auditor *inventory.Auditor) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
		auditor:     auditor,
	}
}

// GetBalance handles GET /stock/balance - one (goods, warehouse) pair.
// An untracked pair returns quantity zero, not 404.
func (h *StockHandler) GetBalance(c *gin.Context) {
	goodsID, err := id.Parse(c.Query("goodsId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid goodsId format"))
		return
	}
	warehouseID, err := id.Parse(c.Query("warehouseId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), goodsID, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockBalance(balance))
}

// ListBalances handles GET /stock/balances - stored balances with filters.
func (h *StockHandler) ListBalances(c *gin.Context) {
	filter := inventory.BalanceFilter{
		ExcludeZero: c.Query("excludeZero") == "true",
		Limit:       h.ParseIntQuery(c, "limit", 100),
		Offset:      h.ParseIntQuery(c, "offset", 0),
	}

	if raw := c.Query("goodsId"); raw != "" {
		goodsID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid goodsId format"))
			return
		}
		filter.GoodsIDs = []id.ID{goodsID}
	}

	warehouseID, err := ParseIDQuery(c, "warehouseId")
	if err != nil {
		h.Error(c, err)
		return
	}
	filter.WarehouseID = warehouseID

	balances, err := h.service.ListBalances(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.StockBalanceListResponse{
		Items: make([]dto.StockBalanceResponse, len(balances)),
	}
	for i, b := range balances {
		resp.Items[i] = dto.FromStockBalance(b)
		resp.TotalQuantity += b.Quantity
	}
	c.JSON(http.StatusOK, resp)
}

// ListMovements handles GET /stock/movements - ledger history with filters.
func (h *StockHandler) ListMovements(c *gin.Context) {
	filter := inventory.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	var err error
	if filter.GoodsID, err = ParseIDQuery(c, "goodsId"); err != nil {
		h.Error(c, err)
		return
	}
	if filter.WarehouseID, err = ParseIDQuery(c, "warehouseId"); err != nil {
		h.Error(c, err)
		return
	}
	if filter.FromDate, err = ParseDateQuery(c, "fromDate"); err != nil {
		h.Error(c, err)
		return
	}
	if filter.ToDate, err = ParseDateQuery(c, "toDate"); err != nil {
		h.Error(c, err)
		return
	}
	if raw := c.Query("kind"); raw != "" {
		kind := entity.MovementKind(raw)
		switch kind {
		case entity.MovementInbound, entity.MovementOutbound, entity.MovementAdjust, entity.MovementTransfer:
			filter.Kind = &kind
		default:
			h.Error(c, apperror.NewValidation("invalid kind").WithDetail("kind", raw))
			return
		}
	}

	movements, err := h.service.GetMovementHistory(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, movementList(movements))
}

// ListMovementsByRef handles GET /stock/movements/by-ref - the ledger trail
// of one document.
func (h *StockHandler) ListMovementsByRef(c *gin.Context) {
	refType := c.Query("refType")
	if refType == "" {
		h.Error(c, apperror.NewValidation("refType is required"))
		return
	}
	refID, err := id.Parse(c.Query("refId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid refId format"))
		return
	}

	movements, err := h.service.GetMovementsByRef(c.Request.Context(), refType, refID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, movementList(movements))
}

// StockIn handles POST /stock/receipts - manual receipt without a document.
func (h *StockHandler) StockIn(c *gin.Context) {
	h.mutate(c, h.service.StockIn)
}

// StockOut handles POST /stock/issues - manual issue without a document.
func (h *StockHandler) StockOut(c *gin.Context) {
	h.mutate(c, h.service.StockOut)
}

// mutate is the shared body of the manual receipt/issue endpoints.
func (h *StockHandler) mutate(c *gin.Context, op func(ctx context.Context, m inventory.Mutation) (entity.StockBalance, error)) {
	var req dto.StockOperationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	goodsID, err := id.Parse(req.GoodsID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid goodsId format"))
		return
	}
	warehouseID, err := id.Parse(req.WarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	balance, err := op(c.Request.Context(), inventory.Mutation{
		GoodsID:     goodsID,
		WarehouseID: warehouseID,
		Quantity:    req.Quantity,
		Note:        req.Note,
		Actor:       h.GetUserID(c),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockBalance(balance))
}

// Transfer handles POST /stock/transfers - manual warehouse-to-warehouse move.
func (h *StockHandler) Transfer(c *gin.Context) {
	var req dto.TransferStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	goodsID, err := id.Parse(req.GoodsID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid goodsId format"))
		return
	}
	sourceID, err := id.Parse(req.SourceWarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid sourceWarehouseId format"))
		return
	}
	destID, err := id.Parse(req.DestWarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid destWarehouseId format"))
		return
	}

	err = h.service.Transfer(c.Request.Context(), inventory.TransferRequest{
		GoodsID:       goodsID,
		SourceID:      sourceID,
		DestinationID: destID,
		Quantity:      req.Quantity,
		Note:          req.Note,
		Actor:         h.GetUserID(c),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "stock transferred")
}

// CheckConsistency handles GET /stock/consistency - replay the ledger and
// report balances that diverge from it.
func (h *StockHandler) CheckConsistency(c *gin.Context) {
	goodsID, err := ParseIDQuery(c, "goodsId")
	if err != nil {
		h.Error(c, err)
		return
	}

	discrepancies, err := h.auditor.CheckConsistency(c.Request.Context(), goodsID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if discrepancies == nil {
		discrepancies = []inventory.Discrepancy{}
	}

	c.JSON(http.StatusOK, gin.H{
		"discrepancies": discrepancies,
		"count":         len(discrepancies),
	})
}

// FixDiscrepancy handles POST /stock/consistency/fix - overwrite one stored
// balance with its ledger replay.
func (h *StockHandler) FixDiscrepancy(c *gin.Context) {
	var req dto.FixDiscrepancyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	goodsID, err := id.Parse(req.GoodsID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid goodsId format"))
		return
	}
	warehouseID, err := id.Parse(req.WarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	result, err := h.auditor.FixDiscrepancy(c.Request.Context(), goodsID, warehouseID, h.GetUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

func movementList(movements []entity.StockMovement) dto.StockMovementListResponse {
	resp := dto.StockMovementListResponse{
		Items: make([]dto.StockMovementResponse, len(movements)),
	}
	for i, m := range movements {
		resp.Items[i] = dto.FromStockMovement(m)
	}
	return resp
}
