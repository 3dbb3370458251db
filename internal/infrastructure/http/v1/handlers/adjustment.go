package handlers

import (
	"github.com/gin-gonic/gin"

	"stockerp/internal/core/id"
	"stockerp/internal/domain/documents/adjustment"
	"stockerp/internal/infrastructure/http/v1/dto"
)

// StockAdjustmentHTTPHandler binds the generic document handler to adjustments.
type StockAdjustmentHTTPHandler = DocumentHandler[
	*adjustment.StockAdjustment,
	adjustment.ListFilter,
	dto.CreateStockAdjustmentRequest,
	dto.UpdateStockAdjustmentRequest,
]

// NewStockAdjustmentHandler wires the generic document handler with
// adjustment mappers. Confirm takes no body: adjustments apply in full.
func NewStockAdjustmentHandler(
	base *BaseHandler,
	service *adjustment.Service,
) *StockAdjustmentHTTPHandler {
	cfg := DocumentHandlerConfig[
		*adjustment.StockAdjustment,
		adjustment.ListFilter,
		dto.CreateStockAdjustmentRequest,
		dto.UpdateStockAdjustmentRequest,
	]{
		EntityName: "stock_adjustment",

		Create:  service.Create,
		GetByID: service.GetByID,
		Update:  service.Update,
		Delete:  service.Delete,
		Cancel:  service.Cancel,
		List:    service.List,

		Confirm: func(c *gin.Context, docID id.ID, actor string) (*adjustment.StockAdjustment, error) {
			return service.Confirm(c.Request.Context(), docID, actor)
		},

		ToDocument: func(req dto.CreateStockAdjustmentRequest) (*adjustment.StockAdjustment, error) {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdateStockAdjustmentRequest, existing *adjustment.StockAdjustment) (*adjustment.StockAdjustment, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
		ToDTO: func(doc *adjustment.StockAdjustment) any {
			return dto.FromStockAdjustment(doc)
		},

		ParseFilter: func(c *gin.Context, h *BaseHandler) (adjustment.ListFilter, error) {
			filter := adjustment.ListFilter{ListFilter: ParseDocListFilter(c, h)}
			var err error
			if filter.WarehouseID, err = ParseIDQuery(c, "warehouseId"); err != nil {
				return filter, err
			}
			if filter.Status, err = ParseStatusQuery(c); err != nil {
				return filter, err
			}
			if filter.DateFrom, err = ParseDateQuery(c, "dateFrom"); err != nil {
				return filter, err
			}
			if filter.DateTo, err = ParseDateQuery(c, "dateTo"); err != nil {
				return filter, err
			}
			return filter, nil
		},
	}

	return NewDocumentHandler(base, cfg)
}
