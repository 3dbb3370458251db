package handlers

import (
	"github.com/gin-gonic/gin"

	"stockerp/internal/core/id"
	"stockerp/internal/domain/documents/transfer"
	"stockerp/internal/infrastructure/http/v1/dto"
)

// StockTransferHTTPHandler binds the generic document handler to transfers.
type StockTransferHTTPHandler = DocumentHandler[
	*transfer.StockTransfer,
	transfer.ListFilter,
	dto.CreateStockTransferRequest,
	dto.UpdateStockTransferRequest,
]

// NewStockTransferHandler wires the generic document handler with transfer
// mappers. Confirm takes no body: transfers apply in full.
func NewStockTransferHandler(
	base *BaseHandler,
	service *transfer.Service,
) *StockTransferHTTPHandler {
	cfg := DocumentHandlerConfig[
		*transfer.StockTransfer,
		transfer.ListFilter,
		dto.CreateStockTransferRequest,
		dto.UpdateStockTransferRequest,
	]{
		EntityName: "stock_transfer",

		Create:  service.Create,
		GetByID: service.GetByID,
		Update:  service.Update,
		Delete:  service.Delete,
		Cancel:  service.Cancel,
		List:    service.List,

		Confirm: func(c *gin.Context, docID id.ID, actor string) (*transfer.StockTransfer, error) {
			return service.Confirm(c.Request.Context(), docID, actor)
		},

		ToDocument: func(req dto.CreateStockTransferRequest) (*transfer.StockTransfer, error) {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdateStockTransferRequest, existing *transfer.StockTransfer) (*transfer.StockTransfer, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
		ToDTO: func(doc *transfer.StockTransfer) any {
			return dto.FromStockTransfer(doc)
		},

		ParseFilter: func(c *gin.Context, h *BaseHandler) (transfer.ListFilter, error) {
			filter := transfer.ListFilter{ListFilter: ParseDocListFilter(c, h)}
			var err error
			if filter.SourceWarehouseID, err = ParseIDQuery(c, "sourceWarehouseId"); err != nil {
				return filter, err
			}
			if filter.DestWarehouseID, err = ParseIDQuery(c, "destWarehouseId"); err != nil {
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
