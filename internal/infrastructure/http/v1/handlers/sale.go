package handlers

import (
	"github.com/gin-gonic/gin"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/id"
	"stockerp/internal/domain/documents/sale"
	"stockerp/internal/infrastructure/http/v1/dto"
)

// SaleOrderHTTPHandler binds the generic document handler to sale orders.
type SaleOrderHTTPHandler = DocumentHandler[
	*sale.SaleOrder,
	sale.ListFilter,
	dto.CreateSaleOrderRequest,
	dto.UpdateSaleOrderRequest,
]

// NewSaleOrderHandler wires the generic document handler with sale order
// mappers. Confirm accepts an optional shipments body for partial shipping.
func NewSaleOrderHandler(
	base *BaseHandler,
	service *sale.Service,
) *SaleOrderHTTPHandler {
	cfg := DocumentHandlerConfig[
		*sale.SaleOrder,
		sale.ListFilter,
		dto.CreateSaleOrderRequest,
		dto.UpdateSaleOrderRequest,
	]{
		EntityName: "sale_order",

		Create:  service.Create,
		GetByID: service.GetByID,
		Update:  service.Update,
		Delete:  service.Delete,
		Cancel:  service.Cancel,
		List:    service.List,

		Confirm: func(c *gin.Context, docID id.ID, actor string) (*sale.SaleOrder, error) {
			var req dto.ConfirmSaleOrderRequest
			if c.Request.ContentLength > 0 {
				if err := c.ShouldBindJSON(&req); err != nil {
					return nil, apperror.NewValidation("invalid request body").
						WithDetail("error", err.Error())
				}
			}
			shipments, err := req.ToShipments()
			if err != nil {
				return nil, err
			}
			return service.Confirm(c.Request.Context(), docID, actor, shipments)
		},

		ToDocument: func(req dto.CreateSaleOrderRequest) (*sale.SaleOrder, error) {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdateSaleOrderRequest, existing *sale.SaleOrder) (*sale.SaleOrder, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
		ToDTO: func(doc *sale.SaleOrder) any {
			return dto.FromSaleOrder(doc)
		},

		ParseFilter: func(c *gin.Context, h *BaseHandler) (sale.ListFilter, error) {
			filter := sale.ListFilter{ListFilter: ParseDocListFilter(c, h)}
			var err error
			if filter.CustomerID, err = ParseIDQuery(c, "customerId"); err != nil {
				return filter, err
			}
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
