package handlers

import (
	"github.com/gin-gonic/gin"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/id"
	"stockerp/internal/domain/documents/purchase"
	"stockerp/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHTTPHandler binds the generic document handler to purchase orders.
type PurchaseOrderHTTPHandler = DocumentHandler[
	*purchase.PurchaseOrder,
	purchase.ListFilter,
	dto.CreatePurchaseOrderRequest,
	dto.UpdatePurchaseOrderRequest,
]

// NewPurchaseOrderHandler wires the generic document handler with purchase
// order mappers. Confirm accepts an optional receipts body for partial
// receiving.
func NewPurchaseOrderHandler(
	base *BaseHandler,
	service *purchase.Service,
) *PurchaseOrderHTTPHandler {
	cfg := DocumentHandlerConfig[
		*purchase.PurchaseOrder,
		purchase.ListFilter,
		dto.CreatePurchaseOrderRequest,
		dto.UpdatePurchaseOrderRequest,
	]{
		EntityName: "purchase_order",

		Create:  service.Create,
		GetByID: service.GetByID,
		Update:  service.Update,
		Delete:  service.Delete,
		Cancel:  service.Cancel,
		List:    service.List,

		Confirm: func(c *gin.Context, docID id.ID, actor string) (*purchase.PurchaseOrder, error) {
			var req dto.ConfirmPurchaseOrderRequest
			if c.Request.ContentLength > 0 {
				if err := c.ShouldBindJSON(&req); err != nil {
					return nil, apperror.NewValidation("invalid request body").
						WithDetail("error", err.Error())
				}
			}
			receipts, err := req.ToReceipts()
			if err != nil {
				return nil, err
			}
			return service.Confirm(c.Request.Context(), docID, actor, receipts)
		},

		ToDocument: func(req dto.CreatePurchaseOrderRequest) (*purchase.PurchaseOrder, error) {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdatePurchaseOrderRequest, existing *purchase.PurchaseOrder) (*purchase.PurchaseOrder, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
		ToDTO: func(doc *purchase.PurchaseOrder) any {
			return dto.FromPurchaseOrder(doc)
		},

		ParseFilter: func(c *gin.Context, h *BaseHandler) (purchase.ListFilter, error) {
			filter := purchase.ListFilter{ListFilter: ParseDocListFilter(c, h)}
			var err error
			if filter.SupplierID, err = ParseIDQuery(c, "supplierId"); err != nil {
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
