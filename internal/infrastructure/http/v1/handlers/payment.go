package handlers

import (
	"github.com/gin-gonic/gin"

	"stockerp/internal/core/id"
	"stockerp/internal/domain/documents/payment"
	"stockerp/internal/infrastructure/http/v1/dto"
)

// PaymentHTTPHandler binds the generic document handler to payments.
type PaymentHTTPHandler = DocumentHandler[
	*payment.Payment,
	payment.ListFilter,
	dto.CreatePaymentRequest,
	dto.UpdatePaymentRequest,
]

// NewPaymentHandler wires the generic document handler with payment mappers.
// Confirm takes no body: payments have no partial fulfilment.
func NewPaymentHandler(
	base *BaseHandler,
	service *payment.Service,
) *PaymentHTTPHandler {
	cfg := DocumentHandlerConfig[
		*payment.Payment,
		payment.ListFilter,
		dto.CreatePaymentRequest,
		dto.UpdatePaymentRequest,
	]{
		EntityName: "payment",

		Create:  service.Create,
		GetByID: service.GetByID,
		Update:  service.Update,
		Delete:  service.Delete,
		Cancel:  service.Cancel,
		List:    service.List,

		Confirm: func(c *gin.Context, docID id.ID, actor string) (*payment.Payment, error) {
			return service.Confirm(c.Request.Context(), docID, actor)
		},

		ToDocument: func(req dto.CreatePaymentRequest) (*payment.Payment, error) {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdatePaymentRequest, existing *payment.Payment) (*payment.Payment, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
		ToDTO: func(doc *payment.Payment) any {
			return dto.FromPayment(doc)
		},

		ParseFilter: func(c *gin.Context, h *BaseHandler) (payment.ListFilter, error) {
			filter := payment.ListFilter{ListFilter: ParseDocListFilter(c, h)}
			if kind := c.Query("kind"); kind != "" {
				k := payment.Kind(kind)
				filter.Kind = &k
			}
			var err error
			if filter.PartyID, err = ParseIDQuery(c, "partyId"); err != nil {
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
