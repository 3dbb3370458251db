package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/domain"
	"stockerp/internal/infrastructure/http/v1/dto"
)

// DocumentHandler provides generic HTTP handlers for the document lifecycle:
// CRUD on drafts plus confirm and cancel. Document services are distinct
// types (each with its own ListFilter and Confirm signature), so the handler
// is wired through function fields rather than a shared interface; Confirm in
// particular binds its optional per-line body inside the type-specific
// closure. C and U are the create and update request DTOs.
type DocumentHandler[D any, F any, C any, U any] struct {
	*BaseHandler
	entityName string

	create  func(ctx context.Context, doc D) error
	getByID func(ctx context.Context, docID id.ID) (D, error)
	update  func(ctx context.Context, doc D) error
	delete  func(ctx context.Context, docID id.ID) error
	cancel  func(ctx context.Context, docID id.ID, actor string) error
	list    func(ctx context.Context, filter F) (domain.ListResult[D], error)
	confirm func(c *gin.Context, docID id.ID, actor string) (D, error)

	toDocument  func(req C) (D, error)
	applyUpdate func(req U, existing D) (D, error)
	toDTO       func(doc D) any
	parseFilter func(c *gin.Context, h *BaseHandler) (F, error)
}

// DocumentHandlerConfig configures the document handler.
type DocumentHandlerConfig[D any, F any, C any, U any] struct {
	EntityName string

	Create  func(ctx context.Context, doc D) error
	GetByID func(ctx context.Context, docID id.ID) (D, error)
	Update  func(ctx context.Context, doc D) error
	Delete  func(ctx context.Context, docID id.ID) error
	Cancel  func(ctx context.Context, docID id.ID, actor string) error
	List    func(ctx context.Context, filter F) (domain.ListResult[D], error)
	Confirm func(c *gin.Context, docID id.ID, actor string) (D, error)

	ToDocument  func(req C) (D, error)
	ApplyUpdate func(req U, existing D) (D, error)
	ToDTO       func(doc D) any
	ParseFilter func(c *gin.Context, h *BaseHandler) (F, error)
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler[D any, F any, C any, U any](
	base *BaseHandler,
	cfg DocumentHandlerConfig[D, F, C, U],
) *DocumentHandler[D, F, C, U] {
	return &DocumentHandler[D, F, C, U]{
		BaseHandler: base,
		entityName:  cfg.EntityName,
		create:      cfg.Create,
		getByID:     cfg.GetByID,
		update:      cfg.Update,
		delete:      cfg.Delete,
		cancel:      cfg.Cancel,
		list:        cfg.List,
		confirm:     cfg.Confirm,
		toDocument:  cfg.ToDocument,
		applyUpdate: cfg.ApplyUpdate,
		toDTO:       cfg.ToDTO,
		parseFilter: cfg.ParseFilter,
	}
}

// docID parses the :id path parameter, writing a validation error on failure.
func (h *DocumentHandler[D, F, C, U]) docID(c *gin.Context) (id.ID, bool) {
	parsed, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.Nil(), false
	}
	return parsed, true
}

// respond writes the body and records it for idempotent replay.
func (h *DocumentHandler[D, F, C, U]) respond(c *gin.Context, status int, doc D) {
	body := h.toDTO(doc)
	h.CompleteIdempotency(c, status, "application/json", body)
	c.JSON(status, body)
}

// List handles GET /{document} - list with filtering and pagination.
func (h *DocumentHandler[D, F, C, U]) List(c *gin.Context) {
	filter, err := h.parseFilter(c, h.BaseHandler)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.list(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = h.toDTO(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /{document}/:id - get single document with lines.
func (h *DocumentHandler[D, F, C, U]) Get(c *gin.Context) {
	docID, ok := h.docID(c)
	if !ok {
		return
	}

	doc, err := h.getByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toDTO(doc))
}

// Create handles POST /{document} - create a new draft.
func (h *DocumentHandler[D, F, C, U]) Create(c *gin.Context) {
	var req C
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.toDocument(req)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.respond(c, http.StatusCreated, doc)
}

// Update handles PUT /{document}/:id - update a draft.
func (h *DocumentHandler[D, F, C, U]) Update(c *gin.Context) {
	docID, ok := h.docID(c)
	if !ok {
		return
	}

	var req U
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.getByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated, err := h.applyUpdate(req, existing)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.update(c.Request.Context(), updated); err != nil {
		h.Error(c, err)
		return
	}

	h.respond(c, http.StatusOK, updated)
}

// Delete handles DELETE /{document}/:id - delete a draft.
func (h *DocumentHandler[D, F, C, U]) Delete(c *gin.Context) {
	docID, ok := h.docID(c)
	if !ok {
		return
	}

	if err := h.delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Confirm handles POST /{document}/:id/confirm - apply the document to stock.
func (h *DocumentHandler[D, F, C, U]) Confirm(c *gin.Context) {
	docID, ok := h.docID(c)
	if !ok {
		return
	}

	doc, err := h.confirm(c, docID, h.GetUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.respond(c, http.StatusOK, doc)
}

// Cancel handles POST /{document}/:id/cancel - cancel a draft.
func (h *DocumentHandler[D, F, C, U]) Cancel(c *gin.Context) {
	docID, ok := h.docID(c)
	if !ok {
		return
	}

	if err := h.cancel(c.Request.Context(), docID, h.GetUserID(c)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "document cancelled")
}

// --- Shared query parsing for document list filters ---

// ParseDocListFilter reads the pagination and search params shared by every
// document list endpoint.
func ParseDocListFilter(c *gin.Context, h *BaseHandler) domain.ListFilter {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date")
	return filter
}

// ParseIDQuery parses an optional id query param.
func ParseIDQuery(c *gin.Context, key string) (*id.ID, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := id.Parse(raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid " + key + " format")
	}
	return &parsed, nil
}

// ParseStatusQuery parses an optional status query param.
func ParseStatusQuery(c *gin.Context) (*entity.DocStatus, error) {
	raw := c.Query("status")
	if raw == "" {
		return nil, nil
	}
	status := entity.DocStatus(raw)
	switch status {
	case entity.StatusDraft, entity.StatusPartial, entity.StatusCompleted, entity.StatusCancelled:
		return &status, nil
	}
	return nil, apperror.NewValidation("invalid status").WithDetail("status", raw)
}

// ParseDateQuery parses an optional RFC 3339 or YYYY-MM-DD date query param.
func ParseDateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, apperror.NewValidation("invalid "+key+" format").WithDetail(key, raw)
}
