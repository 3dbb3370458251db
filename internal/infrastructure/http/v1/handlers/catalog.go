// Package handlers provides HTTP request handlers.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/domain"
	domainFilter "stockerp/internal/domain/filter"
	"stockerp/internal/infrastructure/http/v1/dto"
)

// CatalogHandler exposes a CatalogService over HTTP. One instance per
// catalog type; C and U are the create and update request DTOs, and the
// three mapper functions translate between wire DTOs and the domain entity.
type CatalogHandler[T entity.Validatable, C any, U any] struct {
	*BaseHandler
	service    *domain.CatalogService[T]
	entityName string

	toEntity    func(req C) T
	applyUpdate func(req U, existing T) T
	toDTO       func(ent T) any
}

// CatalogHandlerConfig configures the catalog handler.
type CatalogHandlerConfig[T entity.Validatable, C any, U any] struct {
	Service     *domain.CatalogService[T]
	EntityName  string
	ToEntity    func(req C) T
	ApplyUpdate func(req U, existing T) T
	ToDTO       func(ent T) any
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T entity.Validatable, C any, U any](
	base *BaseHandler,
	cfg CatalogHandlerConfig[T, C, U],
) *CatalogHandler[T, C, U] {
	return &CatalogHandler[T, C, U]{
		BaseHandler: base,
		service:     cfg.Service,
		entityName:  cfg.EntityName,
		toEntity:    cfg.ToEntity,
		applyUpdate: cfg.ApplyUpdate,
		toDTO:       cfg.ToDTO,
	}
}

// pathID parses the :id path parameter, writing a validation error on failure.
func (h *CatalogHandler[T, C, U]) pathID(c *gin.Context) (id.ID, bool) {
	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.Nil(), false
	}
	return entityID, true
}

func (h *CatalogHandler[T, C, U]) mapItems(items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = h.toDTO(item)
	}
	return out
}

// respond writes the body and records it for idempotent replay.
func (h *CatalogHandler[T, C, U]) respond(c *gin.Context, status int, body any) {
	h.CompleteIdempotency(c, status, "application/json", body)
	c.JSON(status, body)
}

// listFilter assembles a ListFilter from query parameters. The advanced
// filter arrives as a JSON-encoded "filter" param.
func (h *CatalogHandler[T, C, U]) listFilter(c *gin.Context) (domain.ListFilter, error) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if parentID := c.Query("parentId"); parentID != "" {
		filter.ParentID = &parentID
	}
	if isFolder := c.Query("isFolder"); isFolder != "" {
		val := isFolder == "true"
		filter.IsFolder = &val
	}

	if filterJSON := c.Query("filter"); filterJSON != "" {
		var advFilters []domainFilter.Item
		if err := json.Unmarshal([]byte(filterJSON), &advFilters); err != nil {
			return filter, apperror.NewValidation("invalid filter format (json expected)")
		}
		filter.AdvancedFilters = advFilters
	}

	return filter, nil
}

// List handles GET /{entity} - list with filtering and pagination.
func (h *CatalogHandler[T, C, U]) List(c *gin.Context) {
	filter, err := h.listFilter(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      h.mapItems(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /{entity}/:id - get single entity.
func (h *CatalogHandler[T, C, U]) Get(c *gin.Context) {
	entityID, ok := h.pathID(c)
	if !ok {
		return
	}

	ent, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toDTO(ent))
}

// Create handles POST /{entity} - create new entity.
func (h *CatalogHandler[T, C, U]) Create(c *gin.Context) {
	var req C
	if !h.BindJSON(c, &req) {
		return
	}

	ent := h.toEntity(req)
	if err := h.service.Create(c.Request.Context(), ent); err != nil {
		h.Error(c, err)
		return
	}

	h.respond(c, http.StatusCreated, h.toDTO(ent))
}

// Update handles PUT /{entity}/:id - update existing entity.
func (h *CatalogHandler[T, C, U]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req U
	if !h.BindJSON(c, &req) {
		return
	}

	// The update DTO carries only mutable fields, so load the current
	// row and overlay the request onto it.
	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated := h.applyUpdate(req, existing)
	if err := h.service.Update(ctx, updated); err != nil {
		h.Error(c, err)
		return
	}

	h.respond(c, http.StatusOK, h.toDTO(updated))
}

// Delete handles DELETE /{entity}/:id - soft delete entity.
func (h *CatalogHandler[T, C, U]) Delete(c *gin.Context) {
	entityID, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetDeletionMark handles POST /{entity}/:id/deletion-mark
func (h *CatalogHandler[T, C, U]) SetDeletionMark(c *gin.Context) {
	entityID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req dto.SetDeletionMarkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetDeletionMark(c.Request.Context(), entityID, req.Marked); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "deletion mark updated")
}

// GetTree handles GET /{entity}/tree - get hierarchical structure.
func (h *CatalogHandler[T, C, U]) GetTree(c *gin.Context) {
	var rootID *id.ID
	if rootStr := c.Query("rootId"); rootStr != "" {
		parsed, err := id.Parse(rootStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid rootId format"))
			return
		}
		rootID = &parsed
	}

	items, err := h.service.GetTree(c.Request.Context(), rootID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": h.mapItems(items)})
}
