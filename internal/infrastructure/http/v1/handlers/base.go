package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stockerp/internal/core/apperror"
	appctx "stockerp/internal/core/context"
	"stockerp/internal/infrastructure/http/v1/dto"
	"stockerp/internal/infrastructure/storage/postgres"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// Error registers the error on the gin context and aborts. The JSON error
// body is produced by middleware.ErrorHandler, nowhere else.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func (h *BaseHandler) bind(c *gin.Context, message string, err error) bool {
	if err == nil {
		return true
	}
	h.Error(c, apperror.NewValidation(message).WithDetail("error", err.Error()))
	return false
}

// BindJSON binds and validates the JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	return h.bind(c, "invalid request body", c.ShouldBindJSON(obj))
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	return h.bind(c, "invalid query parameters", c.ShouldBindQuery(obj))
}

// ParseIntQuery parses an integer query parameter, falling back to the
// default on absence or garbage.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	if parsed, err := strconv.Atoi(c.Query(key)); err == nil {
		return parsed
	}
	return defaultVal
}

// GetUserID extracts user ID from request context.
func (h *BaseHandler) GetUserID(c *gin.Context) string {
	return appctx.GetUserID(c.Request.Context())
}

// CompleteIdempotency stores the response against the request's idempotency
// key with the same HTTP semantics (status + content type + body) so a
// retry replays exactly what the first attempt answered.
func (h *BaseHandler) CompleteIdempotency(c *gin.Context, statusCode int, contentType string, response any) {
	key, exists := c.Get("idempotency_key")
	if !exists {
		return
	}
	store, ok := c.Get("idempotency_store")
	if !ok {
		return
	}
	_ = store.(*postgres.IdempotencyStore).
		CompleteKey(c.Request.Context(), key.(string), statusCode, contentType, response)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.CompleteIdempotency(c, http.StatusOK, "application/json", data)
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	// 204 must replay as 204 with empty body.
	h.CompleteIdempotency(c, http.StatusNoContent, "", nil)
	c.Status(http.StatusNoContent)
}

// Success sends success response.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	h.OK(c, dto.SuccessResponse{Success: true, Message: message})
}
