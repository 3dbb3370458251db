package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/id"
	"stockerp/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the audit trail for administrators.
type AuditHandler struct {
	*BaseHandler
	store *postgres.AuditStore
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(base *BaseHandler, store *postgres.AuditStore) *AuditHandler {
	return &AuditHandler{BaseHandler: base, store: store}
}

// auditEntryResponse is one audit trail row.
type auditEntryResponse struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Action     string          `json:"action"`
	Actor      string          `json:"actor"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// GetEntityHistory handles GET /audit/:entityType/:entityId
func (h *AuditHandler) GetEntityHistory(c *gin.Context) {
	entityType := c.Param("entityType")
	if entityType == "" {
		h.Error(c, apperror.NewValidation("entity type is required"))
		return
	}

	entityID, err := id.Parse(c.Param("entityId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid entity ID format"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	records, err := h.store.GetEntityHistory(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]auditEntryResponse, 0, len(records))
	for _, r := range records {
		items = append(items, auditEntryResponse{
			ID:         r.ID.String(),
			EntityType: r.EntityType,
			EntityID:   r.EntityID.String(),
			Action:     string(r.Action),
			Actor:      r.Actor,
			Changes:    r.Changes,
			CreatedAt:  r.CreatedAt,
		})
	}

	h.OK(c, gin.H{"items": items, "count": len(items)})
}
