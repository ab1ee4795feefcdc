package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhive/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the lifecycle history recorded for an entity.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{
		BaseHandler: base,
		audit:       audit,
	}
}

// History handles GET /audit/:entityType/:id - snapshots newest first.
// Non-admin callers only see entries from their own organization.
func (h *AuditHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}
	entityType := c.Param("entityType")
	limit := h.ParseIntQuery(c, "limit", 50)

	entries, err := h.audit.GetEntityHistory(ctx, entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	if !actor.IsAdmin {
		visible := entries[:0]
		for _, e := range entries {
			if e.OrgID == actor.OrgID {
				visible = append(visible, e)
			}
		}
		entries = visible
	}

	c.JSON(http.StatusOK, gin.H{"items": entries})
}
