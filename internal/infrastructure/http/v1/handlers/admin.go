package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain/cascade"
)

// AdminHandler dispatches lifecycle cascades by entity type through the
// registry. Platform-admin only; the typed per-entity routes are the
// normal path.
type AdminHandler struct {
	*BaseHandler
	registry *cascade.Registry
	txm      tx.Manager
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(base *BaseHandler, registry *cascade.Registry, txm tx.Manager) *AdminHandler {
	return &AdminHandler{
		BaseHandler: base,
		registry:    registry,
		txm:         txm,
	}
}

func (h *AdminHandler) requireAdmin(c *gin.Context) bool {
	actor, ok := h.Actor(c)
	if !ok {
		return false
	}
	if !actor.IsAdmin {
		h.Error(c, apperror.NewForbidden("platform admin required"))
		return false
	}
	return true
}

// Cascade handles DELETE /admin/cascade/:entityType/:id.
func (h *AdminHandler) Cascade(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.requireAdmin(c) {
		return
	}
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	err := h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.registry.SoftDelete(ctx, c.Param("entityType"), entityID)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Restore handles POST /admin/cascade/:entityType/:id/restore.
func (h *AdminHandler) Restore(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.requireAdmin(c) {
		return
	}
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	err := h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.registry.Restore(ctx, c.Param("entityType"), entityID)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "restored")
}
