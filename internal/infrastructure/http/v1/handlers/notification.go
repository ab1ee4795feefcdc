package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhive/internal/core/id"
	"taskhive/internal/core/security"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain/notification"
	"taskhive/internal/infrastructure/http/v1/dto"
)

// NotificationHandler handles HTTP requests for notifications.
type NotificationHandler struct {
	*BaseHandler
	service  *notification.Service
	txm      tx.Manager
	fetchAny func(ctx context.Context, entityID id.ID) (*notification.Notification, error)
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(
	base *BaseHandler,
	service *notification.Service,
	txm tx.Manager,
	fetchAny func(ctx context.Context, entityID id.ID) (*notification.Notification, error),
) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler: base,
		service:     service,
		txm:         txm,
		fetchAny:    fetchAny,
	}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	orgID, ok := h.ScopeOrgID(c, actor)
	if !ok {
		return
	}

	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	f, err := q.ToFilter(orgID)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(ctx, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Create handles POST /notifications.
func (h *NotificationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	if _, ok := h.Actor(c); !ok {
		return
	}

	var req dto.CreateNotificationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	n := req.ToEntity()

	if err := security.Require(ctx, security.ResourceNotification, security.OpCreate,
		security.Scope{OrgID: n.OrgID, DeptID: n.DeptID}); err != nil {
		h.Error(c, err)
		return
	}

	err := h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.service.Create(ctx, n)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, n)
}

// MarkRead handles POST /notifications/:id/read - the acting user
// acknowledges the notification.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	err := h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.service.MarkRead(ctx, entityID, actor.UserID)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "read")
}

// Delete handles DELETE /notifications/:id.
func (h *NotificationHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	n, err := h.fetchAny(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, security.ResourceNotification, security.OpDelete,
		security.Scope{OrgID: n.OrgID, DeptID: n.DeptID}); err != nil {
		h.Error(c, err)
		return
	}

	err = h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.service.SoftDeleteCascade(ctx, entityID)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Restore handles POST /notifications/:id/restore.
func (h *NotificationHandler) Restore(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	n, err := h.fetchAny(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, security.ResourceNotification, security.OpRestore,
		security.Scope{OrgID: n.OrgID, DeptID: n.DeptID}); err != nil {
		h.Error(c, err)
		return
	}

	err = h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.service.RestoreCascade(ctx, entityID)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "restored")
}
