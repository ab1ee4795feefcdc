package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhive/internal/core/id"
	"taskhive/internal/core/security"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain/attachment"
	"taskhive/internal/infrastructure/http/v1/dto"
)

// AttachmentHandler handles HTTP requests for attachments. Attachments
// are immutable once registered, so there is no update route.
type AttachmentHandler struct {
	*BaseHandler
	service  *attachment.Service
	txm      tx.Manager
	fetchAny func(ctx context.Context, entityID id.ID) (*attachment.Attachment, error)
}

// NewAttachmentHandler creates a new AttachmentHandler.
func NewAttachmentHandler(
	base *BaseHandler,
	service *attachment.Service,
	txm tx.Manager,
	fetchAny func(ctx context.Context, entityID id.ID) (*attachment.Attachment, error),
) *AttachmentHandler {
	return &AttachmentHandler{
		BaseHandler: base,
		service:     service,
		txm:         txm,
		fetchAny:    fetchAny,
	}
}

// List handles GET /attachments.
func (h *AttachmentHandler) List(c *gin.Context) {
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

// Get handles GET /attachments/:id.
func (h *AttachmentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	a, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, security.ResourceAttachment, security.OpRead,
		security.Scope{OrgID: a.OrgID, DeptID: a.DeptID}); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// Create handles POST /attachments - register an uploaded file.
func (h *AttachmentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.CreateAttachmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a := req.ToEntity(actor.UserID)

	if err := security.Require(ctx, security.ResourceAttachment, security.OpCreate,
		security.Scope{OrgID: a.OrgID, DeptID: a.DeptID}); err != nil {
		h.Error(c, err)
		return
	}

	err := h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.service.Create(ctx, a)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, a)
}

// Delete handles DELETE /attachments/:id.
func (h *AttachmentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	a, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, security.ResourceAttachment, security.OpDelete,
		security.Scope{OrgID: a.OrgID, DeptID: a.DeptID}); err != nil {
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

// Restore handles POST /attachments/:id/restore.
func (h *AttachmentHandler) Restore(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	a, err := h.fetchAny(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, security.ResourceAttachment, security.OpRestore,
		security.Scope{OrgID: a.OrgID, DeptID: a.DeptID}); err != nil {
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
