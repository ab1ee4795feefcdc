package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/id"
	"taskhive/internal/core/security"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain/vendor"
	"taskhive/internal/infrastructure/http/v1/dto"
)

// VendorHandler handles HTTP requests for vendors. Vendor deletion is the
// odd one out: a vendor in active use requires a same-org replacement,
// passed as the replacementId query parameter.
type VendorHandler struct {
	*BaseHandler
	service  *vendor.Service
	txm      tx.Manager
	fetchAny func(ctx context.Context, entityID id.ID) (*vendor.Vendor, error)
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(
	base *BaseHandler,
	service *vendor.Service,
	txm tx.Manager,
	fetchAny func(ctx context.Context, entityID id.ID) (*vendor.Vendor, error),
) *VendorHandler {
	return &VendorHandler{
		BaseHandler: base,
		service:     service,
		txm:         txm,
		fetchAny:    fetchAny,
	}
}

// List handles GET /vendors.
func (h *VendorHandler) List(c *gin.Context) {
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

// Get handles GET /vendors/:id.
func (h *VendorHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	v, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, security.ResourceVendor, security.OpRead,
		security.Scope{OrgID: v.OrgID}); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}

// Create handles POST /vendors.
func (h *VendorHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	if _, ok := h.Actor(c); !ok {
		return
	}

	var req dto.CreateVendorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v := req.ToEntity()

	if err := security.Require(ctx, security.ResourceVendor, security.OpCreate,
		security.Scope{OrgID: v.OrgID}); err != nil {
		h.Error(c, err)
		return
	}

	err := h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.service.Create(ctx, v)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, v)
}

// Update handles PUT /vendors/:id.
func (h *VendorHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateVendorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, security.ResourceVendor, security.OpUpdate,
		security.Scope{OrgID: v.OrgID}); err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(v)

	err = h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.service.Update(ctx, v)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}

// Delete handles DELETE /vendors/:id?replacementId=...
func (h *VendorHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var replacementID *id.ID
	if raw := c.Query("replacementId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid replacementId format"))
			return
		}
		replacementID = &parsed
	}

	v, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, security.ResourceVendor, security.OpDelete,
		security.Scope{OrgID: v.OrgID}); err != nil {
		h.Error(c, err)
		return
	}

	err = h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.service.SoftDelete(ctx, entityID, replacementID)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Restore handles POST /vendors/:id/restore. Restoring a vendor does not
// re-link repointed tasks.
func (h *VendorHandler) Restore(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	v, err := h.fetchAny(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, security.ResourceVendor, security.OpRestore,
		security.Scope{OrgID: v.OrgID}); err != nil {
		h.Error(c, err)
		return
	}

	err = h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.service.Restore(ctx, entityID)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "restored")
}
