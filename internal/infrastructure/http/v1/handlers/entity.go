package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/core/security"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain"
	"taskhive/internal/infrastructure/http/v1/dto"
)

// EntityService is the slice of a domain service the generic handler
// drives: CRUD plus the transactional cascade pair.
type EntityService[T entity.Validatable] interface {
	Create(ctx context.Context, e T) error
	Update(ctx context.Context, e T) error
	GetByID(ctx context.Context, entityID id.ID) (T, error)
	List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error)
	SoftDeleteCascade(ctx context.Context, entityID id.ID) error
	RestoreCascade(ctx context.Context, entityID id.ID) error
}

// EntityHandler provides generic HTTP handlers for soft-deletable
// entities. Mutations run inside a transaction so the cascade, its audit
// snapshots, and its outbox events commit or roll back together.
type EntityHandler[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service  EntityService[T]
	resource security.Resource
	txm      tx.Manager

	// fetchAny reads an entity regardless of tombstone state; restore
	// authorization needs the scope of a record the live read path hides.
	fetchAny func(ctx context.Context, entityID id.ID) (T, error)

	mapCreate func(req CreateDTO, actorID id.ID) (T, error)
	mapUpdate func(req UpdateDTO, existing T)
	scope     func(e T) security.Scope
}

// EntityHandlerConfig configures the generic entity handler.
type EntityHandlerConfig[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	Service   EntityService[T]
	Resource  security.Resource
	Tx        tx.Manager
	FetchAny  func(ctx context.Context, entityID id.ID) (T, error)
	MapCreate func(req CreateDTO, actorID id.ID) (T, error)
	MapUpdate func(req UpdateDTO, existing T)
	Scope     func(e T) security.Scope
}

// NewEntityHandler creates a generic entity handler.
func NewEntityHandler[T entity.Validatable, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg EntityHandlerConfig[T, CreateDTO, UpdateDTO],
) *EntityHandler[T, CreateDTO, UpdateDTO] {
	return &EntityHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler: base,
		service:     cfg.Service,
		resource:    cfg.Resource,
		txm:         cfg.Tx,
		fetchAny:    cfg.FetchAny,
		mapCreate:   cfg.MapCreate,
		mapUpdate:   cfg.MapUpdate,
		scope:       cfg.Scope,
	}
}

// List handles GET /{entity} - list with filtering and pagination.
func (h *EntityHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
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

// Get handles GET /{entity}/:id - get single entity. Tombstoned records
// are visible only with ?includeDeleted=true.
func (h *EntityHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var (
		e   T
		err error
	)
	if c.Query("includeDeleted") == "true" {
		e, err = h.fetchAny(ctx, entityID)
	} else {
		e, err = h.service.GetByID(ctx, entityID)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, h.resource, security.OpRead, h.scope(e)); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, e)
}

// Create handles POST /{entity} - create new entity.
func (h *EntityHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.mapCreate(req, actor.UserID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, h.resource, security.OpCreate, h.scope(e)); err != nil {
		h.Error(c, err)
		return
	}

	err = h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.service.Create(ctx, e)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, e)
}

// Update handles PUT /{entity}/:id - update existing entity.
func (h *EntityHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, h.resource, security.OpUpdate, h.scope(existing)); err != nil {
		h.Error(c, err)
		return
	}

	h.mapUpdate(req, existing)

	err = h.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.service.Update(ctx, existing)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, existing)
}

// Delete handles DELETE /{entity}/:id - transactional soft-delete cascade.
func (h *EntityHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, h.resource, security.OpDelete, h.scope(existing)); err != nil {
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

// Restore handles POST /{entity}/:id/restore - transactional restore cascade.
func (h *EntityHandler[T, CreateDTO, UpdateDTO]) Restore(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	existing, err := h.fetchAny(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := security.Require(ctx, h.resource, security.OpRestore, h.scope(existing)); err != nil {
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
