// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// EntityRouteHandler is the route set every soft-deletable entity gets:
// list, create, and the delete/restore lifecycle pair.
type EntityRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Delete(c *gin.Context)
	Restore(c *gin.Context)
}

// EntityGetHandler is implemented by handlers exposing single-record reads.
type EntityGetHandler interface {
	Get(c *gin.Context)
}

// EntityUpdateHandler is implemented by handlers of mutable entities.
type EntityUpdateHandler interface {
	Update(c *gin.Context)
}

// RegisterEntityRoutes registers the standard routes for an entity.
// Get and Update are registered only when the handler supports them
// (attachments are immutable, notifications have no single read).
func RegisterEntityRoutes(group *gin.RouterGroup, handler EntityRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.DELETE("/:id", handler.Delete)
	group.POST("/:id/restore", handler.Restore)

	if g, ok := handler.(EntityGetHandler); ok {
		group.GET("/:id", g.Get)
	}
	if u, ok := handler.(EntityUpdateHandler); ok {
		group.PUT("/:id", u.Update)
	}
}
