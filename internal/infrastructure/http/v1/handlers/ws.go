package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"taskhive/internal/core/apperror"
	"taskhive/internal/infrastructure/realtime"
	"taskhive/pkg/logger"
)

// WSHandler upgrades connections and subscribes them to the acting
// user's organization room.
type WSHandler struct {
	*BaseHandler
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(base *BaseHandler, hub *realtime.Hub) *WSHandler {
	return &WSHandler{
		BaseHandler: base,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Token auth already ran; cross-origin browser clients are fine.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe handles GET /ws - stream change events for the actor's org.
func (h *WSHandler) Subscribe(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Error(c, apperror.NewValidation("websocket upgrade failed").
			WithDetail("error", err.Error()))
		return
	}

	logger.Info(c.Request.Context(), "websocket subscribed",
		"org_id", actor.OrgID.String(),
	)
	h.hub.Attach(conn, actor.OrgID)
}
