package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"koppo/internal/mirror"
	"koppo/internal/service"
)

type SessionHandler struct {
	Sessions *service.SessionService
}

func (h *SessionHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/bots/:bot_id/session")
	g.GET("", h.get)
	g.PUT("", h.publish)
}

func (h *SessionHandler) get(c *gin.Context) {
	state, err := h.Sessions.Get(c.Request.Context(), c.Param("bot_id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, state, nil)
}

func (h *SessionHandler) publish(c *gin.Context) {
	var state mirror.SessionState
	if err := c.ShouldBindJSON(&state); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	// The path is authoritative for which bot this snapshot belongs to.
	state.BotID = c.Param("bot_id")
	if err := h.Sessions.Publish(c.Request.Context(), state); err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, nil, nil)
}
