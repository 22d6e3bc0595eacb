package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"koppo/internal/service"
)

type RunHandler struct {
	Runner  *service.TradeRunner
	Logger  *zap.Logger
	BaseCtx context.Context
}

func (h *RunHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/owners/:owner_id/bots/:bot_id/run", h.run)
}

// run kicks off a trading session in the background and returns
// immediately; progress is observable through the session mirror and the
// audit log. The session inherits the process context, not the request's,
// so a closed HTTP connection does not abort trading mid-session.
func (h *RunHandler) run(c *gin.Context) {
	ownerID := c.Param("owner_id")
	botID := c.Param("bot_id")

	// Fail fast on unknown bots before going asynchronous.
	if _, err := h.Runner.Bots.Get(c.Request.Context(), ownerID, botID); err != nil {
		serviceError(c, err)
		return
	}

	baseCtx := h.BaseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	go func() {
		sessionID, err := h.Runner.RunSession(baseCtx, ownerID, botID)
		if err != nil && !errors.Is(err, context.Canceled) && h.Logger != nil {
			h.Logger.Warn("trading session failed",
				zap.String("bot_id", botID),
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}()

	c.JSON(202, apiResponse{Code: 0, Message: "session started"})
}
