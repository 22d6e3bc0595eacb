package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"koppo/internal/repository"
	"koppo/internal/service"
)

type BotHandler struct {
	Bots *service.BotService
}

func (h *BotHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/owners/:owner_id/bots")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:bot_id", h.get)
	g.PATCH("/:bot_id", h.update)
	g.DELETE("/:bot_id", h.delete)

	r.GET("/api/v1/bots/:bot_id/status", h.displayStatus)
}

func (h *BotHandler) create(c *gin.Context) {
	ownerID := c.Param("owner_id")
	var input service.BotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	bot, err := h.Bots.Create(c.Request.Context(), ownerID, input)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apiResponse{Code: 0, Message: "ok", Data: bot})
}

func (h *BotHandler) get(c *gin.Context) {
	bot, err := h.Bots.Get(c.Request.Context(), c.Param("owner_id"), c.Param("bot_id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, bot, nil)
}

func (h *BotHandler) list(c *gin.Context) {
	ownerID := c.Param("owner_id")
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListBotsParams{
		Limit:   limit,
		Offset:  offset,
		OwnerID: &ownerID,
		Status:  strQueryPtr(c, "status"),
		Active:  boolQueryPtr(c, "active"),
	}
	items, total, err := h.Bots.List(c.Request.Context(), params)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *BotHandler) update(c *gin.Context) {
	var upd service.BotUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	bot, err := h.Bots.Update(c.Request.Context(), c.Param("owner_id"), c.Param("bot_id"), upd)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, bot, nil)
}

func (h *BotHandler) delete(c *gin.Context) {
	if err := h.Bots.Delete(c.Request.Context(), c.Param("owner_id"), c.Param("bot_id")); err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, nil, nil)
}

func (h *BotHandler) displayStatus(c *gin.Context) {
	status, err := h.Bots.DisplayStatus(c.Request.Context(), c.Param("bot_id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, status, nil)
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func strQueryPtr(c *gin.Context, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}

func boolQueryPtr(c *gin.Context, key string) *bool {
	if val := c.Query(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return &b
		}
	}
	return nil
}
