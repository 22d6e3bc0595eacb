package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"koppo/internal/repository"
	"koppo/internal/service"
)

type AuditHandler struct {
	Audits *service.AuditService
}

func (h *AuditHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/audits")
	g.POST("", h.append)
	g.GET("", h.list)
	g.GET("/streaks", h.streaks)
}

func (h *AuditHandler) append(c *gin.Context) {
	var input service.AuditInput
	if err := c.ShouldBindJSON(&input); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	record, err := h.Audits.Append(c.Request.Context(), input)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apiResponse{Code: 0, Message: "ok", Data: record})
}

func (h *AuditHandler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 200)
	offset := intQuery(c, "offset", 0)
	params := auditQueryParams(c)
	params.Limit = limit
	params.Offset = offset
	items, err := h.Audits.Query(c.Request.Context(), params)
	if err != nil {
		serviceError(c, err)
		return
	}
	total, err := h.Audits.Count(c.Request.Context(), params)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// streaks queries with the same filters as list, but unpaginated: streak
// detection needs the full chronological slice.
func (h *AuditHandler) streaks(c *gin.Context) {
	params := auditQueryParams(c)
	items, err := h.Audits.Query(c.Request.Context(), params)
	if err != nil {
		serviceError(c, err)
		return
	}
	report := service.AnalyzeStreaks(items)
	Ok(c, report, map[string]any{"records": len(items)})
}

func auditQueryParams(c *gin.Context) repository.ListTradeAuditsParams {
	return repository.ListTradeAuditsParams{
		OwnerID:      strQueryPtr(c, "owner_id"),
		BotID:        strQueryPtr(c, "bot_id"),
		SessionID:    strQueryPtr(c, "session_id"),
		StrategyUsed: strQueryPtr(c, "strategy_used"),
		StartTime:    timeQueryPtr(c, "start_time"),
		EndTime:      timeQueryPtr(c, "end_time"),
	}
}

func timeQueryPtr(c *gin.Context, key string) *time.Time {
	if v := strings.TrimSpace(c.Query(key)); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			t := ts.UTC()
			return &t
		}
	}
	return nil
}
