package repository

import (
	"context"
	"time"

	"koppo/internal/models"
)

// Repository is the durable-store contract: bot configuration rows (read,
// write, partial update, delete) plus the append-only trade audit log
// (insert and filtered, timestamp-ordered reads only).
type Repository interface {
	// Bot configuration (record store).
	InsertBot(ctx context.Context, item *models.Bot) error
	GetBot(ctx context.Context, ownerID, botID string) (*models.Bot, error)
	ListBots(ctx context.Context, params ListBotsParams) ([]models.Bot, error)
	CountBots(ctx context.Context, params ListBotsParams) (int64, error)
	UpdateBotFields(ctx context.Context, ownerID, botID string, updates map[string]any) (int64, error)
	DeleteBot(ctx context.Context, ownerID, botID string) (int64, error)

	// Trade audits (append-only log).
	InsertTradeAudit(ctx context.Context, item *models.TradeAudit) error
	ListTradeAudits(ctx context.Context, params ListTradeAuditsParams) ([]models.TradeAudit, error)
	CountTradeAudits(ctx context.Context, params ListTradeAuditsParams) (int64, error)
}

type ListBotsParams struct {
	Limit   int
	Offset  int
	OwnerID *string
	Status  *string
	Active  *bool
}

// ListTradeAuditsParams are conjunctive filters. Results are always ordered
// timestamp ascending (id ascending as tiebreak) regardless of which filters
// are set; streak analysis depends on that ordering and does not re-sort.
// Limit <= 0 means no limit.
type ListTradeAuditsParams struct {
	Limit        int
	Offset       int
	OwnerID      *string
	BotID        *string
	SessionID    *string
	StrategyUsed *string
	StartTime    *time.Time
	EndTime      *time.Time
}
