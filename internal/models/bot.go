package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Bot status values. The bots table is the single source of truth for
// Status and IsActive; the Redis projection is never authoritative.
const (
	BotStatusStopped      = "STOPPED"
	BotStatusPaused       = "PAUSED"
	BotStatusRunning      = "RUNNING"
	BotStatusInitializing = "INITIALIZING"
)

// Bot is the durable configuration record for one trading bot, addressed
// by (owner_id, id).
type Bot struct {
	ID      string `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID string `gorm:"type:varchar(64);not null;index:idx_bots_owner" json:"owner_id"`

	Name         string          `gorm:"type:varchar(100);not null" json:"name"`
	ContractType string          `gorm:"type:varchar(30);not null" json:"contract_type"`
	InitialStake decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"initial_stake"`
	Duration     int             `gorm:"not null" json:"duration"`
	DurationUnit string          `gorm:"type:varchar(10);not null" json:"duration_unit"`
	RepeatTrade  bool            `gorm:"not null;default:false" json:"repeat_trade"`
	Symbol       string          `gorm:"type:varchar(30);not null" json:"symbol"`
	Version      string          `gorm:"type:varchar(20)" json:"version"`

	Status   string `gorm:"type:varchar(20);not null;index" json:"status"`
	IsActive bool   `gorm:"not null;default:false;index" json:"is_active"`

	StrategyParams datatypes.JSON `gorm:"type:jsonb" json:"strategy_params,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null" json:"updated_at"`
}

func (Bot) TableName() string {
	return "bots"
}

func ValidBotStatus(status string) bool {
	switch status {
	case BotStatusStopped, BotStatusPaused, BotStatusRunning, BotStatusInitializing:
		return true
	default:
		return false
	}
}
