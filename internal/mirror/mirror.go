package mirror

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SessionState is the live per-bot session snapshot. Every write replaces
// the previous value wholesale; only SessionID distinguishes one run from
// the next. LastUpdated is stamped by the store adapter, not the caller.
type SessionState struct {
	BotID                string          `json:"bot_id"`
	SessionID            string          `json:"session_id"`
	NumberOfRuns         int             `json:"number_of_runs"`
	NumberOfWins         int             `json:"number_of_wins"`
	NumberOfLosses       int             `json:"number_of_losses"`
	TotalStake           decimal.Decimal `json:"total_stake"`
	TotalPayout          decimal.Decimal `json:"total_payout"`
	TotalProfit          decimal.Decimal `json:"total_profit"`
	CommissionPayout     decimal.Decimal `json:"commission_payout"`
	RealCommissionPayout decimal.Decimal `json:"real_commission_payout"`
	CurrentStrategy      string          `json:"current_strategy"`
	LastUpdated          time.Time       `json:"last_updated"`
}

// DisplayStatus is the compact status projection read by presentation
// layers. It is derived from the bots table and never authoritative.
type DisplayStatus struct {
	Status           string    `json:"status"`
	IsActive         bool      `json:"is_active"`
	LastStatusUpdate time.Time `json:"last_status_update"`
}

// Store is the low-latency mirror: whole-value overwrites keyed by bot id.
// Reads return nil without error when no entry exists.
type Store interface {
	SetSessionState(ctx context.Context, state SessionState) error
	GetSessionState(ctx context.Context, botID string) (*SessionState, error)
	SetDisplayStatus(ctx context.Context, botID string, status string, isActive bool) error
	GetDisplayStatus(ctx context.Context, botID string) (*DisplayStatus, error)
	// DeleteBot removes both mirror entries for the bot.
	DeleteBot(ctx context.Context, botID string) error
}

const (
	sessionKeyPrefix = "botSessions:"
	statusKeyPrefix  = "botDisplayStatus:"
)

func sessionKey(botID string) string { return sessionKeyPrefix + botID }
func statusKey(botID string) string  { return statusKeyPrefix + botID }
