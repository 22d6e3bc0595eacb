package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade outcomes.
const (
	OutcomeWin     = "WIN"
	OutcomeLoss    = "LOSS"
	OutcomePending = "PENDING"
)

// TradeAudit is one immutable audit record per executed trade. Rows are
// append-only: the repository exposes no update or delete for this table,
// and deleting a bot leaves its audit trail in place.
type TradeAudit struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp time.Time `gorm:"type:timestamptz;not null;index" json:"timestamp"`

	OwnerID      string `gorm:"type:varchar(64);not null;index" json:"owner_id"`
	BotID        string `gorm:"type:varchar(36);not null;index" json:"bot_id"`
	SessionID    string `gorm:"type:varchar(64);not null;index" json:"session_id"`
	StrategyUsed string `gorm:"type:varchar(50);not null;index" json:"strategy_used"`

	ProposalID   int64            `gorm:"not null" json:"proposal_id"`
	Amount       decimal.Decimal  `gorm:"type:numeric(30,10);not null" json:"amount"`
	Basis        string           `gorm:"type:varchar(20);not null" json:"basis"`
	ContractType string           `gorm:"type:varchar(30);not null" json:"contract_type"`
	Currency     string           `gorm:"type:varchar(10);not null" json:"currency"`
	Duration     int              `gorm:"not null" json:"duration"`
	DurationUnit string           `gorm:"type:varchar(10);not null" json:"duration_unit"`
	Symbol       string           `gorm:"type:varchar(30);not null" json:"symbol"`
	Barrier      *decimal.Decimal `gorm:"type:numeric(30,10)" json:"barrier,omitempty"`

	Outcome      string          `gorm:"type:varchar(10);not null;index" json:"outcome"`
	ProfitOrLoss decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"profit_or_loss"`
}

func (TradeAudit) TableName() string {
	return "trade_audits"
}

func ValidOutcome(outcome string) bool {
	switch outcome {
	case OutcomeWin, OutcomeLoss, OutcomePending:
		return true
	default:
		return false
	}
}
