package trading

import (
	"context"

	"github.com/shopspring/decimal"
)

// TradeRequest describes one contract to buy.
type TradeRequest struct {
	Symbol       string
	ContractType string
	Stake        decimal.Decimal
	Duration     int
	DurationUnit string
	Currency     string
}

// TradeResult is what the core consumes from a trading venue: the outcome,
// the realized profit or loss and what was actually staked. Outcome uses
// the models.Outcome* values; PENDING means the contract had not settled
// before the executor gave up waiting.
type TradeResult struct {
	Outcome      string
	ProfitOrLoss decimal.Decimal
	AmountStaked decimal.Decimal
	ProposalID   int64
	Barrier      *decimal.Decimal
}

// Executor executes exactly one trade per call. Implementations are
// treated as opaque collaborators; the core never sees their protocol.
type Executor interface {
	Execute(ctx context.Context, req TradeRequest) (*TradeResult, error)
}
