package trading

import (
	"context"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"

	"koppo/internal/models"
)

// Simulated is a coin-flip executor for dry runs and tests. A win pays
// PayoutRatio times the stake; a loss loses the whole stake.
type Simulated struct {
	WinRate     float64         // defaults to 0.5
	PayoutRatio decimal.Decimal // defaults to 0.95
	Rand        *rand.Rand      // defaults to the global source

	mu      sync.Mutex
	counter int64
}

func (s *Simulated) Execute(ctx context.Context, req TradeRequest) (*TradeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	winRate := s.WinRate
	if winRate <= 0 || winRate > 1 {
		winRate = 0.5
	}
	payout := s.PayoutRatio
	if payout.IsZero() {
		payout = decimal.NewFromFloat(0.95)
	}

	s.mu.Lock()
	s.counter++
	proposalID := s.counter
	var roll float64
	if s.Rand != nil {
		roll = s.Rand.Float64()
	} else {
		roll = rand.Float64()
	}
	s.mu.Unlock()

	result := &TradeResult{
		AmountStaked: req.Stake,
		ProposalID:   proposalID,
	}
	if roll < winRate {
		result.Outcome = models.OutcomeWin
		result.ProfitOrLoss = req.Stake.Mul(payout)
	} else {
		result.Outcome = models.OutcomeLoss
		result.ProfitOrLoss = req.Stake.Neg()
	}
	return result, nil
}
