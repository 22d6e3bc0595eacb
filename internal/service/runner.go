package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"koppo/internal/mirror"
	"koppo/internal/models"
	"koppo/internal/trading"
)

// TradeRunner drives one trading session for a bot: per trade it executes
// the contract, publishes the updated session snapshot and appends the
// audit record, strictly in that order. Nothing here runs in parallel
// inside a session; concurrency exists only across bots.
type TradeRunner struct {
	Bots     *BotService
	Sessions *SessionService
	Audits   *AuditService
	Executor trading.Executor
	Logger   *zap.Logger

	MaxTrades    int
	TradeTimeout time.Duration
}

// RunSession marks the bot RUNNING, trades, and marks it STOPPED on the
// way out (also when a trade fails mid-session). The session id it returns
// is the only handle that distinguishes this run from earlier ones.
func (r *TradeRunner) RunSession(ctx context.Context, ownerID, botID string) (string, error) {
	bot, err := r.Bots.Get(ctx, ownerID, botID)
	if err != nil {
		return "", err
	}

	running := models.BotStatusRunning
	active := true
	if _, err := r.Bots.Update(ctx, ownerID, botID, BotUpdate{Status: &running, IsActive: &active}); err != nil {
		return "", err
	}
	defer r.markStopped(ownerID, botID)

	sessionID := "session-" + uuid.NewString()
	state := mirror.SessionState{
		BotID:           bot.ID,
		SessionID:       sessionID,
		CurrentStrategy: strategyName(bot),
	}

	maxTrades := r.MaxTrades
	if maxTrades <= 0 {
		maxTrades = 1
	}

	for i := 0; i < maxTrades; i++ {
		if err := ctx.Err(); err != nil {
			return sessionID, err
		}

		result, err := r.executeOne(ctx, bot)
		if err != nil {
			return sessionID, fmt.Errorf("execute trade %d: %w", i+1, err)
		}

		applyTrade(&state, result)

		if err := r.Sessions.Publish(ctx, state); err != nil {
			return sessionID, err
		}

		if _, err := r.Audits.Append(ctx, AuditInput{
			OwnerID:      ownerID,
			BotID:        bot.ID,
			SessionID:    sessionID,
			StrategyUsed: state.CurrentStrategy,
			ProposalID:   result.ProposalID,
			Amount:       result.AmountStaked,
			Basis:        "stake",
			ContractType: bot.ContractType,
			Currency:     "USD",
			Duration:     bot.Duration,
			DurationUnit: bot.DurationUnit,
			Symbol:       bot.Symbol,
			Barrier:      result.Barrier,
			Outcome:      result.Outcome,
			ProfitOrLoss: result.ProfitOrLoss,
		}); err != nil {
			return sessionID, err
		}

		if !bot.RepeatTrade {
			break
		}
	}

	if r.Logger != nil {
		r.Logger.Info("trading session complete",
			zap.String("bot_id", bot.ID),
			zap.String("session_id", sessionID),
			zap.Int("runs", state.NumberOfRuns),
			zap.Int("wins", state.NumberOfWins),
			zap.Int("losses", state.NumberOfLosses),
			zap.String("total_profit", state.TotalProfit.String()),
		)
	}
	return sessionID, nil
}

func (r *TradeRunner) executeOne(ctx context.Context, bot *models.Bot) (*trading.TradeResult, error) {
	if r.TradeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.TradeTimeout)
		defer cancel()
	}
	return r.Executor.Execute(ctx, trading.TradeRequest{
		Symbol:       bot.Symbol,
		ContractType: bot.ContractType,
		Stake:        bot.InitialStake,
		Duration:     bot.Duration,
		DurationUnit: bot.DurationUnit,
		Currency:     "USD",
	})
}

// applyTrade folds one result into the running snapshot; the snapshot is
// republished wholesale after every trade.
func applyTrade(state *mirror.SessionState, result *trading.TradeResult) {
	state.NumberOfRuns++
	switch result.Outcome {
	case models.OutcomeWin:
		state.NumberOfWins++
		state.TotalPayout = state.TotalPayout.Add(result.AmountStaked).Add(result.ProfitOrLoss)
	case models.OutcomeLoss:
		state.NumberOfLosses++
	}
	state.TotalStake = state.TotalStake.Add(result.AmountStaked)
	state.TotalProfit = state.TotalProfit.Add(result.ProfitOrLoss)
}

// markStopped runs after the session ends, also on failure paths. It uses
// a fresh context so shutdown cancellation cannot strand the bot RUNNING.
func (r *TradeRunner) markStopped(ownerID, botID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stopped := models.BotStatusStopped
	inactive := false
	if _, err := r.Bots.Update(ctx, ownerID, botID, BotUpdate{Status: &stopped, IsActive: &inactive}); err != nil {
		if r.Logger != nil {
			r.Logger.Warn("failed to mark bot stopped",
				zap.String("bot_id", botID),
				zap.Error(err),
			)
		}
	}
}

func strategyName(bot *models.Bot) string {
	if len(bot.StrategyParams) > 0 {
		var params struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(bot.StrategyParams, &params); err == nil && params.Name != "" {
			return params.Name
		}
	}
	return "default"
}
