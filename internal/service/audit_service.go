package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"koppo/internal/models"
	"koppo/internal/repository"
)

// AuditService appends immutable trade records and serves filtered,
// chronologically ordered reads over them. Appends never deduplicate:
// retrying a failed call is the caller's concern and produces a new record.
type AuditService struct {
	Repo repository.Repository
}

type AuditInput struct {
	OwnerID      string           `json:"owner_id"`
	BotID        string           `json:"bot_id"`
	SessionID    string           `json:"session_id"`
	StrategyUsed string           `json:"strategy_used"`
	ProposalID   int64            `json:"proposal_id"`
	Amount       decimal.Decimal  `json:"amount"`
	Basis        string           `json:"basis"`
	ContractType string           `json:"contract_type"`
	Currency     string           `json:"currency"`
	Duration     int              `json:"duration"`
	DurationUnit string           `json:"duration_unit"`
	Symbol       string           `json:"symbol"`
	Barrier      *decimal.Decimal `json:"barrier,omitempty"`
	Outcome      string           `json:"outcome"`
	ProfitOrLoss decimal.Decimal  `json:"profit_or_loss"`
}

// Append stamps the record with the current UTC time, persists it and
// returns it with the store-assigned id.
func (s *AuditService) Append(ctx context.Context, input AuditInput) (*models.TradeAudit, error) {
	if strings.TrimSpace(input.OwnerID) == "" {
		return nil, &ValidationError{Field: "owner_id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.BotID) == "" {
		return nil, &ValidationError{Field: "bot_id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, &ValidationError{Field: "session_id", Reason: "must not be empty"}
	}
	if !models.ValidOutcome(input.Outcome) {
		return nil, &ValidationError{Field: "outcome", Reason: "must be WIN, LOSS or PENDING"}
	}

	record := &models.TradeAudit{
		Timestamp:    time.Now().UTC(),
		OwnerID:      strings.TrimSpace(input.OwnerID),
		BotID:        strings.TrimSpace(input.BotID),
		SessionID:    strings.TrimSpace(input.SessionID),
		StrategyUsed: strings.TrimSpace(input.StrategyUsed),
		ProposalID:   input.ProposalID,
		Amount:       input.Amount,
		Basis:        input.Basis,
		ContractType: input.ContractType,
		Currency:     input.Currency,
		Duration:     input.Duration,
		DurationUnit: input.DurationUnit,
		Symbol:       input.Symbol,
		Barrier:      input.Barrier,
		Outcome:      input.Outcome,
		ProfitOrLoss: input.ProfitOrLoss,
	}
	if err := s.Repo.InsertTradeAudit(ctx, record); err != nil {
		return nil, persistence("insert trade audit", err)
	}
	return record, nil
}

// Query returns matching records ordered timestamp ascending, always.
func (s *AuditService) Query(ctx context.Context, params repository.ListTradeAuditsParams) ([]models.TradeAudit, error) {
	items, err := s.Repo.ListTradeAudits(ctx, params)
	if err != nil {
		return nil, persistence("list trade audits", err)
	}
	return items, nil
}

func (s *AuditService) Count(ctx context.Context, params repository.ListTradeAuditsParams) (int64, error) {
	total, err := s.Repo.CountTradeAudits(ctx, params)
	if err != nil {
		return 0, persistence("count trade audits", err)
	}
	return total, nil
}
