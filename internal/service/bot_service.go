package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"koppo/internal/mirror"
	"koppo/internal/models"
	"koppo/internal/repository"
)

// BotService owns the lifecycle of bot configuration records. The bots
// table is authoritative; the Redis display-status projection is written
// best-effort on the same call path and repaired by the StatusReconciler.
type BotService struct {
	Repo   repository.Repository
	Mirror mirror.Store
	Logger *zap.Logger
}

type BotInput struct {
	Name           string          `json:"name"`
	ContractType   string          `json:"contract_type"`
	InitialStake   decimal.Decimal `json:"initial_stake"`
	Duration       int             `json:"duration"`
	DurationUnit   string          `json:"duration_unit"`
	RepeatTrade    bool            `json:"repeat_trade"`
	Symbol         string          `json:"symbol"`
	Version        string          `json:"version"`
	Status         string          `json:"status"`
	IsActive       bool            `json:"is_active"`
	StrategyParams datatypes.JSON  `json:"strategy_params,omitempty"`
}

// BotUpdate is a partial update; nil fields are left untouched. Status and
// IsActive must be supplied together when either changes, so the mirror
// projection is always written from a pairing the caller chose rather than
// one assembled from a re-read racing other writers.
type BotUpdate struct {
	Name           *string          `json:"name"`
	ContractType   *string          `json:"contract_type"`
	InitialStake   *decimal.Decimal `json:"initial_stake"`
	Duration       *int             `json:"duration"`
	DurationUnit   *string          `json:"duration_unit"`
	RepeatTrade    *bool            `json:"repeat_trade"`
	Symbol         *string          `json:"symbol"`
	Version        *string          `json:"version"`
	Status         *string          `json:"status"`
	IsActive       *bool            `json:"is_active"`
	StrategyParams datatypes.JSON   `json:"strategy_params,omitempty"`
}

func (s *BotService) Create(ctx context.Context, ownerID string, input BotInput) (*models.Bot, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, &ValidationError{Field: "owner_id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.ContractType) == "" {
		return nil, &ValidationError{Field: "contract_type", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.Symbol) == "" {
		return nil, &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if input.Duration <= 0 {
		return nil, &ValidationError{Field: "duration", Reason: "must be positive"}
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.BotStatusInitializing
	}
	if !models.ValidBotStatus(status) {
		return nil, &ValidationError{Field: "status", Reason: "unknown status " + status}
	}

	now := time.Now().UTC()
	bot := &models.Bot{
		ID:             uuid.NewString(),
		OwnerID:        strings.TrimSpace(ownerID),
		Name:           strings.TrimSpace(input.Name),
		ContractType:   strings.TrimSpace(input.ContractType),
		InitialStake:   input.InitialStake,
		Duration:       input.Duration,
		DurationUnit:   strings.TrimSpace(input.DurationUnit),
		RepeatTrade:    input.RepeatTrade,
		Symbol:         strings.TrimSpace(input.Symbol),
		Version:        strings.TrimSpace(input.Version),
		Status:         status,
		IsActive:       input.IsActive,
		StrategyParams: input.StrategyParams,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.InsertBot(ctx, bot); err != nil {
		return nil, persistence("insert bot", err)
	}

	s.mirrorDisplayStatus(ctx, bot.ID, bot.Status, bot.IsActive)
	return bot, nil
}

func (s *BotService) Get(ctx context.Context, ownerID, botID string) (*models.Bot, error) {
	bot, err := s.Repo.GetBot(ctx, ownerID, botID)
	if err != nil {
		return nil, persistence("get bot", err)
	}
	if bot == nil {
		return nil, ErrNotFound
	}
	return bot, nil
}

func (s *BotService) List(ctx context.Context, params repository.ListBotsParams) ([]models.Bot, int64, error) {
	items, err := s.Repo.ListBots(ctx, params)
	if err != nil {
		return nil, 0, persistence("list bots", err)
	}
	total, err := s.Repo.CountBots(ctx, params)
	if err != nil {
		return nil, 0, persistence("count bots", err)
	}
	return items, total, nil
}

func (s *BotService) Update(ctx context.Context, ownerID, botID string, upd BotUpdate) (*models.Bot, error) {
	statusTouched := upd.Status != nil || upd.IsActive != nil
	if statusTouched && (upd.Status == nil || upd.IsActive == nil) {
		return nil, &ValidationError{Field: "status", Reason: "status and is_active must be supplied together"}
	}
	if upd.Status != nil && !models.ValidBotStatus(*upd.Status) {
		return nil, &ValidationError{Field: "status", Reason: "unknown status " + *upd.Status}
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		updates["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.ContractType != nil {
		updates["contract_type"] = strings.TrimSpace(*upd.ContractType)
	}
	if upd.InitialStake != nil {
		updates["initial_stake"] = *upd.InitialStake
	}
	if upd.Duration != nil {
		updates["duration"] = *upd.Duration
	}
	if upd.DurationUnit != nil {
		updates["duration_unit"] = strings.TrimSpace(*upd.DurationUnit)
	}
	if upd.RepeatTrade != nil {
		updates["repeat_trade"] = *upd.RepeatTrade
	}
	if upd.Symbol != nil {
		updates["symbol"] = strings.TrimSpace(*upd.Symbol)
	}
	if upd.Version != nil {
		updates["version"] = strings.TrimSpace(*upd.Version)
	}
	if upd.Status != nil {
		updates["status"] = *upd.Status
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}
	if len(upd.StrategyParams) > 0 {
		updates["strategy_params"] = upd.StrategyParams
	}

	rows, err := s.Repo.UpdateBotFields(ctx, ownerID, botID, updates)
	if err != nil {
		return nil, persistence("update bot", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	if statusTouched {
		s.mirrorDisplayStatus(ctx, botID, *upd.Status, *upd.IsActive)
	}

	bot, err := s.Repo.GetBot(ctx, ownerID, botID)
	if err != nil {
		return nil, persistence("get bot", err)
	}
	if bot == nil {
		// Deleted between the update and the re-read.
		return nil, ErrNotFound
	}
	return bot, nil
}

// Delete removes the configuration record and both mirror entries. Audit
// records for the bot stay in place: the trail outlives configuration.
func (s *BotService) Delete(ctx context.Context, ownerID, botID string) error {
	rows, err := s.Repo.DeleteBot(ctx, ownerID, botID)
	if err != nil {
		return persistence("delete bot", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	if s.Mirror != nil {
		if err := s.Mirror.DeleteBot(ctx, botID); err != nil && s.Logger != nil {
			s.Logger.Warn("mirror cleanup failed after bot delete",
				zap.String("bot_id", botID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *BotService) DisplayStatus(ctx context.Context, botID string) (*mirror.DisplayStatus, error) {
	if s.Mirror == nil {
		return nil, ErrNotFound
	}
	status, err := s.Mirror.GetDisplayStatus(ctx, botID)
	if err != nil {
		return nil, persistence("get display status", err)
	}
	if status == nil {
		return nil, ErrNotFound
	}
	return status, nil
}

// mirrorDisplayStatus is the best-effort secondary write: failure is logged
// and swallowed so it never fails a primary write that already landed.
func (s *BotService) mirrorDisplayStatus(ctx context.Context, botID, status string, isActive bool) {
	if s.Mirror == nil {
		return
	}
	if err := s.Mirror.SetDisplayStatus(ctx, botID, status, isActive); err != nil && s.Logger != nil {
		s.Logger.Warn("mirror display status failed",
			zap.String("bot_id", botID),
			zap.String("status", status),
			zap.Error(err),
		)
	}
}
