package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"koppo/internal/models"
	"koppo/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// It mimics the gorm store's observable behavior: partial updates by column
// name, rows-affected results, and audit listing always ordered timestamp
// ascending with id as tiebreak.
type stubRepo struct {
	mu          sync.Mutex
	bots        map[string]models.Bot
	audits      []models.TradeAudit
	nextAuditID uint64

	failInsertBot   bool
	failInsertAudit bool
	failList        bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{bots: make(map[string]models.Bot)}
}

func botKey(ownerID, botID string) string {
	return ownerID + "|" + botID
}

func (s *stubRepo) InsertBot(ctx context.Context, item *models.Bot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsertBot {
		return errors.New("stub: insert bot failed")
	}
	s.bots[botKey(item.OwnerID, item.ID)] = *item
	return nil
}

func (s *stubRepo) GetBot(ctx context.Context, ownerID, botID string) (*models.Bot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bot, ok := s.bots[botKey(ownerID, botID)]
	if !ok {
		return nil, nil
	}
	return &bot, nil
}

func (s *stubRepo) ListBots(ctx context.Context, params repository.ListBotsParams) ([]models.Bot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		return nil, errors.New("stub: list bots failed")
	}
	var items []models.Bot
	for _, bot := range s.bots {
		if params.OwnerID != nil && *params.OwnerID != "" && bot.OwnerID != *params.OwnerID {
			continue
		}
		if params.Status != nil && bot.Status != *params.Status {
			continue
		}
		if params.Active != nil && bot.IsActive != *params.Active {
			continue
		}
		items = append(items, bot)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return paginate(items, params.Limit, params.Offset), nil
}

func (s *stubRepo) CountBots(ctx context.Context, params repository.ListBotsParams) (int64, error) {
	items, err := s.ListBots(ctx, repository.ListBotsParams{
		OwnerID: params.OwnerID,
		Status:  params.Status,
		Active:  params.Active,
	})
	return int64(len(items)), err
}

func (s *stubRepo) UpdateBotFields(ctx context.Context, ownerID, botID string, updates map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bot, ok := s.bots[botKey(ownerID, botID)]
	if !ok {
		return 0, nil
	}
	for column, value := range updates {
		switch column {
		case "updated_at":
			bot.UpdatedAt = value.(time.Time)
		case "name":
			bot.Name = value.(string)
		case "contract_type":
			bot.ContractType = value.(string)
		case "initial_stake":
			bot.InitialStake = value.(decimal.Decimal)
		case "duration":
			bot.Duration = value.(int)
		case "duration_unit":
			bot.DurationUnit = value.(string)
		case "repeat_trade":
			bot.RepeatTrade = value.(bool)
		case "symbol":
			bot.Symbol = value.(string)
		case "version":
			bot.Version = value.(string)
		case "status":
			bot.Status = value.(string)
		case "is_active":
			bot.IsActive = value.(bool)
		case "strategy_params":
			bot.StrategyParams = value.(datatypes.JSON)
		}
	}
	s.bots[botKey(ownerID, botID)] = bot
	return 1, nil
}

func (s *stubRepo) DeleteBot(ctx context.Context, ownerID, botID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := botKey(ownerID, botID)
	if _, ok := s.bots[key]; !ok {
		return 0, nil
	}
	delete(s.bots, key)
	return 1, nil
}

func (s *stubRepo) InsertTradeAudit(ctx context.Context, item *models.TradeAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsertAudit {
		return errors.New("stub: insert audit failed")
	}
	s.nextAuditID++
	item.ID = s.nextAuditID
	s.audits = append(s.audits, *item)
	return nil
}

func (s *stubRepo) ListTradeAudits(ctx context.Context, params repository.ListTradeAuditsParams) ([]models.TradeAudit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		return nil, errors.New("stub: list audits failed")
	}
	var items []models.TradeAudit
	for _, audit := range s.audits {
		if !matchStr(params.OwnerID, audit.OwnerID) ||
			!matchStr(params.BotID, audit.BotID) ||
			!matchStr(params.SessionID, audit.SessionID) ||
			!matchStr(params.StrategyUsed, audit.StrategyUsed) {
			continue
		}
		if params.StartTime != nil && audit.Timestamp.Before(*params.StartTime) {
			continue
		}
		if params.EndTime != nil && audit.Timestamp.After(*params.EndTime) {
			continue
		}
		items = append(items, audit)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].ID < items[j].ID
		}
		return items[i].Timestamp.Before(items[j].Timestamp)
	})
	return paginate(items, params.Limit, params.Offset), nil
}

func (s *stubRepo) CountTradeAudits(ctx context.Context, params repository.ListTradeAuditsParams) (int64, error) {
	items, err := s.ListTradeAudits(ctx, repository.ListTradeAuditsParams{
		OwnerID:      params.OwnerID,
		BotID:        params.BotID,
		SessionID:    params.SessionID,
		StrategyUsed: params.StrategyUsed,
		StartTime:    params.StartTime,
		EndTime:      params.EndTime,
	})
	return int64(len(items)), err
}

func matchStr(filter *string, value string) bool {
	if filter == nil || strings.TrimSpace(*filter) == "" {
		return true
	}
	return value == *filter
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
