package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"koppo/internal/models"
	"koppo/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- bots -------------------------------------------------------------------

func (s *Store) InsertBot(ctx context.Context, item *models.Bot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetBot(ctx context.Context, ownerID, botID string) (*models.Bot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Bot
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, botID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListBots(ctx context.Context, params repository.ListBotsParams) ([]models.Bot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.applyBotFilters(ctx, params)
	query = query.Order("created_at asc")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Bot
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountBots(ctx context.Context, params repository.ListBotsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.applyBotFilters(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) applyBotFilters(ctx context.Context, params repository.ListBotsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Bot{})
	if params.OwnerID != nil && strings.TrimSpace(*params.OwnerID) != "" {
		query = query.Where("owner_id = ?", strings.TrimSpace(*params.OwnerID))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}
	return query
}

func (s *Store) UpdateBotFields(ctx context.Context, ownerID, botID string, updates map[string]any) (int64, error) {
	if s == nil || s.db == nil || len(updates) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Bot{}).
		Where("owner_id = ? AND id = ?", ownerID, botID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteBot(ctx context.Context, ownerID, botID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, botID).
		Delete(&models.Bot{})
	return res.RowsAffected, res.Error
}

// --- trade audits -----------------------------------------------------------

func (s *Store) InsertTradeAudit(ctx context.Context, item *models.TradeAudit) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListTradeAudits(ctx context.Context, params repository.ListTradeAuditsParams) ([]models.TradeAudit, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.applyAuditFilters(ctx, params)
	// Chronological order is load-bearing for streak analysis downstream.
	query = query.Order("timestamp asc").Order("id asc")
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}
	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}
	var items []models.TradeAudit
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountTradeAudits(ctx context.Context, params repository.ListTradeAuditsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.applyAuditFilters(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) applyAuditFilters(ctx context.Context, params repository.ListTradeAuditsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.TradeAudit{})
	if params.OwnerID != nil && strings.TrimSpace(*params.OwnerID) != "" {
		query = query.Where("owner_id = ?", strings.TrimSpace(*params.OwnerID))
	}
	if params.BotID != nil && strings.TrimSpace(*params.BotID) != "" {
		query = query.Where("bot_id = ?", strings.TrimSpace(*params.BotID))
	}
	if params.SessionID != nil && strings.TrimSpace(*params.SessionID) != "" {
		query = query.Where("session_id = ?", strings.TrimSpace(*params.SessionID))
	}
	if params.StrategyUsed != nil && strings.TrimSpace(*params.StrategyUsed) != "" {
		query = query.Where("strategy_used = ?", strings.TrimSpace(*params.StrategyUsed))
	}
	if params.StartTime != nil && !params.StartTime.IsZero() {
		query = query.Where("timestamp >= ?", *params.StartTime)
	}
	if params.EndTime != nil && !params.EndTime.IsZero() {
		query = query.Where("timestamp <= ?", *params.EndTime)
	}
	return query
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
