package mirror

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the mirror entries in Redis. Entries have no TTL: they
// live until the owning bot is deleted.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(opt *redis.Options) *RedisStore {
	return &RedisStore{Client: redis.NewClient(opt)}
}

func (s *RedisStore) SetSessionState(ctx context.Context, state SessionState) error {
	state.LastUpdated = time.Now().UTC()
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, sessionKey(state.BotID), payload, 0).Err()
}

func (s *RedisStore) GetSessionState(ctx context.Context, botID string) (*SessionState, error) {
	b, err := s.Client.Get(ctx, sessionKey(botID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state SessionState
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisStore) SetDisplayStatus(ctx context.Context, botID string, status string, isActive bool) error {
	payload, err := json.Marshal(DisplayStatus{
		Status:           status,
		IsActive:         isActive,
		LastStatusUpdate: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, statusKey(botID), payload, 0).Err()
}

func (s *RedisStore) GetDisplayStatus(ctx context.Context, botID string) (*DisplayStatus, error) {
	b, err := s.Client.Get(ctx, statusKey(botID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var status DisplayStatus
	if err := json.Unmarshal(b, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *RedisStore) DeleteBot(ctx context.Context, botID string) error {
	return s.Client.Del(ctx, sessionKey(botID), statusKey(botID)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
