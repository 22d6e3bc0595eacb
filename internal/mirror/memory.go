package mirror

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionState
	statuses map[string]DisplayStatus
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]SessionState),
		statuses: make(map[string]DisplayStatus),
	}
}

func (s *MemoryStore) SetSessionState(ctx context.Context, state SessionState) error {
	state.LastUpdated = time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.BotID] = state
	return nil
}

func (s *MemoryStore) GetSessionState(ctx context.Context, botID string) (*SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[botID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *MemoryStore) SetDisplayStatus(ctx context.Context, botID string, status string, isActive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[botID] = DisplayStatus{
		Status:           status,
		IsActive:         isActive,
		LastStatusUpdate: time.Now().UTC(),
	}
	return nil
}

func (s *MemoryStore) GetDisplayStatus(ctx context.Context, botID string) (*DisplayStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[botID]
	if !ok {
		return nil, nil
	}
	return &status, nil
}

func (s *MemoryStore) DeleteBot(ctx context.Context, botID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, botID)
	delete(s.statuses, botID)
	return nil
}
