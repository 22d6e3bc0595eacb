package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"koppo/internal/mirror"
)

// SessionService publishes live session metrics into the mirror store.
// Every publish is a whole-value replace: callers supply the complete
// current snapshot, never a delta. Publishes from one trading run must be
// serialized by the caller; the store only guarantees last-write-wins.
type SessionService struct {
	Mirror mirror.Store
	Logger *zap.Logger
}

func (s *SessionService) Publish(ctx context.Context, state mirror.SessionState) error {
	if strings.TrimSpace(state.BotID) == "" {
		return &ValidationError{Field: "bot_id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(state.SessionID) == "" {
		return &ValidationError{Field: "session_id", Reason: "must not be empty"}
	}
	if err := s.Mirror.SetSessionState(ctx, state); err != nil {
		return persistence("publish session state", err)
	}
	return nil
}

func (s *SessionService) Get(ctx context.Context, botID string) (*mirror.SessionState, error) {
	state, err := s.Mirror.GetSessionState(ctx, botID)
	if err != nil {
		return nil, persistence("get session state", err)
	}
	if state == nil {
		return nil, ErrNotFound
	}
	return state, nil
}
