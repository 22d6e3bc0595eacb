package mirror

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMemoryStore_SessionStateRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	state := SessionState{
		BotID:        "bot-1",
		SessionID:    "s-1",
		NumberOfRuns: 2,
		TotalStake:   decimal.NewFromInt(20),
	}
	if err := store.SetSessionState(ctx, state); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.GetSessionState(ctx, "bot-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.SessionID != "s-1" || got.NumberOfRuns != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.LastUpdated.IsZero() {
		t.Fatalf("last_updated not stamped by store")
	}
}

func TestMemoryStore_MissingEntriesReturnNilNil(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	state, err := store.GetSessionState(ctx, "nope")
	if err != nil || state != nil {
		t.Fatalf("session state = %+v, err = %v, want nil, nil", state, err)
	}
	status, err := store.GetDisplayStatus(ctx, "nope")
	if err != nil || status != nil {
		t.Fatalf("display status = %+v, err = %v, want nil, nil", status, err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SetSessionState(ctx, SessionState{BotID: "bot-1", SessionID: "s-1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	first, _ := store.GetSessionState(ctx, "bot-1")
	first.SessionID = "mutated"

	second, _ := store.GetSessionState(ctx, "bot-1")
	if second.SessionID != "s-1" {
		t.Fatalf("caller mutation leaked into store: %q", second.SessionID)
	}
}

func TestMemoryStore_DeleteBotRemovesBothEntries(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SetSessionState(ctx, SessionState{BotID: "bot-1", SessionID: "s-1"}); err != nil {
		t.Fatalf("set session: %v", err)
	}
	if err := store.SetDisplayStatus(ctx, "bot-1", "RUNNING", true); err != nil {
		t.Fatalf("set status: %v", err)
	}

	if err := store.DeleteBot(ctx, "bot-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if state, _ := store.GetSessionState(ctx, "bot-1"); state != nil {
		t.Fatalf("session state survived delete")
	}
	if status, _ := store.GetDisplayStatus(ctx, "bot-1"); status != nil {
		t.Fatalf("display status survived delete")
	}
}
