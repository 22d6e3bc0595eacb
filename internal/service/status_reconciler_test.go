package service

import (
	"context"
	"testing"

	"koppo/internal/mirror"
	"koppo/internal/models"
)

func TestStatusReconciler_RepairsMissingMirrorEntry(t *testing.T) {
	repo := newStubRepo()
	store := mirror.NewMemoryStore()
	ctx := context.Background()

	// Create through a broken mirror so the projection is never written.
	broken := &failingMirror{MemoryStore: store, failStatus: true}
	svc := &BotService{Repo: repo, Mirror: broken}
	bot, err := svc.Create(ctx, "owner-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if status, _ := store.GetDisplayStatus(ctx, bot.ID); status != nil {
		t.Fatalf("mirror unexpectedly populated")
	}

	reconciler := &StatusReconciler{Repo: repo, Mirror: store}
	count, err := reconciler.ReconcileOnce(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if count != 1 {
		t.Fatalf("reconciled %d bots, want 1", count)
	}

	status, err := store.GetDisplayStatus(ctx, bot.ID)
	if err != nil || status == nil {
		t.Fatalf("display status still missing: %v", err)
	}
	if status.Status != bot.Status || status.IsActive != bot.IsActive {
		t.Fatalf("status = %+v, want %s/%v", status, bot.Status, bot.IsActive)
	}
}

func TestStatusReconciler_OverwritesStaleEntry(t *testing.T) {
	repo := newStubRepo()
	store := mirror.NewMemoryStore()
	ctx := context.Background()

	svc := &BotService{Repo: repo, Mirror: store}
	bot, err := svc.Create(ctx, "owner-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Simulate drift: the mirror says RUNNING while the record store does not.
	if err := store.SetDisplayStatus(ctx, bot.ID, models.BotStatusRunning, true); err != nil {
		t.Fatalf("seed stale entry: %v", err)
	}

	reconciler := &StatusReconciler{Repo: repo, Mirror: store}
	if _, err := reconciler.ReconcileOnce(ctx); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	status, _ := store.GetDisplayStatus(ctx, bot.ID)
	if status.Status != models.BotStatusInitializing || status.IsActive {
		t.Fatalf("stale entry not overwritten: %+v", status)
	}
}

func TestStatusReconciler_SkipsFailedBots(t *testing.T) {
	repo := newStubRepo()
	ctx := context.Background()

	svc := &BotService{Repo: repo, Mirror: mirror.NewMemoryStore()}
	for i := 0; i < 3; i++ {
		input := validInput()
		input.Name = input.Name + "-" + string(rune('a'+i))
		if _, err := svc.Create(ctx, "owner-1", input); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	broken := &failingMirror{MemoryStore: mirror.NewMemoryStore(), failStatus: true}
	reconciler := &StatusReconciler{Repo: repo, Mirror: broken}
	count, err := reconciler.ReconcileOnce(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if count != 0 {
		t.Fatalf("reconciled %d bots against a broken mirror, want 0", count)
	}
}

func TestStatusReconciler_EmptyStore(t *testing.T) {
	reconciler := &StatusReconciler{Repo: newStubRepo(), Mirror: mirror.NewMemoryStore()}
	count, err := reconciler.ReconcileOnce(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}
