package service

import (
	"context"

	"go.uber.org/zap"

	"koppo/internal/mirror"
	"koppo/internal/repository"
)

// StatusReconciler re-projects status and is_active for every bot from the
// record store into the mirror. The inline mirror write in BotService is
// best-effort and can fail without failing the primary operation; this job
// bounds how long the two stores can disagree.
type StatusReconciler struct {
	Repo   repository.Repository
	Mirror mirror.Store
	Logger *zap.Logger
}

const reconcilePageSize = 500

// ReconcileOnce walks all bots and rewrites their display-status entries.
// It returns the number of bots successfully mirrored; individual mirror
// failures are logged and skipped.
func (r *StatusReconciler) ReconcileOnce(ctx context.Context) (int, error) {
	if r == nil || r.Repo == nil || r.Mirror == nil {
		return 0, nil
	}
	reconciled := 0
	offset := 0
	for {
		bots, err := r.Repo.ListBots(ctx, repository.ListBotsParams{
			Limit:  reconcilePageSize,
			Offset: offset,
		})
		if err != nil {
			return reconciled, persistence("list bots for reconcile", err)
		}
		if len(bots) == 0 {
			return reconciled, nil
		}
		for _, bot := range bots {
			if err := ctx.Err(); err != nil {
				return reconciled, err
			}
			if err := r.Mirror.SetDisplayStatus(ctx, bot.ID, bot.Status, bot.IsActive); err != nil {
				if r.Logger != nil {
					r.Logger.Warn("status reconcile failed for bot",
						zap.String("bot_id", bot.ID),
						zap.Error(err),
					)
				}
				continue
			}
			reconciled++
		}
		if len(bots) < reconcilePageSize {
			return reconciled, nil
		}
		offset += reconcilePageSize
	}
}
