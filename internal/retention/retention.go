// Package retention prunes conversation logs on a cron schedule so the
// store only keeps the recent tail each subscription can actually replay.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"crimewatch/pkg/config"
	"crimewatch/pkg/logger"
	"crimewatch/pkg/store"
)

// DefaultKeep matches the conversation replay window.
const DefaultKeep = 50

// Start starts the pruning scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RetentionConfig) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}
	keep := cfg.Keep
	if keep <= 0 {
		keep = DefaultKeep
	}

	logger.Info("retention_enabled", "cron", cronExpr, "keep", keep)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, keep)
	return cancel, nil
}

// RunOnce prunes every user's conversation log to keep entries and returns
// the total number of deleted messages.
func RunOnce(keep int) (int, error) {
	if keep <= 0 {
		keep = DefaultKeep
	}
	users, err := store.ChatUsers()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, u := range users {
		n, err := store.PruneMessages(u, keep)
		if err != nil {
			logger.Error("retention_prune_failed", "user", u, "error", err)
			continue
		}
		total += n
	}
	logger.Info("retention_run_done", "users", len(users), "deleted", total)
	return total, nil
}

// runScheduler computes the next cron tick and sleeps until it is due.
func runScheduler(ctx context.Context, cronExpr string, keep int) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if _, err := RunOnce(keep); err != nil {
				logger.Error("retention_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}
