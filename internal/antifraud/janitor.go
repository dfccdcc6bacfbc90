package antifraud

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bychrisr/hub-defisats-sub012/pkg/logger"
)

const defaultCleanupInterval = 5 * time.Minute

// Janitor periodically removes expired blacklist entries. The blacklist stays
// correct without it (reads filter on expiry); the janitor only keeps the
// table from growing unbounded.
type Janitor struct {
	blacklist *BlacklistService
	interval  time.Duration
}

// NewJanitor creates a cleanup loop with the given cadence
func NewJanitor(blacklist *BlacklistService, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	return &Janitor{blacklist: blacklist, interval: interval}
}

// Run blocks until the context is cancelled, sweeping on every tick. Sweep
// failures are logged and retried on the next tick.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logger.Info("blacklist janitor started", zap.Duration("interval", j.interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("blacklist janitor stopped")
			return
		case <-ticker.C:
			if _, err := j.blacklist.CleanupExpired(ctx); err != nil {
				logger.Error("blacklist cleanup failed", zap.Error(err))
			}
		}
	}
}
