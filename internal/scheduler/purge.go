// Package scheduler runs the periodic trash purge.
package scheduler

import (
	"context"
	"time"

	"github.com/teleshelf/teleshelf/internal/logging"
	"github.com/teleshelf/teleshelf/internal/models"
)

// Purger permanently removes trashed records older than cutoff.
type Purger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (models.PurgeResult, error)
}

// PurgeScheduler invokes the purger once at startup and then on every tick,
// removing records whose tombstones are older than the retention window.
type PurgeScheduler struct {
	purger    Purger
	logger    logging.Logger
	retention time.Duration
	interval  time.Duration

	now func() time.Time
}

func NewPurgeScheduler(purger Purger, logger logging.Logger, retention, interval time.Duration) *PurgeScheduler {
	return &PurgeScheduler{
		purger:    purger,
		logger:    logger,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled. A failed sweep is logged and retried on
// the next tick; it never stops the scheduler.
func (s *PurgeScheduler) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "purge scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *PurgeScheduler) sweep(ctx context.Context) {
	cutoff := s.now().UTC().Add(-s.retention)

	res, err := s.purger.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error(ctx, "purge sweep failed", "cutoff", cutoff, "error", err)
		return
	}
	if res.Media > 0 || res.Links > 0 {
		s.logger.Info(ctx, "purge sweep finished",
			"cutoff", cutoff, "media", res.Media, "links", res.Links)
	}
}
