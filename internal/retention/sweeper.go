// Package retention implements the background sweeper that removes task
// blobs past their retention age. Cleanup by clients is advisory, so the
// sweeper is the backstop that keeps the store from accumulating records
// nobody will ever fetch again.
package retention

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/blob"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
	"github.com/robfig/cron/v3"
)

const (
	defaultSchedule = "@hourly"
	defaultMaxAge   = 24 * time.Hour

	// taskKeyPrefix narrows the sweep to generated task blobs. Progress
	// blobs share the prefix since their key is the task ID plus a suffix.
	taskKeyPrefix = "async_"
)

// Sweeper periodically deletes task blobs whose embedded creation time is
// older than the retention window.
type Sweeper struct {
	store    blob.Store
	cron     *cron.Cron
	schedule string
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper with the given schedule (cron expression,
// empty means hourly) and maximum blob age (zero means 24h).
func NewSweeper(store blob.Store, schedule string, maxAge time.Duration, logger *slog.Logger) *Sweeper {
	if schedule == "" {
		schedule = defaultSchedule
	}
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	return &Sweeper{
		store:    store,
		cron:     cron.New(),
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger.With("component", "retention_sweeper"),
	}
}

// Start registers the sweep job and starts the scheduler.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Sweep(ctx, time.Now())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("retention sweeper started",
		"schedule", s.schedule,
		"max_age", s.maxAge.String())
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("retention sweeper stopped")
}

// Sweep deletes every task blob older than the retention window and
// returns the number removed. Blobs whose key carries no parseable
// timestamp are left alone.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) int {
	keys, err := s.store.List(ctx, taskKeyPrefix)
	if err != nil {
		s.logger.Error("retention sweep failed to list blobs", "error", err)
		return 0
	}

	deleted := 0
	for _, key := range keys {
		created, err := task.ParseID(strings.TrimSuffix(key, "_progress"))
		if err != nil {
			continue
		}
		if now.Sub(created) <= s.maxAge {
			continue
		}

		existed, err := s.store.Delete(ctx, key)
		if err != nil {
			s.logger.Warn("retention sweep failed to delete blob", "key", key, "error", err)
			continue
		}
		if existed {
			deleted++
		}
	}

	if deleted > 0 {
		s.logger.Info("retention sweep removed aged-out blobs",
			"scanned", len(keys),
			"deleted", deleted)
	}
	return deleted
}
