// Package refresh holds the periodic maintenance jobs run by the scheduler.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
	"github.com/amishk599/skillpulse/internal/scheduler"
)

// Snapshotter copies the current market table into the trend history.
type Snapshotter interface {
	SnapshotHistory(ctx context.Context, month time.Time) (int64, error)
}

// Purger deletes expired summary cache entries.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Invalidator drops a cached copy of the market table.
type Invalidator interface {
	Invalidate()
}

// HistorySnapshot records the market table under the current month so the
// trend history grows by one point per month.
type HistorySnapshot struct {
	store  Snapshotter
	now    func() time.Time
	logger *slog.Logger
}

func NewHistorySnapshot(store Snapshotter, logger *slog.Logger) *HistorySnapshot {
	return &HistorySnapshot{store: store, now: time.Now, logger: logger}
}

func (j *HistorySnapshot) Name() string { return "history-snapshot" }

func (j *HistorySnapshot) Run(ctx context.Context) error {
	month := model.MonthStart(j.now())
	n, err := j.store.SnapshotHistory(ctx, month)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", month.Format("2006-01"), err)
	}
	j.logger.Info("trend history snapshot", "month", month.Format("2006-01"), "skills", n)
	return nil
}

// CachePurge removes expired summaries.
type CachePurge struct {
	store  Purger
	logger *slog.Logger
}

func NewCachePurge(store Purger, logger *slog.Logger) *CachePurge {
	return &CachePurge{store: store, logger: logger}
}

func (j *CachePurge) Name() string { return "cache-purge" }

func (j *CachePurge) Run(ctx context.Context) error {
	n, err := j.store.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		j.logger.Info("purged expired summaries", "count", n)
	}
	return nil
}

// DemandReload drops the in-memory demand table so the next read sees the
// latest market data.
type DemandReload struct {
	cache Invalidator
}

func NewDemandReload(cache Invalidator) *DemandReload {
	return &DemandReload{cache: cache}
}

func (j *DemandReload) Name() string { return "demand-reload" }

func (j *DemandReload) Run(context.Context) error {
	j.cache.Invalidate()
	return nil
}

// Store is what the default job set needs from storage.
type Store interface {
	Snapshotter
	Purger
}

// Jobs returns the default maintenance jobs in run order.
func Jobs(store Store, cache Invalidator, logger *slog.Logger) []scheduler.Job {
	return []scheduler.Job{
		NewHistorySnapshot(store, logger),
		NewCachePurge(store, logger),
		NewDemandReload(cache),
	}
}
