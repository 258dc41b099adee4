// Package market caches the skill demand table and derives per-skill
// investment advice from it.
package market

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amishk599/skillpulse/internal/gap"
	"github.com/amishk599/skillpulse/internal/model"
)

// DefaultTTL is how long a loaded demand table is served before reloading.
const DefaultTTL = time.Hour

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// DemandCache is a single-slot cache of the whole market table keyed by
// lowercase skill name. The slot is reloaded wholesale once it is older than
// the TTL.
type DemandCache struct {
	table  model.MarketTable
	clock  Clock
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.RWMutex
	entries  map[string]model.MarketEntry
	loadedAt time.Time
}

// NewDemandCache wraps table. A zero ttl uses DefaultTTL.
func NewDemandCache(table model.MarketTable, ttl time.Duration, logger *slog.Logger) *DemandCache {
	return NewDemandCacheWithClock(table, realClock{}, ttl, logger)
}

// NewDemandCacheWithClock creates a DemandCache with a custom clock (for testing).
func NewDemandCacheWithClock(table model.MarketTable, clock Clock, ttl time.Duration, logger *slog.Logger) *DemandCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DemandCache{table: table, clock: clock, ttl: ttl, logger: logger}
}

// Snapshot returns the cached table, loading it first if the slot is empty
// or stale. The returned map must not be modified.
func (c *DemandCache) Snapshot(ctx context.Context) (map[string]model.MarketEntry, error) {
	c.mu.RLock()
	if c.entries != nil && c.clock.Now().Before(c.loadedAt.Add(c.ttl)) {
		entries := c.entries
		c.mu.RUnlock()
		return entries, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries != nil && c.clock.Now().Before(c.loadedAt.Add(c.ttl)) {
		return c.entries, nil
	}

	rows, err := c.table.MarketData(ctx)
	if err != nil {
		return nil, fmt.Errorf("load market data: %w", err)
	}
	entries := make(map[string]model.MarketEntry, len(rows))
	for _, e := range rows {
		entries[strings.ToLower(e.Skill)] = e
	}
	c.entries = entries
	c.loadedAt = c.clock.Now()
	c.logger.Debug("market demand cache loaded", "skills", len(entries))
	return entries, nil
}

// Invalidate drops the cached table.
func (c *DemandCache) Invalidate() {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
}

// Entry returns the market entry for skill (case-insensitive). A load
// failure is logged and reported as unknown.
func (c *DemandCache) Entry(ctx context.Context, skill string) (model.MarketEntry, bool) {
	entries, err := c.Snapshot(ctx)
	if err != nil {
		c.logger.Warn("market data unavailable", "error", err)
		return model.MarketEntry{}, false
	}
	e, ok := entries[strings.ToLower(strings.TrimSpace(skill))]
	return e, ok
}

// Demand returns the current demand score of skill.
func (c *DemandCache) Demand(ctx context.Context, skill string) (float64, bool) {
	e, ok := c.Entry(ctx, skill)
	return e.Demand, ok
}

// Lookup resolves gap analysis inputs for skill. Learning hours are
// estimated from demand; a stored salary impact is passed through and the
// analyzer estimates one otherwise.
func (c *DemandCache) Lookup(ctx context.Context, skill string) (gap.MarketInfo, bool) {
	e, ok := c.Entry(ctx, skill)
	if !ok {
		return gap.MarketInfo{}, false
	}
	return gap.MarketInfo{
		Demand:        e.Demand,
		SalaryImpact:  e.SalaryImpact,
		LearningHours: gap.LearningHours(e.Demand),
	}, true
}
