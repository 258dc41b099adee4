// Package store persists candidates, market data, trend history and cached
// summaries.
package store

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Writer loads data into a store.
type Writer interface {
	SaveCandidate(ctx context.Context, c model.Candidate) error
	UpsertMarket(ctx context.Context, entries []model.MarketEntry) error
	RecordHistory(ctx context.Context, records []model.HistoryRecord) error
}

// Store is the full persistence surface used by the service.
type Store interface {
	model.CandidateSource
	model.MarketTable
	model.HistoryStore
	model.CacheStore
	Writer

	// SnapshotHistory copies the current market table into the trend history
	// under month, replacing any existing values for that month.
	SnapshotHistory(ctx context.Context, month time.Time) (int64, error)
	// PurgeExpired deletes expired summary cache entries.
	PurgeExpired(ctx context.Context) (int64, error)
	Close() error
}

type migration struct {
	version int
	name    string
	sql     string
}

// migrations returns the embedded migrations for dialect in ascending order.
func migrations(dialect string) ([]migration, error) {
	dir := "migrations/" + dialect
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var out []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return nil, fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}
		content, err := migrationsFS.ReadFile(dir + "/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		out = append(out, migration{version: version, name: entry.Name(), sql: string(content)})
	}
	return out, nil
}

func skillKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

const monthLayout = "2006-01-02"

func monthKey(t time.Time) string {
	return model.MonthStart(t).Format(monthLayout)
}
