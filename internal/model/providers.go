package model

import (
	"context"
	"time"
)

// CandidateSource loads a candidate and their raw skills.
// Returns ErrNotFound for an unknown id.
type CandidateSource interface {
	Candidate(ctx context.Context, id int64) (Candidate, error)
}

// RoleCatalog looks up role requirement templates by name (case-insensitive).
type RoleCatalog interface {
	Role(ctx context.Context, name string) (RoleRequirement, error)
	Roles(ctx context.Context) ([]string, error)
}

// MarketTable exposes current demand per skill.
type MarketTable interface {
	MarketData(ctx context.Context) ([]MarketEntry, error)
	MarketEntry(ctx context.Context, skill string) (MarketEntry, error)
}

// HistoryStore returns stored monthly demand. Callers must check
// SupportsHistory before relying on an empty result meaning "no data".
type HistoryStore interface {
	History(ctx context.Context, skill string, since time.Time) ([]HistoryRecord, error)
	HistorySince(ctx context.Context, since time.Time) ([]HistoryRecord, error)
	SupportsHistory() bool
}

// CacheStore holds serialized summaries with a TTL. Expired entries are
// reported as absent.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	SupportsCache() bool
}

// GenerationClient produces text from a system instruction and a prompt.
type GenerationClient interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Available() bool
	Name() string
}

// Notifier receives an event for every served summary request.
type Notifier interface {
	Notify(ctx context.Context, event GenerationEvent) error
}
