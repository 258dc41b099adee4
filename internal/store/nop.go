package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
)

// ErrStorageDisabled is returned by NopStore writes.
var ErrStorageDisabled = errors.New("storage disabled")

// NopStore is used when storage.driver is "none". It knows no candidates,
// reports no history or cache support and rejects writes. Market data comes
// from the wrapped table, which may be nil.
type NopStore struct {
	market model.MarketTable
}

func NewNopStore(market model.MarketTable) *NopStore { return &NopStore{market: market} }

func (s *NopStore) Candidate(_ context.Context, id int64) (model.Candidate, error) {
	return model.Candidate{}, fmt.Errorf("candidate %d: %w", id, model.ErrNotFound)
}

func (s *NopStore) MarketData(ctx context.Context) ([]model.MarketEntry, error) {
	if s.market == nil {
		return nil, nil
	}
	return s.market.MarketData(ctx)
}

func (s *NopStore) MarketEntry(ctx context.Context, skill string) (model.MarketEntry, error) {
	if s.market == nil {
		return model.MarketEntry{}, model.ErrNotFound
	}
	return s.market.MarketEntry(ctx, skill)
}

func (s *NopStore) SupportsHistory() bool { return false }

func (s *NopStore) History(context.Context, string, time.Time) ([]model.HistoryRecord, error) {
	return nil, nil
}

func (s *NopStore) HistorySince(context.Context, time.Time) ([]model.HistoryRecord, error) {
	return nil, nil
}

func (s *NopStore) SupportsCache() bool { return false }

func (s *NopStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NopStore) Put(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (s *NopStore) Delete(context.Context, string) error {
	return nil
}

func (s *NopStore) SaveCandidate(context.Context, model.Candidate) error {
	return ErrStorageDisabled
}

func (s *NopStore) UpsertMarket(context.Context, []model.MarketEntry) error {
	return ErrStorageDisabled
}

func (s *NopStore) RecordHistory(context.Context, []model.HistoryRecord) error {
	return ErrStorageDisabled
}

func (s *NopStore) SnapshotHistory(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *NopStore) PurgeExpired(context.Context) (int64, error) {
	return 0, nil
}

func (s *NopStore) Close() error { return nil }
