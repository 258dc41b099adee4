package trend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/skillpulse/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2025, time.November, 15, 10, 0, 0, 0, time.UTC)

type mockHistory struct {
	records   []model.HistoryRecord
	supported bool
	err       error
}

func (m *mockHistory) History(_ context.Context, skill string, since time.Time) ([]model.HistoryRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.HistoryRecord
	for _, r := range m.records {
		if strings.EqualFold(r.Skill, skill) && !r.Month.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockHistory) HistorySince(_ context.Context, since time.Time) ([]model.HistoryRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.HistoryRecord
	for _, r := range m.records {
		if !r.Month.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockHistory) SupportsHistory() bool { return m.supported }

type mockMarket map[string]model.MarketEntry

func (m mockMarket) MarketData(_ context.Context) ([]model.MarketEntry, error) {
	out := make([]model.MarketEntry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	return out, nil
}

func (m mockMarket) MarketEntry(_ context.Context, skill string) (model.MarketEntry, error) {
	e, ok := m[strings.ToLower(skill)]
	if !ok {
		return model.MarketEntry{}, model.ErrNotFound
	}
	return e, nil
}

func month(offset int) time.Time {
	return model.MonthStart(fixedNow).AddDate(0, offset, 0)
}

func series(skill string, values ...float64) []model.HistoryRecord {
	out := make([]model.HistoryRecord, len(values))
	for i, v := range values {
		out[i] = model.HistoryRecord{Skill: skill, Month: month(i - (len(values) - 1)), Demand: v}
	}
	return out
}

func newTestSynthesizer(h model.HistoryStore, m model.MarketTable) *Synthesizer {
	s := NewSynthesizer(h, m, Config{}, discardLogger())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestGetTrend_SyntheticShapeAndBounds(t *testing.T) {
	s := newTestSynthesizer(nil, nil)

	for _, skill := range []string{"Kubernetes", "jQuery", "Excel", "Git", "COBOL"} {
		for months := 1; months <= MaxMonths; months++ {
			got, err := s.GetTrend(context.Background(), skill, months)
			require.NoError(t, err)
			require.Len(t, got.Points, months)
			assert.Equal(t, model.ProvenanceEstimated, got.Source)
			assert.Equal(t, months, got.EstimatedPoints)
			for _, p := range got.Points {
				assert.True(t, p.Estimated)
				assert.GreaterOrEqual(t, p.Demand, 30.0, "%s/%d", skill, months)
				assert.LessOrEqual(t, p.Demand, 100.0, "%s/%d", skill, months)
			}
			assert.Equal(t, model.MonthStart(fixedNow), got.Points[months-1].Month)
		}
	}
}

func TestGetTrend_RisingIsNonDecreasing(t *testing.T) {
	s := newTestSynthesizer(nil, nil)

	got, err := s.GetTrend(context.Background(), "kubernetes", 6)
	require.NoError(t, err)

	assert.Equal(t, model.TrendRising, got.Direction)
	assert.Equal(t, []float64{78, 79, 80, 80, 81, 82}, got.Values())
	for i := 1; i < len(got.Points); i++ {
		assert.GreaterOrEqual(t, got.Points[i].Demand, got.Points[i-1].Demand)
	}
	assert.Equal(t, 5.1, got.PercentChange)
	assert.Equal(t, 82.0, got.CurrentDemand)
}

func TestGetTrend_DecliningAndStablePatterns(t *testing.T) {
	s := newTestSynthesizer(nil, nil)

	declining, err := s.GetTrend(context.Background(), "Angular", 4)
	require.NoError(t, err)
	// 65, 64.5, 64, 63.5 rounded half to even
	assert.Equal(t, []float64{65, 64, 64, 64}, declining.Values())
	assert.Equal(t, model.TrendDeclining, declining.Direction)

	stable, err := s.GetTrend(context.Background(), "Excel", 6)
	require.NoError(t, err)
	assert.Equal(t, []float64{69, 70, 71, 69, 70, 71}, stable.Values())
	assert.Equal(t, model.TrendStable, stable.Direction)
}

func TestGetTrend_BaseDemandOverride(t *testing.T) {
	s := NewSynthesizer(nil, nil, Config{BaseDemand: map[string]float64{"Rust": 99}}, discardLogger())

	got, err := s.GetTrend(context.Background(), "rust", 12)
	require.NoError(t, err)

	assert.Equal(t, 99.0, got.Points[0].Demand)
	assert.Equal(t, 100.0, got.Points[11].Demand, "clamped at 100")
}

func TestGetTrend_HistoricalFull(t *testing.T) {
	h := &mockHistory{supported: true, records: series("Python", 80, 82, 84, 90)}
	s := newTestSynthesizer(h, nil)

	got, err := s.GetTrend(context.Background(), "python", 4)
	require.NoError(t, err)

	assert.Equal(t, model.ProvenanceHistorical, got.Source)
	assert.Equal(t, 0, got.EstimatedPoints)
	assert.Equal(t, []float64{80, 82, 84, 90}, got.Values())
	assert.Equal(t, 12.5, got.PercentChange)
	assert.Equal(t, model.TrendRising, got.Direction)
	assert.Equal(t, 90.0, got.CurrentDemand)
	for _, p := range got.Points {
		assert.False(t, p.Estimated)
	}
}

func TestGetTrend_HistoricalPaddedIsMixed(t *testing.T) {
	h := &mockHistory{supported: true, records: series("Go", 31, 40)}
	s := newTestSynthesizer(h, nil)

	got, err := s.GetTrend(context.Background(), "Go", 5)
	require.NoError(t, err)

	assert.Equal(t, model.ProvenanceMixed, got.Source)
	assert.Equal(t, 3, got.EstimatedPoints)
	assert.Equal(t, []float64{30, 30, 30, 31, 40}, got.Values())
	assert.Equal(t, []bool{true, true, true, false, false}, []bool{
		got.Points[0].Estimated, got.Points[1].Estimated, got.Points[2].Estimated,
		got.Points[3].Estimated, got.Points[4].Estimated,
	})
	assert.Equal(t, month(-4), got.Points[0].Month)
}

func TestGetTrend_HistoryUnsupportedOrFailingFallsBack(t *testing.T) {
	tests := []struct {
		name string
		h    *mockHistory
	}{
		{name: "unsupported", h: &mockHistory{supported: false, records: series("Python", 80, 81)}},
		{name: "error", h: &mockHistory{supported: true, err: errors.New("disk gone")}},
		{name: "empty", h: &mockHistory{supported: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestSynthesizer(tt.h, nil).GetTrend(context.Background(), "Python", 6)
			require.NoError(t, err)
			assert.Equal(t, model.ProvenanceEstimated, got.Source)
		})
	}
}

func TestGetTrend_InvalidArguments(t *testing.T) {
	s := newTestSynthesizer(nil, nil)

	for _, months := range []int{0, -1, 25} {
		_, err := s.GetTrend(context.Background(), "Go", months)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	}
	_, err := s.GetTrend(context.Background(), "  ", 6)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestPercentChangeAndDirection(t *testing.T) {
	assert.Equal(t, 0.0, PercentChange(0, 50))
	assert.InDelta(t, -10, PercentChange(50, 45), 1e-9)
	assert.Equal(t, model.TrendRising, Direction(5.1))
	assert.Equal(t, model.TrendStable, Direction(5))
	assert.Equal(t, model.TrendStable, Direction(-5))
	assert.Equal(t, model.TrendDeclining, Direction(-5.1))
}

func TestMonthLabels(t *testing.T) {
	assert.Equal(t, []string{"Aug", "Sep", "Oct", "Nov"}, MonthLabels(fixedNow, 4))
	jan := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"Nov", "Dec", "Jan"}, MonthLabels(jan, 3))
}
