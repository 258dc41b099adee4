package market

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/skillpulse/internal/gap"
	"github.com/amishk599/skillpulse/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingTable struct {
	*StaticTable
	loads int
	err   error
}

func (t *countingTable) MarketData(ctx context.Context) ([]model.MarketEntry, error) {
	t.loads++
	if t.err != nil {
		return nil, t.err
	}
	return t.StaticTable.MarketData(ctx)
}

func TestDemandCache_ReloadsAfterTTL(t *testing.T) {
	table := &countingTable{StaticTable: NewStaticTable(nil)}
	clock := &fakeClock{now: time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)}
	c := NewDemandCacheWithClock(table, clock, time.Hour, discardLogger())
	ctx := context.Background()

	d, ok := c.Demand(ctx, "  python ")
	require.True(t, ok)
	assert.Equal(t, 88.0, d)

	c.Demand(ctx, "React")
	clock.Advance(59 * time.Minute)
	c.Demand(ctx, "Git")
	assert.Equal(t, 1, table.loads)

	clock.Advance(2 * time.Minute)
	c.Demand(ctx, "Git")
	assert.Equal(t, 2, table.loads)

	c.Invalidate()
	c.Demand(ctx, "Git")
	assert.Equal(t, 3, table.loads)
}

func TestDemandCache_LoadFailureIsUnknown(t *testing.T) {
	table := &countingTable{StaticTable: NewStaticTable(nil), err: errors.New("db down")}
	c := NewDemandCache(table, 0, discardLogger())

	_, ok := c.Demand(context.Background(), "Python")
	assert.False(t, ok)
	_, err := c.Snapshot(context.Background())
	assert.Error(t, err)
}

func TestDemandCache_Lookup(t *testing.T) {
	c := NewDemandCache(NewStaticTable(nil), 0, discardLogger())

	info, ok := c.Lookup(context.Background(), "kubernetes")
	require.True(t, ok)
	assert.Equal(t, gap.MarketInfo{Demand: 76, LearningHours: 152}, info)

	_, ok = c.Lookup(context.Background(), "COBOL")
	assert.False(t, ok)
}

func TestDemandCache_LookupPassesSalaryImpact(t *testing.T) {
	impact := 6.5
	table := NewStaticTable([]model.MarketEntry{{Skill: "Kafka", Demand: 80, SalaryImpact: &impact}})
	c := NewDemandCache(table, 0, discardLogger())

	info, ok := c.Lookup(context.Background(), "kafka")
	require.True(t, ok)
	require.NotNil(t, info.SalaryImpact)
	assert.Equal(t, 6.5, *info.SalaryImpact)

	res := gap.NewAnalyzer(c, nil).Analyze(context.Background(), nil, &model.RoleRequirement{
		Name:     "Streaming Engineer",
		Required: []model.SkillRequirement{{Skill: "Kafka", Importance: model.ImportanceHigh, MinProficiency: 3}},
	})
	require.Len(t, res.CriticalGaps, 1)
	assert.Equal(t, 6.5, res.CriticalGaps[0].SalaryImpact)
}

func TestDemandCache_Insight(t *testing.T) {
	c := NewDemandCache(NewStaticTable(nil), 0, discardLogger())

	in := c.Insight(context.Background(), model.SkillRecord{Name: "Python", Proficiency: 4})
	assert.True(t, in.Known)
	assert.Equal(t, 88.0, in.Demand)
	assert.Equal(t, model.TrendRising, in.Trend)
	assert.Equal(t, "Excellent Investment - High demand & strong proficiency", in.Recommendation)
	assert.Equal(t, []string{"Mid-Level", "Senior"}, in.JobLevels)

	unknown := c.Insight(context.Background(), model.SkillRecord{Name: "Elm", Proficiency: 1})
	assert.False(t, unknown.Known)
	assert.Equal(t, DefaultDemand, unknown.Demand)
	assert.Equal(t, []string{"Software Developer"}, unknown.JobRoles)
	assert.Equal(t, "Consider for specialization", unknown.Recommendation)
}

func TestRecommendation(t *testing.T) {
	tests := []struct {
		prof, demand float64
		want         string
	}{
		{3.5, 85, "Excellent Investment - High demand & strong proficiency"},
		{3.4, 85, "Excellent Investment - High market demand"},
		{5, 70, "Good Investment - Solid market demand"},
		{5, 60, "Emerging Opportunity - Growing demand"},
		{5, 59.9, "Consider for specialization"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Recommendation(tt.prof, tt.demand), "prof=%v demand=%v", tt.prof, tt.demand)
	}
}

func TestStaticTable_MarketEntry(t *testing.T) {
	table := NewStaticTable(nil)
	e, err := table.MarketEntry(context.Background(), "rest apis")
	require.NoError(t, err)
	assert.Equal(t, "REST APIs", e.Skill)

	_, err = table.MarketEntry(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
