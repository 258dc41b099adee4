package advisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/skillpulse/internal/ai"
	"github.com/amishk599/skillpulse/internal/catalog"
	"github.com/amishk599/skillpulse/internal/gap"
	"github.com/amishk599/skillpulse/internal/market"
	"github.com/amishk599/skillpulse/internal/model"
	"github.com/amishk599/skillpulse/internal/normalize"
	"github.com/amishk599/skillpulse/internal/score"
	"github.com/amishk599/skillpulse/internal/summary"
	"github.com/amishk599/skillpulse/internal/trend"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memCandidates map[int64]model.Candidate

func (m memCandidates) Candidate(_ context.Context, id int64) (model.Candidate, error) {
	c, ok := m[id]
	if !ok {
		return model.Candidate{}, fmt.Errorf("candidate %d: %w", id, model.ErrNotFound)
	}
	return c, nil
}

type brokenCatalog struct{}

func (brokenCatalog) Role(context.Context, string) (model.RoleRequirement, error) {
	return model.RoleRequirement{}, errors.New("catalog offline")
}

func (brokenCatalog) Roles(context.Context) ([]string, error) {
	return nil, errors.New("catalog offline")
}

func f(v float64) *float64 { return &v }

func sampleCandidates() memCandidates {
	return memCandidates{
		1: {ID: 1, Name: "Meera", Skills: []model.RawSkill{
			{Name: "Python", Proficiency: f(4.5)},
			{Name: "SQL", Proficiency: f(4)},
			{Name: "Git", Proficiency: f(3.5)},
			{Name: "Docker", Proficiency: f(3)},
			{Name: "React", Proficiency: f(2)},
			{Name: "Rust", Proficiency: f(1.5)},
		}},
		2: {ID: 2, Name: "Empty"},
	}
}

func newTestService(t *testing.T, roles model.RoleCatalog) *Service {
	t.Helper()
	logger := discardLogger()
	table := market.NewStaticTable(nil)
	demand := market.NewDemandCache(table, 0, logger)
	scorer := score.NewScorer(score.NewEngine(), normalize.New(logger), demand)
	cands := sampleCandidates()

	return New(Deps{
		Candidates: cands,
		Roles:      roles,
		Scorer:     scorer,
		Gaps:       gap.NewAnalyzer(demand, nil),
		Learning:   gap.NewLearningPlanner(demand),
		Trends:     trend.NewSynthesizer(nil, table, trend.Config{}, logger),
		Summaries: summary.NewPipeline(summary.Deps{
			Candidates: cands,
			Client:     ai.NewNopClient(),
			Scorer:     scorer,
		}, logger),
		Demand: demand,
	}, logger)
}

func TestComputeHealthScores(t *testing.T) {
	s := newTestService(t, catalog.Default())

	scores, err := s.ComputeHealthScores(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), scores.CandidateID)
	assert.Equal(t, 6, scores.SkillsAnalyzed)
	assert.Equal(t, model.DataQualityGood, scores.DataQuality)
	for _, v := range []int{scores.SkillsRelevance, scores.MarketAlignment, scores.LearningTrajectory, scores.IndustryDemand, scores.OverallScore} {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}
}

func TestComputeHealthScores_UnknownCandidate(t *testing.T) {
	s := newTestService(t, catalog.Default())

	_, err := s.ComputeHealthScores(context.Background(), 99)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestComputeGapAnalysis_KnownRole(t *testing.T) {
	s := newTestService(t, catalog.Default())

	res, err := s.ComputeGapAnalysis(context.Background(), []string{"git", "SQL", "Docker"}, "software developer")
	require.NoError(t, err)
	assert.True(t, res.RoleFound)
	assert.Equal(t, "Software Developer", res.Role)
	assert.Equal(t, 50, res.OverallMatchScore)

	gaps := make([]string, len(res.CriticalGaps))
	for i, g := range res.CriticalGaps {
		gaps[i] = g.Name
	}
	assert.Equal(t, []string{"JavaScript", "REST APIs"}, gaps)
}

func TestComputeGapAnalysis_UnknownRoleIsEmpty(t *testing.T) {
	s := newTestService(t, catalog.Default())

	res, err := s.ComputeGapAnalysis(context.Background(), []string{"Go"}, "Astronaut")
	require.NoError(t, err)
	assert.False(t, res.RoleFound)
	assert.Equal(t, "Astronaut", res.Role)
	assert.Zero(t, res.OverallMatchScore)
	assert.Empty(t, res.CriticalGaps)
	assert.Empty(t, res.MatchingSkills)
}

func TestComputeGapAnalysis_CatalogFailure(t *testing.T) {
	s := newTestService(t, brokenCatalog{})

	_, err := s.ComputeGapAnalysis(context.Background(), []string{"Go"}, "Backend Developer")
	assert.Error(t, err)
}

func TestGetTrend_Estimated(t *testing.T) {
	s := newTestService(t, catalog.Default())

	series, err := s.GetTrend(context.Background(), "Quantum Basket Weaving", 6)
	require.NoError(t, err)
	assert.Len(t, series.Points, 6)
	assert.Equal(t, model.ProvenanceEstimated, series.Source)
}

func TestGetTrend_InvalidMonths(t *testing.T) {
	s := newTestService(t, catalog.Default())

	_, err := s.GetTrend(context.Background(), "Go", 0)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestGenerateSummary_TemplateWithoutProvider(t *testing.T) {
	s := newTestService(t, catalog.Default())

	res, err := s.GenerateSummary(context.Background(), summary.Request{CandidateID: 1, Context: model.ContextUpskilling})
	require.NoError(t, err)
	assert.Equal(t, model.SourceTemplate, res.Source)
	assert.Equal(t, model.ContextUpskilling, res.Context)
	assert.Equal(t, []string{"Python", "SQL", "Git"}, res.KeyStrengths)
}

func TestRoles(t *testing.T) {
	s := newTestService(t, catalog.Default())

	roles, err := s.Roles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Software Developer", roles[0])
	assert.Len(t, roles, 6)
}

func TestMovers_NoHistory(t *testing.T) {
	s := newTestService(t, catalog.Default())

	_, err := s.Movers(context.Background(), trend.MoversUp, 10, 3)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestReport(t *testing.T) {
	s := newTestService(t, catalog.Default())

	rep, err := s.Report(context.Background(), 1, "Backend Developer")
	require.NoError(t, err)

	assert.Equal(t, "Meera", rep.CandidateName)
	assert.Equal(t, 6, rep.Health.SkillsAnalyzed)
	require.NotNil(t, rep.Gap)
	assert.Equal(t, "Backend Developer", rep.Gap.Role)

	require.Len(t, rep.Trends, ReportTrendSkills)
	assert.Equal(t, "Python", rep.Trends[0].Skill)
	assert.Len(t, rep.Trends[0].Points, ReportTrendMonths)

	require.Len(t, rep.Insights, 6)
	assert.Equal(t, "Python", rep.Insights[0].Skill)
	assert.True(t, rep.Insights[0].Known)
}

func TestReport_NoRoleSkipsGap(t *testing.T) {
	s := newTestService(t, catalog.Default())

	rep, err := s.Report(context.Background(), 2, "")
	require.NoError(t, err)
	assert.Nil(t, rep.Gap)
	assert.Empty(t, rep.Trends)
	assert.Empty(t, rep.Insights)
	assert.Equal(t, model.DataQualityInsufficient, rep.Health.DataQuality)
}

func TestReport_UnknownCandidate(t *testing.T) {
	s := newTestService(t, catalog.Default())

	_, err := s.Report(context.Background(), 404, "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStrongest(t *testing.T) {
	skills := []model.SkillRecord{
		{Name: "a", Proficiency: 2},
		{Name: "", Proficiency: 5},
		{Name: "b", Proficiency: 4},
		{Name: "c", Proficiency: 4},
	}
	got := strongest(skills, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, "c", got[1].Name)
}

func TestEstimateLearning_UsesMarketDemand(t *testing.T) {
	s := newTestService(t, catalog.Default())

	est, err := s.EstimateLearning(context.Background(), "Docker", 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 270, est.EstimatedHours)
	assert.Equal(t, 81.0, est.MarketDemand)
	assert.Equal(t, []string{"Linux"}, est.Prerequisites)

	_, err = s.EstimateLearning(context.Background(), "Docker", 3, 3)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestPrerequisites(t *testing.T) {
	s := newTestService(t, catalog.Default())

	pre, err := s.Prerequisites(context.Background(), "PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, []string{"SQL", "Database fundamentals"}, pre.Prerequisites)
	assert.Equal(t, 79.0, pre.MarketDemand)
}

func TestCategoryTrends_NoHistory(t *testing.T) {
	s := newTestService(t, catalog.Default())

	_, err := s.CategoryTrends(context.Background(), 6)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
