// Package advisor composes scoring, gap analysis, trends and summaries into
// the operations exposed by the HTTP, MCP and CLI surfaces.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/skillpulse/internal/gap"
	"github.com/amishk599/skillpulse/internal/market"
	"github.com/amishk599/skillpulse/internal/model"
	"github.com/amishk599/skillpulse/internal/score"
	"github.com/amishk599/skillpulse/internal/summary"
	"github.com/amishk599/skillpulse/internal/trend"
)

// Deps are the collaborators of a Service. Demand may be nil, in which case
// reports carry no market insights.
type Deps struct {
	Candidates model.CandidateSource
	Roles      model.RoleCatalog
	Scorer     *score.Scorer
	Gaps       *gap.Analyzer
	Learning   *gap.LearningPlanner
	Trends     *trend.Synthesizer
	Summaries  *summary.Pipeline
	Demand     *market.DemandCache
}

// Service is the application facade.
type Service struct {
	deps   Deps
	logger *slog.Logger
}

// New returns a Service.
func New(deps Deps, logger *slog.Logger) *Service {
	return &Service{deps: deps, logger: logger}
}

// ComputeHealthScores scores a stored candidate. ErrNotFound is returned for
// an unknown id.
func (s *Service) ComputeHealthScores(ctx context.Context, candidateID int64) (model.HealthScores, error) {
	c, err := s.deps.Candidates.Candidate(ctx, candidateID)
	if err != nil {
		return model.HealthScores{}, fmt.Errorf("loading candidate: %w", err)
	}
	scores, _ := s.deps.Scorer.Score(ctx, c)
	return scores, nil
}

// ComputeGapAnalysis diffs skill names against a role template. An unknown
// role is not an error: it yields an empty result with RoleFound false.
func (s *Service) ComputeGapAnalysis(ctx context.Context, candidateSkills []string, roleName string) (gap.Result, error) {
	role, err := s.role(ctx, roleName)
	if err != nil {
		return gap.Result{}, err
	}
	res := s.deps.Gaps.Analyze(ctx, candidateSkills, role)
	if role == nil {
		res.Role = strings.TrimSpace(roleName)
	}
	return res, nil
}

func (s *Service) role(ctx context.Context, name string) (*model.RoleRequirement, error) {
	r, err := s.deps.Roles.Role(ctx, name)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Debug("role not in catalog", "role", name)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading role %q: %w", name, err)
	}
	return &r, nil
}

// GetTrend returns a monthly demand series for one skill.
func (s *Service) GetTrend(ctx context.Context, skill string, months int) (model.TrendSeries, error) {
	return s.deps.Trends.GetTrend(ctx, skill, months)
}

// GenerateSummary runs the summary pipeline. The only error surfaced for a
// valid request is ErrNotFound for an unknown candidate.
func (s *Service) GenerateSummary(ctx context.Context, req summary.Request) (model.SummaryResult, error) {
	return s.deps.Summaries.Generate(ctx, req)
}

// MarketTrends returns series for several skills at once.
func (s *Service) MarketTrends(ctx context.Context, skills []string, months int) (trend.MarketTrends, error) {
	return s.deps.Trends.MarketTrends(ctx, skills, months)
}

// CompareTrends compares the stored history of several skills.
func (s *Service) CompareTrends(ctx context.Context, skills []string, months int) (trend.CompareResult, error) {
	return s.deps.Trends.Compare(ctx, skills, months)
}

// Movers ranks the skills that moved most over the last period months.
func (s *Service) Movers(ctx context.Context, direction trend.MoverDirection, limit, period int) (trend.MoversResult, error) {
	return s.deps.Trends.Movers(ctx, direction, limit, period)
}

// CategoryTrends summarizes stored history by market category.
func (s *Service) CategoryTrends(ctx context.Context, months int) (trend.CategoryTrendsResult, error) {
	return s.deps.Trends.CategoryTrends(ctx, months)
}

// EstimateLearning estimates the study time to raise skill from current to
// target proficiency.
func (s *Service) EstimateLearning(ctx context.Context, skill string, current, target int) (gap.LearningEstimate, error) {
	return s.deps.Learning.Estimate(ctx, skill, current, target)
}

// Prerequisites reports what skill builds on.
func (s *Service) Prerequisites(ctx context.Context, skill string) (gap.SkillPrerequisites, error) {
	return s.deps.Learning.Prerequisites(ctx, skill)
}

// Roles lists the role names known to the catalog.
func (s *Service) Roles(ctx context.Context) ([]string, error) {
	return s.deps.Roles.Roles(ctx)
}
