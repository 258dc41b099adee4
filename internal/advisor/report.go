package advisor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/skillpulse/internal/gap"
	"github.com/amishk599/skillpulse/internal/market"
	"github.com/amishk599/skillpulse/internal/model"
)

const (
	// ReportTrendSkills is how many of the candidate's strongest skills get
	// a trend series in a report.
	ReportTrendSkills = 5
	// ReportTrendMonths is the length of each report trend series.
	ReportTrendMonths = 12

	reportConcurrency = 4
)

// Report is the combined view of one candidate.
type Report struct {
	CandidateID   int64               `json:"candidate_id"`
	CandidateName string              `json:"candidate_name"`
	Health        model.HealthScores  `json:"health"`
	Gap           *gap.Result         `json:"gap_analysis,omitempty"`
	Trends        []model.TrendSeries `json:"trends"`
	Insights      []market.Insight    `json:"insights"`
	Skills        []model.SkillRecord `json:"skills"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

// Report scores a candidate and, concurrently, runs gap analysis against
// roleName (skipped when empty), trends for the strongest skills and market
// insights for every skill.
func (s *Service) Report(ctx context.Context, candidateID int64, roleName string) (Report, error) {
	c, err := s.deps.Candidates.Candidate(ctx, candidateID)
	if err != nil {
		return Report{}, fmt.Errorf("loading candidate: %w", err)
	}
	scores, skills := s.deps.Scorer.Score(ctx, c)

	rep := Report{
		CandidateID:   c.ID,
		CandidateName: c.Name,
		Health:        scores,
		Skills:        skills,
		Insights:      []market.Insight{},
		GeneratedAt:   time.Now().UTC(),
	}

	top := strongest(skills, ReportTrendSkills)
	rep.Trends = make([]model.TrendSeries, len(top))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)

	if roleName != "" {
		names := make([]string, len(skills))
		for i, sk := range skills {
			names[i] = sk.Name
		}
		g.Go(func() error {
			res, err := s.ComputeGapAnalysis(gCtx, names, roleName)
			if err != nil {
				return fmt.Errorf("gap analysis: %w", err)
			}
			rep.Gap = &res
			return nil
		})
	}

	for i, sk := range top {
		i, sk := i, sk
		g.Go(func() error {
			series, err := s.deps.Trends.GetTrend(gCtx, sk.Name, ReportTrendMonths)
			if err != nil {
				return fmt.Errorf("trend for %s: %w", sk.Name, err)
			}
			rep.Trends[i] = series
			return nil
		})
	}

	if s.deps.Demand != nil {
		insights := make([]market.Insight, len(skills))
		g.Go(func() error {
			for i, sk := range skills {
				insights[i] = s.deps.Demand.Insight(gCtx, sk)
			}
			rep.Insights = insights
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return rep, nil
}

// strongest returns up to n skills by descending proficiency, keeping input
// order among ties. Blank names are skipped.
func strongest(skills []model.SkillRecord, n int) []model.SkillRecord {
	out := make([]model.SkillRecord, 0, len(skills))
	for _, sk := range skills {
		if sk.Name != "" {
			out = append(out, sk)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Proficiency > out[j].Proficiency })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
