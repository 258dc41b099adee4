package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/amishk599/skillpulse/internal/advisor"
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

func f(v float64) *float64 { return &v }

func newTestAdvisor(t *testing.T) *advisor.Service {
	t.Helper()
	logger := discardLogger()
	table := market.NewStaticTable(nil)
	demand := market.NewDemandCache(table, 0, logger)
	scorer := score.NewScorer(score.NewEngine(), normalize.New(logger), demand)
	cands := memCandidates{
		7: {ID: 7, Name: "Kiran", Skills: []model.RawSkill{
			{Name: "Python", Proficiency: f(4)},
			{Name: "SQL", Proficiency: f(4.5)},
			{Name: "Docker", Proficiency: f(3)},
			{Name: "Git", Proficiency: f(3.5)},
		}},
	}

	return advisor.New(advisor.Deps{
		Candidates: cands,
		Roles:      catalog.Default(),
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

// failingAdvisor serves everything from a real service except Roles.
type failingAdvisor struct {
	*advisor.Service
}

func (failingAdvisor) Roles(context.Context) ([]string, error) {
	return nil, errors.New("catalog offline")
}
