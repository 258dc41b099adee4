package score

import (
	"context"

	"github.com/amishk599/skillpulse/internal/model"
	"github.com/amishk599/skillpulse/internal/normalize"
)

// DemandSource supplies current market demand for skills stored without one.
type DemandSource interface {
	Demand(ctx context.Context, skill string) (float64, bool)
}

// Scorer turns a stored candidate into health scores.
type Scorer struct {
	engine *Engine
	norm   *normalize.Normalizer
	demand DemandSource
}

// NewScorer wires the engine to a normalizer. demand may be nil.
func NewScorer(engine *Engine, norm *normalize.Normalizer, demand DemandSource) *Scorer {
	return &Scorer{engine: engine, norm: norm, demand: demand}
}

// Score normalizes the candidate's skills, filling absent demand from the
// market table, and returns both the scores and the normalized skills.
func (s *Scorer) Score(ctx context.Context, c model.Candidate) (model.HealthScores, []model.SkillRecord) {
	raws := make([]model.RawSkill, len(c.Skills))
	copy(raws, c.Skills)
	if s.demand != nil {
		for i := range raws {
			if raws[i].MarketDemand != nil {
				continue
			}
			if d, ok := s.demand.Demand(ctx, raws[i].Name); ok {
				raws[i].MarketDemand = &d
			}
		}
	}
	skills := s.norm.Skills(raws)
	return s.engine.Compute(c.ID, skills), skills
}
