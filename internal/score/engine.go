// Package score computes bounded career health metrics from normalized skills.
package score

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
)

const (
	// DefaultScore is returned for every metric when there is nothing to score.
	DefaultScore = 50

	// MinSkillsForAccuracy is the skill count below which results carry a warning.
	MinSkillsForAccuracy = 3

	highDemandThreshold     = 70.0
	industryDemandThreshold = 75.0
	relevanceBonus          = 20.0
	industryBonus           = 10.0
	breadthSaturation       = 20.0
)

// Engine computes health scores. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an Engine stamping results with the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// Compute scores skills for candidateID.
func (e *Engine) Compute(candidateID int64, skills []model.SkillRecord) model.HealthScores {
	relevance := SkillsRelevance(skills)
	alignment := MarketAlignment(skills)
	trajectory := LearningTrajectory(skills)
	industry := IndustryDemand(skills)

	return model.HealthScores{
		CandidateID:        candidateID,
		SkillsRelevance:    relevance,
		MarketAlignment:    alignment,
		LearningTrajectory: trajectory,
		IndustryDemand:     industry,
		OverallScore:       Overall(relevance, alignment, trajectory, industry),
		DataQuality:        Quality(len(skills)),
		SkillsAnalyzed:     len(skills),
		Warning:            Warning(len(skills)),
		CalculatedAt:       e.now().UTC(),
	}
}

// SkillsRelevance weighs proficiency by demand and adds up to 20 points for
// the share of skills with demand above 70.
func SkillsRelevance(skills []model.SkillRecord) int {
	n := float64(len(skills))
	if n == 0 {
		return DefaultScore
	}
	var weighted float64
	var high int
	for _, s := range skills {
		weighted += s.Proficiency * s.MarketDemand / 100
		if s.MarketDemand > highDemandThreshold {
			high++
		}
	}
	base := weighted / (n * 5) * 100
	bonus := float64(high) / n * relevanceBonus
	return bounded(base + bonus)
}

// MarketAlignment is the proficiency-weighted mean demand.
func MarketAlignment(skills []model.SkillRecord) int {
	if len(skills) == 0 {
		return DefaultScore
	}
	var weightedDemand, totalWeight float64
	for _, s := range skills {
		weightedDemand += s.MarketDemand * s.Proficiency
		totalWeight += s.Proficiency
	}
	if totalWeight == 0 {
		return DefaultScore
	}
	return bounded(weightedDemand / totalWeight)
}

// LearningTrajectory is 60% mastery (mean proficiency) and 40% breadth,
// with breadth saturating at 20 skills.
func LearningTrajectory(skills []model.SkillRecord) int {
	n := float64(len(skills))
	if n == 0 {
		return DefaultScore
	}
	var sum float64
	for _, s := range skills {
		sum += s.Proficiency
	}
	mastery := (sum / n / 5) * 60
	breadth := math.Min(n/breadthSaturation, 1) * 40
	return bounded(mastery + breadth)
}

// IndustryDemand is the median demand plus up to 10 points for the share of
// skills with demand above 75.
func IndustryDemand(skills []model.SkillRecord) int {
	n := len(skills)
	if n == 0 {
		return DefaultScore
	}
	demands := make([]float64, n)
	var high int
	for i, s := range skills {
		demands[i] = s.MarketDemand
		if s.MarketDemand > industryDemandThreshold {
			high++
		}
	}
	return bounded(median(demands) + float64(high)/float64(n)*industryBonus)
}

// Overall is the mean of the four sub-scores rounded to the nearest integer.
func Overall(relevance, alignment, trajectory, industry int) int {
	mean := float64(relevance+alignment+trajectory+industry) / 4
	return int(math.Round(mean))
}

// Quality grades a skill count.
func Quality(n int) model.DataQuality {
	switch {
	case n >= 10:
		return model.DataQualityExcellent
	case n >= 5:
		return model.DataQualityGood
	case n >= MinSkillsForAccuracy:
		return model.DataQualityFair
	case n > 0:
		return model.DataQualityLimited
	default:
		return model.DataQualityInsufficient
	}
}

// Warning explains low-confidence results; empty when there are enough skills.
func Warning(n int) string {
	switch {
	case n == 0:
		return "No skills found. Metrics are based on default values."
	case n < MinSkillsForAccuracy:
		return fmt.Sprintf("Analysis based on only %d skill(s). Add more skills for accurate metrics.", n)
	}
	return ""
}

// bounded truncates toward zero and clamps to [0,100]. NaN maps to the default.
func bounded(v float64) int {
	if math.IsNaN(v) {
		return DefaultScore
	}
	i := int(v)
	if i < 0 {
		return 0
	}
	if i > 100 {
		return 100
	}
	return i
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
