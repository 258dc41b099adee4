// Package trend builds monthly demand series for skills. Stored history is
// preferred; when none exists a deterministic estimate is synthesized from
// keyword heuristics, and every point says which of the two it is.
package trend

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/amishk599/skillpulse/internal/filter"
	"github.com/amishk599/skillpulse/internal/model"
)

const (
	// MaxMonths bounds every series request.
	MaxMonths = 24

	defaultBaseDemand = 70.0
	minSynthetic      = 30.0
	maxSynthetic      = 100.0
	paddingStep       = 2.0
	risingStep        = 0.8
	decliningStep     = 0.5
	directionBand     = 5.0
)

// DefaultBaseDemand is the starting demand of a synthetic series, keyed by
// lowercase skill name. Unlisted skills start at 70.
var DefaultBaseDemand = map[string]float64{
	"react": 87, "typescript": 82, "python": 85, "javascript": 90,
	"node.js": 80, "nodejs": 80, "docker": 75, "kubernetes": 78,
	"aws": 88, "java": 82, "postgresql": 79, "mongodb": 76,
	"redis": 73, "graphql": 70, "vue": 68, "angular": 65,
	"rust": 72, "go": 75, "terraform": 74, "ci/cd": 76,
	"system design": 80, "microservices": 77, "cloud": 82,
	"devops": 80, "machine learning": 75, "sql": 85,
	"git": 95, "linux": 88, "api": 85, "rest": 84,
}

// Config holds the data tables that drive synthetic series.
type Config struct {
	// BaseDemand overrides entries of DefaultBaseDemand.
	BaseDemand map[string]float64
	// Classifier labels skills rising, declining or stable. Nil uses the
	// built-in keyword lists.
	Classifier *filter.Classifier
}

// Synthesizer produces trend series. history and market may be nil.
type Synthesizer struct {
	history    model.HistoryStore
	market     model.MarketTable
	classifier *filter.Classifier
	baseDemand map[string]float64
	logger     *slog.Logger
	now        func() time.Time
}

// NewSynthesizer creates a Synthesizer over the given stores.
func NewSynthesizer(history model.HistoryStore, market model.MarketTable, cfg Config, logger *slog.Logger) *Synthesizer {
	base := make(map[string]float64, len(DefaultBaseDemand)+len(cfg.BaseDemand))
	for k, v := range DefaultBaseDemand {
		base[k] = v
	}
	for k, v := range cfg.BaseDemand {
		base[strings.ToLower(strings.TrimSpace(k))] = v
	}
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = filter.NewClassifier(
			filter.TrendRules(filter.DefaultRisingKeywords, filter.DefaultDecliningKeywords),
			filter.LabelStable,
		)
	}
	return &Synthesizer{
		history:    history,
		market:     market,
		classifier: classifier,
		baseDemand: base,
		logger:     logger,
		now:        time.Now,
	}
}

// GetTrend returns a months-long series for skill, oldest first. Unknown
// skills get an estimated series; only an out-of-range months is an error.
func (s *Synthesizer) GetTrend(ctx context.Context, skill string, months int) (model.TrendSeries, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return model.TrendSeries{}, model.InvalidArgumentf("skill name is required")
	}
	if months < 1 || months > MaxMonths {
		return model.TrendSeries{}, model.InvalidArgumentf("months must be between 1 and %d, got %d", MaxMonths, months)
	}

	if series, ok := s.historical(ctx, skill, months); ok {
		return series, nil
	}
	return s.Synthetic(skill, months), nil
}

// historical reads stored records. ok is false when there are none or the
// store cannot be read, in which case the caller estimates instead.
func (s *Synthesizer) historical(ctx context.Context, skill string, months int) (model.TrendSeries, bool) {
	if s.history == nil || !s.history.SupportsHistory() {
		return model.TrendSeries{}, false
	}
	since := MonthsBack(s.now(), months)
	records, err := s.history.History(ctx, skill, since)
	if err != nil {
		s.logger.Warn("reading trend history failed, estimating instead", "skill", skill, "error", err)
		return model.TrendSeries{}, false
	}
	if len(records) == 0 {
		s.logger.Debug("no trend history", "skill", skill)
		return model.TrendSeries{}, false
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Month.Before(records[j].Month) })
	if len(records) > months {
		records = records[len(records)-months:]
	}

	points := make([]model.TrendPoint, 0, months)
	for _, r := range records {
		points = append(points, model.TrendPoint{Month: model.MonthStart(r.Month), Demand: r.Demand})
	}
	padded := 0
	for len(points) < months {
		earliest := points[0]
		points = append([]model.TrendPoint{{
			Month:     earliest.Month.AddDate(0, -1, 0),
			Demand:    math.Max(minSynthetic, earliest.Demand-paddingStep),
			Estimated: true,
		}}, points...)
		padded++
	}

	series := model.TrendSeries{
		Skill:           skill,
		Points:          points,
		Source:          model.ProvenanceHistorical,
		EstimatedPoints: padded,
	}
	if padded > 0 {
		series.Source = model.ProvenanceMixed
	}
	first, last := points[0].Demand, points[len(points)-1].Demand
	pct := PercentChange(first, last)
	series.PercentChange = round(pct, 1)
	series.Direction = Direction(pct)
	series.CurrentDemand = last
	return series, true
}

// Synthetic builds an estimated series from the base-demand table and the
// keyword classification of skill. Every point lies in [30,100].
func (s *Synthesizer) Synthetic(skill string, months int) model.TrendSeries {
	base, ok := s.baseDemand[strings.ToLower(skill)]
	if !ok {
		base = defaultBaseDemand
	}
	direction := s.Classify(skill)

	labels := MonthsEnding(s.now(), months)
	points := make([]model.TrendPoint, months)
	for i := range points {
		v := pattern(direction, base, i)
		points[i] = model.TrendPoint{
			Month:     labels[i],
			Demand:    math.RoundToEven(math.Max(minSynthetic, math.Min(maxSynthetic, v))),
			Estimated: true,
		}
	}

	first, last := points[0].Demand, points[months-1].Demand
	return model.TrendSeries{
		Skill:           skill,
		Points:          points,
		Source:          model.ProvenanceEstimated,
		Direction:       direction,
		PercentChange:   round(PercentChange(first, last), 1),
		CurrentDemand:   last,
		EstimatedPoints: months,
	}
}

// Classify labels skill with the configured keyword tables.
func (s *Synthesizer) Classify(skill string) model.TrendDirection {
	switch s.classifier.Classify(skill) {
	case filter.LabelRising:
		return model.TrendRising
	case filter.LabelDeclining:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

// pattern is the unclamped synthetic value for month index i.
func pattern(direction model.TrendDirection, base float64, i int) float64 {
	switch direction {
	case model.TrendRising:
		return base + float64(i)*risingStep
	case model.TrendDeclining:
		return base - float64(i)*decliningStep
	case model.TrendStable:
		return base + float64(i%3-1)
	}
	return base
}

// PercentChange is (last-first)/first*100, or 0 when first is 0.
func PercentChange(first, last float64) float64 {
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}

// Direction labels a percent change: above +5 rising, below -5 declining.
func Direction(percentChange float64) model.TrendDirection {
	switch {
	case percentChange > directionBand:
		return model.TrendRising
	case percentChange < -directionBand:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

// MonthsEnding returns the first-of-month dates of the n months ending with
// the month containing now, oldest first.
func MonthsEnding(now time.Time, n int) []time.Time {
	current := model.MonthStart(now)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = current.AddDate(0, i-(n-1), 0)
	}
	return out
}

// MonthsBack returns the first day of the month n-1 months before now, the
// oldest month of an n-month window.
func MonthsBack(now time.Time, n int) time.Time {
	return model.MonthStart(now).AddDate(0, -(n - 1), 0)
}

// MonthLabels returns short month names ("Jan") for the n months ending now.
func MonthLabels(now time.Time, n int) []string {
	months := MonthsEnding(now, n)
	out := make([]string, n)
	for i, m := range months {
		out[i] = m.Format("Jan")
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
