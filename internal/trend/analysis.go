package trend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/amishk599/skillpulse/internal/model"
)

// Limits for the multi-skill operations.
const (
	MaxSkills          = 10
	MinMarketMonths    = 6
	MaxMoverLimit      = 50
	MaxMoverPeriod     = 12
	DefaultMoverLimit  = 20
	DefaultMoverPeriod = 3
)

// MarketTrends is the result of a multi-skill trend request.
type MarketTrends struct {
	Skills         []model.TrendSeries `json:"skills"`
	Months         []string            `json:"months"`
	PeriodMonths   int                 `json:"data_period_months"`
	SkillsAnalyzed int                 `json:"skills_analyzed"`
	Warning        string              `json:"warning,omitempty"`
}

// MarketTrends returns a series per skill. Skills are trimmed, deduplicated
// case-insensitively keeping the first spelling, and capped at 10; months
// must be in [6,24].
func (s *Synthesizer) MarketTrends(ctx context.Context, skills []string, months int) (MarketTrends, error) {
	if months < MinMarketMonths || months > MaxMonths {
		return MarketTrends{}, model.InvalidArgumentf("months must be between %d and %d, got %d", MinMarketMonths, MaxMonths, months)
	}
	names := dedupe(skills)
	if len(names) == 0 {
		return MarketTrends{}, model.InvalidArgumentf("no valid skills provided")
	}
	if len(names) > MaxSkills {
		s.logger.Warn("too many skills requested, truncating", "requested", len(names), "limit", MaxSkills)
		names = names[:MaxSkills]
	}

	out := MarketTrends{
		Skills:         make([]model.TrendSeries, 0, len(names)),
		Months:         MonthLabels(s.now(), months),
		PeriodMonths:   months,
		SkillsAnalyzed: len(names),
	}
	var estimated []string
	for _, name := range names {
		series, err := s.GetTrend(ctx, name, months)
		if err != nil {
			return MarketTrends{}, err
		}
		if series.Source == model.ProvenanceEstimated {
			estimated = append(estimated, name)
		}
		out.Skills = append(out.Skills, series)
	}
	if len(estimated) > 0 {
		out.Warning = fmt.Sprintf("No historical data for: %s. Using estimated trends.", strings.Join(estimated, ", "))
	}
	return out, nil
}

// SkillHistory is one skill's stored history with statistics.
type SkillHistory struct {
	Skill         string                `json:"skill_name"`
	CurrentDemand float64               `json:"current_demand"`
	Trend         model.TrendDirection  `json:"trend"`
	History       []model.HistoryRecord `json:"history"`
	Statistics    Stats                 `json:"statistics"`
}

// Comparison names the standout skills of a comparison.
type Comparison struct {
	Winner         string `json:"winner,omitempty"`
	HighestGrowth  string `json:"highest_growth,omitempty"`
	MostStable     string `json:"most_stable,omitempty"`
	HighestDecline string `json:"highest_decline,omitempty"`
}

// CompareResult holds the compared skills and the standouts among them.
type CompareResult struct {
	Skills     []SkillHistory `json:"skills"`
	Comparison Comparison     `json:"comparison"`
}

// Compare reads stored history for up to 10 skills. Skills missing from the
// market table or without history are skipped rather than failing the call.
func (s *Synthesizer) Compare(ctx context.Context, skills []string, months int) (CompareResult, error) {
	if months < 1 || months > MaxMonths {
		return CompareResult{}, model.InvalidArgumentf("months must be between 1 and %d, got %d", MaxMonths, months)
	}
	names := trimmed(skills)
	switch {
	case len(names) == 0:
		return CompareResult{}, model.InvalidArgumentf("at least one skill name must be provided")
	case len(names) > MaxSkills:
		return CompareResult{}, model.InvalidArgumentf("at most %d skills can be compared at once", MaxSkills)
	}

	res := CompareResult{Skills: []SkillHistory{}}
	if s.history == nil || !s.history.SupportsHistory() || s.market == nil {
		return res, nil
	}

	since := MonthsBack(s.now(), months)
	for _, name := range names {
		entry, err := s.market.MarketEntry(ctx, name)
		if err != nil {
			if !errors.Is(err, model.ErrNotFound) {
				s.logger.Warn("market lookup failed, skipping skill", "skill", name, "error", err)
			}
			continue
		}
		records, err := s.history.History(ctx, name, since)
		if err != nil {
			s.logger.Warn("reading trend history failed, skipping skill", "skill", name, "error", err)
			continue
		}
		if len(records) == 0 {
			continue
		}
		sort.SliceStable(records, func(i, j int) bool { return records[i].Month.Before(records[j].Month) })
		values := make([]float64, len(records))
		for i, r := range records {
			values[i] = r.Demand
		}
		res.Skills = append(res.Skills, SkillHistory{
			Skill:         name,
			CurrentDemand: entry.Demand,
			Trend:         entry.Trend,
			History:       records,
			Statistics:    Statistics(values),
		})
	}

	if len(res.Skills) == 0 {
		return res, nil
	}
	winner, growth, stable, decline := res.Skills[0], res.Skills[0], res.Skills[0], res.Skills[0]
	for _, sk := range res.Skills[1:] {
		if sk.CurrentDemand > winner.CurrentDemand {
			winner = sk
		}
		if sk.Statistics.TotalChange > growth.Statistics.TotalChange {
			growth = sk
		}
		if sk.Statistics.Volatility < stable.Statistics.Volatility {
			stable = sk
		}
		if sk.Statistics.TotalChange < decline.Statistics.TotalChange {
			decline = sk
		}
	}
	res.Comparison = Comparison{
		Winner:         winner.Skill,
		HighestGrowth:  growth.Skill,
		MostStable:     stable.Skill,
		HighestDecline: decline.Skill,
	}
	return res, nil
}

// MoverDirection selects how Movers ranks skills.
type MoverDirection string

const (
	MoversUp       MoverDirection = "up"
	MoversDown     MoverDirection = "down"
	MoversVolatile MoverDirection = "volatile"
)

// ParseMoverDirection validates a direction; empty means up.
func ParseMoverDirection(s string) (MoverDirection, error) {
	switch MoverDirection(strings.ToLower(strings.TrimSpace(s))) {
	case "", MoversUp:
		return MoversUp, nil
	case MoversDown:
		return MoversDown, nil
	case MoversVolatile:
		return MoversVolatile, nil
	}
	return "", model.InvalidArgumentf("direction must be one of up, down, volatile; got %q", s)
}

// Mover is one skill's movement over the analysis period.
type Mover struct {
	Skill         string  `json:"skill_name"`
	Category      string  `json:"category"`
	CurrentDemand float64 `json:"current_demand"`
	StartDemand   float64 `json:"start_demand"`
	EndDemand     float64 `json:"end_demand"`
	DemandChange  float64 `json:"demand_change"`
	PercentChange float64 `json:"percent_change"`
	Volatility    float64 `json:"volatility"`
}

// MoversResult lists the top movers for a direction.
type MoversResult struct {
	Direction    MoverDirection `json:"direction"`
	PeriodMonths int            `json:"period_months"`
	Skills       []Mover        `json:"skills"`
}

// Movers ranks skills with at least two stored points in the last period
// months. Up sorts by largest gain, down by largest loss, volatile by
// volatility. It returns ErrNotFound when no history covers the period.
func (s *Synthesizer) Movers(ctx context.Context, direction MoverDirection, limit, period int) (MoversResult, error) {
	if limit < 1 || limit > MaxMoverLimit {
		return MoversResult{}, model.InvalidArgumentf("limit must be between 1 and %d, got %d", MaxMoverLimit, limit)
	}
	if period < 1 || period > MaxMoverPeriod {
		return MoversResult{}, model.InvalidArgumentf("period must be between 1 and %d, got %d", MaxMoverPeriod, period)
	}
	if s.history == nil || !s.history.SupportsHistory() {
		return MoversResult{}, fmt.Errorf("trend history: %w", model.ErrNotFound)
	}

	start := model.MonthStart(s.now()).AddDate(0, -period, 0)
	records, err := s.history.HistorySince(ctx, start)
	if err != nil {
		return MoversResult{}, fmt.Errorf("reading trend history: %w", err)
	}
	if len(records) == 0 {
		return MoversResult{}, fmt.Errorf("no trend data for the last %d months: %w", period, model.ErrNotFound)
	}

	categories := s.categories(ctx)
	grouped := make(map[string][]model.HistoryRecord)
	var order []string
	for _, r := range records {
		if _, ok := grouped[r.Skill]; !ok {
			order = append(order, r.Skill)
		}
		grouped[r.Skill] = append(grouped[r.Skill], r)
	}

	movers := make([]Mover, 0, len(order))
	for _, skill := range order {
		recs := grouped[skill]
		if len(recs) < 2 {
			continue
		}
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Month.Before(recs[j].Month) })
		values := make([]float64, len(recs))
		for i, r := range recs {
			values[i] = r.Demand
		}
		startV, endV := values[0], values[len(values)-1]
		stats := Statistics(values)
		movers = append(movers, Mover{
			Skill:         skill,
			Category:      categories[strings.ToLower(skill)],
			CurrentDemand: endV,
			StartDemand:   startV,
			EndDemand:     endV,
			DemandChange:  endV - startV,
			PercentChange: stats.PercentChange,
			Volatility:    stats.Volatility,
		})
	}

	switch direction {
	case MoversUp:
		sort.SliceStable(movers, func(i, j int) bool { return movers[i].DemandChange > movers[j].DemandChange })
	case MoversDown:
		sort.SliceStable(movers, func(i, j int) bool { return movers[i].DemandChange < movers[j].DemandChange })
	case MoversVolatile:
		sort.SliceStable(movers, func(i, j int) bool { return movers[i].Volatility > movers[j].Volatility })
	default:
		return MoversResult{}, model.InvalidArgumentf("unknown mover direction %q", direction)
	}
	if len(movers) > limit {
		movers = movers[:limit]
	}
	return MoversResult{Direction: direction, PeriodMonths: period, Skills: movers}, nil
}

// categories maps lowercase skill names to their market category. Failures
// leave categories blank.
func (s *Synthesizer) categories(ctx context.Context) map[string]string {
	out := make(map[string]string)
	if s.market == nil {
		return out
	}
	entries, err := s.market.MarketData(ctx)
	if err != nil {
		s.logger.Warn("loading market categories failed", "error", err)
		return out
	}
	for _, e := range entries {
		out[strings.ToLower(e.Skill)] = e.Category
	}
	return out
}

func trimmed(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range trimmed(skills) {
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// SplitSkills parses a comma-separated skill list.
func SplitSkills(csv string) []string {
	return trimmed(strings.Split(csv, ","))
}
