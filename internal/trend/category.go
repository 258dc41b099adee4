package trend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/amishk599/skillpulse/internal/model"
)

const (
	categoryBand      = 2.0
	categoryTopSkills = 3
	uncategorized     = "Other"
)

// CategoryTrend summarizes the skills of one market category.
type CategoryTrend struct {
	Category      string               `json:"category"`
	AverageDemand float64              `json:"average_demand"`
	TotalChange   float64              `json:"total_change"`
	PercentChange float64              `json:"percent_change"`
	Direction     model.TrendDirection `json:"trend_direction"`
	TopSkills     []string             `json:"top_skills"`
	SkillCount    int                  `json:"skill_count"`
}

// CategoryTrendsResult lists categories by descending percent change.
type CategoryTrendsResult struct {
	PeriodMonths int             `json:"period_months"`
	Categories   []CategoryTrend `json:"categories"`
}

type categoryAcc struct {
	skills  map[string]model.MarketEntry
	monthly map[string][]float64
}

// CategoryTrends groups stored history of the last months months by the
// market category of each skill. A category's change runs from the mean
// demand of its skills in the first month to the mean in the last; beyond
// ±2% it is rising or declining. Skills missing from the market table are
// left out. ErrNotFound means no joined history exists.
func (s *Synthesizer) CategoryTrends(ctx context.Context, months int) (CategoryTrendsResult, error) {
	if months < 1 || months > MaxMonths {
		return CategoryTrendsResult{}, model.InvalidArgumentf("months must be between 1 and %d, got %d", MaxMonths, months)
	}
	if s.history == nil || !s.history.SupportsHistory() || s.market == nil {
		return CategoryTrendsResult{}, fmt.Errorf("trend history: %w", model.ErrNotFound)
	}

	entries, err := s.market.MarketData(ctx)
	if err != nil {
		return CategoryTrendsResult{}, fmt.Errorf("loading market data: %w", err)
	}
	market := make(map[string]model.MarketEntry, len(entries))
	for _, e := range entries {
		market[strings.ToLower(e.Skill)] = e
	}

	records, err := s.history.HistorySince(ctx, MonthsBack(s.now(), months))
	if err != nil {
		return CategoryTrendsResult{}, fmt.Errorf("reading trend history: %w", err)
	}

	groups := make(map[string]*categoryAcc)
	for _, r := range records {
		e, ok := market[strings.ToLower(r.Skill)]
		if !ok {
			continue
		}
		cat := strings.TrimSpace(e.Category)
		if cat == "" {
			cat = uncategorized
		}
		acc, ok := groups[cat]
		if !ok {
			acc = &categoryAcc{skills: map[string]model.MarketEntry{}, monthly: map[string][]float64{}}
			groups[cat] = acc
		}
		acc.skills[strings.ToLower(e.Skill)] = e
		key := model.MonthStart(r.Month).Format("2006-01")
		acc.monthly[key] = append(acc.monthly[key], r.Demand)
	}
	if len(groups) == 0 {
		return CategoryTrendsResult{}, fmt.Errorf("no trend data for the last %d months: %w", months, model.ErrNotFound)
	}

	out := CategoryTrendsResult{PeriodMonths: months, Categories: make([]CategoryTrend, 0, len(groups))}
	for cat, acc := range groups {
		out.Categories = append(out.Categories, summarizeCategory(cat, acc))
	}
	sort.SliceStable(out.Categories, func(i, j int) bool {
		a, b := out.Categories[i], out.Categories[j]
		if a.PercentChange != b.PercentChange {
			return a.PercentChange > b.PercentChange
		}
		return a.Category < b.Category
	})
	return out, nil
}

func summarizeCategory(name string, acc *categoryAcc) CategoryTrend {
	skills := make([]model.MarketEntry, 0, len(acc.skills))
	var demandSum float64
	for _, e := range acc.skills {
		skills = append(skills, e)
		demandSum += e.Demand
	}
	sort.Slice(skills, func(i, j int) bool {
		if skills[i].Demand != skills[j].Demand {
			return skills[i].Demand > skills[j].Demand
		}
		return skills[i].Skill < skills[j].Skill
	})
	top := make([]string, 0, categoryTopSkills)
	for _, e := range skills[:min(categoryTopSkills, len(skills))] {
		top = append(top, e.Skill)
	}

	keys := make([]string, 0, len(acc.monthly))
	for k := range acc.monthly {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var change, pct float64
	if len(keys) >= 2 {
		first := mean(acc.monthly[keys[0]])
		last := mean(acc.monthly[keys[len(keys)-1]])
		change = last - first
		pct = PercentChange(first, last)
	}

	direction := model.TrendStable
	switch {
	case pct > categoryBand:
		direction = model.TrendRising
	case pct < -categoryBand:
		direction = model.TrendDeclining
	}

	return CategoryTrend{
		Category:      name,
		AverageDemand: round(demandSum/float64(len(skills)), 1),
		TotalChange:   round(change, 1),
		PercentChange: round(pct, 2),
		Direction:     direction,
		TopSkills:     top,
		SkillCount:    len(skills),
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
