// Package gap diffs a candidate's skills against a role requirement template.
package gap

import (
	"context"
	"fmt"
	"strings"

	"github.com/amishk599/skillpulse/internal/filter"
	"github.com/amishk599/skillpulse/internal/model"
)

// Defaults used when the demand lookup does not know a skill.
const (
	DefaultRequiredDemand = 75.0
	DefaultOptionalDemand = 60.0
	DefaultRequiredHours  = 200
	DefaultOptionalHours  = 150

	// NoRequirementsScore is the match score of a role that lists no required skills.
	NoRequirementsScore = 50

	requiredMatchPercent = 95
	optionalMatchPercent = 85
	improvementGap       = 70
)

// Priority ranks how urgently a gap should be closed.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// MarketInfo is what the demand lookup knows about one skill. A nil
// SalaryImpact means it must be estimated; a zero LearningHours falls back
// to the analyzer default.
type MarketInfo struct {
	Demand        float64
	SalaryImpact  *float64
	LearningHours int
}

// DemandLookup resolves market information for a skill name
// (case-insensitive). ok is false when the skill is unknown.
type DemandLookup interface {
	Lookup(ctx context.Context, skill string) (info MarketInfo, ok bool)
}

// CriticalGap is a required skill the candidate lacks.
type CriticalGap struct {
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	Priority            Priority `json:"priority"`
	MarketDemand        float64  `json:"market_demand"`
	SalaryImpact        float64  `json:"salary_impact"`
	LearningHours       int      `json:"learning_hours"`
	RequiredProficiency float64  `json:"required_proficiency"`
	Insight             string   `json:"insight"`
}

// Improvement is an optional skill the candidate lacks.
type Improvement struct {
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	Gap                int      `json:"gap"`
	Priority           Priority `json:"priority"`
	MarketDemand       float64  `json:"market_demand"`
	SalaryImpact       float64  `json:"salary_impact"`
	LearningHours      int      `json:"learning_hours"`
	DesiredProficiency float64  `json:"desired_proficiency"`
	Insight            string   `json:"insight"`
}

// Match is a role skill the candidate already has.
type Match struct {
	Name             string `json:"name"`
	Category         string `json:"category"`
	Required         bool   `json:"required"`
	MatchPercentage  int    `json:"match_percentage"`
	ProficiencyLevel string `json:"proficiency_level"`
	Insight          string `json:"insight"`
}

// Result is the outcome of one gap analysis.
type Result struct {
	Role              string        `json:"role"`
	RoleFound         bool          `json:"role_found"`
	CriticalGaps      []CriticalGap `json:"critical_gaps"`
	SkillsToImprove   []Improvement `json:"skills_to_improve"`
	MatchingSkills    []Match       `json:"matching_skills"`
	OverallMatchScore int           `json:"overall_match_score"`
}

// Analyzer computes gap analyses. It has no mutable state; concurrency safety
// depends only on the injected lookup.
type Analyzer struct {
	lookup     DemandLookup
	categories *filter.Classifier
}

// NewAnalyzer returns an analyzer. A nil lookup treats every skill as unknown;
// a nil classifier uses the built-in category table.
func NewAnalyzer(lookup DemandLookup, categories *filter.Classifier) *Analyzer {
	if categories == nil {
		categories = filter.NewClassifier(filter.DefaultCategoryRules(), filter.CategoryOther)
	}
	return &Analyzer{lookup: lookup, categories: categories}
}

// Analyze compares candidateSkills against role. A nil role yields an empty
// result with score 0.
func (a *Analyzer) Analyze(ctx context.Context, candidateSkills []string, role *model.RoleRequirement) Result {
	res := Result{
		CriticalGaps:    []CriticalGap{},
		SkillsToImprove: []Improvement{},
		MatchingSkills:  []Match{},
	}
	if role == nil {
		return res
	}
	res.Role = role.Name
	res.RoleFound = true

	owned := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		owned[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var matchedRequired int
	for _, req := range role.Required {
		category := a.categories.Classify(req.Skill)
		if owned[strings.ToLower(req.Skill)] {
			matchedRequired++
			res.MatchingSkills = append(res.MatchingSkills, Match{
				Name:             req.Skill,
				Category:         category,
				Required:         true,
				MatchPercentage:  requiredMatchPercent,
				ProficiencyLevel: "Advanced",
				Insight:          fmt.Sprintf("You already have %s - maintain and deepen expertise.", req.Skill),
			})
			continue
		}
		info, salary := a.resolve(ctx, req, DefaultRequiredDemand, DefaultRequiredHours)
		res.CriticalGaps = append(res.CriticalGaps, CriticalGap{
			Name:                req.Skill,
			Category:            category,
			Priority:            requiredPriority(req.Importance),
			MarketDemand:        info.Demand,
			SalaryImpact:        salary,
			LearningHours:       info.LearningHours,
			RequiredProficiency: req.MinProficiency,
			Insight: fmt.Sprintf("%s is a critical skill for %s with %s%% market demand.",
				req.Skill, role.Name, formatNumber(info.Demand)),
		})
	}

	for _, opt := range role.Optional {
		category := a.categories.Classify(opt.Skill)
		if owned[strings.ToLower(opt.Skill)] {
			res.MatchingSkills = append(res.MatchingSkills, Match{
				Name:             opt.Skill,
				Category:         category,
				MatchPercentage:  optionalMatchPercent,
				ProficiencyLevel: "Intermediate",
				Insight:          fmt.Sprintf("You have %s - a valuable bonus skill for %s.", opt.Skill, role.Name),
			})
			continue
		}
		info, salary := a.resolve(ctx, opt, DefaultOptionalDemand, DefaultOptionalHours)
		res.SkillsToImprove = append(res.SkillsToImprove, Improvement{
			Name:               opt.Skill,
			Category:           category,
			Gap:                improvementGap,
			Priority:           optionalPriority(opt.Importance),
			MarketDemand:       info.Demand,
			SalaryImpact:       salary,
			LearningHours:      info.LearningHours,
			DesiredProficiency: opt.MinProficiency,
			Insight: fmt.Sprintf("Adding %s would enhance your profile and increase market value by ~₹%sL.",
				opt.Skill, formatNumber(salary)),
		})
	}

	res.OverallMatchScore = MatchScore(matchedRequired, len(role.Required))
	return res
}

// MatchScore is the truncated percentage of required skills matched, or 50
// when there are none.
func MatchScore(matched, total int) int {
	if total <= 0 {
		return NoRequirementsScore
	}
	score := int(float64(matched) / float64(total) * 100)
	return max(0, min(100, score))
}

// resolve fills in defaults for unknown skills. The salary impact is the
// lookup's when it has a positive one, otherwise estimated from demand.
func (a *Analyzer) resolve(ctx context.Context, req model.SkillRequirement, defDemand float64, defHours int) (MarketInfo, float64) {
	info := MarketInfo{Demand: defDemand, LearningHours: defHours}
	if a.lookup != nil {
		if found, ok := a.lookup.Lookup(ctx, req.Skill); ok {
			info.Demand = found.Demand
			info.SalaryImpact = found.SalaryImpact
			if found.LearningHours > 0 {
				info.LearningHours = found.LearningHours
			}
		}
	}
	if info.SalaryImpact != nil && *info.SalaryImpact > 0 {
		return info, *info.SalaryImpact
	}
	return info, SalaryImpact(info.Demand, 0, req.MinProficiency)
}

func requiredPriority(imp model.Importance) Priority {
	switch imp {
	case model.ImportanceCritical, model.ImportanceHigh:
		return PriorityHigh
	case model.ImportanceMedium, model.ImportanceLow:
		return PriorityMedium
	}
	return PriorityMedium
}

func optionalPriority(imp model.Importance) Priority {
	switch imp {
	case model.ImportanceMedium:
		return PriorityMedium
	case model.ImportanceCritical, model.ImportanceHigh, model.ImportanceLow:
		return PriorityLow
	}
	return PriorityLow
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
