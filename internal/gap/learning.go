package gap

import (
	"context"
	"fmt"
	"strings"

	"github.com/amishk599/skillpulse/internal/model"
)

const (
	// StudyHoursPerWeek is the weekly pace behind every learning estimate.
	StudyHoursPerWeek = 10

	defaultComplexity   = 3
	defaultLearnDemand  = 50.0
	hoursPerLevelUnit   = 30
	weeksPerMonth       = 4.33
	maxProficiencyLevel = 5
)

// DefaultComplexity rates how hard a skill is to learn on a 1-5 scale,
// keyed by lowercase skill name. Unlisted skills rate 3.
var DefaultComplexity = map[string]int{
	"html5": 1, "css3": 1, "css": 1, "javascript": 2, "typescript": 2,
	"react": 3, "vue.js": 3, "angular": 4, "next.js": 3, "tailwind css": 1,
	"redux": 3, "web design": 2,

	"python": 2, "node.js": 3, "express.js": 2, "rest apis": 2, "graphql": 3,
	"fastapi": 2, "django": 3, "flask": 2, "spring boot": 4, "java": 3,
	".net": 3, "go": 2, "rust": 4, "php": 2,

	"sql": 2, "mongodb": 2, "postgresql": 3, "mysql": 2, "redis": 2,
	"elasticsearch": 3, "firebase": 2,

	"docker": 3, "kubernetes": 4, "aws": 4, "azure": 4, "gcp": 4,
	"terraform": 3, "ci/cd": 3, "jenkins": 3, "github actions": 2,
	"linux": 3, "networking": 3,

	"pandas": 2, "numpy": 2, "data analysis": 3, "tableau": 2, "power bi": 2,
	"statistics": 3, "machine learning": 5, "deep learning": 5,
	"tensorflow": 5, "pytorch": 5, "scikit-learn": 3, "nlp": 5,
	"computer vision": 5,

	"jest": 2, "pytest": 2, "selenium": 3, "cypress": 2,
	"test automation": 3, "manual testing": 1, "api testing": 2,

	"git": 1, "github": 1, "gitlab": 1, "agile": 1, "scrum": 1, "jira": 1,
	"communication": 1, "project management": 2, "system design": 5,
	"microservices": 4, "authentication": 2, "security": 4, "blockchain": 5,
}

// DefaultPrerequisites lists what to know before starting a skill, keyed
// by lowercase skill name.
var DefaultPrerequisites = map[string][]string{
	"react":        {"JavaScript", "HTML5", "CSS3"},
	"vue.js":       {"JavaScript", "HTML5", "CSS3"},
	"angular":      {"JavaScript", "TypeScript", "HTML5", "CSS3"},
	"next.js":      {"React", "Node.js", "JavaScript"},
	"typescript":   {"JavaScript"},
	"redux":        {"React", "JavaScript"},
	"tailwind css": {"CSS3"},

	"node.js":     {"JavaScript"},
	"express.js":  {"Node.js", "JavaScript"},
	"fastapi":     {"Python"},
	"django":      {"Python"},
	"flask":       {"Python"},
	"spring boot": {"Java"},
	"graphql":     {"REST APIs", "Backend fundamentals"},
	"rest apis":   {"Backend fundamentals"},

	"postgresql": {"SQL", "Database fundamentals"},
	"mongodb":    {"Database fundamentals"},
	"redis":      {"Database fundamentals"},

	"docker":     {"Linux"},
	"kubernetes": {"Docker", "Linux", "Container fundamentals"},
	"aws":        {"Cloud fundamentals", "Linux", "Networking"},
	"azure":      {"Cloud fundamentals", "Networking"},
	"gcp":        {"Cloud fundamentals", "Networking"},
	"terraform":  {"Cloud fundamentals", "Infrastructure as Code"},
	"ci/cd":      {"Git", "Linux"},
	"jenkins":    {"CI/CD", "Linux"},

	"machine learning": {"Python", "Statistics", "Mathematics", "Data Analysis"},
	"deep learning":    {"Machine Learning", "Python", "Linear Algebra"},
	"tensorflow":       {"Python", "Machine Learning"},
	"pytorch":          {"Python", "Machine Learning"},
	"nlp":              {"Machine Learning", "Python"},
	"computer vision":  {"Machine Learning", "Python"},
	"data analysis":    {"SQL", "Python"},

	"selenium": {"Test Automation"},
	"cypress":  {"Test Automation", "JavaScript"},
	"jest":     {"JavaScript"},
	"pytest":   {"Python"},

	"system design": {"Backend fundamentals", "Databases", "Networking"},
	"microservices": {"Backend fundamentals", "Docker"},
	"blockchain":    {"Cryptography", "System Design"},
	"security":      {"Networking", "Linux"},
}

var learningResources = []string{
	"Online courses (Udemy, Coursera, Pluralsight)",
	"Official documentation and tutorials",
	"Hands-on practice projects",
	"Community forums and Discord servers",
	"YouTube tutorials and guided learning",
	"Books and technical blogs",
}

// LearningEstimate is the study time needed to move a skill between two
// proficiency levels.
type LearningEstimate struct {
	Skill             string   `json:"skill_name"`
	CurrentLevel      int      `json:"current_level"`
	TargetLevel       int      `json:"target_level"`
	EstimatedHours    int      `json:"estimated_hours"`
	EstimatedWeeks    string   `json:"estimated_weeks"`
	EstimatedMonths   string   `json:"estimated_months"`
	Difficulty        string   `json:"difficulty"`
	Complexity        int      `json:"complexity_score"`
	Prerequisites     []string `json:"prerequisites"`
	MarketDemand      float64  `json:"market_demand"`
	StudyHoursPerWeek int      `json:"study_hours_per_week"`
	Resources         []string `json:"recommended_resources"`
}

// SkillPrerequisites describes what a skill builds on.
type SkillPrerequisites struct {
	Skill         string   `json:"skill_name"`
	Complexity    int      `json:"complexity"`
	Difficulty    string   `json:"difficulty"`
	Prerequisites []string `json:"prerequisites"`
	MarketDemand  float64  `json:"market_demand"`
	Tips          []string `json:"learning_tips"`
}

// LearningPlanner estimates study effort from the complexity table and the
// market demand lookup.
type LearningPlanner struct {
	lookup DemandLookup
}

// NewLearningPlanner creates a planner. lookup may be nil, in which case
// every skill reports a demand of 50.
func NewLearningPlanner(lookup DemandLookup) *LearningPlanner {
	return &LearningPlanner{lookup: lookup}
}

// Estimate returns the effort to raise skill from current (0-5) to target
// (1-5) proficiency: (target-current) x complexity x 30 hours, studied at
// 10 hours a week.
func (p *LearningPlanner) Estimate(ctx context.Context, skill string, current, target int) (LearningEstimate, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return LearningEstimate{}, model.InvalidArgumentf("skill is required")
	}
	if current < 0 || current > maxProficiencyLevel {
		return LearningEstimate{}, model.InvalidArgumentf("current level must be between 0 and %d, got %d", maxProficiencyLevel, current)
	}
	if target < 1 || target > maxProficiencyLevel {
		return LearningEstimate{}, model.InvalidArgumentf("target level must be between 1 and %d, got %d", maxProficiencyLevel, target)
	}
	if current >= target {
		return LearningEstimate{}, model.InvalidArgumentf("target level must be greater than current level")
	}

	complexity := Complexity(skill)
	hours := (target - current) * complexity * hoursPerLevelUnit
	weeks := float64(hours) / StudyHoursPerWeek

	return LearningEstimate{
		Skill:             skill,
		CurrentLevel:      current,
		TargetLevel:       target,
		EstimatedHours:    hours,
		EstimatedWeeks:    weekRange(weeks),
		EstimatedMonths:   monthRange(weeks),
		Difficulty:        Difficulty(complexity),
		Complexity:        complexity,
		Prerequisites:     Prerequisites(skill),
		MarketDemand:      p.demand(ctx, skill),
		StudyHoursPerWeek: StudyHoursPerWeek,
		Resources:         learningResources,
	}, nil
}

// Prerequisites reports the complexity and prerequisites of skill with a
// few study tips.
func (p *LearningPlanner) Prerequisites(ctx context.Context, skill string) (SkillPrerequisites, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return SkillPrerequisites{}, model.InvalidArgumentf("skill is required")
	}
	complexity := Complexity(skill)
	prereqs := Prerequisites(skill)
	first := "fundamentals"
	if len(prereqs) > 0 {
		first = prereqs[0]
	}
	return SkillPrerequisites{
		Skill:         skill,
		Complexity:    complexity,
		Difficulty:    Difficulty(complexity),
		Prerequisites: prereqs,
		MarketDemand:  p.demand(ctx, skill),
		Tips: []string{
			"Start with: " + first,
			"Practice daily for best results",
			"Build real projects to solidify knowledge",
			"Join communities and contribute",
		},
	}, nil
}

func (p *LearningPlanner) demand(ctx context.Context, skill string) float64 {
	if p.lookup == nil {
		return defaultLearnDemand
	}
	info, ok := p.lookup.Lookup(ctx, skill)
	if !ok || info.Demand <= 0 {
		return defaultLearnDemand
	}
	return info.Demand
}

// Complexity rates skill on a 1-5 scale, 3 when unlisted.
func Complexity(skill string) int {
	if c, ok := DefaultComplexity[strings.ToLower(strings.TrimSpace(skill))]; ok {
		return c
	}
	return defaultComplexity
}

// Prerequisites lists what to learn before skill. The result is never nil.
func Prerequisites(skill string) []string {
	pre := DefaultPrerequisites[strings.ToLower(strings.TrimSpace(skill))]
	return append([]string{}, pre...)
}

// Difficulty labels a complexity score.
func Difficulty(complexity int) string {
	switch complexity {
	case 1, 2:
		return "Easy"
	case 4:
		return "Advanced"
	case 5:
		return "Expert"
	default:
		return "Intermediate"
	}
}

func weekRange(weeks float64) string {
	w := int(weeks)
	switch {
	case weeks < 4:
		return fmt.Sprintf("%d-%d weeks", w, w+1)
	case weeks < 12:
		return fmt.Sprintf("%d-%d weeks", w, w+2)
	default:
		return fmt.Sprintf("%d-%d weeks", w, w+4)
	}
}

// monthRange falls back to weeks below one month.
func monthRange(weeks float64) string {
	months := weeks / weeksPerMonth
	m := int(months)
	switch {
	case months < 1:
		return fmt.Sprintf("%d-%d weeks", int(weeks), int(weeks)+2)
	case months < 3:
		return fmt.Sprintf("%d-%d months", m, m+1)
	default:
		return fmt.Sprintf("%d-%d months", m, m+2)
	}
}
