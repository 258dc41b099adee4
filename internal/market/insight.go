package market

import (
	"context"
	"strings"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
)

// DefaultDemand is reported for skills the market table does not list.
const DefaultDemand = 50.0

// Insight is the market view of one of a candidate's skills.
type Insight struct {
	Skill          string               `json:"skill"`
	Proficiency    float64              `json:"proficiency"`
	Demand         float64              `json:"market_demand"`
	Trend          model.TrendDirection `json:"trend"`
	JobRoles       []string             `json:"job_roles"`
	JobLevels      []string             `json:"job_levels"`
	Recommendation string               `json:"recommendation"`
	Known          bool                 `json:"known"`
}

// Insight describes a normalized skill against the cached market table.
func (c *DemandCache) Insight(ctx context.Context, s model.SkillRecord) Insight {
	in := Insight{
		Skill:       s.Name,
		Proficiency: s.Proficiency,
		Demand:      DefaultDemand,
		Trend:       model.TrendStable,
		JobRoles:    JobRoles(s.Name),
		JobLevels:   JobLevels(s.Proficiency),
	}
	if e, ok := c.Entry(ctx, s.Name); ok {
		in.Demand = e.Demand
		in.Trend = e.Trend
		in.Known = true
	}
	in.Recommendation = Recommendation(s.Proficiency, in.Demand)
	return in
}

// Recommendation grades a skill as a learning investment.
func Recommendation(proficiency, demand float64) string {
	switch {
	case demand >= 85 && proficiency >= 3.5:
		return "Excellent Investment - High demand & strong proficiency"
	case demand >= 85:
		return "Excellent Investment - High market demand"
	case demand >= 70:
		return "Good Investment - Solid market demand"
	case demand >= 60:
		return "Emerging Opportunity - Growing demand"
	default:
		return "Consider for specialization"
	}
}

// JobLevels lists the seniority levels a proficiency supports.
func JobLevels(proficiency float64) []string {
	switch {
	case proficiency >= 4.5:
		return []string{"Senior", "Lead", "Principal", "Staff"}
	case proficiency >= 3.5:
		return []string{"Mid-Level", "Senior"}
	case proficiency >= 2.5:
		return []string{"Entry-Level", "Mid-Level"}
	default:
		return []string{"Entry-Level", "Junior"}
	}
}

var jobRoles = map[string][]string{
	"react":      {"Frontend Developer", "Full Stack Developer", "UI Engineer"},
	"angular":    {"Frontend Developer", "Full Stack Developer"},
	"vue.js":     {"Frontend Developer", "Full Stack Developer"},
	"javascript": {"Frontend Developer", "Backend Developer", "Full Stack Developer"},
	"typescript": {"Frontend Developer", "Backend Developer", "Full Stack Developer"},
	"python":     {"Backend Developer", "Data Scientist", "ML Engineer", "Full Stack Developer"},
	"java":       {"Backend Developer", "Full Stack Developer", "Enterprise Developer"},
	"node.js":    {"Backend Developer", "Full Stack Developer"},
	"django":     {"Backend Developer", "Full Stack Developer"},
	"flask":      {"Backend Developer", "Full Stack Developer"},
	"sql":        {"Backend Developer", "Database Administrator", "Data Analyst"},
	"postgresql": {"Backend Developer", "Database Administrator"},
	"mongodb":    {"Backend Developer", "Full Stack Developer"},
	"redis":      {"Backend Developer", "DevOps Engineer"},
	"aws":        {"Cloud Engineer", "DevOps Engineer", "Backend Developer"},
	"azure":      {"Cloud Engineer", "DevOps Engineer"},
	"gcp":        {"Cloud Engineer", "DevOps Engineer"},
	"docker":     {"DevOps Engineer", "Backend Developer"},
	"kubernetes": {"DevOps Engineer", "Cloud Engineer"},
	"terraform":  {"DevOps Engineer", "Cloud Engineer"},
	"git":        {"All Developers"},
}

// JobRoles lists the roles that commonly ask for skill.
func JobRoles(skill string) []string {
	if roles, ok := jobRoles[strings.ToLower(strings.TrimSpace(skill))]; ok {
		return append([]string(nil), roles...)
	}
	return []string{"Software Developer"}
}

// StaticTable is a fixed in-memory market table, used when no store is
// configured.
type StaticTable struct {
	entries []model.MarketEntry
}

// NewStaticTable returns a table over entries. Nil entries selects
// DefaultEntries.
func NewStaticTable(entries []model.MarketEntry) *StaticTable {
	if entries == nil {
		entries = DefaultEntries()
	}
	return &StaticTable{entries: entries}
}

func (t *StaticTable) MarketData(_ context.Context) ([]model.MarketEntry, error) {
	return append([]model.MarketEntry(nil), t.entries...), nil
}

func (t *StaticTable) MarketEntry(_ context.Context, skill string) (model.MarketEntry, error) {
	for _, e := range t.entries {
		if strings.EqualFold(e.Skill, strings.TrimSpace(skill)) {
			return e, nil
		}
	}
	return model.MarketEntry{}, model.ErrNotFound
}

// DefaultEntries is the built-in demand table.
func DefaultEntries() []model.MarketEntry {
	type row struct {
		skill, category string
		demand          float64
		trend           model.TrendDirection
	}
	rows := []row{
		{"React", "Frontend", 92, model.TrendRising},
		{"TypeScript", "Programming Languages", 87, model.TrendRising},
		{"Node.js", "Backend", 82, model.TrendStable},
		{"Python", "Programming Languages", 88, model.TrendRising},
		{"AWS", "Cloud", 83, model.TrendRising},
		{"PostgreSQL", "Databases", 79, model.TrendStable},
		{"Docker", "DevOps", 81, model.TrendRising},
		{"Git", "Tools", 95, model.TrendStable},
		{"GraphQL", "Backend", 72, model.TrendRising},
		{"Kubernetes", "DevOps", 76, model.TrendRising},
		{"Vue.js", "Frontend", 68, model.TrendStable},
		{"Angular", "Frontend", 65, model.TrendDeclining},
		{"MongoDB", "Databases", 74, model.TrendRising},
		{"Redis", "Databases", 71, model.TrendRising},
		{"Java", "Programming Languages", 82, model.TrendStable},
		{"JavaScript", "Programming Languages", 94, model.TrendStable},
		{"SQL", "Databases", 91, model.TrendStable},
		{"REST APIs", "Backend", 89, model.TrendStable},
	}
	updated := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.MarketEntry, len(rows))
	for i, r := range rows {
		out[i] = model.MarketEntry{Skill: r.skill, Category: r.category, Demand: r.demand, Trend: r.trend, LastUpdated: updated}
	}
	return out
}
