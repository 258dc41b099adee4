package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amishk599/skillpulse/internal/ai"
	"github.com/amishk599/skillpulse/internal/model"
)

const (
	maxPromptSkills = 15
	maxNameRunes    = 50
	maxRoleRunes    = 100
)

type promptData struct {
	Name            string
	TotalSkills     int
	TopSkills       string
	OverallScore    int
	SkillsRelevance int
	MarketAlignment int
	TargetRole      string
	Instruction     string
	Focus           string
}

// Instruction returns the prompt guidance for a summary context.
func Instruction(c model.SummaryContext) string {
	switch c {
	case model.ContextJobSearch:
		return "Focus on immediate job market opportunities, interview preparation, and positioning."
	case model.ContextUpskilling:
		return "Focus on specific skills to learn, courses to take, and learning paths."
	case model.ContextCareerGrowth:
		return "Focus on long-term career development, skill advancement, and leadership opportunities."
	}
	return Instruction(model.ContextCareerGrowth)
}

// BuildPrompt renders the user prompt for a candidate.
func BuildPrompt(name string, skills []model.SkillRecord, scores model.HealthScores, targetRole string, c model.SummaryContext) (string, error) {
	top := topSkills(skills, maxPromptSkills)
	listed := make([]string, len(top))
	for i, s := range top {
		listed[i] = fmt.Sprintf("%s (Proficiency: %.1f/5)", s.Name, s.Proficiency)
	}

	data := promptData{
		Name:            truncateRunes(name, maxNameRunes),
		TotalSkills:     len(skills),
		TopSkills:       strings.Join(listed, ", "),
		OverallScore:    scores.OverallScore,
		SkillsRelevance: scores.SkillsRelevance,
		MarketAlignment: scores.MarketAlignment,
		TargetRole:      targetLine(targetRole),
		Instruction:     Instruction(c),
		Focus:           strings.ReplaceAll(string(c), "_", " "),
	}

	var b strings.Builder
	if err := ai.CareerSummaryTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render summary prompt: %w", err)
	}
	return b.String(), nil
}

func targetLine(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return "No specific target role specified"
	}
	return "Target Role: " + truncateRunes(role, maxRoleRunes)
}

// topSkills returns up to n skills, highest proficiency first. Ties keep
// their input order.
func topSkills(skills []model.SkillRecord, n int) []model.SkillRecord {
	sorted := make([]model.SkillRecord, len(skills))
	copy(sorted, skills)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Proficiency > sorted[j].Proficiency
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
