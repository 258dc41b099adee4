package summary

import (
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
)

// Tier is the career level a fallback summary is written for.
type Tier string

const (
	TierSenior Tier = "senior"
	TierMid    Tier = "mid"
	TierJunior Tier = "junior"
)

// TierFor picks the tier from an overall health score.
func TierFor(overall int) Tier {
	switch {
	case overall >= 80:
		return TierSenior
	case overall >= 65:
		return TierMid
	default:
		return TierJunior
	}
}

type tierCopy struct {
	timeline      string
	salaryImpact  string
	prose         string // {skills} and {count} are substituted
	opportunities []string
	actionItems   []string
}

var tiers = map[Tier]tierCopy{
	TierSenior: {
		timeline:     "3-6 months",
		salaryImpact: "₹4-7L increase potential",
		prose: "You're a senior-level engineer with strong expertise in {skills}. " +
			"Your {count}-skill portfolio and high proficiency levels position you well for staff/principal roles. " +
			"Focus on system design, architectural thinking, and technical leadership. " +
			"Consider mentoring, open source contributions, or conference speaking to enhance your profile.",
		opportunities: []string{
			"Architect complex distributed systems",
			"Lead technical teams and set engineering standards",
			"Become a technical authority in your domain",
		},
		actionItems: []string{
			"Master system design patterns and trade-offs",
			"Lead a high-impact technical initiative",
			"Mentor 2-3 junior engineers",
			"Contribute to open source or speak at conferences",
			"Build a personal brand in your specialty",
		},
	},
	TierMid: {
		timeline:     "6-12 months",
		salaryImpact: "₹3-5L increase potential",
		prose: "You're demonstrating solid growth with competency in {skills}. " +
			"Your {count}-skill portfolio positions you for mid-to-senior level opportunities. " +
			"Deepen your expertise in high-demand areas and work on substantial projects. " +
			"Learn system design and cloud architecture to progress toward senior roles.",
		opportunities: []string{
			"Progress to senior engineer roles",
			"Specialize in high-demand technologies",
			"Lead technical projects",
		},
		actionItems: []string{
			"Complete a system design course (DesignGuru, SystemDesign.io)",
			"Lead or co-lead a technical project",
			"Contribute meaningfully to one open source project",
			"Practice technical interviews monthly",
			"Learn cloud architecture (AWS, Azure, GCP)",
		},
	},
	TierJunior: {
		timeline:     "12-18 months",
		salaryImpact: "₹2-4L increase potential",
		prose: "You're building a solid foundation with skills like {skills}. " +
			"Prioritize practical experience and deep mastery of a few technologies over breadth. " +
			"Consistent learning, project work, and code review participation will accelerate your growth. " +
			"Focus on becoming a strong generalist before specializing.",
		opportunities: []string{
			"Build strong fundamentals in core technologies",
			"Gain real-world project experience",
			"Contribute to team projects and learn from seniors",
		},
		actionItems: []string{
			"Master 2-3 core technologies deeply",
			"Build 2-3 substantial portfolio projects",
			"Read and contribute to code reviews",
			"Complete structured learning programs (LLD, HLD basics)",
			"Seek mentorship from senior engineers",
		},
	},
}

// Fallback builds the deterministic summary used whenever generation is
// skipped or fails.
func Fallback(candidateID int64, c model.SummaryContext, scores model.HealthScores, skills []model.SkillRecord, now time.Time) model.SummaryResult {
	strengths := make([]string, 0, 3)
	for _, s := range topSkills(skills, 3) {
		strengths = append(strengths, s.Name)
	}
	if len(strengths) == 0 {
		strengths = []string{"core skills"}
	}

	t := tiers[TierFor(scores.OverallScore)]
	return model.SummaryResult{
		CandidateID:    candidateID,
		Context:        c,
		Summary:        strings.NewReplacer("{skills}", strings.Join(strengths, ", "), "{count}", strconv.Itoa(len(skills))).Replace(t.prose),
		KeyStrengths:   strengths,
		Opportunities:  append([]string(nil), t.opportunities...),
		ActionItems:    append([]string(nil), t.actionItems...),
		TimelineToGoal: t.timeline,
		SalaryImpact:   t.salaryImpact,
		Source:         model.SourceTemplate,
		GeneratedAt:    now,
	}
}
