package advisor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/amishk599/skillpulse/internal/model"
)

const (
	// DefaultRecommendations is the number of roles returned when no limit
	// is given.
	DefaultRecommendations = 3
	// MaxRecommendations bounds the limit of RecommendRoles.
	MaxRecommendations = 10

	thinProfileSkills = 3
)

// RoleRecommendation is one catalog role ranked against a candidate.
type RoleRecommendation struct {
	Role            string   `json:"role"`
	MatchScore      int      `json:"match_score"`
	RequiredMatched int      `json:"required_matched"`
	RequiredTotal   int      `json:"required_total"`
	OptionalMatched int      `json:"optional_matched"`
	MissingSkills   []string `json:"missing_skills"`
	LearningHours   int      `json:"learning_hours"`
}

// ProfileSummary condenses the skills a recommendation was based on.
type ProfileSummary struct {
	TotalSkills     int     `json:"total_skills"`
	PrimaryCategory string  `json:"primary_category"`
	AvgProficiency  float64 `json:"avg_proficiency"`
}

// Recommendations is the result of RecommendRoles.
type Recommendations struct {
	CandidateID     int64                `json:"candidate_id"`
	Recommendations []RoleRecommendation `json:"recommendations"`
	Profile         ProfileSummary       `json:"skill_profile_summary"`
	Warnings        []string             `json:"warnings,omitempty"`
}

// RecommendRoles ranks every catalog role by how well the candidate's
// skills cover its required skills and returns the best limit of them
// (1-10, 0 means 3). Ties go to more optional matches, then fewer learning
// hours for the missing required skills, then role name.
func (s *Service) RecommendRoles(ctx context.Context, candidateID int64, limit int) (Recommendations, error) {
	if limit == 0 {
		limit = DefaultRecommendations
	}
	if limit < 1 || limit > MaxRecommendations {
		return Recommendations{}, model.InvalidArgumentf("limit must be between 1 and %d, got %d", MaxRecommendations, limit)
	}
	c, err := s.deps.Candidates.Candidate(ctx, candidateID)
	if err != nil {
		return Recommendations{}, fmt.Errorf("loading candidate: %w", err)
	}
	_, skills := s.deps.Scorer.Score(ctx, c)

	out := Recommendations{
		CandidateID:     c.ID,
		Recommendations: []RoleRecommendation{},
		Profile:         profile(skills),
	}
	switch n := out.Profile.TotalSkills; {
	case n == 0:
		out.Warnings = append(out.Warnings, "No skills on profile. Recommendations are generic; add skills for personalized suggestions.")
	case n < thinProfileSkills:
		out.Warnings = append(out.Warnings, fmt.Sprintf("Only %d skills found. Add more for better recommendations.", n))
	}

	names := make([]string, 0, len(skills))
	for _, sk := range skills {
		if sk.Name != "" {
			names = append(names, sk.Name)
		}
	}

	roles, err := s.deps.Roles.Roles(ctx)
	if err != nil {
		return Recommendations{}, fmt.Errorf("listing roles: %w", err)
	}
	recs := make([]RoleRecommendation, 0, len(roles))
	for _, name := range roles {
		role, err := s.role(ctx, name)
		if err != nil {
			return Recommendations{}, err
		}
		if role == nil {
			continue
		}
		res := s.deps.Gaps.Analyze(ctx, names, role)
		rec := RoleRecommendation{
			Role:          res.Role,
			MatchScore:    res.OverallMatchScore,
			RequiredTotal: len(role.Required),
			MissingSkills: make([]string, 0, len(res.CriticalGaps)),
		}
		for _, m := range res.MatchingSkills {
			if m.Required {
				rec.RequiredMatched++
			} else {
				rec.OptionalMatched++
			}
		}
		for _, g := range res.CriticalGaps {
			rec.MissingSkills = append(rec.MissingSkills, g.Name)
			rec.LearningHours += g.LearningHours
		}
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		switch {
		case a.MatchScore != b.MatchScore:
			return a.MatchScore > b.MatchScore
		case a.OptionalMatched != b.OptionalMatched:
			return a.OptionalMatched > b.OptionalMatched
		case a.LearningHours != b.LearningHours:
			return a.LearningHours < b.LearningHours
		}
		return a.Role < b.Role
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	out.Recommendations = recs

	matched := false
	for _, r := range recs {
		if r.RequiredMatched > 0 || r.OptionalMatched > 0 {
			matched = true
			break
		}
	}
	if !matched && out.Profile.TotalSkills > 0 {
		out.Warnings = append(out.Warnings, "No role matched any of your skills. Consider expanding your skillset.")
	}

	s.logger.Debug("roles recommended", "candidate", c.ID, "count", len(recs))
	return out, nil
}

// profile counts named skills and picks the category holding most of them,
// the alphabetically first on a tie.
func profile(skills []model.SkillRecord) ProfileSummary {
	p := ProfileSummary{PrimaryCategory: "None"}
	counts := make(map[string]int)
	var total float64
	for _, sk := range skills {
		if sk.Name == "" {
			continue
		}
		p.TotalSkills++
		total += sk.Proficiency
		cat := strings.TrimSpace(sk.Category)
		if cat == "" {
			cat = "Other"
		}
		counts[cat]++
	}
	if p.TotalSkills == 0 {
		return p
	}
	best := 0
	for cat, n := range counts {
		if n > best || (n == best && cat < p.PrimaryCategory) {
			best, p.PrimaryCategory = n, cat
		}
	}
	p.AvgProficiency = math.Round(total/float64(p.TotalSkills)*100) / 100
	return p
}
