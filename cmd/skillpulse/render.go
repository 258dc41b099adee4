package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/skillpulse/internal/advisor"
	"github.com/amishk599/skillpulse/internal/explore"
	"github.com/amishk599/skillpulse/internal/gap"
	"github.com/amishk599/skillpulse/internal/model"
	"github.com/amishk599/skillpulse/internal/trend"
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(22)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	fairStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	poorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const barWidth = 20

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// output prints v as JSON when --json is set, otherwise via render.
func output[T any](w io.Writer, v T, render func(io.Writer, T)) error {
	if jsonOutput {
		return printJSON(w, v)
	}
	render(w, v)
	return nil
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w, sectionStyle.Render(title))
	fmt.Fprintln(w, dimStyle.Render(strings.Repeat("─", 47)))
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 75:
		return goodStyle
	case score >= 50:
		return fairStyle
	}
	return poorStyle
}

func scoreBar(score int) string {
	filled := max(0, min(barWidth, score*barWidth/100))
	bar := strings.Repeat("█", filled) + dimStyle.Render(strings.Repeat("░", barWidth-filled))
	return scoreStyle(score).Render(bar) + fmt.Sprintf(" %3d", score)
}

func renderHealth(w io.Writer, h model.HealthScores) {
	section(w, fmt.Sprintf("Career health: candidate %d", h.CandidateID))
	rows := []struct {
		label string
		score int
	}{
		{"Overall", h.OverallScore},
		{"Skills relevance", h.SkillsRelevance},
		{"Market alignment", h.MarketAlignment},
		{"Learning trajectory", h.LearningTrajectory},
		{"Industry demand", h.IndustryDemand},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s%s\n", labelStyle.Render(r.label), scoreBar(r.score))
	}
	fmt.Fprintf(w, "%s%s (%d skills)\n", labelStyle.Render("Data quality"), h.DataQuality, h.SkillsAnalyzed)
	if h.Warning != "" {
		fmt.Fprintln(w, fairStyle.Render("⚠ "+h.Warning))
	}
}

func renderGap(w io.Writer, r gap.Result) {
	section(w, "Gap analysis: "+r.Role)
	if !r.RoleFound {
		fmt.Fprintln(w, dimStyle.Render("role not found; run `skillpulse roles` for the available roles"))
		return
	}
	fmt.Fprintf(w, "%s%s\n", labelStyle.Render("Match"), scoreBar(r.OverallMatchScore))

	if len(r.CriticalGaps) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, poorStyle.Render("Critical gaps"))
		for _, g := range r.CriticalGaps {
			fmt.Fprintf(w, "  ✗ %-22s %-6s ~%dh  %s\n", g.Name, g.Priority, g.LearningHours, dimStyle.Render(g.Insight))
		}
	}
	if len(r.SkillsToImprove) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, fairStyle.Render("Worth adding"))
		for _, im := range r.SkillsToImprove {
			fmt.Fprintf(w, "  + %-22s %-6s ~%dh  %s\n", im.Name, im.Priority, im.LearningHours, dimStyle.Render(im.Insight))
		}
	}
	if len(r.MatchingSkills) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, goodStyle.Render("Matching"))
		for _, m := range r.MatchingSkills {
			req := ""
			if m.Required {
				req = "required"
			}
			fmt.Fprintf(w, "  ✓ %-22s %-12s %s\n", m.Name, m.ProficiencyLevel, dimStyle.Render(req))
		}
	}
}

func directionLabel(d model.TrendDirection) string {
	switch d {
	case model.TrendRising:
		return goodStyle.Render("▲ rising")
	case model.TrendDeclining:
		return poorStyle.Render("▼ declining")
	}
	return "■ stable"
}

func seriesLine(s model.TrendSeries) string {
	line := fmt.Sprintf("%-20s %s  %5.1f  %+6.1f%%  %s", s.Skill, explore.Sparkline(s), s.CurrentDemand, s.PercentChange, directionLabel(s.Direction))
	if s.Source != model.ProvenanceHistorical {
		line += dimStyle.Render(" (" + string(s.Source) + ")")
	}
	return line
}

func renderSeries(w io.Writer, s model.TrendSeries) {
	section(w, fmt.Sprintf("Demand trend: %s (%d months)", s.Skill, len(s.Points)))
	fmt.Fprintln(w, seriesLine(s))
	for _, p := range s.Points {
		mark := ""
		if p.Estimated {
			mark = dimStyle.Render(" estimated")
		}
		fmt.Fprintf(w, "  %s  %5.1f%s\n", p.Month.Format("2006-01"), p.Demand, mark)
	}
}

func renderMarketTrends(w io.Writer, mt trend.MarketTrends) {
	section(w, fmt.Sprintf("Market trends (%d skills, %d months)", mt.SkillsAnalyzed, mt.PeriodMonths))
	for _, s := range mt.Skills {
		fmt.Fprintln(w, seriesLine(s))
	}
	if mt.Warning != "" {
		fmt.Fprintln(w, fairStyle.Render("⚠ "+mt.Warning))
	}
}

func renderCompare(w io.Writer, c trend.CompareResult) {
	section(w, "Skill comparison")
	if len(c.Skills) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no stored history for these skills"))
		return
	}
	fmt.Fprintf(w, "%-20s %8s %8s %8s %10s  %s\n", "Skill", "Current", "Average", "Change", "Volatility", "Trend")
	for _, s := range c.Skills {
		fmt.Fprintf(w, "%-20s %8.1f %8.1f %+7.1f%% %10.2f  %s\n",
			s.Skill, s.CurrentDemand, s.Statistics.Average, s.Statistics.PercentChange, s.Statistics.Volatility, directionLabel(s.Trend))
	}
	fmt.Fprintln(w)
	cmp := c.Comparison
	for _, row := range [][2]string{
		{"Highest demand", cmp.Winner},
		{"Highest growth", cmp.HighestGrowth},
		{"Most stable", cmp.MostStable},
		{"Highest decline", cmp.HighestDecline},
	} {
		if row[1] != "" {
			fmt.Fprintf(w, "%s%s\n", labelStyle.Render(row[0]), row[1])
		}
	}
}

func renderMovers(w io.Writer, m trend.MoversResult) {
	section(w, fmt.Sprintf("Top movers: %s over %d months", m.Direction, m.PeriodMonths))
	if len(m.Skills) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no skills moved in this direction"))
		return
	}
	fmt.Fprintf(w, "%-20s %-14s %8s %8s %9s %10s\n", "Skill", "Category", "Start", "End", "Change", "Volatility")
	for _, s := range m.Skills {
		fmt.Fprintf(w, "%-20s %-14s %8.1f %8.1f %+8.1f%% %10.2f\n",
			s.Skill, s.Category, s.StartDemand, s.EndDemand, s.PercentChange, s.Volatility)
	}
}

func bullets(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, labelStyle.Render(title))
	for _, it := range items {
		fmt.Fprintf(w, "  • %s\n", it)
	}
}

func renderSummary(w io.Writer, s model.SummaryResult) {
	section(w, fmt.Sprintf("Career summary: candidate %d (%s)", s.CandidateID, strings.ReplaceAll(string(s.Context), "_", " ")))
	fmt.Fprintln(w, s.Summary)
	fmt.Fprintln(w)
	bullets(w, "Key strengths", s.KeyStrengths)
	bullets(w, "Opportunities", s.Opportunities)
	bullets(w, "Action items", s.ActionItems)
	if s.TimelineToGoal != "" {
		fmt.Fprintf(w, "%s%s\n", labelStyle.Render("Timeline"), s.TimelineToGoal)
	}
	if s.SalaryImpact != "" {
		fmt.Fprintf(w, "%s%s\n", labelStyle.Render("Salary impact"), s.SalaryImpact)
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("source: %s · %s", s.Source, s.GeneratedAt.Format("2006-01-02 15:04 MST"))))
}

func renderReport(w io.Writer, r advisor.Report) {
	renderHealth(w, r.Health)
	fmt.Fprintln(w)

	section(w, "Skills: "+r.CandidateName)
	for _, in := range r.Insights {
		fmt.Fprintf(w, "%-20s %4.1f/5  demand %5.1f  %s\n", in.Skill, in.Proficiency, in.Demand, dimStyle.Render(in.Recommendation))
	}
	fmt.Fprintln(w)

	if r.Gap != nil {
		renderGap(w, *r.Gap)
		fmt.Fprintln(w)
	}

	section(w, "Strongest skills: demand trend")
	for _, s := range r.Trends {
		fmt.Fprintln(w, seriesLine(s))
	}
}

func renderRoles(w io.Writer, roles []string) {
	section(w, "Roles")
	for _, r := range roles {
		fmt.Fprintf(w, "  %s\n", r)
	}
	fmt.Fprintf(w, "\nTotal: %d roles\n", len(roles))
}

func renderCategories(w io.Writer, c trend.CategoryTrendsResult) {
	section(w, fmt.Sprintf("Category trends (%d months)", c.PeriodMonths))
	fmt.Fprintf(w, "%-24s %6s %8s %9s  %-13s %s\n", "Category", "Skills", "Demand", "Change", "Trend", "Top skills")
	for _, cat := range c.Categories {
		fmt.Fprintf(w, "%-24s %6d %8.1f %+8.1f%%  %-13s %s\n",
			cat.Category, cat.SkillCount, cat.AverageDemand, cat.PercentChange, directionLabel(cat.Direction), strings.Join(cat.TopSkills, ", "))
	}
}

func renderLearning(w io.Writer, e gap.LearningEstimate) {
	section(w, fmt.Sprintf("Learning %s: level %d → %d", e.Skill, e.CurrentLevel, e.TargetLevel))
	fmt.Fprintf(w, "%s%d hours at %dh/week\n", labelStyle.Render("Effort"), e.EstimatedHours, e.StudyHoursPerWeek)
	fmt.Fprintf(w, "%s%s (%s)\n", labelStyle.Render("Timeline"), e.EstimatedMonths, e.EstimatedWeeks)
	fmt.Fprintf(w, "%s%s (%d/5)\n", labelStyle.Render("Difficulty"), e.Difficulty, e.Complexity)
	fmt.Fprintf(w, "%s%.0f\n", labelStyle.Render("Market demand"), e.MarketDemand)
	bullets(w, "Prerequisites", e.Prerequisites)
	bullets(w, "Resources", e.Resources)
}

func renderPrerequisites(w io.Writer, p gap.SkillPrerequisites) {
	section(w, "Prerequisites: "+p.Skill)
	fmt.Fprintf(w, "%s%s (%d/5)\n", labelStyle.Render("Difficulty"), p.Difficulty, p.Complexity)
	fmt.Fprintf(w, "%s%.0f\n", labelStyle.Render("Market demand"), p.MarketDemand)
	if len(p.Prerequisites) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no prerequisites listed"))
	}
	bullets(w, "Learn first", p.Prerequisites)
	bullets(w, "Tips", p.Tips)
}

func renderRecommendations(w io.Writer, r advisor.Recommendations) {
	section(w, fmt.Sprintf("Role recommendations: candidate %d", r.CandidateID))
	p := r.Profile
	fmt.Fprintf(w, "%s%d skills, mostly %s, avg %.2f/5\n", labelStyle.Render("Profile"), p.TotalSkills, p.PrimaryCategory, p.AvgProficiency)
	for i, rec := range r.Recommendations {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d. %s\n", i+1, rec.Role)
		fmt.Fprintf(w, "   %s  required %d/%d, optional %d\n", scoreBar(rec.MatchScore), rec.RequiredMatched, rec.RequiredTotal, rec.OptionalMatched)
		if len(rec.MissingSkills) > 0 {
			fmt.Fprintf(w, "   missing: %s %s\n", strings.Join(rec.MissingSkills, ", "), dimStyle.Render(fmt.Sprintf("(~%dh)", rec.LearningHours)))
		}
	}
	for _, warn := range r.Warnings {
		fmt.Fprintln(w, fairStyle.Render("⚠ "+warn))
	}
}
