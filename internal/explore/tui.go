package explore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/skillpulse/internal/advisor"
	"github.com/amishk599/skillpulse/internal/market"
	"github.com/amishk599/skillpulse/internal/model"
)

// Lines per skill item in the list view (name + subtitle + blank separator).
const skillItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	skillNameStyle = lipgloss.NewStyle().
			Bold(true)

	skillSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedSkillNameStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSkillSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(20)

	valueStyle = lipgloss.NewStyle()

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	risingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	decliningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	estimatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// SummaryFunc generates a career summary for the explored candidate.
type SummaryFunc func(ctx context.Context, sctx model.SummaryContext) (model.SummaryResult, error)

var summaryContexts = []model.SummaryContext{
	model.ContextCareerGrowth,
	model.ContextJobSearch,
	model.ContextUpskilling,
}

// summaryDoneMsg is sent when an async summary generation completes.
type summaryDoneMsg struct {
	result model.SummaryResult
	err    error
}

type exploreModel struct {
	report   advisor.Report
	skills   []model.SkillRecord
	insights map[string]market.Insight
	trends   map[string]model.TrendSeries

	listViewport viewport.Model
	infoViewport viewport.Model
	activePane   int // 0=skills, 1=skill info
	cursor       int
	width        int
	height       int
	ready        bool

	view           viewState
	detailViewport viewport.Model

	summarize      SummaryFunc
	contextIdx     int
	summary        *model.SummaryResult
	summaryLoading bool
	summaryError   string
}

func newExploreModel(rep advisor.Report, summarize SummaryFunc) exploreModel {
	skills := append([]model.SkillRecord(nil), rep.Skills...)
	sort.SliceStable(skills, func(i, j int) bool {
		return skills[i].Proficiency > skills[j].Proficiency
	})

	insights := make(map[string]market.Insight, len(rep.Insights))
	for _, in := range rep.Insights {
		insights[strings.ToLower(in.Skill)] = in
	}
	trends := make(map[string]model.TrendSeries, len(rep.Trends))
	for _, tr := range rep.Trends {
		trends[strings.ToLower(tr.Skill)] = tr
	}

	return exploreModel{
		report:    rep,
		skills:    skills,
		insights:  insights,
		trends:    trends,
		summarize: summarize,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case summaryDoneMsg:
		m.summaryLoading = false
		if msg.err != nil {
			m.summaryError = fmt.Sprintf("summary failed: %v", msg.err)
		} else {
			m.summaryError = ""
			res := msg.result
			m.summary = &res
		}
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m exploreModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		if m.activePane == 0 {
			m.moveCursor(-1)
			return m, nil
		}
	case "down", "j":
		if m.activePane == 0 {
			m.moveCursor(1)
			return m, nil
		}
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.listViewport, cmd = m.listViewport.Update(msg)
	} else {
		m.infoViewport, cmd = m.infoViewport.Update(msg)
	}
	return m, cmd
}

func (m exploreModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "c":
		if !m.summaryLoading {
			m.contextIdx = (m.contextIdx + 1) % len(summaryContexts)
			m.summary = nil
			m.summaryError = ""
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil
	case "s":
		if m.summarize != nil && !m.summaryLoading {
			m.summaryLoading = true
			m.summaryError = ""
			m.detailViewport.SetContent(m.renderDetail())
			return m, m.summaryCmd(summaryContexts[m.contextIdx])
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m exploreModel) summaryCmd(sctx model.SummaryContext) tea.Cmd {
	summarize := m.summarize
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		res, err := summarize(ctx, sctx)
		return summaryDoneMsg{result: res, err: err}
	}
}

func (m *exploreModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.skills)-1, 0))
	m.recalcContent()

	cursorTop := m.cursor * skillItemHeight
	cursorBottom := cursorTop + skillItemHeight - 1
	vp := &m.listViewport
	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m exploreModel) openDetailView() (tea.Model, tea.Cmd) {
	m.view = viewDetail
	m.detailViewport = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *exploreModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(paneWidth, paneHeight)
		m.infoViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = paneWidth
		m.listViewport.Height = paneHeight
		m.infoViewport.Width = paneWidth
		m.infoViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *exploreModel) recalcContent() {
	m.listViewport.SetContent(renderSkills(m.skills, m.cursor, m.activePane == 0))
	m.infoViewport.SetContent(m.renderSkillInfo())
	m.infoViewport.SetYOffset(0)
}

func (m exploreModel) selectedSkill() (model.SkillRecord, bool) {
	if len(m.skills) == 0 {
		return model.SkillRecord{}, false
	}
	return m.skills[m.cursor], true
}

func (m exploreModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m exploreModel) viewList() string {
	paneWidth := m.listViewport.Width

	leftHeader := fmt.Sprintf(" %s: Skills (%d)", m.report.CandidateName, len(m.skills))
	rightHeader := " Market View"

	leftHeaderStyle, rightHeaderStyle := activeHeaderStyle, inactiveHeaderStyle
	leftBorder, rightBorder := activeBorderStyle, inactiveBorderStyle
	if m.activePane == 1 {
		leftHeaderStyle, rightHeaderStyle = inactiveHeaderStyle, activeHeaderStyle
		leftBorder, rightBorder = inactiveBorderStyle, activeBorderStyle
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderStyle.Render(leftHeader)),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderStyle.Render(rightHeader)),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftBorder.Width(paneWidth).Render(m.listViewport.View()),
		" ",
		rightBorder.Width(paneWidth).Render(m.infoViewport.View()),
	)

	h := m.report.Health
	statusText := fmt.Sprintf(" overall %d | relevance %d | alignment %d | %s    Tab switch  ↑/↓ cursor  Enter report  q quit",
		h.OverallScore, h.SkillsRelevance, h.MarketAlignment, h.DataQuality)
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m exploreModel) viewDetail() string {
	title := titleStyle.Render(fmt.Sprintf("Career Report: %s", m.report.CandidateName))
	if m.summaryLoading {
		title += "  (generating...)"
	}

	content := activeBorderStyle.Width(max(m.width-2, 20)).Render(m.detailViewport.View())

	statusText := " esc/backspace back  ↑/↓ scroll  q quit"
	if m.summarize != nil {
		statusText = " s summary  c context  esc/backspace back  ↑/↓ scroll  q quit"
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m exploreModel) renderSkillInfo() string {
	sk, ok := m.selectedSkill()
	if !ok {
		return "  (no skills on record)"
	}

	var b strings.Builder
	field := fieldWriter(&b)

	field("Skill", sk.Name)
	field("Category", sk.Category)
	field("Proficiency", fmt.Sprintf("%.1f / 5", sk.Proficiency))
	field("Market demand", fmt.Sprintf("%.0f / 100", sk.MarketDemand))

	if in, ok := m.insights[strings.ToLower(sk.Name)]; ok {
		field("Trend", styledDirection(in.Trend))
		field("Recommendation", in.Recommendation)
		if len(in.JobRoles) > 0 {
			field("Job roles", strings.Join(in.JobRoles, ", "))
		}
		if len(in.JobLevels) > 0 {
			field("Job levels", strings.Join(in.JobLevels, ", "))
		}
		if !in.Known {
			b.WriteString(hintStyle.Render("  not in the market table; demand is a default") + "\n")
		}
	}

	if tr, ok := m.trends[strings.ToLower(sk.Name)]; ok {
		b.WriteByte('\n')
		field("Demand trend", fmt.Sprintf("%s %+.1f%%", styledDirection(tr.Direction), tr.PercentChange))
		b.WriteString("  " + Sparkline(tr) + "\n")
		if tr.EstimatedPoints > 0 {
			b.WriteString(hintStyle.Render(fmt.Sprintf("  %d of %d points estimated", tr.EstimatedPoints, len(tr.Points))) + "\n")
		}
	}
	return b.String()
}

func (m exploreModel) renderDetail() string {
	rep := m.report
	var b strings.Builder
	field := fieldWriter(&b)
	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	h := rep.Health
	b.WriteString(divider("── Health ") + "\n\n")
	field("Overall", fmt.Sprintf("%d", h.OverallScore))
	field("Skills relevance", fmt.Sprintf("%d", h.SkillsRelevance))
	field("Market alignment", fmt.Sprintf("%d", h.MarketAlignment))
	field("Learning", fmt.Sprintf("%d", h.LearningTrajectory))
	field("Industry demand", fmt.Sprintf("%d", h.IndustryDemand))
	field("Data quality", fmt.Sprintf("%s (%d skills)", h.DataQuality, h.SkillsAnalyzed))
	if h.Warning != "" {
		b.WriteString(hintStyle.Render("  "+h.Warning) + "\n")
	}

	if g := rep.Gap; g != nil {
		b.WriteByte('\n')
		b.WriteString(divider("── Gap Analysis: "+g.Role+" ") + "\n\n")
		if !g.RoleFound {
			b.WriteString(hintStyle.Render("  role not found in catalog") + "\n")
		} else {
			field("Match score", fmt.Sprintf("%d%%", g.OverallMatchScore))
			for _, cg := range g.CriticalGaps {
				b.WriteString(decliningStyle.Render("  ✗ "+cg.Name) +
					skillSubtitleStyle.Render(fmt.Sprintf("  %s priority · ~%dh", cg.Priority, cg.LearningHours)) + "\n")
			}
			for _, im := range g.SkillsToImprove {
				b.WriteString("  + " + im.Name +
					skillSubtitleStyle.Render(fmt.Sprintf("  %s priority · ~%dh", im.Priority, im.LearningHours)) + "\n")
			}
			for _, mt := range g.MatchingSkills {
				b.WriteString(risingStyle.Render("  ✓ "+mt.Name) +
					skillSubtitleStyle.Render(fmt.Sprintf("  %s", mt.ProficiencyLevel)) + "\n")
			}
		}
	}

	b.WriteByte('\n')
	sctx := summaryContexts[m.contextIdx]
	b.WriteString(divider("── Summary ("+strings.ReplaceAll(string(sctx), "_", " ")+") ") + "\n\n")
	switch {
	case m.summaryLoading:
		b.WriteString(hintStyle.Render("  generating summary...") + "\n")
	case m.summaryError != "":
		b.WriteString(decliningStyle.Render("⚠ "+m.summaryError) + "\n")
	case m.summary != nil:
		s := m.summary
		b.WriteString(valueStyle.Render(wordWrap(s.Summary, wrapWidth)) + "\n\n")
		writeBullets(&b, "Strengths", s.KeyStrengths)
		writeBullets(&b, "Opportunities", s.Opportunities)
		writeBullets(&b, "Actions", s.ActionItems)
		field("Timeline", s.TimelineToGoal)
		field("Salary impact", s.SalaryImpact)
		field("Source", string(s.Source))
	case m.summarize != nil:
		b.WriteString(hintStyle.Render("  press s to generate a summary, c to change focus") + "\n")
	}

	return b.String()
}

func fieldWriter(b *strings.Builder) func(label, value string) {
	return func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteByte('\n')
	}
}

func writeBullets(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(labelStyle.Render(label) + "\n")
	for _, it := range items {
		if it != "" {
			b.WriteString("  • " + it + "\n")
		}
	}
}

func styledDirection(d model.TrendDirection) string {
	switch d {
	case model.TrendRising:
		return risingStyle.Render("▲ rising")
	case model.TrendDeclining:
		return decliningStyle.Render("▼ declining")
	}
	return "■ stable"
}

func renderSkills(skills []model.SkillRecord, cursor int, isActive bool) string {
	if len(skills) == 0 {
		return "  (no skills)"
	}

	var b strings.Builder
	for i, s := range skills {
		nameSt, subtitleSt, prefix := skillNameStyle, skillSubtitleStyle, "  "
		if isActive && i == cursor {
			nameSt, subtitleSt, prefix = selectedSkillNameStyle, selectedSkillSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(nameSt.Render(s.Name))
		b.WriteByte('\n')

		category := s.Category
		if category == "" {
			category = "uncategorized"
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %.1f/5 · demand %.0f", category, s.Proficiency, s.MarketDemand)))
		b.WriteByte('\n')

		if i < len(skills)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkChars maps demand scores in [0,100] onto block characters.
func sparkChars(values []float64) []rune {
	out := make([]rune, len(values))
	top := len(sparkBlocks) - 1
	for i, v := range values {
		idx := int(v / 100 * float64(top))
		out[i] = sparkBlocks[clamp(idx, 0, top)]
	}
	return out
}

// Sparkline renders a demand series with estimated points dimmed.
func Sparkline(s model.TrendSeries) string {
	chars := sparkChars(s.Values())
	var b strings.Builder
	for i, c := range chars {
		if s.Points[i].Estimated {
			b.WriteString(estimatedStyle.Render(string(c)))
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run launches the full-screen explorer for rep. summarize may be nil; when
// non-nil the 's' key generates a summary in the report view.
func Run(rep advisor.Report, summarize SummaryFunc) error {
	p := tea.NewProgram(newExploreModel(rep, summarize), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
