package summary

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/skillpulse/internal/model"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`, ok: true},
		{name: "surrounding prose", in: `Here: {"a":{"b":2}} done {"c":3}`, want: `{"a":{"b":2}}`, ok: true},
		{name: "brace inside string", in: `x {"a":"}{"} y`, want: `{"a":"}{"}`, ok: true},
		{name: "escaped quote", in: `{"a":"say \"}\" now"}`, want: `{"a":"say \"}\" now"}`, ok: true},
		{name: "escaped backslash", in: `{"a":"c:\\"} tail`, want: `{"a":"c:\\"}`, ok: true},
		{name: "unbalanced", in: `{"a":{"b":1}`, ok: false},
		{name: "no object", in: `nothing here`, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractObject(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanJSONBlock(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("  {\"a\":1}  "))
}

func TestDecodeReply_Fenced(t *testing.T) {
	doc, err := decodeReply("```json\n" + validReply + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "6-12 months", doc["timeline_to_goal"])
}

func TestDecodeReply_Null(t *testing.T) {
	_, err := decodeReply("null")
	assert.Error(t, err)
}

func TestValidateReply(t *testing.T) {
	doc, err := decodeReply(validReply)
	require.NoError(t, err)
	doc["extra"] = "ignored"

	r, err := validateReply(doc)
	require.NoError(t, err)
	assert.Equal(t, "You are a strong backend engineer.", r.Summary)
	assert.Len(t, r.ActionItems, 3)
}

func TestValidateReply_MissingFields(t *testing.T) {
	_, err := validateReply(map[string]any{"summary": "x"})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 5)
	assert.Contains(t, verr.Error(), "missing salary_impact")
}

func TestValidateReply_SchemaFailure(t *testing.T) {
	doc, err := decodeReply(strings.Replace(validReply, `"Docker"]`, `7]`, 1))
	require.NoError(t, err)

	_, err = validateReply(doc)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.NotEmpty(t, verr.Fields)
}

func TestBuildPrompt(t *testing.T) {
	var skills []model.SkillRecord
	for i := 0; i < 20; i++ {
		skills = append(skills, model.SkillRecord{Name: "s" + string(rune('a'+i)), Proficiency: float64(i % 6)})
	}
	skills = append(skills, model.SkillRecord{Name: "Go", Proficiency: 4.96})

	longName := strings.Repeat("n", 60)
	prompt, err := BuildPrompt(longName, skills, model.HealthScores{OverallScore: 71, SkillsRelevance: 64, MarketAlignment: 82}, "", model.ContextJobSearch)
	require.NoError(t, err)

	assert.Contains(t, prompt, "- Name: "+strings.Repeat("n", 50)+"\n")
	assert.Contains(t, prompt, "- Total Skills: 21")
	assert.Contains(t, prompt, "- Top Skills: sf (Proficiency: 5.0/5), sl (Proficiency: 5.0/5), sr (Proficiency: 5.0/5), Go (Proficiency: 5.0/5), se")
	assert.Equal(t, 15, strings.Count(prompt, "(Proficiency:"))
	assert.Contains(t, prompt, "Career Health Score: 71/100")
	assert.Contains(t, prompt, "No specific target role specified")
	assert.Contains(t, prompt, Instruction(model.ContextJobSearch))
	assert.Contains(t, prompt, "- Focus on job search")
}

func TestBuildPrompt_TargetRoleCapped(t *testing.T) {
	role := "  " + strings.Repeat("é", 120) + "  "
	prompt, err := BuildPrompt("A", nil, model.HealthScores{}, role, model.ContextUpskilling)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Target Role: "+strings.Repeat("é", 100)+"\n")
}
