package trend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/skillpulse/internal/model"
)

func categoryFixture() (*mockHistory, mockMarket) {
	var records []model.HistoryRecord
	records = append(records, series("Rust", 60, 65, 70)...)
	records = append(records, series("Go", 80, 80, 80)...)
	records = append(records, series("Angular", 70, 66, 62)...)
	records = append(records, series("React", 85, 85, 86)...)
	records = append(records, series("Vue", 70, 70, 70)...)
	records = append(records, series("Svelte", 60, 60)...)
	records = append(records, series("COBOL", 40, 40, 40)...)
	records = append(records, series("Docker", 75, 75, 75)...)

	m := mockMarket{
		"rust":    {Skill: "Rust", Category: "Programming Languages", Demand: 72},
		"go":      {Skill: "Go", Category: "Programming Languages", Demand: 75},
		"angular": {Skill: "Angular", Category: "Frontend", Demand: 65},
		"react":   {Skill: "React", Category: "Frontend", Demand: 87},
		"vue":     {Skill: "Vue", Category: "Frontend", Demand: 68},
		"svelte":  {Skill: "Svelte", Category: "Frontend", Demand: 55},
		"docker":  {Skill: "Docker", Demand: 75},
	}
	return &mockHistory{supported: true, records: records}, m
}

func TestCategoryTrends(t *testing.T) {
	h, m := categoryFixture()
	s := newTestSynthesizer(h, m)

	got, err := s.CategoryTrends(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got.PeriodMonths)
	require.Len(t, got.Categories, 3, "skills missing from the market table are left out")

	lang := got.Categories[0]
	assert.Equal(t, "Programming Languages", lang.Category)
	assert.Equal(t, 73.5, lang.AverageDemand)
	assert.Equal(t, 5.0, lang.TotalChange)
	assert.Equal(t, 7.14, lang.PercentChange)
	assert.Equal(t, model.TrendRising, lang.Direction)
	assert.Equal(t, []string{"Go", "Rust"}, lang.TopSkills)
	assert.Equal(t, 2, lang.SkillCount)

	other := got.Categories[1]
	assert.Equal(t, "Other", other.Category)
	assert.Equal(t, model.TrendStable, other.Direction)
	assert.Equal(t, 0.0, other.PercentChange)

	fe := got.Categories[2]
	assert.Equal(t, "Frontend", fe.Category)
	assert.Equal(t, 68.8, fe.AverageDemand)
	assert.Equal(t, -5.5, fe.TotalChange)
	assert.Equal(t, -7.33, fe.PercentChange)
	assert.Equal(t, model.TrendDeclining, fe.Direction)
	assert.Equal(t, []string{"React", "Vue", "Angular"}, fe.TopSkills)
	assert.Equal(t, 4, fe.SkillCount)
}

func TestCategoryTrends_SingleMonthIsStable(t *testing.T) {
	h, m := categoryFixture()
	got, err := newTestSynthesizer(h, m).CategoryTrends(context.Background(), 1)
	require.NoError(t, err)

	for _, c := range got.Categories {
		assert.Equal(t, model.TrendStable, c.Direction, c.Category)
		assert.Zero(t, c.TotalChange, c.Category)
	}
}

func TestCategoryTrends_Errors(t *testing.T) {
	h, m := categoryFixture()

	_, err := newTestSynthesizer(h, m).CategoryTrends(context.Background(), 0)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = newTestSynthesizer(h, m).CategoryTrends(context.Background(), 25)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = newTestSynthesizer(nil, m).CategoryTrends(context.Background(), 12)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = newTestSynthesizer(h, mockMarket{}).CategoryTrends(context.Background(), 12)
	assert.ErrorIs(t, err, model.ErrNotFound, "no history joins the market table")
}
