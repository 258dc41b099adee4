package normalize

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amishk599/skillpulse/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(f float64) *float64 { return &f }

func TestProficiency(t *testing.T) {
	n := New(discardLogger())

	tests := []struct {
		name string
		raw  any
		want float64
	}{
		{name: "in range", raw: 4.2, want: 4.2},
		{name: "zero is kept", raw: 0.0, want: 0},
		{name: "upper bound", raw: 5, want: 5},
		{name: "percentage rescaled", raw: 80.0, want: 4},
		{name: "percentage above 100 clamps", raw: 150, want: 5},
		{name: "negative clamps to zero", raw: -2.0, want: 0},
		{name: "nil defaults", raw: nil, want: DefaultProficiency},
		{name: "nil pointer defaults", raw: (*float64)(nil), want: DefaultProficiency},
		{name: "pointer value", raw: ptr(2.5), want: 2.5},
		{name: "numeric string", raw: " 3.5 ", want: 3.5},
		{name: "garbage string defaults", raw: "expert", want: DefaultProficiency},
		{name: "json number", raw: json.Number("60"), want: 3},
		{name: "NaN defaults", raw: math.NaN(), want: DefaultProficiency},
		{name: "unsupported type defaults", raw: []int{1}, want: DefaultProficiency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, n.Proficiency(tt.raw), 1e-9)
		})
	}
}

func TestMarketDemand(t *testing.T) {
	n := New(discardLogger())

	tests := []struct {
		name string
		raw  any
		want float64
	}{
		{name: "in range", raw: 72.0, want: 72},
		{name: "fraction rescaled", raw: 0.85, want: 85},
		{name: "exactly one is fractional", raw: 1.0, want: 100},
		{name: "exactly zero is fractional", raw: 0.0, want: 0},
		{name: "just above one is not rescaled", raw: 1.5, want: 1.5},
		{name: "above 100 clamps", raw: 140, want: 100},
		{name: "negative clamps", raw: -10, want: 0},
		{name: "absent defaults", raw: nil, want: DefaultMarketDemand},
		{name: "empty string defaults", raw: "", want: DefaultMarketDemand},
		{name: "infinite defaults", raw: math.Inf(1), want: DefaultMarketDemand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, n.MarketDemand(tt.raw), 1e-9)
		})
	}
}

func TestBoundsHoldForRandomInput(t *testing.T) {
	n := New(discardLogger())
	r := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 2000; i++ {
		p := (r.Float64() - 0.3) * 400
		got := n.Proficiency(p)
		if got < 0 || got > 5 {
			t.Fatalf("Proficiency(%v) = %v out of [0,5]", p, got)
		}
		if p > 5 {
			want := math.Max(0, math.Min(5, p/100*5))
			assert.InDelta(t, want, got, 1e-9)
		}

		d := (r.Float64() - 0.3) * 400
		gotD := n.MarketDemand(d)
		if gotD < 0 || gotD > 100 {
			t.Fatalf("MarketDemand(%v) = %v out of [0,100]", d, gotD)
		}
	}

	for i := 0; i < 200; i++ {
		d := r.Float64()
		assert.InDelta(t, d*100, n.MarketDemand(d), 1e-9)
	}
}

func TestSkillDoesNotMutateInput(t *testing.T) {
	n := New(discardLogger())
	raw := model.RawSkill{Name: " Go ", Category: "Languages", Proficiency: ptr(90), MarketDemand: ptr(0.7)}

	got := n.Skill(raw)

	assert.Equal(t, "Go", got.Name)
	assert.InDelta(t, 4.5, got.Proficiency, 1e-9)
	assert.InDelta(t, 70, got.MarketDemand, 1e-9)
	assert.Equal(t, 90.0, *raw.Proficiency)
	assert.Equal(t, 0.7, *raw.MarketDemand)
	assert.Equal(t, " Go ", raw.Name)
}

func TestDefaultsAreLoggedAsWarnings(t *testing.T) {
	var buf bytes.Buffer
	n := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	n.Proficiency(nil)
	n.MarketDemand("lots")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "value absent")
	assert.Contains(t, lines[0], "field=proficiency")
	assert.Contains(t, lines[1], "unparseable value")
	for _, l := range lines {
		assert.Contains(t, l, "level=WARN")
	}
}

func TestSkills(t *testing.T) {
	n := New(discardLogger())
	got := n.Skills([]model.RawSkill{{Name: "a"}, {Name: "b", Proficiency: ptr(1)}})

	assert.Len(t, got, 2)
	assert.Equal(t, DefaultProficiency, got[0].Proficiency)
	assert.Equal(t, DefaultMarketDemand, got[0].MarketDemand)
	assert.Equal(t, 1.0, got[1].Proficiency)
}
