// Package normalize clamps and rescales raw proficiency and market-demand
// values. It never returns an error: anything it cannot interpret becomes
// the fixed default.
package normalize

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/amishk599/skillpulse/internal/model"
)

const (
	DefaultProficiency  = 3.0
	DefaultMarketDemand = 50.0

	maxProficiency = 5.0
	maxDemand      = 100.0
)

// Normalizer converts loosely typed skill measurements into bounded values.
type Normalizer struct {
	logger *slog.Logger
}

// New returns a Normalizer that reports defaulted values on logger.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Proficiency returns raw on the 0-5 scale. Values above 5 are treated as
// percentages and rescaled before clamping.
func (n *Normalizer) Proficiency(raw any) float64 {
	v, ok := n.parse("proficiency", raw, DefaultProficiency)
	if !ok {
		return DefaultProficiency
	}
	if v > maxProficiency {
		v = v / 100 * maxProficiency
	}
	return clamp(v, 0, maxProficiency)
}

// MarketDemand returns raw on the 0-100 scale. Values in [0,1], both ends
// included, are treated as fractions and rescaled before clamping.
func (n *Normalizer) MarketDemand(raw any) float64 {
	v, ok := n.parse("market_demand", raw, DefaultMarketDemand)
	if !ok {
		return DefaultMarketDemand
	}
	if v >= 0 && v <= 1 {
		v *= 100
	}
	return clamp(v, 0, maxDemand)
}

// Skill returns a normalized copy of raw.
func (n *Normalizer) Skill(raw model.RawSkill) model.SkillRecord {
	return model.SkillRecord{
		Name:         strings.TrimSpace(raw.Name),
		Category:     raw.Category,
		Proficiency:  n.Proficiency(raw.Proficiency),
		MarketDemand: n.MarketDemand(raw.MarketDemand),
	}
}

// Skills normalizes every element of raw into a new slice.
func (n *Normalizer) Skills(raw []model.RawSkill) []model.SkillRecord {
	out := make([]model.SkillRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, n.Skill(r))
	}
	return out
}

func (n *Normalizer) parse(field string, raw any, def float64) (float64, bool) {
	v, present, ok := toFloat(raw)
	switch {
	case !present:
		n.logger.Warn("value absent, using default", "field", field, "default", def)
		return 0, false
	case !ok:
		n.logger.Warn("unparseable value, using default", "field", field, "raw", raw, "default", def)
		return 0, false
	}
	return v, true
}

// toFloat reports whether raw carried a value at all and whether that value
// is a finite number.
func toFloat(raw any) (v float64, present bool, ok bool) {
	switch x := raw.(type) {
	case nil:
		return 0, false, false
	case *float64:
		if x == nil {
			return 0, false, false
		}
		v = *x
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int32:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint:
		v = float64(x)
	case uint32:
		v = float64(x)
	case uint64:
		v = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, true, false
		}
		v = f
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, true, false
		}
		v = f
	default:
		return 0, true, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, false
	}
	return v, true, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
