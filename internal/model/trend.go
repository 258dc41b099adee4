package model

import (
	"strings"
	"time"
)

// TrendDirection is the coarse movement of a demand series.
type TrendDirection string

const (
	TrendRising    TrendDirection = "rising"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// ParseTrendDirection accepts the stored market labels ("up", "stable",
// "down") as well as the series labels.
func ParseTrendDirection(s string) (TrendDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rising", "up":
		return TrendRising, nil
	case "stable", "":
		return TrendStable, nil
	case "declining", "down":
		return TrendDeclining, nil
	}
	return "", InvalidArgumentf("unknown trend direction %q", s)
}

// Provenance tells measured data apart from fabricated data.
type Provenance string

const (
	ProvenanceHistorical Provenance = "historical"
	ProvenanceEstimated  Provenance = "estimated"
	// ProvenanceMixed is a historical series whose oldest points were padded.
	ProvenanceMixed Provenance = "mixed"
)

// TrendPoint is one month of demand. Estimated is set on every point that
// was not read from history.
type TrendPoint struct {
	Month     time.Time `json:"month"`
	Demand    float64   `json:"demand_score"`
	Estimated bool      `json:"estimated"`
}

// TrendSeries is an oldest-first monthly demand series for one skill.
type TrendSeries struct {
	Skill           string         `json:"skill"`
	Points          []TrendPoint   `json:"points"`
	Source          Provenance     `json:"data_source"`
	Direction       TrendDirection `json:"trend"`
	PercentChange   float64        `json:"percent_change"`
	CurrentDemand   float64        `json:"current_demand"`
	EstimatedPoints int            `json:"estimated_points"`
}

// Values returns the demand scores in series order.
func (s TrendSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Demand
	}
	return out
}

// MarketEntry is the current demand snapshot for one skill. SalaryImpact, in
// lakhs, is optional and overrides the estimate gap analysis would make.
type MarketEntry struct {
	Skill        string         `json:"skill_name"`
	Category     string         `json:"category"`
	Demand       float64        `json:"demand_score"`
	Trend        TrendDirection `json:"trend"`
	LastUpdated  time.Time      `json:"last_updated"`
	SalaryImpact *float64       `json:"salary_impact,omitempty"`
}

// HistoryRecord is a stored monthly demand measurement.
type HistoryRecord struct {
	Skill  string    `json:"skill_name"`
	Month  time.Time `json:"month"`
	Demand float64   `json:"demand_score"`
}

// MonthStart truncates t to the first instant of its month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
