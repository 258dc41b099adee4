package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/skillpulse/internal/model"
)

// Dataset is an importable bundle of candidates, market data and history.
// YAML and JSON files are both accepted.
type Dataset struct {
	Candidates []model.Candidate `yaml:"candidates"`
	Market     []MarketRow       `yaml:"market"`
	History    []HistoryRow      `yaml:"history"`
}

// MarketRow is a market entry as written in a dataset file. SalaryImpact is
// optional; rows without one get an estimate during gap analysis.
type MarketRow struct {
	Skill        string   `yaml:"skill_name"`
	Category     string   `yaml:"category"`
	Demand       float64  `yaml:"demand_score"`
	Trend        string   `yaml:"trend"`
	SalaryImpact *float64 `yaml:"salary_impact"`
}

// HistoryRow is a monthly demand value; Month is "2006-01" or "2006-01-02".
type HistoryRow struct {
	Skill  string  `yaml:"skill_name"`
	Month  string  `yaml:"month"`
	Demand float64 `yaml:"demand_score"`
}

// LoadDataset reads a dataset file.
func LoadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset: %w", err)
	}
	var d Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Dataset{}, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return d, nil
}

// ImportStats counts what an import wrote.
type ImportStats struct {
	Candidates int
	Market     int
	History    int
}

// Import validates d and writes it through w.
func Import(ctx context.Context, w Writer, d Dataset) (ImportStats, error) {
	var stats ImportStats

	market := make([]model.MarketEntry, 0, len(d.Market))
	for i, row := range d.Market {
		if strings.TrimSpace(row.Skill) == "" {
			return stats, fmt.Errorf("market[%d]: skill_name is required", i)
		}
		trend, err := model.ParseTrendDirection(row.Trend)
		if err != nil {
			return stats, fmt.Errorf("market[%d]: %w", i, err)
		}
		market = append(market, model.MarketEntry{
			Skill:        strings.TrimSpace(row.Skill),
			Category:     row.Category,
			Demand:       row.Demand,
			Trend:        trend,
			SalaryImpact: row.SalaryImpact,
		})
	}

	history := make([]model.HistoryRecord, 0, len(d.History))
	for i, row := range d.History {
		month, err := ParseMonth(row.Month)
		if err != nil {
			return stats, fmt.Errorf("history[%d]: %w", i, err)
		}
		history = append(history, model.HistoryRecord{Skill: strings.TrimSpace(row.Skill), Month: month, Demand: row.Demand})
	}

	for i, c := range d.Candidates {
		if c.ID <= 0 {
			return stats, fmt.Errorf("candidates[%d]: id must be positive", i)
		}
		if err := w.SaveCandidate(ctx, c); err != nil {
			return stats, err
		}
		stats.Candidates++
	}
	if len(market) > 0 {
		if err := w.UpsertMarket(ctx, market); err != nil {
			return stats, err
		}
		stats.Market = len(market)
	}
	if len(history) > 0 {
		if err := w.RecordHistory(ctx, history); err != nil {
			return stats, err
		}
		stats.History = len(history)
	}
	return stats, nil
}

// ParseMonth accepts "2006-01" or "2006-01-02" and returns the first of
// that month in UTC.
func ParseMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01", monthLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return model.MonthStart(t), nil
		}
	}
	return time.Time{}, model.InvalidArgumentf("month %q must be YYYY-MM", s)
}
