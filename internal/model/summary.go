package model

import (
	"strings"
	"time"
)

// SummaryContext selects the focus of a generated career summary.
type SummaryContext string

const (
	ContextCareerGrowth SummaryContext = "career_growth"
	ContextJobSearch    SummaryContext = "job_search"
	ContextUpskilling   SummaryContext = "upskilling"
)

// ParseSummaryContext validates a context at the boundary. An empty string
// selects career_growth.
func ParseSummaryContext(s string) (SummaryContext, error) {
	switch SummaryContext(strings.ToLower(strings.TrimSpace(s))) {
	case "", ContextCareerGrowth:
		return ContextCareerGrowth, nil
	case ContextJobSearch:
		return ContextJobSearch, nil
	case ContextUpskilling:
		return ContextUpskilling, nil
	}
	return "", InvalidArgumentf("context must be one of career_growth, job_search, upskilling; got %q", s)
}

// Source records which path produced a summary.
type Source string

const (
	SourceAI       Source = "ai"
	SourceTemplate Source = "template"
)

// SummaryResult is an immutable career summary.
type SummaryResult struct {
	CandidateID    int64          `json:"candidate_id"`
	Context        SummaryContext `json:"context"`
	Summary        string         `json:"summary"`
	KeyStrengths   []string       `json:"key_strengths"`
	Opportunities  []string       `json:"opportunities"`
	ActionItems    []string       `json:"action_items"`
	TimelineToGoal string         `json:"timeline_to_goal"`
	SalaryImpact   string         `json:"salary_impact"`
	Source         Source         `json:"source"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// GenerationEvent describes how one summary request was served.
type GenerationEvent struct {
	ID             string         `json:"id"`
	CandidateID    int64          `json:"candidate_id"`
	Context        SummaryContext `json:"context"`
	Source         Source         `json:"source"`
	CacheHit       bool           `json:"cache_hit"`
	Attempts       int            `json:"attempts"`
	FallbackReason string         `json:"fallback_reason,omitempty"`
	At             time.Time      `json:"at"`
}
