package model

import "time"

// RawSkill is a skill row as stored or submitted, before normalization.
// Nil values mean the source did not provide the measurement.
type RawSkill struct {
	Name         string   `json:"name" yaml:"name"`
	Category     string   `json:"category,omitempty" yaml:"category"`
	Proficiency  *float64 `json:"proficiency,omitempty" yaml:"proficiency"`
	MarketDemand *float64 `json:"market_demand,omitempty" yaml:"market_demand"`
}

// SkillRecord is a normalized skill: proficiency in [0,5], demand in [0,100].
type SkillRecord struct {
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	Proficiency  float64 `json:"proficiency"`
	MarketDemand float64 `json:"market_demand"`
}

// Candidate is a person whose skill profile is analyzed.
type Candidate struct {
	ID     int64      `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Skills []RawSkill `json:"skills" yaml:"skills"`
}

// DataQuality grades how much evidence backs a set of health scores.
type DataQuality string

const (
	DataQualityExcellent    DataQuality = "excellent"
	DataQualityGood         DataQuality = "good"
	DataQualityFair         DataQuality = "fair"
	DataQualityLimited      DataQuality = "limited"
	DataQualityInsufficient DataQuality = "insufficient"
)

// HealthScores is the bounded 0-100 career health breakdown for a candidate.
type HealthScores struct {
	CandidateID        int64       `json:"candidate_id"`
	SkillsRelevance    int         `json:"skills_relevance"`
	MarketAlignment    int         `json:"market_alignment"`
	LearningTrajectory int         `json:"learning_trajectory"`
	IndustryDemand     int         `json:"industry_demand"`
	OverallScore       int         `json:"overall_score"`
	DataQuality        DataQuality `json:"data_quality"`
	SkillsAnalyzed     int         `json:"skills_analyzed"`
	Warning            string      `json:"warning,omitempty"`
	CalculatedAt       time.Time   `json:"calculated_at"`
}
