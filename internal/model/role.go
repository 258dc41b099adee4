package model

import (
	"fmt"
	"strings"
)

// Importance is how strongly a role template weighs a skill.
type Importance string

const (
	ImportanceCritical Importance = "Critical"
	ImportanceHigh     Importance = "High"
	ImportanceMedium   Importance = "Medium"
	ImportanceLow      Importance = "Low"
)

// ParseImportance accepts any casing of the four levels.
func ParseImportance(s string) (Importance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return ImportanceCritical, nil
	case "high":
		return ImportanceHigh, nil
	case "medium":
		return ImportanceMedium, nil
	case "low":
		return ImportanceLow, nil
	}
	return "", InvalidArgumentf("unknown importance %q", s)
}

// SkillRequirement is one entry of a role template.
type SkillRequirement struct {
	Skill          string     `json:"skill"`
	Importance     Importance `json:"importance"`
	MinProficiency float64    `json:"min_proficiency"`
}

// RoleRequirement is an immutable role template. Required and Optional keep
// the order the catalog declared them in.
type RoleRequirement struct {
	Name     string             `json:"role_name"`
	Required []SkillRequirement `json:"required_skills"`
	Optional []SkillRequirement `json:"optional_skills"`
}

func (r RoleRequirement) String() string {
	return fmt.Sprintf("%s (%d required, %d optional)", r.Name, len(r.Required), len(r.Optional))
}
