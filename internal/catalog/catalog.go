// Package catalog loads role requirement templates from YAML or JSON.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/skillpulse/internal/model"
)

//go:embed roles.yaml
var defaultRoles []byte

// Defaults applied to entries that omit a field.
const (
	DefaultRequiredImportance = model.ImportanceHigh
	DefaultOptionalImportance = model.ImportanceMedium
	DefaultRequiredLevel      = 3.0
	DefaultOptionalLevel      = 2.0
)

// Catalog is an immutable, in-memory set of role templates.
type Catalog struct {
	roles  []model.RoleRequirement
	byName map[string]int
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultRoles)
	if err != nil {
		panic(fmt.Sprintf("built-in role catalog: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML or JSON file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read role catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("role catalog %s: %w", path, err)
	}
	return c, nil
}

type rawRequirement struct {
	Importance     string   `yaml:"importance"`
	MinProficiency *float64 `yaml:"min_proficiency"`
}

// Parse decodes a document of the form
//
//	roles:
//	  - role_name: Backend Developer
//	    required_skills: {Python: {importance: High, min_proficiency: 3}}
//	    optional_skills: {Docker: {importance: Medium}}
//
// Skills keep the order they appear in the document. JSON input is accepted
// because it is valid YAML.
func Parse(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	rolesNode := mappingValue(doc.Content[0], "roles")
	if rolesNode == nil || rolesNode.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("missing roles list")
	}

	c := &Catalog{byName: make(map[string]int, len(rolesNode.Content))}
	for i, rn := range rolesNode.Content {
		role, err := parseRole(rn)
		if err != nil {
			return nil, fmt.Errorf("roles[%d]: %w", i, err)
		}
		key := strings.ToLower(role.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("roles[%d]: duplicate role %q", i, role.Name)
		}
		c.byName[key] = len(c.roles)
		c.roles = append(c.roles, role)
	}
	return c, nil
}

func parseRole(n *yaml.Node) (model.RoleRequirement, error) {
	if n.Kind != yaml.MappingNode {
		return model.RoleRequirement{}, fmt.Errorf("line %d: role must be a mapping", n.Line)
	}
	var role model.RoleRequirement
	if nameNode := mappingValue(n, "role_name"); nameNode != nil {
		role.Name = strings.TrimSpace(nameNode.Value)
	}
	if role.Name == "" {
		return role, fmt.Errorf("line %d: role_name is required", n.Line)
	}

	var err error
	role.Required, err = parseSkills(mappingValue(n, "required_skills"), DefaultRequiredImportance, DefaultRequiredLevel)
	if err != nil {
		return role, fmt.Errorf("%s required_skills: %w", role.Name, err)
	}
	role.Optional, err = parseSkills(mappingValue(n, "optional_skills"), DefaultOptionalImportance, DefaultOptionalLevel)
	if err != nil {
		return role, fmt.Errorf("%s optional_skills: %w", role.Name, err)
	}
	return role, nil
}

func parseSkills(n *yaml.Node, defImportance model.Importance, defLevel float64) ([]model.SkillRequirement, error) {
	out := []model.SkillRequirement{}
	if n == nil || n.Tag == "!!null" {
		return out, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of skill name to requirement", n.Line)
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		name := strings.TrimSpace(n.Content[i].Value)
		if name == "" {
			return nil, fmt.Errorf("line %d: empty skill name", n.Content[i].Line)
		}

		var raw rawRequirement
		if v := n.Content[i+1]; v.Tag != "!!null" {
			if err := v.Decode(&raw); err != nil {
				return nil, fmt.Errorf("skill %q: %w", name, err)
			}
		}

		req := model.SkillRequirement{Skill: name, Importance: defImportance, MinProficiency: defLevel}
		if raw.Importance != "" {
			imp, err := model.ParseImportance(raw.Importance)
			if err != nil {
				return nil, fmt.Errorf("skill %q: %w", name, err)
			}
			req.Importance = imp
		}
		if raw.MinProficiency != nil {
			if *raw.MinProficiency < 0 || *raw.MinProficiency > 5 {
				return nil, fmt.Errorf("skill %q: min_proficiency %v outside [0,5]", name, *raw.MinProficiency)
			}
			req.MinProficiency = *raw.MinProficiency
		}
		out = append(out, req)
	}
	return out, nil
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// Role returns the template named name (case-insensitive).
func (c *Catalog) Role(_ context.Context, name string) (model.RoleRequirement, error) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return model.RoleRequirement{}, fmt.Errorf("role %q: %w", name, model.ErrNotFound)
	}
	return c.roles[i], nil
}

// Roles lists role names in catalog order.
func (c *Catalog) Roles(_ context.Context) ([]string, error) {
	names := make([]string, len(c.roles))
	for i, r := range c.roles {
		names[i] = r.Name
	}
	return names, nil
}

// Len reports the number of roles.
func (c *Catalog) Len() int { return len(c.roles) }
