package filter

import (
	"strings"
)

// Rule maps a label to the keywords that select it.
type Rule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Classifier assigns the label of the first rule that has a keyword contained
// in the input. Matching is case-insensitive substring. Rules are evaluated
// in order, so earlier rules win on overlap.
type Classifier struct {
	rules    []Rule
	fallback string
}

// NewClassifier returns a classifier over rules; inputs that match nothing
// get fallback.
func NewClassifier(rules []Rule, fallback string) *Classifier {
	lowered := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		lowered = append(lowered, Rule{Label: r.Label, Keywords: kws})
	}
	return &Classifier{rules: lowered, fallback: fallback}
}

// Match returns the label of the first matching rule.
func (c *Classifier) Match(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Label, true
			}
		}
	}
	return "", false
}

// Classify is Match with the fallback label applied.
func (c *Classifier) Classify(s string) string {
	if label, ok := c.Match(s); ok {
		return label
	}
	return c.fallback
}

// ContentFilter rejects generated text that contains any banned keyword.
type ContentFilter struct {
	keywords []string
}

// NewContentFilter returns a filter over keywords (case-insensitive substring).
// An empty keyword list disables filtering.
func NewContentFilter(keywords []string) *ContentFilter {
	kws := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			kws = append(kws, kw)
		}
	}
	return &ContentFilter{keywords: kws}
}

// Check returns the first banned keyword found in any of texts.
func (f *ContentFilter) Check(texts ...string) (string, bool) {
	for _, t := range texts {
		lower := strings.ToLower(t)
		for _, kw := range f.keywords {
			if strings.Contains(lower, kw) {
				return kw, true
			}
		}
	}
	return "", false
}
