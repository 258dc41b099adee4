package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/amishk599/skillpulse/internal/ai"
)

// Fields every generated summary must carry.
var requiredFields = []string{
	"summary", "key_strengths", "opportunities",
	"action_items", "timeline_to_goal", "salary_impact",
}

var listFields = []string{"key_strengths", "opportunities", "action_items"}

var replySchema = mustSchema(ai.SummarySchema)

func mustSchema(doc map[string]any) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("compile summary schema: %v", err))
	}
	return s
}

// ErrContentRejected is returned when a generated reply contains a banned
// keyword.
var ErrContentRejected = errors.New("generated content rejected")

// ValidationError reports a generated reply with a bad structure.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid summary reply: " + strings.Join(e.Fields, "; ")
}

// reply is a validated generated summary.
type reply struct {
	Summary        string   `json:"summary"`
	KeyStrengths   []string `json:"key_strengths"`
	Opportunities  []string `json:"opportunities"`
	ActionItems    []string `json:"action_items"`
	TimelineToGoal string   `json:"timeline_to_goal"`
	SalaryImpact   string   `json:"salary_impact"`
}

func (r reply) texts() []string {
	out := []string{r.Summary, r.TimelineToGoal, r.SalaryImpact}
	out = append(out, r.KeyStrengths...)
	out = append(out, r.Opportunities...)
	return append(out, r.ActionItems...)
}

// decodeReply parses raw model output into a JSON object. When the text is
// not valid JSON as a whole, the first balanced {...} inside it is tried.
func decodeReply(raw string) (map[string]any, error) {
	text := cleanJSONBlock(raw)

	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err == nil && doc != nil {
		return doc, nil
	}

	obj, ok := extractObject(text)
	if !ok {
		return nil, errors.New("no JSON object found in reply")
	}
	doc = nil
	if err := json.Unmarshal([]byte(obj), &doc); err != nil {
		return nil, fmt.Errorf("parse extracted object: %w", err)
	}
	if doc == nil {
		return nil, errors.New("reply object is null")
	}
	return doc, nil
}

// validateReply checks required fields, coerces scalar list fields into
// one-element lists and validates the result against the summary schema.
// Unknown fields are dropped.
func validateReply(doc map[string]any) (reply, error) {
	var missing []string
	for _, f := range requiredFields {
		if _, ok := doc[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return reply{}, &ValidationError{Fields: prefixAll("missing ", missing)}
	}

	clean := make(map[string]any, len(requiredFields))
	for _, f := range requiredFields {
		clean[f] = doc[f]
	}
	for _, f := range listFields {
		if _, ok := clean[f].([]any); !ok {
			clean[f] = []any{clean[f]}
		}
	}

	result, err := replySchema.Validate(gojsonschema.NewGoLoader(clean))
	if err != nil {
		return reply{}, fmt.Errorf("validate reply: %w", err)
	}
	if !result.Valid() {
		fields := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			fields = append(fields, e.Field()+": "+e.Description())
		}
		return reply{}, &ValidationError{Fields: fields}
	}

	b, err := json.Marshal(clean)
	if err != nil {
		return reply{}, fmt.Errorf("encode reply: %w", err)
	}
	var r reply
	if err := json.Unmarshal(b, &r); err != nil {
		return reply{}, fmt.Errorf("decode reply: %w", err)
	}
	return r, nil
}

func prefixAll(prefix string, ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = prefix + s
	}
	return out
}

// cleanJSONBlock strips a surrounding markdown code fence.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := text[:idx]
		if len(first) < 20 && !strings.Contains(first, " ") && !strings.Contains(first, "{") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// extractObject returns the first balanced {...} in text. Braces inside JSON
// strings, including escaped quotes, are ignored.
func extractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
