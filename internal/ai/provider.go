// Package ai provides the text-generation backends used for career summaries.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
)

// Client is a GenerationClient that may hold resources.
type Client interface {
	model.GenerationClient
	Close() error
}

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Settings selects and tunes a generation backend.
type Settings struct {
	Enabled     bool
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	HTTPTimeout time.Duration
}

// NewClient builds the backend named by s.Provider. A disabled config or a
// missing API key yields a NopClient, which reports itself unavailable.
func NewClient(ctx context.Context, s Settings) (Client, error) {
	if !s.Enabled || s.APIKey == "" {
		return NewNopClient(), nil
	}
	switch s.Provider {
	case ProviderOpenAI, "":
		httpClient := &http.Client{Timeout: s.HTTPTimeout}
		return NewOpenAIProvider(s.BaseURL, s.APIKey, s.Model, s.Temperature, s.MaxTokens, httpClient), nil
	case ProviderGemini:
		p, err := NewGeminiProvider(ctx, s.APIKey, s.Model, s.Temperature, s.MaxTokens)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", s.Provider)
}

// SummarySchema is the JSON Schema of a generated career summary. It is sent
// to providers that support structured outputs and used to validate replies.
var SummarySchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"summary": map[string]any{"type": "string", "minLength": 1},
		"key_strengths": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"opportunities": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"action_items": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"timeline_to_goal": map[string]any{"type": "string"},
		"salary_impact":    map[string]any{"type": "string"},
	},
	"required": []string{
		"summary", "key_strengths", "opportunities",
		"action_items", "timeline_to_goal", "salary_impact",
	},
}
