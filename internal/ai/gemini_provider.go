package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/amishk599/skillpulse/internal/model"
)

// GeminiProvider generates summaries with Google Gemini.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, temperature float64, maxTokens int) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{
		client:      client,
		model:       modelName,
		temperature: float32(temperature),
		maxTokens:   int32(maxTokens),
	}, nil
}

// Generate asks the model for a JSON reply. API status errors are mapped to
// *model.HTTPError so retry logic can see rate limits.
func (p *GeminiProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	m := p.client.GenerativeModel(p.model)
	m.SetTemperature(p.temperature)
	if p.maxTokens > 0 {
		m.SetMaxOutputTokens(p.maxTokens)
	}
	m.ResponseMIMEType = "application/json"
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", statusError(err)
	}
	return extractText(resp)
}

func (p *GeminiProvider) Available() bool { return true }
func (p *GeminiProvider) Name() string    { return ProviderGemini }

// Close releases the underlying client connection.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func statusError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &model.HTTPError{StatusCode: apiErr.Code, Err: err}
	}
	return fmt.Errorf("gemini generate: %w", err)
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("gemini: no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", errors.New("gemini: no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
