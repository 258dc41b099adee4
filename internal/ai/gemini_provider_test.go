package ai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/amishk599/skillpulse/internal/model"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{name: "nil response", resp: nil, wantErr: true},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: true},
		{
			name:    "no content",
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			wantErr: true,
		},
		{
			name: "joins text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"summary":`), genai.Text(`"hi"}`)}},
			}}},
			want: `{"summary":"hi"}`,
		},
		{
			name: "non-text parts only",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}},
			}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractText(tt.resp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusError_MapsAPIStatus(t *testing.T) {
	err := statusError(fmt.Errorf("rpc: %w", &googleapi.Error{Code: 429, Message: "quota"}))

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || !httpErr.RateLimited() {
		t.Fatalf("expected rate-limited HTTPError, got %v", err)
	}

	plain := statusError(errors.New("dial tcp: refused"))
	if errors.As(plain, &httpErr) {
		t.Fatalf("network error should not become HTTPError: %v", plain)
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(t.Context(), "", "gemini-1.5-flash", 0.7, 1000); err == nil {
		t.Fatal("expected error without API key")
	}
}
