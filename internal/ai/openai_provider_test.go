package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
)

func makeTestServer(t *testing.T, statusCode int, body any) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if statusCode == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "3")
		}
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, srv.Client()
}

func reply(content string) chatResponse {
	return chatResponse{Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: content}}}}
}

func newTestProvider(url string, client *http.Client) *OpenAIProvider {
	return NewOpenAIProvider(url, "test-key", "test-model", 0.7, 1000, client)
}

func TestGenerate_Success(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusOK, reply(`{"summary":"ok"}`))

	got, err := newTestProvider(srv.URL, client).Generate(context.Background(), "sys", "advise me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"summary":"ok"}` {
		t.Errorf("got %q, want json string", got)
	}
}

func TestGenerate_HTTPError(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusInternalServerError, map[string]string{"error": "server error"})

	_, err := newTestProvider(srv.URL, client).Generate(context.Background(), "sys", "advise me")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 500 {
		t.Fatalf("expected HTTPError 500, got %v", err)
	}
}

func TestGenerate_RateLimitedCarriesRetryAfter(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusTooManyRequests, map[string]string{"error": "rate limited"})

	_, err := newTestProvider(srv.URL, client).Generate(context.Background(), "sys", "advise me")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if !httpErr.RateLimited() {
		t.Errorf("expected rate-limited error, got status %d", httpErr.StatusCode)
	}
	if httpErr.RetryAfter != 3*time.Second {
		t.Errorf("RetryAfter = %v, want 3s", httpErr.RetryAfter)
	}
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusOK, chatResponse{Choices: nil})

	_, err := newTestProvider(srv.URL, client).Generate(context.Background(), "sys", "advise me")
	if err == nil {
		t.Fatal("expected error when LLM returns no choices")
	}
}

func TestGenerate_SetsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply("ok"))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(srv.URL, "my-secret-key", "test-model", 0.7, 1000, srv.Client())
	_, _ = provider.Generate(context.Background(), "sys", "hello")

	if gotAuth != "Bearer my-secret-key" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer my-secret-key")
	}
}

func TestGenerate_SendsSystemAndStructuredOutputFormat(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply("{}"))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(srv.URL, "key", "gpt-4o-mini", 0.7, 1000, srv.Client())
	_, _ = provider.Generate(context.Background(), SystemInstruction, "advise me")

	if gotReq.ResponseFormat.Type != "json_schema" {
		t.Errorf("response_format.type = %q, want json_schema", gotReq.ResponseFormat.Type)
	}
	if gotReq.ResponseFormat.JSONSchema.Name != "career_summary" {
		t.Errorf("response_format.json_schema.name = %q, want career_summary", gotReq.ResponseFormat.JSONSchema.Name)
	}
	if gotReq.Temperature != 0.7 || gotReq.MaxTokens != 1000 {
		t.Errorf("temperature/max_tokens = %v/%d, want 0.7/1000", gotReq.Temperature, gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != SystemInstruction {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
}

func TestNewClient_DisabledIsNop(t *testing.T) {
	c, err := NewClient(context.Background(), Settings{Enabled: false, APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Available() {
		t.Fatal("disabled client should be unavailable")
	}
	if _, err := c.Generate(context.Background(), "", ""); !errors.Is(err, model.ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}

	c, err = NewClient(context.Background(), Settings{Enabled: true, Provider: ProviderOpenAI})
	if err != nil || c.Available() {
		t.Fatalf("missing API key should give an unavailable client, got %v / %v", c, err)
	}
}

func TestNewClient_SelectsProvider(t *testing.T) {
	c, err := NewClient(context.Background(), Settings{Enabled: true, Provider: ProviderOpenAI, APIKey: "k", BaseURL: "http://x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name() != ProviderOpenAI || !c.Available() {
		t.Errorf("got %s available=%v", c.Name(), c.Available())
	}

	if _, err := NewClient(context.Background(), Settings{Enabled: true, Provider: "clippy", APIKey: "k"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
