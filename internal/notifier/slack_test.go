package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEvent() model.GenerationEvent {
	return model.GenerationEvent{
		ID:          "3f0c",
		CandidateID: 12,
		Context:     model.ContextCareerGrowth,
		Source:      model.SourceAI,
		Attempts:    1,
		At:          time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestSlackNotifier_SingleEvent(t *testing.T) {
	var body []byte
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if got := payload.Blocks[0].Text.Text; got != "Career summary for candidate 12" {
		t.Errorf("header text = %q", got)
	}
	if got := payload.Blocks[1].Fields[0].Text; got != "*Context:*\ncareer growth" {
		t.Errorf("context field = %q", got)
	}
	if got := payload.Blocks[2].Fields[0].Text; got != "*Served:*\nGenerated" {
		t.Errorf("served field = %q", got)
	}
	if last := payload.Blocks[len(payload.Blocks)-1]; last.Type != "divider" {
		t.Errorf("last block type = %q, want divider", last.Type)
	}
	if len(payload.Blocks) != 4 {
		t.Errorf("expected 4 blocks without fallback, got %d", len(payload.Blocks))
	}
}

func TestSlackNotifier_FallbackBlock(t *testing.T) {
	e := sampleEvent()
	e.Source = model.SourceTemplate
	e.FallbackReason = "generation unavailable"
	e.CacheHit = true

	payload := buildPayload(e)
	if len(payload.Blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(payload.Blocks))
	}
	if got := payload.Blocks[3].Text.Text; got != "*Fallback:* generation unavailable" {
		t.Errorf("fallback block = %q", got)
	}
	if got := payload.Blocks[2].Fields[0].Text; got != "*Served:*\nCache hit" {
		t.Errorf("served field = %q", got)
	}
}

func TestSlackNotifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleEvent()); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestSlackNotifier_RateLimitedThenOK(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Notify() = %v, want nil after retry", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_RateLimitedContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(ctx, sampleEvent()); err == nil {
		t.Fatal("expected context error while waiting for Retry-After")
	}
}

func TestSendTestEvent(t *testing.T) {
	rec := &recordingPublisher{}
	n := newAMQPNotifier(rec, DefaultExchange, discardLogger())

	if err := SendTestEvent(context.Background(), n); err != nil {
		t.Fatalf("SendTestEvent() = %v", err)
	}
	if len(rec.msgs) != 1 || rec.keys[0] != "summary.template" {
		t.Errorf("published %d messages with keys %v", len(rec.msgs), rec.keys)
	}
}
