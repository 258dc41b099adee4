package notifier

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/amishk599/skillpulse/internal/model"
)

func TestLogNotifier_Notify_writesEvent(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	err := n.Notify(context.Background(), model.GenerationEvent{
		ID:             "ev-1",
		CandidateID:    42,
		Context:        model.ContextJobSearch,
		Source:         model.SourceTemplate,
		Attempts:       3,
		FallbackReason: "retries exhausted",
	})
	if err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	out := buf.String()
	for _, want := range []string{"summary served", "candidate_id=42", "context=job_search", "source=template", `fallback_reason="retries exhausted"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestLogNotifier_Notify_omitsEmptyFallback(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	n.Notify(context.Background(), model.GenerationEvent{CandidateID: 1, Source: model.SourceAI, CacheHit: true})

	if strings.Contains(buf.String(), "fallback_reason") {
		t.Errorf("unexpected fallback_reason in %s", buf.String())
	}
	if !strings.Contains(buf.String(), "cache_hit=true") {
		t.Errorf("expected cache_hit=true in %s", buf.String())
	}
}
