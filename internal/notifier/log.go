package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/skillpulse/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes generation events to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each event via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the event. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, e model.GenerationEvent) error {
	args := []any{
		"event_id", e.ID,
		"candidate_id", e.CandidateID,
		"context", e.Context,
		"source", e.Source,
		"cache_hit", e.CacheHit,
		"attempts", e.Attempts,
	}
	if e.FallbackReason != "" {
		args = append(args, "fallback_reason", e.FallbackReason)
	}
	n.logger.Info("summary served", args...)
	return nil
}
