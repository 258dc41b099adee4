// Package summary produces career summaries: a cached, retried call to a
// text-generation backend with a deterministic template behind it.
package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/skillpulse/internal/ai"
	"github.com/amishk599/skillpulse/internal/filter"
	"github.com/amishk599/skillpulse/internal/model"
	"github.com/amishk599/skillpulse/internal/retry"
	"github.com/amishk599/skillpulse/internal/score"
)

const (
	// DefaultCacheTTL is how long a generated summary is served from cache.
	DefaultCacheTTL = 24 * time.Hour
	// MinSkillsForGeneration is the smallest profile sent to the model.
	MinSkillsForGeneration = 3
)

// Request asks for a summary of one candidate.
type Request struct {
	CandidateID     int64
	TargetRole      string
	Context         model.SummaryContext
	ForceRegenerate bool
}

// CacheKey is the cache key for a candidate and context.
func CacheKey(candidateID int64, c model.SummaryContext) string {
	return fmt.Sprintf("%d_%s", candidateID, c)
}

// Deps are the collaborators of a Pipeline. Cache and Notifier may be nil.
type Deps struct {
	Candidates model.CandidateSource
	Client     model.GenerationClient
	Cache      model.CacheStore
	Notifier   model.Notifier
	Filter     *filter.ContentFilter
	Retry      *retry.Policy
	Scorer     *score.Scorer
	CacheTTL   time.Duration
}

// Pipeline serves summary requests.
type Pipeline struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

// NewPipeline returns a Pipeline. A zero CacheTTL uses DefaultCacheTTL and a
// nil Filter uses the default banned keyword list.
func NewPipeline(deps Deps, logger *slog.Logger) *Pipeline {
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = DefaultCacheTTL
	}
	if deps.Filter == nil {
		deps.Filter = filter.NewContentFilter(filter.DefaultBannedKeywords)
	}
	if deps.Retry == nil {
		deps.Retry = retry.NewPolicy(3, time.Second, 10*time.Second, logger)
	}
	return &Pipeline{deps: deps, logger: logger, now: time.Now}
}

// Generate returns a summary for req. The only errors are those from loading
// the candidate; every other failure degrades to the template summary.
func (p *Pipeline) Generate(ctx context.Context, req Request) (model.SummaryResult, error) {
	if req.Context == "" {
		req.Context = model.ContextCareerGrowth
	}

	cand, err := p.deps.Candidates.Candidate(ctx, req.CandidateID)
	if err != nil {
		return model.SummaryResult{}, fmt.Errorf("load candidate %d: %w", req.CandidateID, err)
	}

	event := model.GenerationEvent{
		ID:          uuid.NewString(),
		CandidateID: req.CandidateID,
		Context:     req.Context,
	}
	key := CacheKey(req.CandidateID, req.Context)
	caching := p.deps.Cache != nil && p.deps.Cache.SupportsCache()

	if caching && !req.ForceRegenerate {
		if cached, ok := p.cached(ctx, key); ok {
			event.CacheHit = true
			event.Source = cached.Source
			p.notify(ctx, event)
			return cached, nil
		}
	}

	scores, skills := p.deps.Scorer.Score(ctx, cand)

	result, attempts, reason := p.produce(ctx, cand, skills, scores, req)
	event.Source = result.Source
	event.Attempts = attempts
	event.FallbackReason = reason

	if caching {
		p.store(ctx, key, result)
	}
	p.notify(ctx, event)

	p.logger.Info("career summary served",
		"candidate_id", req.CandidateID,
		"context", req.Context,
		"source", result.Source,
		"attempts", attempts,
	)
	return result, nil
}

// produce runs generation when eligible and falls back to the template.
// It returns the result, the number of generation calls and, for template
// results, why generation was not used.
func (p *Pipeline) produce(ctx context.Context, cand model.Candidate, skills []model.SkillRecord, scores model.HealthScores, req Request) (model.SummaryResult, int, string) {
	fallback := func() model.SummaryResult {
		return Fallback(cand.ID, req.Context, scores, skills, p.now().UTC())
	}

	client := p.deps.Client
	if client == nil || !client.Available() {
		reason := "generation client unavailable"
		return fallback(), 0, reason
	}
	if len(skills) < MinSkillsForGeneration {
		reason := fmt.Sprintf("only %d skills, need %d", len(skills), MinSkillsForGeneration)
		return fallback(), 0, reason
	}

	prompt, err := BuildPrompt(cand.Name, skills, scores, req.TargetRole, req.Context)
	if err != nil {
		p.logger.Warn("prompt build failed, using template", "candidate_id", cand.ID, "error", err)
		return fallback(), 0, err.Error()
	}

	var out reply
	attempts, err := p.deps.Retry.Do(ctx, func(callCtx context.Context) error {
		raw, err := client.Generate(callCtx, ai.SystemInstruction, prompt)
		if err != nil {
			return err
		}
		r, err := p.accept(raw)
		if err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		p.logger.Warn("summary generation failed, using template",
			"candidate_id", cand.ID,
			"provider", client.Name(),
			"attempts", attempts,
			"error", err,
		)
		return fallback(), attempts, err.Error()
	}

	return model.SummaryResult{
		CandidateID:    cand.ID,
		Context:        req.Context,
		Summary:        out.Summary,
		KeyStrengths:   out.KeyStrengths,
		Opportunities:  out.Opportunities,
		ActionItems:    out.ActionItems,
		TimelineToGoal: out.TimelineToGoal,
		SalaryImpact:   out.SalaryImpact,
		Source:         model.SourceAI,
		GeneratedAt:    p.now().UTC(),
	}, attempts, ""
}

// accept parses, validates and filters one model reply. Unparseable text is
// retried; a structurally invalid or rejected reply is not.
func (p *Pipeline) accept(raw string) (reply, error) {
	doc, err := decodeReply(raw)
	if err != nil {
		return reply{}, err
	}
	r, err := validateReply(doc)
	if err != nil {
		return reply{}, retry.Permanent(err)
	}
	if kw, hit := p.deps.Filter.Check(r.texts()...); hit {
		return reply{}, retry.Permanent(fmt.Errorf("%w: contains %q", ErrContentRejected, kw))
	}
	return r, nil
}

func (p *Pipeline) cached(ctx context.Context, key string) (model.SummaryResult, bool) {
	payload, ok, err := p.deps.Cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("summary cache read failed", "key", key, "error", err)
		return model.SummaryResult{}, false
	}
	if !ok {
		return model.SummaryResult{}, false
	}
	var res model.SummaryResult
	if err := json.Unmarshal(payload, &res); err != nil {
		p.logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
		return model.SummaryResult{}, false
	}
	p.logger.Debug("summary cache hit", "key", key)
	return res, true
}

func (p *Pipeline) store(ctx context.Context, key string, res model.SummaryResult) {
	payload, err := json.Marshal(res)
	if err != nil {
		p.logger.Warn("encode summary for cache", "key", key, "error", err)
		return
	}
	if err := p.deps.Cache.Delete(ctx, key); err != nil && !errors.Is(err, model.ErrNotFound) {
		p.logger.Warn("summary cache delete failed", "key", key, "error", err)
	}
	if err := p.deps.Cache.Put(ctx, key, payload, p.deps.CacheTTL); err != nil {
		p.logger.Warn("summary cache write failed", "key", key, "error", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, event model.GenerationEvent) {
	if p.deps.Notifier == nil {
		return
	}
	event.At = p.now().UTC()
	if err := p.deps.Notifier.Notify(ctx, event); err != nil {
		p.logger.Warn("generation event notify failed", "event_id", event.ID, "error", err)
	}
}
