package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
)

// DefaultMaxDelay caps a provider-supplied Retry-After wait.
const DefaultMaxDelay = 5 * time.Second

// Policy runs an operation up to a fixed number of attempts, giving each
// attempt its own deadline and waiting with exponential backoff in between.
type Policy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewPolicy returns a retry policy.
// maxAttempts is the total number of calls, including the first (default: 3).
// baseDelay is the wait after the first failure (default: 1s), doubled after each further failure.
// callTimeout bounds each individual call; zero means no per-call deadline.
func NewPolicy(maxAttempts int, baseDelay, callTimeout time.Duration, logger *slog.Logger) *Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Policy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    DefaultMaxDelay,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// WithMaxDelay sets the upper bound on a Retry-After wait. Non-positive
// values keep the current bound.
func (p *Policy) WithMaxDelay(d time.Duration) *Policy {
	if d > 0 {
		p.maxDelay = d
	}
	return p
}

// Do calls op until it succeeds, returns a permanent error, the attempts run
// out or ctx is cancelled. It returns the number of calls made and the last
// error. A timeout of a single call is retried; cancellation of ctx is not.
func (p *Policy) Do(ctx context.Context, op func(ctx context.Context) error) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := p.backoffDelay(attempt-1, lastErr)

			p.logger.Warn("retrying after transient error",
				"attempt", attempt,
				"max_attempts", p.maxAttempts,
				"delay", delay,
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				return attempt - 1, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		err := p.call(ctx, op)
		if err == nil {
			return attempt, nil
		}
		if ctx.Err() != nil {
			return attempt, fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return attempt, perm.err
		}
		lastErr = err
	}
	return p.maxAttempts, lastErr
}

func (p *Policy) call(ctx context.Context, op func(ctx context.Context) error) error {
	if p.callTimeout <= 0 {
		return op(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return op(callCtx)
}

// backoffDelay computes the wait after the given failed attempt (1-based):
// baseDelay * 2^(failed-1). A Retry-After duration from an HTTP 429 takes
// precedence but never exceeds maxDelay.
func (p *Policy) backoffDelay(failed int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return min(httpErr.RetryAfter, p.maxDelay)
	}

	delay := p.baseDelay
	for i := 1; i < failed; i++ {
		delay *= 2
	}
	return delay
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the unwrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
