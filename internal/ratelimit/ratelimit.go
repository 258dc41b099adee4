package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
)

// ProviderLimiter enforces a minimum delay between calls to the same
// generation provider.
type ProviderLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: provider name
	minDelay time.Duration
}

// NewProviderLimiter creates a limiter that spaces consecutive calls to the
// same provider by at least minDelay.
func NewProviderLimiter(minDelay time.Duration) *ProviderLimiter {
	return &ProviderLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last call to provider.
// Returns an error if the context is cancelled while waiting.
func (r *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	r.mu.Lock()
	last, ok := r.lastCall[provider]
	now := time.Now()

	if !ok || now.Sub(last) >= r.minDelay {
		r.lastCall[provider] = now
		r.mu.Unlock()
		return nil
	}

	// Reserve the next slot; concurrent callers queue behind it.
	next := last.Add(r.minDelay)
	r.lastCall[provider] = next
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", provider, ctx.Err())
	case <-time.After(time.Until(next)):
	}
	return nil
}

// Client is a decorator that applies provider-level rate limiting before
// delegating to the wrapped GenerationClient.
type Client struct {
	inner   model.GenerationClient
	limiter *ProviderLimiter
}

// NewClient wraps a GenerationClient. Clients for the same provider should
// share one limiter.
func NewClient(inner model.GenerationClient, limiter *ProviderLimiter) *Client {
	return &Client{inner: inner, limiter: limiter}
}

// Generate waits for the limiter, then delegates.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx, c.inner.Name()); err != nil {
		return "", err
	}
	return c.inner.Generate(ctx, system, prompt)
}

func (c *Client) Available() bool { return c.inner.Available() }
func (c *Client) Name() string    { return c.inner.Name() }
