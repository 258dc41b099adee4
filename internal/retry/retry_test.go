package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/skillpulse/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockOp calls a function on each invocation, tracking call count.
type mockOp struct {
	calls int
	fn    func(ctx context.Context, attempt int) error
}

func (m *mockOp) run(ctx context.Context) error {
	m.calls++
	return m.fn(ctx, m.calls)
}

func TestDo_SucceedsOnFirstAttempt(t *testing.T) {
	op := &mockOp{fn: func(context.Context, int) error { return nil }}

	p := NewPolicy(3, 10*time.Millisecond, 0, discardLogger())
	attempts, err := p.Do(context.Background(), op.run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 || op.calls != 1 {
		t.Fatalf("expected 1 call, got attempts=%d calls=%d", attempts, op.calls)
	}
}

func TestDo_RetriesAnyError_SucceedsOnThirdAttempt(t *testing.T) {
	op := &mockOp{fn: func(_ context.Context, attempt int) error {
		switch attempt {
		case 1:
			return &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		case 2:
			return &model.HTTPError{StatusCode: 400, Err: errors.New("bad json")}
		}
		return nil
	}}

	p := NewPolicy(3, time.Millisecond, 0, discardLogger())
	attempts, err := p.Do(context.Background(), op.run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	sentinel := errors.New("missing fields")
	op := &mockOp{fn: func(context.Context, int) error { return Permanent(sentinel) }}

	p := NewPolicy(3, time.Millisecond, 0, discardLogger())
	attempts, err := p.Do(context.Background(), op.run)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	var perm *permanentError
	if errors.As(err, &perm) {
		t.Fatal("permanent wrapper should be removed")
	}
	if attempts != 1 || op.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", op.calls)
	}
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	op := &mockOp{fn: func(context.Context, int) error {
		return &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	p := NewPolicy(3, time.Millisecond, 0, discardLogger())
	attempts, err := p.Do(context.Background(), op.run)
	if err == nil {
		t.Fatal("expected error after max attempts, got nil")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 500 {
		t.Fatalf("expected last HTTPError, got %v", err)
	}
	if attempts != 3 || op.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", op.calls)
	}
}

func TestDo_PerCallTimeoutIsRetried(t *testing.T) {
	op := &mockOp{fn: func(ctx context.Context, attempt int) error {
		if attempt == 1 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}}

	p := NewPolicy(3, time.Millisecond, 20*time.Millisecond, discardLogger())
	attempts, err := p.Do(context.Background(), op.run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	op := &mockOp{fn: func(context.Context, int) error {
		return &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPolicy(3, time.Second, 0, discardLogger())
	_, err := p.Do(ctx, op.run)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if op.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", op.calls)
	}
}

func TestBackoffDelay(t *testing.T) {
	p := NewPolicy(3, time.Second, 0, discardLogger())

	if got := p.backoffDelay(1, errors.New("x")); got != time.Second {
		t.Errorf("after first failure: got %v, want 1s", got)
	}
	if got := p.backoffDelay(2, errors.New("x")); got != 2*time.Second {
		t.Errorf("after second failure: got %v, want 2s", got)
	}
	rl := &model.HTTPError{StatusCode: 429, RetryAfter: 7 * time.Second}
	if got := p.backoffDelay(1, rl); got != 7*time.Second {
		t.Errorf("Retry-After should win: got %v", got)
	}
}

func TestBackoffDelay_CapsRetryAfter(t *testing.T) {
	rl := &model.HTTPError{StatusCode: 429, RetryAfter: time.Hour}

	p := NewPolicy(3, time.Second, 10*time.Second, discardLogger())
	if got := p.backoffDelay(1, rl); got != DefaultMaxDelay {
		t.Errorf("default cap: got %v, want %v", got, DefaultMaxDelay)
	}

	p.WithMaxDelay(2 * time.Second)
	if got := p.backoffDelay(1, rl); got != 2*time.Second {
		t.Errorf("configured cap: got %v, want 2s", got)
	}

	p.WithMaxDelay(0)
	if got := p.backoffDelay(1, rl); got != 2*time.Second {
		t.Errorf("zero should keep the cap: got %v", got)
	}
}

func TestDo_LongRetryAfterDoesNotStall(t *testing.T) {
	op := &mockOp{fn: func(_ context.Context, attempt int) error {
		if attempt == 1 {
			return &model.HTTPError{StatusCode: 429, RetryAfter: time.Hour, Err: errors.New("rate limited")}
		}
		return nil
	}}

	p := NewPolicy(2, time.Millisecond, 0, discardLogger()).WithMaxDelay(10 * time.Millisecond)
	start := time.Now()
	if _, err := p.Do(context.Background(), op.run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("waited %v, Retry-After should be capped", time.Since(start))
	}
}

func TestDo_NoSleepAfterLastAttempt(t *testing.T) {
	op := &mockOp{fn: func(context.Context, int) error { return errors.New("boom") }}

	p := NewPolicy(1, time.Hour, 0, discardLogger())
	start := time.Now()
	if _, err := p.Do(context.Background(), op.run); err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > time.Second {
		t.Fatal("should not wait after the final attempt")
	}
}
