package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by providers when a candidate, role, skill or
	// cache entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks caller input rejected at the boundary
	// (bad month range, unknown context, empty skill list).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrGenerationUnavailable is returned by a generation client that has no
	// backing provider configured.
	ErrGenerationUnavailable = errors.New("text generation unavailable")
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// RateLimited reports whether the upstream asked the caller to slow down.
func (e *HTTPError) RateLimited() bool {
	return e.StatusCode == 429
}

// InvalidArgumentf builds an error that matches ErrInvalidArgument.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
