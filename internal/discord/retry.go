package discord

import (
	"context"
	"errors"
	"time"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth"
)

const retryBackoff = 250 * time.Millisecond

// WithRetry runs fn and retries it exactly once, after a short
// backoff, when it fails with auth.ErrUpstreamUnavailable. Terminal
// failures such as auth.ErrInvalidGrant are never retried.
func WithRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if !errors.Is(err, auth.ErrUpstreamUnavailable) {
		return err
	}

	select {
	case <-ctx.Done():
		return err
	case <-time.After(retryBackoff):
	}

	return fn()
}
