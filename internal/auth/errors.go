package auth

import (
	"errors"
	"fmt"
	"time"
)

// Failure taxonomy for the auth core. Every failure a caller can see
// maps to one of these kinds; messages name the kind only and never
// carry token or key material.
var (
	ErrMissingCredentials  = errors.New("missing credentials")
	ErrMalformed           = errors.New("malformed token")
	ErrInvalidSignature    = errors.New("invalid token signature")
	ErrExpired             = errors.New("token expired")
	ErrInvalidGrant        = errors.New("invalid grant")
	ErrRateLimited         = errors.New("rate limited")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrForbidden           = errors.New("forbidden")
)

// RateLimitedError carries the upstream retry-after hint. It matches
// ErrRateLimited under errors.Is.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
