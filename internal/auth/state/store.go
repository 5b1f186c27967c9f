package state

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// TTL bounds how long an issued state nonce stays consumable.
const TTL = 10 * time.Minute

// Store issues and single-use-validates the OAuth state parameter.
// Consume must be atomic: under concurrent callback replay exactly one
// caller wins. Unknown and expired nonces fail identically so callers
// cannot probe which nonces ever existed.
type Store interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, nonce string) (bool, error)
}

// newNonce generates a 256-bit random URL-safe value.
func newNonce() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("state: failed to generate nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MemoryStore keeps nonces in process memory. Suitable for tests and
// single-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // nonce -> expiry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryStore) Issue(_ context.Context) (string, error) {
	nonce, err := newNonce()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[nonce] = s.now().Add(TTL)
	return nonce, nil
}

func (s *MemoryStore) Consume(_ context.Context, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[nonce]
	if !ok {
		return false, nil
	}
	delete(s.entries, nonce)

	return s.now().Before(expiry), nil
}
