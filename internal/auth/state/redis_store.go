package state

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed nonce store shared across instances.
// Expiry is enforced by Redis key TTL; consumption uses GETDEL so the
// check-and-mark step is a single atomic command.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "oauth_state:",
	}
}

func (r *RedisStore) key(nonce string) string {
	return r.prefix + nonce
}

func (r *RedisStore) Issue(ctx context.Context) (string, error) {
	nonce, err := newNonce()
	if err != nil {
		return "", err
	}

	ok, err := r.client.SetNX(ctx, r.key(nonce), "1", TTL).Result()
	if err != nil {
		return "", fmt.Errorf("state: failed to store nonce: %w", err)
	}
	if !ok {
		// 256-bit collision; treat as a store failure rather than retry.
		return "", fmt.Errorf("state: nonce collision")
	}

	return nonce, nil
}

func (r *RedisStore) Consume(ctx context.Context, nonce string) (bool, error) {
	_, err := r.client.GetDel(ctx, r.key(nonce)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("state: failed to consume nonce: %w", err)
	}
	return true, nil
}
