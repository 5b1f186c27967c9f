package discord

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// CacheTTL bounds how stale a cached membership snapshot may be when
// it feeds an administrative decision.
const CacheTTL = 60 * time.Second

type cachedMembership struct {
	Member   bool        `json:"member"`
	Snapshot *Membership `json:"snapshot,omitempty"`
}

// MembershipCache decorates a MembershipSource with a short-TTL Redis
// cache keyed by (user, guild). Non-membership is cached too, so a
// denied requester cannot hammer the upstream API. Cache failures fall
// through to the source; the cache is an optimization, never an
// authority.
type MembershipCache struct {
	source MembershipSource
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewMembershipCache(source MembershipSource, client *redis.Client) *MembershipCache {
	return &MembershipCache{
		source: source,
		client: client,
		prefix: "perm:",
		ttl:    CacheTTL,
	}
}

func (m *MembershipCache) key(userID, guildID string) string {
	return m.prefix + userID + ":" + guildID
}

func (m *MembershipCache) Membership(ctx context.Context, accessToken, userID, guildID string) (*Membership, error) {
	key := m.key(userID, guildID)

	val, err := m.client.Get(ctx, key).Result()
	if err == nil {
		var cached cachedMembership
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			if !cached.Member {
				return nil, nil
			}
			return cached.Snapshot, nil
		}
	} else if err != redis.Nil {
		logger.Warn("membership cache read failed", map[string]any{
			"error": err.Error(),
		})
	}

	snapshot, err := m.source.Membership(ctx, accessToken, userID, guildID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cachedMembership{
		Member:   snapshot != nil,
		Snapshot: snapshot,
	})
	if err == nil {
		if err := m.client.Set(ctx, key, data, m.ttl).Err(); err != nil {
			logger.Warn("membership cache write failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	return snapshot, nil
}
