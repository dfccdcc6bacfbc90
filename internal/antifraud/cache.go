package antifraud

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bychrisr/hub-defisats-sub012/pkg/logger"
)

// RedisBlacklistCache keeps confirmed blacklist hits in Redis so the hot veto
// path on registration does not hammer Postgres. Only positive lookups are
// cached; entries self-expire so a removed or expired blacklist row is seen
// within the cache TTL (eventual consistency is acceptable here).
type RedisBlacklistCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ BlacklistCache = (*RedisBlacklistCache)(nil)

// NewRedisBlacklistCache creates a blacklist hit cache with the given TTL
func NewRedisBlacklistCache(client *redis.Client, ttl time.Duration) *RedisBlacklistCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisBlacklistCache{client: client, ttl: ttl}
}

func cacheKey(entryType BlacklistType, value string) string {
	return fmt.Sprintf("antifraud:blacklist:%s:%s", entryType, value)
}

// GetHit returns the cached veto reason for the key, if any. Cache errors are
// logged and treated as a miss so Redis outages never affect correctness.
func (c *RedisBlacklistCache) GetHit(ctx context.Context, entryType BlacklistType, value string) (string, bool) {
	reason, err := c.client.Get(ctx, cacheKey(entryType, value)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("blacklist cache read failed", zap.Error(err))
		}
		return "", false
	}
	return reason, true
}

// SetHit caches a confirmed veto for the key
func (c *RedisBlacklistCache) SetHit(ctx context.Context, entryType BlacklistType, value, reason string) {
	if err := c.client.Set(ctx, cacheKey(entryType, value), reason, c.ttl).Err(); err != nil {
		logger.Warn("blacklist cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached veto for the key
func (c *RedisBlacklistCache) Invalidate(ctx context.Context, entryType BlacklistType, value string) {
	if err := c.client.Del(ctx, cacheKey(entryType, value)).Err(); err != nil {
		logger.Warn("blacklist cache invalidation failed", zap.Error(err))
	}
}
