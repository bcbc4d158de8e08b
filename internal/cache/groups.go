package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/groupfeed/pkg/logger"
)

// GroupIDCache caches the explicit group memberships of a user.
// Misses and backend errors are reported as a miss; callers fall back to the store.
type GroupIDCache interface {
	Get(ctx context.Context, userID string) ([]string, bool)
	Set(ctx context.Context, userID string, groupIDs []string)
	Invalidate(ctx context.Context, userIDs ...string)
}

// RedisGroupCache is a cache-aside store of visible group ids keyed by user.
type RedisGroupCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisGroupCache builds a cache on the given client. ttl <= 0 defaults to ten minutes.
func NewRedisGroupCache(client *redis.Client, ttl time.Duration) *RedisGroupCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisGroupCache{client: client, ttl: ttl}
}

func groupsKey(userID string) string { return fmt.Sprintf("groupfeed:visible_groups:%s", userID) }

func (c *RedisGroupCache) Get(ctx context.Context, userID string) ([]string, bool) {
	data, err := c.client.Get(ctx, groupsKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("group cache get failed", zap.String("user", userID), zap.Error(err))
		}
		c.misses.Add(1)
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return ids, true
}

func (c *RedisGroupCache) Set(ctx context.Context, userID string, groupIDs []string) {
	if groupIDs == nil {
		groupIDs = []string{}
	}
	payload, err := json.Marshal(groupIDs)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, groupsKey(userID), payload, c.ttl).Err(); err != nil {
		logger.Warn("group cache set failed", zap.String("user", userID), zap.Error(err))
	}
}

func (c *RedisGroupCache) Invalidate(ctx context.Context, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = groupsKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("group cache invalidate failed", zap.Strings("users", userIDs), zap.Error(err))
	}
}

// Counters reports cache hits and misses since start.
func (c *RedisGroupCache) Counters() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Nop never stores anything; used when redis is not configured.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]string, bool) { return nil, false }
func (Nop) Set(context.Context, string, []string)        {}
func (Nop) Invalidate(context.Context, ...string)        {}
