package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	dom "github.com/centroidsol/todo-api/internal/domain"
)

const (
	keyListPrefix = "todo:list:"
	// StatsKey caches the aggregate counters.
	StatsKey = "todo:stats"
)

// TodoCache caches list pages and stats in Redis. Every write to the
// store invalidates all cached reads, so staleness is bounded by the
// TTL across instances only.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// ListKey derives a cache key from normalized list params.
func ListKey(p dom.ListParams) string {
	completed := "-"
	if p.Completed != nil {
		completed = fmt.Sprintf("%t", *p.Completed)
	}
	return keyListPrefix + fmt.Sprintf("%d:%d:%s:%s:%s:%s",
		p.Page, p.PerPage, p.Sort, p.Order, completed,
		strings.ToLower(p.Search))
}

// GetList returns the cached page for key, or nil on miss.
func (c *TodoCache) GetList(ctx context.Context, key string) (*dom.ListResult, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res dom.ListResult
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SetList stores the page under key.
func (c *TodoCache) SetList(ctx context.Context, key string, res dom.ListResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// GetStats returns the cached stats, or nil on miss.
func (c *TodoCache) GetStats(ctx context.Context) (*dom.Stats, error) {
	b, err := c.rdb.Get(ctx, StatsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s dom.Stats
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetStats stores the stats.
func (c *TodoCache) SetStats(ctx context.Context, s dom.Stats) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, StatsKey, b, c.ttl).Err()
}

// InvalidateAll removes the stats key and every cached list page
// (cache invalidation on write).
func (c *TodoCache) InvalidateAll(ctx context.Context) error {
	if err := c.rdb.Del(ctx, StatsKey).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, keyListPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
