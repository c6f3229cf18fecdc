package stats

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a short-TTL redis cache in front of the wholesale aggregate
// recomputation. Aggregates stay derived data; the cache only saves the
// full table scan on hot players.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) keyHourly(username string) string { return "stats:hourly:" + normalize(username) }
func (c *Cache) keyDaily(username string) string  { return "stats:daily:" + normalize(username) }
func (c *Cache) keyPieces(username string) string { return "stats:pieces:" + normalize(username) }

func (c *Cache) get(ctx context.Context, key string, out any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate drops every cached aggregate for the player. Called after a
// sync lands new games.
func (c *Cache) Invalidate(ctx context.Context, username string) error {
	return c.rdb.Del(ctx,
		c.keyHourly(username),
		c.keyDaily(username),
		c.keyPieces(username),
	).Err()
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
