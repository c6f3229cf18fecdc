package lock

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PerUser serializes sync runs for the same username across processes.
// Ingestion for different players never contends; for the same player only
// one merge may be in flight, which the record store does not enforce on
// its own.
type PerUser struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPerUser(rdb *redis.Client, ttl time.Duration) *PerUser {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &PerUser{rdb: rdb, ttl: ttl}
}

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by another run is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

func (l *PerUser) key(username string) string {
	return "sync:lock:" + strings.ToLower(strings.TrimSpace(username))
}

// Acquire takes the per-user lock. It returns (release, true, nil) on
// success and (nil, false, nil) when another run holds the lock. The lock
// expires after the configured TTL even if release is never called.
func (l *PerUser) Acquire(ctx context.Context, username string) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key(username), token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.rdb, []string{l.key(username)}, token).Err()
	}
	return release, true, nil
}
