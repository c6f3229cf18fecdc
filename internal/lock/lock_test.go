package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLock(t *testing.T, ttl time.Duration) (*PerUser, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewPerUser(rdb, ttl), mr
}

func TestAcquireIsExclusivePerUser(t *testing.T) {
	l, _ := newTestLock(t, time.Minute)
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, "Player")
	if err != nil || !ok {
		t.Fatalf("first Acquire = ok=%v err=%v, want held", ok, err)
	}

	// The same user contends regardless of case.
	if _, ok, err := l.Acquire(ctx, "player"); err != nil || ok {
		t.Fatalf("second Acquire = ok=%v err=%v, want busy", ok, err)
	}

	// A different user never contends.
	release2, ok, err := l.Acquire(ctx, "other")
	if err != nil || !ok {
		t.Fatalf("other user Acquire = ok=%v err=%v, want held", ok, err)
	}
	release2()

	release()
	if _, ok, err := l.Acquire(ctx, "player"); err != nil || !ok {
		t.Fatalf("Acquire after release = ok=%v err=%v, want held", ok, err)
	}
}

func TestLockExpiresAfterTTL(t *testing.T) {
	l, mr := newTestLock(t, time.Minute)
	ctx := context.Background()

	if _, ok, err := l.Acquire(ctx, "player"); err != nil || !ok {
		t.Fatalf("Acquire = ok=%v err=%v, want held", ok, err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, err := l.Acquire(ctx, "player"); err != nil || !ok {
		t.Fatalf("Acquire after expiry = ok=%v err=%v, want held", ok, err)
	}
}

func TestStaleReleaseKeepsNewHolder(t *testing.T) {
	l, mr := newTestLock(t, time.Minute)
	ctx := context.Background()

	staleRelease, ok, err := l.Acquire(ctx, "player")
	if err != nil || !ok {
		t.Fatalf("Acquire = ok=%v err=%v, want held", ok, err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, err := l.Acquire(ctx, "player"); err != nil || !ok {
		t.Fatalf("re-Acquire after expiry = ok=%v err=%v, want held", ok, err)
	}

	// The expired holder's release must not drop the new holder's lock.
	staleRelease()
	if _, ok, err := l.Acquire(ctx, "player"); err != nil || ok {
		t.Fatalf("Acquire after stale release = ok=%v err=%v, want busy", ok, err)
	}
}
