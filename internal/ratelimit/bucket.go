package ratelimit

import (
	"context"
	"time"
)

// Bucket is a token-bucket limiter over shared state. Each Allow call reads
// the bucket for the key, refills tokens for the elapsed time, and either
// consumes one token (grant) or leaves the state untouched (denial).
//
// last_checked is deliberately NOT advanced on denial, so elapsed time keeps
// accruing toward the next grant.
//
// The read-modify-write is not atomic across processes: two concurrent Allow
// calls on one key can both observe the stale count and both admit. That
// brief over-admission is an accepted trade-off favoring availability; a
// strict variant would move the whole step into a Lua script or a
// compare-and-swap loop on the store.
type Bucket struct {
	store    Store
	rate     float64 // tokens refilled per second
	capacity float64 // maximum tokens

	// now is a seam for tests; defaults to time.Now.
	now func() time.Time
}

// NewBucket constructs a limiter with the given refill rate (tokens/second)
// and capacity. A capacity below 1 is coerced to 1.
func NewBucket(store Store, rate float64, capacity int) *Bucket {
	if capacity < 1 {
		capacity = 1
	}
	return &Bucket{
		store:    store,
		rate:     rate,
		capacity: float64(capacity),
		now:      time.Now,
	}
}

// Allow reports whether one request for key may proceed. A store failure is
// returned as an error; the caller decides whether to fail open or closed.
func (b *Bucket) Allow(ctx context.Context, key string) (bool, error) {
	tokens, last, found, err := b.store.Fetch(ctx, key)
	if err != nil {
		return false, err
	}

	now := unixSeconds(b.now())
	if !found {
		tokens = b.capacity
		last = now
	}

	elapsed := now - last
	if elapsed < 0 {
		elapsed = 0
	}
	tokens += elapsed * b.rate
	if tokens > b.capacity {
		tokens = b.capacity
	}

	if tokens >= 1 {
		tokens--
		if err := b.store.Save(ctx, key, tokens, now); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := b.store.Save(ctx, key, tokens, last); err != nil {
		return false, err
	}
	return false, nil
}
