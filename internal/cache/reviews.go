// Package cache implements the ephemeral review cache on top of Redis.
//
// Cached review sets are keyed by place identifier under the "reviews:"
// namespace (distinct from the rate limiter's "rate_limiter:" namespace on
// the same server) and stored as a JSON array of review texts with a TTL.
// Entries are overwritten wholesale on refresh, never partially updated.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "reviews:"

// ReviewCache is a Redis-backed cache for resolved review sets. It is safe
// for concurrent use; all coordination happens in Redis itself.
type ReviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReviewCache returns a cache writing entries with the given TTL.
func NewReviewCache(client *redis.Client, ttl time.Duration) *ReviewCache {
	return &ReviewCache{client: client, ttl: ttl}
}

// Get returns the cached review texts for placeID. The second return value
// reports whether the key was present; a missing key is not an error.
func (c *ReviewCache) Get(ctx context.Context, placeID string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+placeID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %q: %w", placeID, err)
	}
	var reviews []string
	if err := json.Unmarshal([]byte(raw), &reviews); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, false, fmt.Errorf("cache decode %q: %w", placeID, err)
	}
	return reviews, true, nil
}

// Set stores the review texts for placeID, replacing any previous entry and
// refreshing the TTL.
func (c *ReviewCache) Set(ctx context.Context, placeID string, reviews []string) error {
	raw, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", placeID, err)
	}
	if err := c.client.Set(ctx, keyPrefix+placeID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", placeID, err)
	}
	return nil
}
