// Package ratelimit implements a distributed token-bucket admission control
// primitive. Bucket state lives in a shared store so that every stateless
// server process draws from the same pool of permits.
//
// This file defines the bucket state store abstraction and its two
// implementations: a Redis hash per bucket key (production) and an in-memory
// map (tests, single-process deployments).
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rate_limiter:"

// Store persists token-bucket state per key. Fetch reports found=false for
// keys that have never been written; implementations must make individual
// Fetch/Save calls atomic but are not required to make the pair atomic;
// the limiter tolerates read-modify-write races (see Bucket).
type Store interface {
	Fetch(ctx context.Context, key string) (tokens float64, lastChecked float64, found bool, err error)
	Save(ctx context.Context, key string, tokens float64, lastChecked float64) error
}

// RedisStore keeps each bucket as a Redis hash with "tokens" and
// "last_checked" fields under the rate_limiter namespace.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Fetch reads both hash fields in one round trip. Absent fields mean the
// bucket has never been touched.
func (s *RedisStore) Fetch(ctx context.Context, key string) (float64, float64, bool, error) {
	vals, err := s.client.HMGet(ctx, keyPrefix+key, "tokens", "last_checked").Result()
	if err != nil {
		return 0, 0, false, fmt.Errorf("bucket fetch %q: %w", key, err)
	}
	tokens, ok1 := parseField(vals[0])
	last, ok2 := parseField(vals[1])
	if !ok1 || !ok2 {
		return 0, 0, false, nil
	}
	return tokens, last, true, nil
}

// Save writes both hash fields in one HSET.
func (s *RedisStore) Save(ctx context.Context, key string, tokens, lastChecked float64) error {
	err := s.client.HSet(ctx, keyPrefix+key, map[string]any{
		"tokens":       strconv.FormatFloat(tokens, 'f', -1, 64),
		"last_checked": strconv.FormatFloat(lastChecked, 'f', -1, 64),
	}).Err()
	if err != nil {
		return fmt.Errorf("bucket save %q: %w", key, err)
	}
	return nil
}

func parseField(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// MemoryStore is a process-local Store. It enforces no cross-process limit
// and exists for tests and single-instance setups.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]memBucket
}

type memBucket struct {
	tokens      float64
	lastChecked float64
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]memBucket)}
}

// Fetch implements Store.
func (s *MemoryStore) Fetch(_ context.Context, key string) (float64, float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok {
		return 0, 0, false, nil
	}
	return b.tokens, b.lastChecked, true, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, key string, tokens, lastChecked float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[key] = memBucket{tokens: tokens, lastChecked: lastChecked}
	return nil
}

// unixSeconds converts a wall-clock time to the float seconds representation
// stored in the bucket hash.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}
