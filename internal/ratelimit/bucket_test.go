package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fixedClock lets tests move bucket time deterministically.
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBucket(rate float64, capacity int) (*Bucket, *fixedClock) {
	clk := &fixedClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBucket(NewMemoryStore(), rate, capacity)
	b.now = clk.now
	return b, clk
}

func TestBucket_BurstThenDenied(t *testing.T) {
	b, _ := newTestBucket(1.0, 10)
	ctx := context.Background()

	// A burst of capacity+1 rapid calls yields exactly capacity admissions.
	for i := 0; i < 10; i++ {
		ok, err := b.Allow(ctx, "k")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("call %d should be admitted", i)
		}
	}
	ok, err := b.Allow(ctx, "k")
	if err != nil {
		t.Fatalf("11th call: %v", err)
	}
	if ok {
		t.Fatal("11th call should be denied")
	}
}

func TestBucket_RefillAfterElapsed(t *testing.T) {
	b, clk := newTestBucket(2.0, 4)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if ok, _ := b.Allow(ctx, "k"); !ok {
			t.Fatalf("warm-up call %d denied", i)
		}
	}
	if ok, _ := b.Allow(ctx, "k"); ok {
		t.Fatal("bucket should be empty")
	}

	// 1 second at 2 tokens/sec refills 2 grants.
	clk.advance(time.Second)
	for i := 0; i < 2; i++ {
		if ok, _ := b.Allow(ctx, "k"); !ok {
			t.Fatalf("refilled call %d denied", i)
		}
	}
	if ok, _ := b.Allow(ctx, "k"); ok {
		t.Fatal("refill should be exhausted")
	}
}

func TestBucket_DenialDoesNotAdvanceClock(t *testing.T) {
	b, clk := newTestBucket(1.0, 1)
	ctx := context.Background()

	if ok, _ := b.Allow(ctx, "k"); !ok {
		t.Fatal("first call should be admitted")
	}

	// Accrue half a token, then get denied twice. Because last_checked is
	// not advanced on denial, the two half-second waits add up to a grant.
	clk.advance(500 * time.Millisecond)
	if ok, _ := b.Allow(ctx, "k"); ok {
		t.Fatal("half-refilled bucket should deny")
	}
	clk.advance(500 * time.Millisecond)
	if ok, _ := b.Allow(ctx, "k"); !ok {
		t.Fatal("accrued time across denials should grant")
	}
}

func TestBucket_NeverExceedsCapacity(t *testing.T) {
	b, clk := newTestBucket(100.0, 3)
	ctx := context.Background()

	if ok, _ := b.Allow(ctx, "k"); !ok {
		t.Fatal("warm-up call denied")
	}
	// A long idle period must cap the refill at capacity.
	clk.advance(time.Hour)
	for i := 0; i < 3; i++ {
		if ok, _ := b.Allow(ctx, "k"); !ok {
			t.Fatalf("call %d denied after long idle", i)
		}
	}
	if ok, _ := b.Allow(ctx, "k"); ok {
		t.Fatal("refill must not exceed capacity")
	}
}

func TestBucket_KeysAreIndependent(t *testing.T) {
	b, _ := newTestBucket(1.0, 1)
	ctx := context.Background()

	if ok, _ := b.Allow(ctx, "a"); !ok {
		t.Fatal("key a should be admitted")
	}
	if ok, _ := b.Allow(ctx, "a"); ok {
		t.Fatal("key a should now be empty")
	}
	if ok, _ := b.Allow(ctx, "b"); !ok {
		t.Fatal("key b has its own bucket")
	}
}

// failingStore simulates an unreachable shared store.
type failingStore struct{ err error }

func (s failingStore) Fetch(context.Context, string) (float64, float64, bool, error) {
	return 0, 0, false, s.err
}
func (s failingStore) Save(context.Context, string, float64, float64) error { return s.err }

func TestBucket_StoreFailureSurfacesError(t *testing.T) {
	storeErr := errors.New("connection refused")
	b := NewBucket(failingStore{err: storeErr}, 1.0, 10)

	ok, err := b.Allow(context.Background(), "k")
	if ok {
		t.Fatal("must not admit on store failure")
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}
