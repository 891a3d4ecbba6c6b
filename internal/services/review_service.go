// Package services – ReviewService
//
// This file implements the tiered retrieval pipeline: a review lookup is
// answered from the Redis cache when possible, from the durable store while
// its newest row is inside the freshness window, and from the paid external
// provider only as a last resort, back-filling each tier on the way out.
//
// Failure policy per tier: cache and durable-store errors are demoted to
// misses (logged, fall through); only a failure in the final tier is
// surfaced to the caller. Write-backs are best effort: once the data has
// been retrieved, a failed persist never fails the request.
//
// Observability: the public method is OpenTelemetry-instrumented and tier
// resolutions are counted in Prometheus.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/platefinder/go-reviews-backend/internal/provider"
	"github.com/platefinder/go-reviews-backend/internal/repo"
	"github.com/platefinder/go-reviews-backend/internal/scoring"
)

// Source tiers reported to the caller.
const (
	SourceCache    = "cache"
	SourceDatabase = "database"
	SourceAPI      = "api"
)

// ReviewCache is the ephemeral tier as seen by the pipeline.
type ReviewCache interface {
	Get(ctx context.Context, placeID string) ([]string, bool, error)
	Set(ctx context.Context, placeID string, reviews []string) error
}

// ReviewProvider is the external paid tier as seen by the pipeline.
type ReviewProvider interface {
	FetchReviews(ctx context.Context, placeID string) ([]string, error)
}

// ReviewResult is the resolved answer for one place.
type ReviewResult struct {
	Reviews          []string `json:"reviews"`
	AverageSentiment float64  `json:"average_sentiment"`
	Source           string   `json:"source"`
}

// ReviewService orchestrates cache, durable store, and provider for review
// lookups. It owns all write paths into the cache and the restaurant/review
// tables.
type ReviewService struct {
	DB       *gorm.DB
	Cache    ReviewCache
	Provider ReviewProvider
	Scorer   scoring.Scorer
	Language scoring.LanguageFilter

	// FreshnessWindow is the maximum age of the newest durable row still
	// served without re-fetching from the provider.
	FreshnessWindow time.Duration

	// MaxReviews caps how many durable rows are loaded per lookup.
	MaxReviews int
}

// GetReviews resolves reviews for placeID through the tier chain and scores
// whichever set won. Repeated calls inside the freshness window never re-hit
// the provider and never create duplicate restaurant rows.
func (s *ReviewService) GetReviews(ctx context.Context, placeID, name, address string) (*ReviewResult, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "GetReviews",
		trace.WithAttributes(attribute.String("place.id", placeID)),
	)
	defer span.End()

	// Tier 1: ephemeral cache. Any error here is a miss, not a failure.
	if reviews, ok, err := s.Cache.Get(ctx, placeID); err != nil {
		log.Warn().Err(err).Str("place_id", placeID).Msg("cache lookup failed, treating as miss")
	} else if ok {
		tierResolutions.WithLabelValues(SourceCache).Inc()
		return s.scored(reviews, SourceCache), nil
	}

	// Tier 2: durable store, gated by the freshness of the newest row.
	if reviews, ok := s.lookupDurable(ctx, placeID); ok {
		// Refresh the cache so the next lookup stops at tier 1.
		if err := s.Cache.Set(ctx, placeID, reviews); err != nil {
			log.Warn().Err(err).Str("place_id", placeID).Msg("cache write-back failed")
		}
		tierResolutions.WithLabelValues(SourceDatabase).Inc()
		return s.scored(reviews, SourceDatabase), nil
	}

	// Tier 3: the paid provider. Failures here are terminal.
	reviews, err := s.fetchFromProvider(ctx, placeID, name, address)
	if err != nil {
		return nil, err
	}
	tierResolutions.WithLabelValues(SourceAPI).Inc()
	return s.scored(reviews, SourceAPI), nil
}

// lookupDurable returns stored reviews when at least one row exists and the
// newest is inside the freshness window. Store errors and stale data both
// read as a miss; stale rows are never returned directly.
func (s *ReviewService) lookupDurable(ctx context.Context, placeID string) ([]string, bool) {
	rows, err := repo.ListRecentReviews(ctx, s.DB, placeID, s.MaxReviews)
	if err != nil {
		log.Warn().Err(err).Str("place_id", placeID).Msg("durable lookup failed, treating as miss")
		return nil, false
	}
	if len(rows) == 0 {
		return nil, false
	}
	if time.Since(rows[0].CreatedAt) >= s.FreshnessWindow {
		return nil, false
	}
	texts := make([]string, 0, len(rows))
	for _, r := range rows {
		texts = append(texts, r.Text)
	}
	return texts, true
}

// fetchFromProvider performs the tier-3 fall-through: fetch, filter, persist
// the restaurant and reviews, then (and only then) refresh the cache. The
// cache is written after the durable sequence so a cancelled request can
// never leave a cache entry ahead of the store.
func (s *ReviewService) fetchFromProvider(ctx context.Context, placeID, name, address string) ([]string, error) {
	raw, err := s.Provider.FetchReviews(ctx, placeID)
	if err != nil {
		if errors.Is(err, provider.ErrBadPayload) {
			return nil, fmt.Errorf("%w: %v", ErrProvider, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	reviews := scoring.FilterReviews(s.Language, raw)
	if len(reviews) == 0 {
		return nil, ErrNoReviews
	}

	// Durable write-back, best effort: the data is already in hand.
	if _, err := repo.EnsureRestaurant(ctx, s.DB, placeID, name, address); err != nil {
		log.Error().Err(err).Str("place_id", placeID).Msg("restaurant upsert failed")
	} else if _, err := repo.CreateReviews(ctx, s.DB, placeID, reviews); err != nil {
		log.Error().Err(err).Str("place_id", placeID).Msg("review persist failed")
	}

	if err := s.Cache.Set(ctx, placeID, reviews); err != nil {
		log.Warn().Err(err).Str("place_id", placeID).Msg("cache write-back failed")
	}
	return reviews, nil
}

// scored applies the sentiment scorer uniformly to whichever tier resolved.
func (s *ReviewService) scored(reviews []string, source string) *ReviewResult {
	return &ReviewResult{
		Reviews:          reviews,
		AverageSentiment: scoring.Average(s.Scorer, reviews),
		Source:           source,
	}
}
