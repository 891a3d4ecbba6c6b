// Review HTTP handlers.
//
// This file exposes the review-aggregation endpoint:
//   - GET /reviews?place_id=...&name=...&address=...
//
// Handlers are transport-thin: they validate input, call the retrieval
// pipeline, and translate results into HTTP responses. Session validation
// and rate limiting happen earlier, in middleware, in that order.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/platefinder/go-reviews-backend/internal/services"
)

// ReviewService defines the review lookup operation consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ReviewService interface {
	// GetReviews resolves reviews and aggregate sentiment for a place.
	GetReviews(ctx context.Context, placeID, name, address string) (*services.ReviewResult, error)
}

// Handlers groups HTTP endpoints for sessions and reviews. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	sessionSvc SessionService
	reviewSvc  ReviewService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(sessionSvc SessionService, reviewSvc ReviewService) *Handlers {
	return &Handlers{sessionSvc: sessionSvc, reviewSvc: reviewSvc}
}

// GetReviews returns recent reviews and an aggregate sentiment score for a
// place.
//
// Query parameters:
//   - place_id (required): the external place identifier
//   - name, address (optional): display metadata persisted on first fetch
//
// Responses:
//   - 200 with {average_sentiment, reviews, source}
//   - 400 when place_id is missing
//   - 404 when no tier could resolve any review
//   - 502 when the provider rejected the request or sent a malformed payload
//   - 503 when an upstream dependency was unreachable
func (h *Handlers) GetReviews(c *gin.Context) {
	placeID := strings.TrimSpace(c.Query("place_id"))
	if placeID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "place_id is required")
		return
	}
	name := strings.TrimSpace(c.Query("name"))
	address := strings.TrimSpace(c.Query("address"))

	res, err := h.reviewSvc.GetReviews(c.Request.Context(), placeID, name, address)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoReviews):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no reviews found")
		case errors.Is(err, services.ErrProvider):
			fail(c, http.StatusBadGateway, ErrCodeProviderFailed, "review provider failed")
		case errors.Is(err, services.ErrUpstreamUnavailable):
			fail(c, http.StatusServiceUnavailable, ErrCodeUpstream, "upstream unavailable")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
		}
		return
	}

	ok(c, http.StatusOK, res)
}
