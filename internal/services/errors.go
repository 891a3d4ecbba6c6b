// Package services defines the business logic for sessions and review
// retrieval. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/middleware layer.
package services

import "errors"

var (
	// ErrUnauthorized is returned when the application shared secret is
	// missing or does not match, or when a session token is invalid.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned when the token bucket for the caller is
	// exhausted. It is terminal: never retried internally.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUpstreamUnavailable is returned when a shared-store, durable-store,
	// or provider call failed or timed out in a position where the pipeline
	// cannot fall through any further.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrProvider is returned when the external provider responded with a
	// non-success status or a malformed payload.
	ErrProvider = errors.New("provider error")

	// ErrNoReviews is returned when no tier could resolve any review for the
	// place: the provider itself returned an empty (or fully filtered-out)
	// set. Nothing is persisted in that case.
	ErrNoReviews = errors.New("no reviews found")
)
