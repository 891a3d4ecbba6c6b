// Session HTTP handlers.
//
// This file exposes the session-creation endpoint:
//   - POST /sessions   (issue an anonymous session token)
//
// The endpoint is gated by an application-level shared secret carried in the
// X-App-Secret header; it is the only endpoint that does not require a
// session token, and it is deliberately outside the rate-limited group.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platefinder/go-reviews-backend/internal/domain"
	"github.com/platefinder/go-reviews-backend/internal/services"
)

// HeaderAppSecret carries the application shared secret on session creation.
const HeaderAppSecret = "X-App-Secret"

// SessionService defines session issuance as consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SessionService interface {
	// Create validates the app secret and issues a new anonymous session.
	Create(ctx context.Context, appSecret string) (*domain.Session, error)
}

// CreateSessionResponse is the JSON payload returned on successful issuance.
type CreateSessionResponse struct {
	Token     string `json:"token" example:"h2J9xK1mP4qR7sT0vW3yZ6bC8dF5gN2a"`
	ExpiresAt string `json:"expiresAt" example:"2026-01-15T10:30:00Z"`
}

// CreateSession issues a new anonymous session token.
//
// Responses:
//   - 201 with {token, expiresAt}
//   - 403 when the shared secret is missing or wrong
//   - 500 when persistence fails
func (h *Handlers) CreateSession(c *gin.Context) {
	secret := c.GetHeader(HeaderAppSecret)

	sess, err := h.sessionSvc.Create(c.Request.Context(), secret)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			fail(c, http.StatusForbidden, ErrCodeForbidden, "invalid or missing app secret")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeSessionFailed, "failed to create session")
		return
	}

	ok(c, http.StatusCreated, CreateSessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}
