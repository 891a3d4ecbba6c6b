// Package services – SessionService
//
// This file implements the anonymous session lifecycle: issuance gated by an
// application-level shared secret, and validation with best-effort last-used
// tracking. Sessions move NONEXISTENT -> ACTIVE -> EXPIRED and never return
// to ACTIVE; expiry is logical, the row persists.
package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/platefinder/go-reviews-backend/internal/domain"
	"github.com/platefinder/go-reviews-backend/internal/repo"
)

// tokenAlphabet is the uniform alphanumeric alphabet session tokens are
// drawn from. 32 characters over 62 symbols carries ~190 bits of entropy,
// comfortably above the 128-bit floor.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const defaultRateTier = "standard"

// SessionService issues and validates anonymous session tokens. The shared
// secret authenticates the calling application, not an end user.
type SessionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// AppSecret is the static application credential required to create
	// sessions. Compared in constant time.
	AppSecret string

	// Duration is the session lifetime; ExpiresAt is fixed at creation.
	Duration time.Duration

	// TokenLength is the number of alphanumeric characters per token.
	TokenLength int
}

// NewSessionService constructs a SessionService with the given secret and
// lifetime. A non-positive tokenLength falls back to 32.
func NewSessionService(db *gorm.DB, appSecret string, duration time.Duration, tokenLength int) *SessionService {
	if tokenLength <= 0 {
		tokenLength = 32
	}
	return &SessionService{
		DB:          db,
		AppSecret:   appSecret,
		Duration:    duration,
		TokenLength: tokenLength,
	}
}

// Create validates the presented application secret and, on success, issues
// a new session: a cryptographically random token with a fixed expiry.
// Returns ErrUnauthorized when the secret is absent or does not match.
func (s *SessionService) Create(ctx context.Context, appSecret string) (*domain.Session, error) {
	if !s.secretMatches(appSecret) {
		return nil, ErrUnauthorized
	}

	token, err := s.generateToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(s.Duration)

	sess, err := repo.CreateSession(ctx, s.DB, token, expiresAt, defaultRateTier)
	if err != nil {
		return nil, err
	}
	log.Info().Time("expires_at", expiresAt).Msg("anonymous session created")
	return sess, nil
}

// Validate reports whether token identifies an ACTIVE session. Missing or
// expired sessions return false; so do store failures during lookup. On
// success the session's last_used is advanced best effort; a failed touch
// is logged and never fails the validation itself.
func (s *SessionService) Validate(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	sess, err := repo.GetSessionByToken(ctx, s.DB, token)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error().Err(err).Msg("session lookup failed")
		}
		return false
	}

	now := time.Now().UTC()
	if sess.Expired(now) {
		return false
	}

	if err := repo.TouchSession(ctx, s.DB, token, now); err != nil {
		log.Warn().Err(err).Msg("session last_used update failed")
	}
	return true
}

// secretMatches compares the presented secret against the configured one in
// constant time to avoid timing side-channels. An empty configured secret
// matches nothing.
func (s *SessionService) secretMatches(presented string) bool {
	if s.AppSecret == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(s.AppSecret)) == 1
}

// generateToken draws TokenLength characters uniformly from tokenAlphabet
// using crypto/rand. Per-character rand.Int keeps the distribution unbiased.
func (s *SessionService) generateToken() (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, s.TokenLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
