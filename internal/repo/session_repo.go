// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Session
// model.
//
// Functions:
//
//   - CreateSession(ctx, db, token, expiresAt, rateTier) -> *domain.Session, error
//     Inserts a new session row with UUID primary key.
//
//   - GetSessionByToken(ctx, db, token) -> *domain.Session, error
//     Fetches a session by its opaque token, or ErrNotFound if missing.
//
//   - TouchSession(ctx, db, token, t) -> error
//     Updates last_used; the caller treats failures as non-fatal.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefinder/go-reviews-backend/internal/domain"
)

// CreateSession inserts a new Session row. ExpiresAt is stored as given and
// is never extended afterwards.
func CreateSession(ctx context.Context, db *gorm.DB, token string, expiresAt time.Time, rateTier string) (*domain.Session, error) {
	s := &domain.Session{
		ID:        uuid.NewString(),
		Token:     token,
		ExpiresAt: expiresAt,
		RateTier:  rateTier,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSessionByToken fetches a session by its token. If the record does not
// exist, it returns ErrNotFound. Expiry is not evaluated here; that is the
// service's call.
func GetSessionByToken(ctx context.Context, db *gorm.DB, token string) (*domain.Session, error) {
	var s domain.Session
	err := db.WithContext(ctx).
		Where("token = ?", token).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// TouchSession sets last_used to t for the session identified by token.
// If no rows are affected the session is gone and ErrNotFound is returned.
func TouchSession(ctx context.Context, db *gorm.DB, token string, t time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("token = ?", token).
		Update("last_used", t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
