// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Restaurant
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a restaurant is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefinder/go-reviews-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetRestaurant fetches a restaurant by its external place identifier.
// If the record does not exist, it returns ErrNotFound.
func GetRestaurant(ctx context.Context, db *gorm.DB, placeID string) (*domain.Restaurant, error) {
	var r domain.Restaurant
	err := db.WithContext(ctx).
		Where("place_id = ?", placeID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRestaurant inserts a new Restaurant row. The ID is a randomly
// generated UUID (string), and CreatedAt is set to UTC.
func CreateRestaurant(ctx context.Context, db *gorm.DB, placeID, name, address string) (*domain.Restaurant, error) {
	r := &domain.Restaurant{
		ID:        uuid.NewString(),
		PlaceID:   placeID,
		Name:      name,
		Address:   address,
		Source:    domain.ReviewSourceProvider,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// EnsureRestaurant inserts a Restaurant row for placeID if none exists yet:
// first write wins, existing rows are never updated. Two processes racing on
// the same placeID may both pass the existence check; the unique index on
// place_id rejects the loser, which is then treated as success.
func EnsureRestaurant(ctx context.Context, db *gorm.DB, placeID, name, address string) (*domain.Restaurant, error) {
	if r, err := GetRestaurant(ctx, db, placeID); err == nil {
		return r, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	r, err := CreateRestaurant(ctx, db, placeID, name, address)
	if err != nil {
		// Lost the insert race; the row is there now.
		if existing, gerr := GetRestaurant(ctx, db, placeID); gerr == nil {
			return existing, nil
		}
		return nil, err
	}
	return r, nil
}
