// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review
// model.
//
// Reviews are append-only: the pipeline inserts one row per provider review
// and never updates or deletes existing rows. The newest-first listing is
// what the retrieval pipeline uses to decide durable-tier freshness.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefinder/go-reviews-backend/internal/domain"
)

// ListRecentReviews returns up to limit reviews for placeID, ordered by
// creation time descending (newest first). It returns an empty slice when
// no rows exist. On DB error, it returns the error.
func ListRecentReviews(ctx context.Context, db *gorm.DB, placeID string, limit int) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Where("place_id = ?", placeID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CreateReviews inserts one Review row per text for placeID, all stamped
// with the provider source tag and a shared UTC creation time. Rows are
// inserted in a single batch; a failure leaves no partial ordering guarantee
// beyond what the driver provides.
func CreateReviews(ctx context.Context, db *gorm.DB, placeID string, texts []string) ([]domain.Review, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	rows := make([]domain.Review, 0, len(texts))
	for _, t := range texts {
		rows = append(rows, domain.Review{
			ID:        uuid.NewString(),
			PlaceID:   placeID,
			Text:      t,
			Source:    domain.ReviewSourceProvider,
			CreatedAt: now,
		})
	}
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountReviews returns the total number of stored reviews for placeID.
func CountReviews(ctx context.Context, db *gorm.DB, placeID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("place_id = ?", placeID).
		Count(&total).Error
	return total, err
}
