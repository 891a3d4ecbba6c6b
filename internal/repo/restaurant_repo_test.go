package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/platefinder/go-reviews-backend/internal/domain"
)

func TestGetRestaurant_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.Restaurant{})
	_, err := GetRestaurant(context.Background(), db, "missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestCreateRestaurant_SetsFields(t *testing.T) {
	db := newTestDB(t, &domain.Restaurant{})

	r, err := CreateRestaurant(context.Background(), db, "place-1", "Taco Stand", "1 Main St")
	if err != nil {
		t.Fatalf("CreateRestaurant: %v", err)
	}
	if r.ID == "" || r.PlaceID != "place-1" || r.Name != "Taco Stand" {
		t.Fatalf("unexpected fields: %+v", r)
	}
	if r.Source != domain.ReviewSourceProvider {
		t.Fatalf("Source = %q, want %q", r.Source, domain.ReviewSourceProvider)
	}
}

func TestEnsureRestaurant_FirstWriteWins(t *testing.T) {
	db := newTestDB(t, &domain.Restaurant{})
	ctx := context.Background()

	first, err := EnsureRestaurant(ctx, db, "place-1", "Original Name", "1 Main St")
	if err != nil {
		t.Fatalf("first EnsureRestaurant: %v", err)
	}

	// Second ensure with different metadata must not update or duplicate.
	second, err := EnsureRestaurant(ctx, db, "place-1", "Renamed", "2 Other St")
	if err != nil {
		t.Fatalf("second EnsureRestaurant: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same row, got %q vs %q", second.ID, first.ID)
	}
	if second.Name != "Original Name" {
		t.Fatalf("existing row was mutated: %+v", second)
	}

	var count int64
	if err := db.Model(&domain.Restaurant{}).Where("place_id = ?", "place-1").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 restaurant row, got %d", count)
	}
}

func TestEnsureRestaurant_DuplicateInsertRace(t *testing.T) {
	db := newTestDB(t, &domain.Restaurant{})
	ctx := context.Background()

	// Simulate the loser of an insert race: the row appears between the
	// existence check and the insert. CreateRestaurant hits the unique
	// index, and EnsureRestaurant must still resolve to the existing row.
	if _, err := CreateRestaurant(ctx, db, "place-1", "Winner", "1 Main St"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := CreateRestaurant(ctx, db, "place-1", "Loser", "2 Other St"); err == nil {
		t.Fatal("expected unique violation on duplicate place_id")
	}
	r, err := EnsureRestaurant(ctx, db, "place-1", "Loser", "2 Other St")
	if err != nil {
		t.Fatalf("EnsureRestaurant after race: %v", err)
	}
	if r.Name != "Winner" {
		t.Fatalf("expected winner's row, got %+v", r)
	}
}
