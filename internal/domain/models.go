// Package domain defines the persistence models for restaurants, reviews,
// and anonymous sessions. These types are mapped with GORM and form the core
// data layer of the review-aggregation backend.
package domain

import "time"

// ReviewSourceProvider tags reviews ingested from the paid external provider.
// It is the only source this backend writes; rows are append-only.
const ReviewSourceProvider = "provider"

// Restaurant represents a place for which reviews have been fetched at least
// once. Rows are created lazily the first time the retrieval pipeline falls
// through to the external provider, at most once per place_id (existence
// check before insert, first write wins).
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - PlaceID: external place identifier; unique.
//   - Name / Address: display metadata supplied by the caller.
//   - Source: where the record originated (provider tag).
//   - CreatedAt: insertion timestamp.
type Restaurant struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	PlaceID   string    `json:"place_id"   gorm:"type:varchar(128);not null;uniqueIndex:ux_restaurants_place"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	Address   string    `json:"address"    gorm:"type:varchar(255)"`
	Source    string    `json:"source"     gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Restaurant.
func (Restaurant) TableName() string { return "restaurants" }

// Review represents a single review text persisted when the pipeline fell
// through to the external provider. Reviews are append-only: never updated,
// never deleted by this backend. The newest row's age decides whether the
// durable tier is still fresh.
type Review struct {
	ID      string `json:"id"       gorm:"type:char(36);primaryKey"`
	PlaceID string `json:"place_id" gorm:"type:varchar(128);not null;index:idx_place_reviews,priority:1"`
	Text    string `json:"text"     gorm:"type:text;not null"`
	Source  string `json:"source"   gorm:"type:varchar(32);not null;default:'provider'"`
	// CreatedAt participates in the (place_id, created_at) index so the
	// newest-first freshness query stays cheap.
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_place_reviews,priority:2"`

	// Restaurant is the owning place. Reviews are cascade-deleted if the
	// restaurant row is ever removed out-of-band.
	Restaurant Restaurant `json:"-" gorm:"foreignKey:PlaceID;references:PlaceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// Session represents an anonymous client session. Sessions move through
// NONEXISTENT -> ACTIVE -> EXPIRED; expiry is logical (the row persists) and
// ExpiresAt is never extended after creation.
//
// Fields:
//   - Token: opaque random credential, unique, >= 128 bits of entropy.
//   - ExpiresAt: hard cutoff; validation fails once now > ExpiresAt.
//   - LastUsed: touched on each successful validation, best effort.
//   - RateTier: admission-control tier tag (currently only "standard").
type Session struct {
	ID        string     `json:"id"         gorm:"type:char(36);primaryKey"`
	Token     string     `json:"token"      gorm:"type:varchar(64);not null;uniqueIndex:ux_sessions_token"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
	RateTier  string     `json:"rate_tier"  gorm:"type:varchar(32);not null;default:'standard'"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Expired reports whether the session is past its hard cutoff at t.
func (s Session) Expired(t time.Time) bool { return t.After(s.ExpiresAt) }
