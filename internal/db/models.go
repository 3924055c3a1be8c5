package db

import (
	"time"

	"github.com/google/uuid"
)

// Learner represents a registered learner account.
type Learner struct {
	ID             uuid.UUID
	Email          string
	DisplayName    string
	NativeLanguage string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Session represents an authenticated web session.
type Session struct {
	ID        string
	LearnerID uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Song represents a track imported from a unified cross-catalog search
// result. At least one of SpotifyID and YouTubeID is always set.
type Song struct {
	ID            uuid.UUID
	Title         string
	Artist        string
	SpotifyID     *string // nullable
	YouTubeID     *string // nullable
	Confidence    int
	PrimarySource string
	CoverURL      *string // nullable
	Language      *string // nullable
	CreatedAt     time.Time
}

// VocabularyItem represents a learner's saved word together with its
// embedded spaced-repetition scheduling state. Version supports the
// optimistic concurrency check on scheduling-state writes; TotalReviews
// and Lapses are running counters feeding the insights service.
type VocabularyItem struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	SongID         *uuid.UUID // nullable
	Word           string
	Translation    string
	Language       string
	DifficultyBand string

	EasinessFactor  float64
	RepetitionCount int
	IntervalDays    int
	NextReviewAt    time.Time
	LastReviewedAt  *time.Time // nullable

	TotalReviews int
	Lapses       int
	Version      int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemReviewStats is the per-item aggregate the insights service clusters.
type ItemReviewStats struct {
	ItemID         uuid.UUID
	Word           string
	DifficultyBand string
	EasinessFactor float64
	IntervalDays   int
	TotalReviews   int
	Lapses         int
}
