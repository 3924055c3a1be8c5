package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SongRepository handles song database operations.
type SongRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a song imported from a unified search result.
func (r *SongRepository) Create(ctx context.Context, song *Song) error {
	query := `
		INSERT INTO songs (id, title, artist, spotify_id, youtube_id, confidence, primary_source, cover_url, language, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		song.ID,
		song.Title,
		song.Artist,
		song.SpotifyID,
		song.YouTubeID,
		song.Confidence,
		song.PrimarySource,
		song.CoverURL,
		song.Language,
	).Scan(&song.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting song: %w", err)
	}
	return nil
}

// Get retrieves a song by ID.
func (r *SongRepository) Get(ctx context.Context, id uuid.UUID) (*Song, error) {
	query := `
		SELECT id, title, artist, spotify_id, youtube_id, confidence, primary_source, cover_url, language, created_at
		FROM songs
		WHERE id = $1
	`
	var song Song
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&song.ID,
		&song.Title,
		&song.Artist,
		&song.SpotifyID,
		&song.YouTubeID,
		&song.Confidence,
		&song.PrimarySource,
		&song.CoverURL,
		&song.Language,
		&song.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return &song, nil
}

// GetBySpotifyID retrieves a song by its metadata-catalog identifier,
// used to avoid importing the same listing twice.
func (r *SongRepository) GetBySpotifyID(ctx context.Context, spotifyID string) (*Song, error) {
	query := `
		SELECT id, title, artist, spotify_id, youtube_id, confidence, primary_source, cover_url, language, created_at
		FROM songs
		WHERE spotify_id = $1
	`
	var song Song
	err := r.pool.QueryRow(ctx, query, spotifyID).Scan(
		&song.ID,
		&song.Title,
		&song.Artist,
		&song.SpotifyID,
		&song.YouTubeID,
		&song.Confidence,
		&song.PrimarySource,
		&song.CoverURL,
		&song.Language,
		&song.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song by spotify id: %w", err)
	}
	return &song, nil
}

// List retrieves recently imported songs, newest first.
func (r *SongRepository) List(ctx context.Context, limit int) ([]Song, error) {
	query := `
		SELECT id, title, artist, spotify_id, youtube_id, confidence, primary_source, cover_url, language, created_at
		FROM songs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		var song Song
		if err := rows.Scan(
			&song.ID,
			&song.Title,
			&song.Artist,
			&song.SpotifyID,
			&song.YouTubeID,
			&song.Confidence,
			&song.PrimarySource,
			&song.CoverURL,
			&song.Language,
			&song.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning song: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}
