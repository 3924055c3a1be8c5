package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LearnerRepository handles learner database operations.
type LearnerRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new learner.
func (r *LearnerRepository) Create(ctx context.Context, learner *Learner) error {
	query := `
		INSERT INTO learners (id, email, display_name, native_language, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	now := time.Now()
	_, err := r.pool.Exec(ctx, query,
		learner.ID,
		learner.Email,
		learner.DisplayName,
		learner.NativeLanguage,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("inserting learner: %w", err)
	}
	learner.CreatedAt = now
	learner.UpdatedAt = now
	return nil
}

// Get retrieves a learner by ID.
func (r *LearnerRepository) Get(ctx context.Context, id uuid.UUID) (*Learner, error) {
	query := `
		SELECT id, email, display_name, native_language, created_at, updated_at
		FROM learners
		WHERE id = $1
	`
	var learner Learner
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&learner.ID,
		&learner.Email,
		&learner.DisplayName,
		&learner.NativeLanguage,
		&learner.CreatedAt,
		&learner.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying learner: %w", err)
	}
	return &learner, nil
}

// GetByEmail retrieves a learner by email address.
func (r *LearnerRepository) GetByEmail(ctx context.Context, email string) (*Learner, error) {
	query := `
		SELECT id, email, display_name, native_language, created_at, updated_at
		FROM learners
		WHERE email = $1
	`
	var learner Learner
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&learner.ID,
		&learner.Email,
		&learner.DisplayName,
		&learner.NativeLanguage,
		&learner.CreatedAt,
		&learner.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying learner by email: %w", err)
	}
	return &learner, nil
}

// Update saves display name and native language changes.
func (r *LearnerRepository) Update(ctx context.Context, learner *Learner) error {
	query := `
		UPDATE learners
		SET display_name = $2, native_language = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		learner.ID,
		learner.DisplayName,
		learner.NativeLanguage,
	).Scan(&learner.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("updating learner: %w", err)
	}
	return nil
}
