package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lyriclingo/lyriclingo/internal/srs"
)

const vocabularyColumns = `
	id, owner_id, song_id, word, translation, language, difficulty_band,
	easiness_factor, repetition_count, interval_days, next_review_at, last_reviewed_at,
	total_reviews, lapses, version, created_at, updated_at
`

// VocabularyRepository handles vocabulary item database operations.
type VocabularyRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new vocabulary item with its initial scheduling state.
func (r *VocabularyRepository) Create(ctx context.Context, item *VocabularyItem) error {
	query := `
		INSERT INTO vocabulary_items (
			id, owner_id, song_id, word, translation, language, difficulty_band,
			easiness_factor, repetition_count, interval_days, next_review_at, last_reviewed_at,
			total_reviews, lapses, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, 0, 1, $13, $13)
	`
	now := time.Now()
	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.OwnerID,
		item.SongID,
		item.Word,
		item.Translation,
		item.Language,
		item.DifficultyBand,
		item.EasinessFactor,
		item.RepetitionCount,
		item.IntervalDays,
		item.NextReviewAt,
		item.LastReviewedAt,
		now,
	)
	if err != nil {
		return fmt.Errorf("inserting vocabulary item: %w", err)
	}
	item.Version = 1
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

// Get retrieves a vocabulary item by ID.
func (r *VocabularyRepository) Get(ctx context.Context, id uuid.UUID) (*VocabularyItem, error) {
	query := `SELECT ` + vocabularyColumns + ` FROM vocabulary_items WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	item, err := scanVocabularyRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying vocabulary item: %w", err)
	}
	return item, nil
}

// SaveSchedulingState persists the scheduler output for an item. The write
// succeeds only when expectedVersion still matches the row, implementing
// the single-writer contract the scheduler requires; a lost race returns
// ErrVersionConflict. A lapsed review additionally bumps the lapse counter.
func (r *VocabularyRepository) SaveSchedulingState(ctx context.Context, id uuid.UUID, expectedVersion int, state srs.SchedulingState, lapsed bool) error {
	query := `
		UPDATE vocabulary_items
		SET easiness_factor = $3,
			repetition_count = $4,
			interval_days = $5,
			next_review_at = $6,
			last_reviewed_at = $7,
			total_reviews = total_reviews + 1,
			lapses = lapses + $8,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
	`
	lapseDelta := 0
	if lapsed {
		lapseDelta = 1
	}
	result, err := r.pool.Exec(ctx, query,
		id,
		expectedVersion,
		state.EasinessFactor,
		state.RepetitionCount,
		state.IntervalDays,
		state.NextReviewAt,
		state.LastReviewedAt,
		lapseDelta,
	)
	if err != nil {
		return fmt.Errorf("saving scheduling state: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Either the row is gone or a concurrent review won the version
		// check; distinguish the two for the caller.
		if _, getErr := r.Get(ctx, id); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// QueryDue retrieves a learner's due items ordered most overdue first.
func (r *VocabularyRepository) QueryDue(ctx context.Context, ownerID uuid.UUID, now time.Time, limit int) ([]VocabularyItem, error) {
	query := `
		SELECT ` + vocabularyColumns + `
		FROM vocabulary_items
		WHERE owner_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at ASC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, ownerID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("querying due vocabulary: %w", err)
	}
	defer rows.Close()
	return scanVocabularyRows(rows)
}

// ListOther retrieves a learner's vocabulary in one language, excluding a
// single item. Used to draw multiple-choice distractors.
func (r *VocabularyRepository) ListOther(ctx context.Context, ownerID uuid.UUID, language string, excludeID uuid.UUID, limit int) ([]VocabularyItem, error) {
	query := `
		SELECT ` + vocabularyColumns + `
		FROM vocabulary_items
		WHERE owner_id = $1 AND language = $2 AND id <> $3
		ORDER BY created_at ASC
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, query, ownerID, language, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying other vocabulary: %w", err)
	}
	defer rows.Close()
	return scanVocabularyRows(rows)
}

// ListForOwner retrieves all of a learner's vocabulary, oldest first.
func (r *VocabularyRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]VocabularyItem, error) {
	query := `
		SELECT ` + vocabularyColumns + `
		FROM vocabulary_items
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying vocabulary: %w", err)
	}
	defer rows.Close()
	return scanVocabularyRows(rows)
}

// ReviewStats retrieves the per-item aggregates the insights service
// clusters into difficulty bands.
func (r *VocabularyRepository) ReviewStats(ctx context.Context, ownerID uuid.UUID) ([]ItemReviewStats, error) {
	query := `
		SELECT id, word, difficulty_band, easiness_factor, interval_days, total_reviews, lapses
		FROM vocabulary_items
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying review stats: %w", err)
	}
	defer rows.Close()

	var stats []ItemReviewStats
	for rows.Next() {
		var s ItemReviewStats
		if err := rows.Scan(
			&s.ItemID,
			&s.Word,
			&s.DifficultyBand,
			&s.EasinessFactor,
			&s.IntervalDays,
			&s.TotalReviews,
			&s.Lapses,
		); err != nil {
			return nil, fmt.Errorf("scanning review stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Delete removes a vocabulary item owned by the given learner.
func (r *VocabularyRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM vocabulary_items WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting vocabulary item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVocabularyRow(row pgx.Row) (*VocabularyItem, error) {
	var item VocabularyItem
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.SongID,
		&item.Word,
		&item.Translation,
		&item.Language,
		&item.DifficultyBand,
		&item.EasinessFactor,
		&item.RepetitionCount,
		&item.IntervalDays,
		&item.NextReviewAt,
		&item.LastReviewedAt,
		&item.TotalReviews,
		&item.Lapses,
		&item.Version,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanVocabularyRows(rows pgx.Rows) ([]VocabularyItem, error) {
	var items []VocabularyItem
	for rows.Next() {
		item, err := scanVocabularyRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning vocabulary item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
