// Package review is the store-backed layer over the spaced-repetition
// engine: it loads vocabulary items, runs the scheduler on submitted
// reviews, and assembles practice sessions.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lyriclingo/lyriclingo/internal/db"
	"github.com/lyriclingo/lyriclingo/internal/srs"
)

// Errors returned by the service.
var (
	ErrNotOwner    = errors.New("item belongs to a different learner")
	ErrInvalidBand = errors.New("invalid difficulty band")
)

// Defaults.
const (
	DefaultDueLimit = 50
	DefaultPoolSize = 30
)

// Store is the persistence surface the service needs. *db.VocabularyRepository
// satisfies it.
type Store interface {
	Create(ctx context.Context, item *db.VocabularyItem) error
	Get(ctx context.Context, id uuid.UUID) (*db.VocabularyItem, error)
	SaveSchedulingState(ctx context.Context, id uuid.UUID, expectedVersion int, state srs.SchedulingState, lapsed bool) error
	QueryDue(ctx context.Context, ownerID uuid.UUID, now time.Time, limit int) ([]db.VocabularyItem, error)
	ListOther(ctx context.Context, ownerID uuid.UUID, language string, excludeID uuid.UUID, limit int) ([]db.VocabularyItem, error)
}

// Service coordinates scheduling and session building for one store.
type Service struct {
	store        Store
	schedulerCfg srs.SchedulerConfig
	sessionCfg   srs.SessionConfig
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSchedulerConfig overrides the SM-2 parameters.
func WithSchedulerConfig(cfg srs.SchedulerConfig) Option {
	return func(s *Service) { s.schedulerCfg = cfg }
}

// WithSessionConfig overrides the session-builder parameters.
func WithSessionConfig(cfg srs.SessionConfig) Option {
	return func(s *Service) { s.sessionCfg = cfg }
}

// NewService creates a review service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		schedulerCfg: srs.DefaultSchedulerConfig(),
		sessionCfg:   srs.DefaultSessionConfig(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewItemParams carries the learner-supplied fields for a new item.
type NewItemParams struct {
	OwnerID     uuid.UUID
	SongID      *uuid.UUID
	Word        string
	Translation string
	Language    string
	Band        srs.Band
}

// AddItem validates params, seeds the initial scheduling state and
// persists the item. New items are due immediately.
func (s *Service) AddItem(ctx context.Context, params NewItemParams) (*db.VocabularyItem, error) {
	if params.Word == "" {
		return nil, errors.New("word is required")
	}
	if params.Translation == "" {
		return nil, errors.New("translation is required")
	}
	if !srs.ValidBand(params.Band) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBand, params.Band)
	}

	state := srs.NewState(s.schedulerCfg, s.now())
	item := &db.VocabularyItem{
		ID:             uuid.New(),
		OwnerID:        params.OwnerID,
		SongID:         params.SongID,
		Word:           params.Word,
		Translation:    params.Translation,
		Language:       params.Language,
		DifficultyBand: string(params.Band),

		EasinessFactor:  state.EasinessFactor,
		RepetitionCount: state.RepetitionCount,
		IntervalDays:    state.IntervalDays,
		NextReviewAt:    state.NextReviewAt,
		LastReviewedAt:  state.LastReviewedAt,
	}
	if err := s.store.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating vocabulary item: %w", err)
	}
	return item, nil
}

// ReviewOutcome reports the scheduling state after a review.
type ReviewOutcome struct {
	ItemID          uuid.UUID `json:"item_id"`
	Quality         int       `json:"quality"`
	Lapsed          bool      `json:"lapsed"`
	EasinessFactor  float64   `json:"easiness_factor"`
	RepetitionCount int       `json:"repetition_count"`
	IntervalDays    int       `json:"interval_days"`
	NextReviewAt    time.Time `json:"next_review_at"`
}

// SubmitReview records a quality grade for a learner's item: it runs the
// scheduler on the item's current state and persists the result under the
// item's version, so a concurrent review of the same item surfaces as
// db.ErrVersionConflict rather than silently overwriting.
func (s *Service) SubmitReview(ctx context.Context, ownerID, itemID uuid.UUID, quality int) (*ReviewOutcome, error) {
	item, err := s.store.Get(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("loading item: %w", err)
	}
	if item.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	now := s.now()
	next := srs.Schedule(schedulingState(item), quality, now, s.schedulerCfg)
	lapsed := quality < srs.PassingQuality

	if err := s.store.SaveSchedulingState(ctx, itemID, item.Version, next, lapsed); err != nil {
		return nil, fmt.Errorf("persisting review: %w", err)
	}
	return &ReviewOutcome{
		ItemID:          itemID,
		Quality:         quality,
		Lapsed:          lapsed,
		EasinessFactor:  next.EasinessFactor,
		RepetitionCount: next.RepetitionCount,
		IntervalDays:    next.IntervalDays,
		NextReviewAt:    next.NextReviewAt,
	}, nil
}

// DueItems returns the learner's items due for review, most overdue first.
func (s *Service) DueItems(ctx context.Context, ownerID uuid.UUID, limit int) ([]db.VocabularyItem, error) {
	if limit <= 0 {
		limit = DefaultDueLimit
	}
	items, err := s.store.QueryDue(ctx, ownerID, s.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying due items: %w", err)
	}
	return items, nil
}

// BuildSession assembles a practice session from the learner's due items.
// The distractor pool covers every language in the due set, so an item in
// any language draws from the learner's own vocabulary before the generic
// fallback list.
func (s *Service) BuildSession(ctx context.Context, ownerID uuid.UUID, size int, mix srs.SessionMix) ([]srs.ExerciseUnit, error) {
	due, err := s.DueItems(ctx, ownerID, size)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}

	var pool []db.VocabularyItem
	seen := make(map[string]bool)
	for _, item := range due {
		if seen[item.Language] {
			continue
		}
		seen[item.Language] = true
		items, err := s.store.ListOther(ctx, ownerID, item.Language, uuid.Nil, DefaultPoolSize)
		if err != nil {
			return nil, fmt.Errorf("loading distractor pool: %w", err)
		}
		pool = append(pool, items...)
	}

	return srs.BuildSession(toSRSItems(due), toSRSItems(pool), size, mix, s.sessionCfg), nil
}

func schedulingState(item *db.VocabularyItem) srs.SchedulingState {
	return srs.SchedulingState{
		EasinessFactor:  item.EasinessFactor,
		RepetitionCount: item.RepetitionCount,
		IntervalDays:    item.IntervalDays,
		NextReviewAt:    item.NextReviewAt,
		LastReviewedAt:  item.LastReviewedAt,
	}
}

func toSRSItems(items []db.VocabularyItem) []srs.Item {
	out := make([]srs.Item, 0, len(items))
	for _, item := range items {
		out = append(out, srs.Item{
			ID:          item.ID,
			OwnerID:     item.OwnerID,
			Word:        item.Word,
			Translation: item.Translation,
			Language:    item.Language,
			Band:        srs.Band(item.DifficultyBand),
			State:       schedulingState(&item),
		})
	}
	return out
}
