// Package srs implements the spaced-repetition engine: an SM-2 family
// scheduler that turns review outcomes into new scheduling state, and the
// session builder that assembles exercises from due vocabulary.
package srs

import (
	"math"
	"time"
)

// Review quality bounds. A quality below PassingQuality means the learner
// failed to recall the item.
const (
	MinQuality     = 0
	MaxQuality     = 5
	PassingQuality = 3
)

// SchedulerConfig holds spaced-repetition tuning parameters.
type SchedulerConfig struct {
	// MinEasiness is the floor for the easiness factor. Without it a long
	// streak of failures would trap an item in runaway short intervals.
	MinEasiness float64

	// DefaultEasiness is the easiness factor assigned to new items.
	DefaultEasiness float64
}

// DefaultSchedulerConfig returns the standard SM-2 parameters.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MinEasiness:     1.3,
		DefaultEasiness: 2.5,
	}
}

// SchedulingState is the per-item spaced-repetition state. A zero
// IntervalDays occurs only for an item that has never been reviewed,
// which is due immediately.
type SchedulingState struct {
	EasinessFactor  float64
	RepetitionCount int
	IntervalDays    int
	NextReviewAt    time.Time
	LastReviewedAt  *time.Time
}

// NewState returns the state for a freshly saved vocabulary item: due right
// now, never reviewed.
func NewState(cfg SchedulerConfig, now time.Time) SchedulingState {
	return SchedulingState{
		EasinessFactor: cfg.DefaultEasiness,
		NextReviewAt:   now,
	}
}

// Schedule computes the next scheduling state from a review outcome.
// It is a pure function: identical (state, quality, now) always yield
// identical output. A quality outside [MinQuality, MaxQuality] is clamped
// into range rather than rejected. The next due date projects forward from
// now, not from the previously scheduled date, so reviewing early or late
// is reflected in the new interval.
func Schedule(state SchedulingState, quality int, now time.Time, cfg SchedulerConfig) SchedulingState {
	q := clampQuality(quality)

	next := state
	if q < PassingQuality {
		// Lapse: the repetition streak restarts and the item comes back
		// tomorrow.
		next.RepetitionCount = 0
		next.IntervalDays = 1
	} else {
		next.RepetitionCount = state.RepetitionCount + 1
		switch next.RepetitionCount {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(state.IntervalDays) * state.EasinessFactor))
		}
		if next.IntervalDays < 1 {
			next.IntervalDays = 1
		}
	}

	ef := state.EasinessFactor + (0.1 - float64(MaxQuality-q)*(0.08+float64(MaxQuality-q)*0.02))
	if ef < cfg.MinEasiness {
		ef = cfg.MinEasiness
	}
	next.EasinessFactor = ef

	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)

	return next
}

func clampQuality(q int) int {
	if q < MinQuality {
		return MinQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}
