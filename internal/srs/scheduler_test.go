package srs

import (
	"math"
	"testing"
	"time"
)

var day0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func day(n int) time.Time { return day0.AddDate(0, 0, n) }

func TestScheduleSuccessfulProgression(t *testing.T) {
	cfg := DefaultSchedulerConfig()

	// First successful review of a new item.
	state := NewState(cfg, day(0))
	state = Schedule(state, 4, day(0), cfg)
	if state.RepetitionCount != 1 || state.IntervalDays != 1 {
		t.Fatalf("after first review: count=%d interval=%d, want 1 and 1", state.RepetitionCount, state.IntervalDays)
	}
	if !state.NextReviewAt.Equal(day(1)) {
		t.Fatalf("after first review: next=%v, want %v", state.NextReviewAt, day(1))
	}

	// Second successful review jumps to six days.
	state = Schedule(state, 4, day(1), cfg)
	if state.RepetitionCount != 2 || state.IntervalDays != 6 {
		t.Fatalf("after second review: count=%d interval=%d, want 2 and 6", state.RepetitionCount, state.IntervalDays)
	}
	if !state.NextReviewAt.Equal(day(7)) {
		t.Fatalf("after second review: next=%v, want %v", state.NextReviewAt, day(7))
	}

	// Third and later reviews grow by the easiness factor.
	ef := state.EasinessFactor
	state = Schedule(state, 5, day(7), cfg)
	wantInterval := int(math.Round(6 * ef))
	if state.RepetitionCount != 3 || state.IntervalDays != wantInterval {
		t.Fatalf("after third review: count=%d interval=%d, want 3 and %d", state.RepetitionCount, state.IntervalDays, wantInterval)
	}
	if !state.NextReviewAt.Equal(day(7 + wantInterval)) {
		t.Fatalf("after third review: next=%v, want %v", state.NextReviewAt, day(7+wantInterval))
	}
}

func TestScheduleLapseResets(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	state := SchedulingState{
		EasinessFactor:  2.5,
		RepetitionCount: 2,
		IntervalDays:    6,
	}

	got := Schedule(state, 1, day(7), cfg)

	if got.RepetitionCount != 0 {
		t.Errorf("repetition count = %d, want 0 after lapse", got.RepetitionCount)
	}
	if got.IntervalDays != 1 {
		t.Errorf("interval = %d, want 1 after lapse", got.IntervalDays)
	}
	if got.EasinessFactor >= 2.5 {
		t.Errorf("easiness = %v, want reduced below 2.5", got.EasinessFactor)
	}
	if got.EasinessFactor < cfg.MinEasiness {
		t.Errorf("easiness = %v, below floor %v", got.EasinessFactor, cfg.MinEasiness)
	}
	if !got.NextReviewAt.Equal(day(8)) {
		t.Errorf("next review = %v, want %v", got.NextReviewAt, day(8))
	}
}

func TestScheduleLapseResetsForAnyStreak(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	for count := 1; count <= 10; count++ {
		state := SchedulingState{
			EasinessFactor:  2.0,
			RepetitionCount: count,
			IntervalDays:    count * 7,
		}
		got := Schedule(state, 0, day(0), cfg)
		if got.RepetitionCount != 0 || got.IntervalDays != 1 {
			t.Errorf("count=%d: got (count=%d, interval=%d), want (0, 1)", count, got.RepetitionCount, got.IntervalDays)
		}
	}
}

func TestScheduleEasinessFloor(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	state := NewState(cfg, day(0))

	// Hammer the item with the worst quality; easiness must never sink
	// below the floor.
	for i := 0; i < 20; i++ {
		state = Schedule(state, 0, day(i), cfg)
		if state.EasinessFactor < cfg.MinEasiness {
			t.Fatalf("iteration %d: easiness %v below floor %v", i, state.EasinessFactor, cfg.MinEasiness)
		}
	}
	if state.EasinessFactor != cfg.MinEasiness {
		t.Errorf("easiness = %v after repeated failures, want pinned at floor %v", state.EasinessFactor, cfg.MinEasiness)
	}
}

func TestScheduleDueDateArithmetic(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	qualities := []int{5, 4, 1, 3, 0, 5, 5, 5}
	state := NewState(cfg, day(0))

	for i, q := range qualities {
		now := day(i * 3)
		state = Schedule(state, q, now, cfg)
		want := now.AddDate(0, 0, state.IntervalDays)
		if !state.NextReviewAt.Equal(want) {
			t.Fatalf("quality %d at %v: next=%v, want now+%dd=%v", q, now, state.NextReviewAt, state.IntervalDays, want)
		}
		if state.LastReviewedAt == nil || !state.LastReviewedAt.Equal(now) {
			t.Fatalf("quality %d: lastReviewedAt=%v, want %v", q, state.LastReviewedAt, now)
		}
		if state.IntervalDays < 1 {
			t.Fatalf("quality %d: interval %d, must be >= 1 after any review", q, state.IntervalDays)
		}
	}
}

func TestScheduleClampsQuality(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	state := NewState(cfg, day(0))

	high := Schedule(state, 9, day(0), cfg)
	max := Schedule(state, MaxQuality, day(0), cfg)
	if !statesEqual(high, max) {
		t.Errorf("quality 9 result differs from quality 5: %+v vs %+v", high, max)
	}

	low := Schedule(state, -3, day(0), cfg)
	zero := Schedule(state, MinQuality, day(0), cfg)
	if !statesEqual(low, zero) {
		t.Errorf("quality -3 result differs from quality 0: %+v vs %+v", low, zero)
	}
}

func statesEqual(a, b SchedulingState) bool {
	if a.EasinessFactor != b.EasinessFactor ||
		a.RepetitionCount != b.RepetitionCount ||
		a.IntervalDays != b.IntervalDays ||
		!a.NextReviewAt.Equal(b.NextReviewAt) {
		return false
	}
	if (a.LastReviewedAt == nil) != (b.LastReviewedAt == nil) {
		return false
	}
	return a.LastReviewedAt == nil || a.LastReviewedAt.Equal(*b.LastReviewedAt)
}

func TestScheduleIsPure(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	state := SchedulingState{EasinessFactor: 2.2, RepetitionCount: 3, IntervalDays: 14}

	a := Schedule(state, 4, day(10), cfg)
	b := Schedule(state, 4, day(10), cfg)
	if a.EasinessFactor != b.EasinessFactor || a.IntervalDays != b.IntervalDays ||
		a.RepetitionCount != b.RepetitionCount || !a.NextReviewAt.Equal(b.NextReviewAt) {
		t.Errorf("Schedule not deterministic: %+v vs %+v", a, b)
	}
	if state.RepetitionCount != 3 || state.LastReviewedAt != nil {
		t.Errorf("Schedule mutated its input: %+v", state)
	}
}

func TestNewStateDueImmediately(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	state := NewState(cfg, day(0))

	if state.IntervalDays != 0 {
		t.Errorf("interval = %d, want 0 for a never-reviewed item", state.IntervalDays)
	}
	if state.RepetitionCount != 0 {
		t.Errorf("repetition count = %d, want 0", state.RepetitionCount)
	}
	if !state.NextReviewAt.Equal(day(0)) {
		t.Errorf("next review = %v, want due now", state.NextReviewAt)
	}
	if state.EasinessFactor != cfg.DefaultEasiness {
		t.Errorf("easiness = %v, want default %v", state.EasinessFactor, cfg.DefaultEasiness)
	}
}
