package srs

import "strings"

// ExerciseKind identifies the exercise format of a session unit.
type ExerciseKind string

// Exercise kinds.
const (
	ExerciseQuiz      ExerciseKind = "quiz"
	ExerciseMatching  ExerciseKind = "matching"
	ExerciseSentence  ExerciseKind = "sentence"
	ExerciseFillBlank ExerciseKind = "fill_blank"
)

// SessionMix selects the exercise composition of a review session.
type SessionMix string

// Session mixes.
const (
	// MixQuiz builds a session of multiple-choice quiz questions only.
	MixQuiz SessionMix = "quiz"

	// MixBlended builds a session blending all exercise kinds at fixed
	// proportions.
	MixBlended SessionMix = "blended"
)

// ExerciseUnit is one exercise in a review session.
type ExerciseUnit struct {
	Kind     ExerciseKind `json:"kind"`
	ItemID   string       `json:"item_id"`
	Prompt   string       `json:"prompt"`
	Answer   string       `json:"answer"`
	Options  []string     `json:"options,omitempty"`
	Language string       `json:"language"`
}

// SessionConfig holds session assembly parameters.
type SessionConfig struct {
	// OptionsPerQuestion is the total number of choices shown for quiz and
	// fill-in-blank exercises, the correct answer included.
	OptionsPerQuestion int

	// Blended mix proportions in percent. Integer-rounding remainders go
	// to the quiz bucket.
	QuizShare      int
	MatchingShare  int
	SentenceShare  int
	FillBlankShare int

	// FallbackDistractors are generic wrong answers used only when the
	// learner's own vocabulary cannot supply enough distractors.
	FallbackDistractors []string
}

// DefaultSessionConfig returns the standard session policy: four options
// per question and a 50/20/15/15 blended mix.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		OptionsPerQuestion: 4,
		QuizShare:          50,
		MatchingShare:      20,
		SentenceShare:      15,
		FillBlankShare:     15,
		FallbackDistractors: []string{
			"house", "water", "friend", "morning", "street",
			"window", "garden", "music", "letter", "bridge",
		},
	}
}

// BuildSession assembles a review session from due items. Sessions are
// never padded with non-due items: fewer due items than size yields a
// shorter session, and an empty due set yields an empty session, which
// signals "all caught up" rather than an error. Distractors come from the
// learner's other vocabulary in the same language first, then from the
// configured generic fallback list, and never collapse into the correct
// answer under case- and whitespace-insensitive comparison.
func BuildSession(due []Item, pool []Item, size int, mix SessionMix, cfg SessionConfig) []ExerciseUnit {
	if size <= 0 || len(due) == 0 {
		return nil
	}
	n := min(size, len(due))

	kinds := sessionKinds(n, mix, cfg)
	units := make([]ExerciseUnit, 0, n)
	for i := 0; i < n; i++ {
		units = append(units, buildUnit(due[i], kinds[i], pool, cfg))
	}
	return units
}

// sessionKinds expands the mix proportions into one kind per session slot.
// Most-overdue items sit at the front of the due list and land in the quiz
// bucket.
func sessionKinds(n int, mix SessionMix, cfg SessionConfig) []ExerciseKind {
	kinds := make([]ExerciseKind, 0, n)
	if mix != MixBlended {
		for i := 0; i < n; i++ {
			kinds = append(kinds, ExerciseQuiz)
		}
		return kinds
	}

	matching := n * cfg.MatchingShare / 100
	sentence := n * cfg.SentenceShare / 100
	fillBlank := n * cfg.FillBlankShare / 100
	quiz := n - matching - sentence - fillBlank // remainder joins the quiz bucket

	for i := 0; i < quiz; i++ {
		kinds = append(kinds, ExerciseQuiz)
	}
	for i := 0; i < matching; i++ {
		kinds = append(kinds, ExerciseMatching)
	}
	for i := 0; i < sentence; i++ {
		kinds = append(kinds, ExerciseSentence)
	}
	for i := 0; i < fillBlank; i++ {
		kinds = append(kinds, ExerciseFillBlank)
	}
	return kinds
}

func buildUnit(item Item, kind ExerciseKind, pool []Item, cfg SessionConfig) ExerciseUnit {
	unit := ExerciseUnit{
		Kind:     kind,
		ItemID:   item.ID.String(),
		Language: item.Language,
	}

	switch kind {
	case ExerciseQuiz:
		// Recognize the word, pick its translation.
		unit.Prompt = item.Word
		unit.Answer = item.Translation
		unit.Options = buildOptions(item, unit.Answer, pool, cfg, translationOf)
	case ExerciseFillBlank:
		// Produce the word from its translation, with word choices.
		unit.Prompt = item.Translation
		unit.Answer = item.Word
		unit.Options = buildOptions(item, unit.Answer, pool, cfg, wordOf)
	case ExerciseSentence:
		unit.Prompt = item.Translation
		unit.Answer = item.Word
	case ExerciseMatching:
		unit.Prompt = item.Word
		unit.Answer = item.Translation
	}
	return unit
}

func translationOf(i Item) string { return i.Translation }
func wordOf(i Item) string        { return i.Word }

// buildOptions assembles the choice list: distractors plus the correct
// answer at a position derived from the item id, so output is
// deterministic for identical input.
func buildOptions(item Item, answer string, pool []Item, cfg SessionConfig, candidate func(Item) string) []string {
	wanted := cfg.OptionsPerQuestion - 1
	if wanted < 1 {
		wanted = 1
	}

	folded := map[string]bool{foldAnswer(answer): true}
	var wrong []string

	for _, p := range pool {
		if len(wrong) == wanted {
			break
		}
		if p.ID == item.ID || p.Language != item.Language {
			continue
		}
		c := candidate(p)
		key := foldAnswer(c)
		if key == "" || folded[key] {
			continue
		}
		folded[key] = true
		wrong = append(wrong, c)
	}

	for _, c := range cfg.FallbackDistractors {
		if len(wrong) == wanted {
			break
		}
		key := foldAnswer(c)
		if key == "" || folded[key] {
			continue
		}
		folded[key] = true
		wrong = append(wrong, c)
	}

	insertAt := 0
	if len(wrong) > 0 {
		insertAt = int(item.ID[0]) % (len(wrong) + 1)
	}
	options := make([]string, 0, len(wrong)+1)
	options = append(options, wrong[:insertAt]...)
	options = append(options, answer)
	options = append(options, wrong[insertAt:]...)
	return options
}

// foldAnswer canonicalizes an answer for distractor comparison: answers
// differing only in case or spacing count as the same answer.
func foldAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
