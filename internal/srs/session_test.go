package srs

import (
	"testing"

	"github.com/google/uuid"
)

func makeItems(n int, language string) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(i), []byte(language)[0]}),
			OwnerID:     uuid.NameSpaceURL,
			Word:        "word" + string(rune('a'+i)),
			Translation: "translation" + string(rune('a'+i)),
			Language:    language,
		}
	}
	return items
}

func countKinds(units []ExerciseUnit) map[ExerciseKind]int {
	counts := map[ExerciseKind]int{}
	for _, u := range units {
		counts[u.Kind]++
	}
	return counts
}

func TestBuildSessionEmptyDueSet(t *testing.T) {
	units := BuildSession(nil, makeItems(5, "es"), 10, MixBlended, DefaultSessionConfig())
	if len(units) != 0 {
		t.Errorf("got %d units for empty due set, want 0", len(units))
	}
}

func TestBuildSessionNeverPads(t *testing.T) {
	due := makeItems(3, "es")
	units := BuildSession(due, makeItems(8, "es"), 10, MixQuiz, DefaultSessionConfig())
	if len(units) != 3 {
		t.Errorf("got %d units, want 3 (never padded past the due set)", len(units))
	}
}

func TestBuildSessionBlendedProportions(t *testing.T) {
	due := makeItems(20, "es")
	units := BuildSession(due, makeItems(10, "es"), 20, MixBlended, DefaultSessionConfig())
	if len(units) != 20 {
		t.Fatalf("got %d units, want 20", len(units))
	}

	counts := countKinds(units)
	if counts[ExerciseQuiz] != 10 {
		t.Errorf("quiz count = %d, want 10", counts[ExerciseQuiz])
	}
	if counts[ExerciseMatching] != 4 {
		t.Errorf("matching count = %d, want 4", counts[ExerciseMatching])
	}
	if counts[ExerciseSentence] != 3 {
		t.Errorf("sentence count = %d, want 3", counts[ExerciseSentence])
	}
	if counts[ExerciseFillBlank] != 3 {
		t.Errorf("fill-blank count = %d, want 3", counts[ExerciseFillBlank])
	}
}

func TestBuildSessionRemainderGoesToQuiz(t *testing.T) {
	// With 7 items the 20/15/15 buckets floor to 1/1/1 and the quiz bucket
	// absorbs the remainder: 7 - 3 = 4 instead of the nominal 3.5.
	due := makeItems(7, "es")
	units := BuildSession(due, nil, 7, MixBlended, DefaultSessionConfig())

	counts := countKinds(units)
	if counts[ExerciseQuiz] != 4 {
		t.Errorf("quiz count = %d, want 4 (remainder absorbed)", counts[ExerciseQuiz])
	}
	if len(units) != 7 {
		t.Errorf("got %d units, want 7", len(units))
	}
}

func TestBuildSessionQuizOnly(t *testing.T) {
	due := makeItems(6, "es")
	units := BuildSession(due, makeItems(6, "es"), 6, MixQuiz, DefaultSessionConfig())

	for _, u := range units {
		if u.Kind != ExerciseQuiz {
			t.Errorf("unit kind = %q, want all %q", u.Kind, ExerciseQuiz)
		}
	}
}

func TestBuildSessionDistractorsFromLearnerPoolFirst(t *testing.T) {
	due := makeItems(1, "es")
	pool := makeItems(6, "es")

	units := BuildSession(due, pool, 1, MixQuiz, DefaultSessionConfig())
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}

	poolTranslations := map[string]bool{}
	for _, p := range pool {
		poolTranslations[p.Translation] = true
	}

	unit := units[0]
	if len(unit.Options) != 4 {
		t.Fatalf("got %d options, want 4", len(unit.Options))
	}
	for _, opt := range unit.Options {
		if opt == unit.Answer {
			continue
		}
		if !poolTranslations[opt] {
			t.Errorf("distractor %q not drawn from learner pool", opt)
		}
	}
}

func TestBuildSessionFallbackDistractors(t *testing.T) {
	due := makeItems(1, "es")

	// Pool in another language cannot supply distractors.
	pool := makeItems(6, "fr")

	cfg := DefaultSessionConfig()
	units := BuildSession(due, pool, 1, MixQuiz, cfg)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}

	fallback := map[string]bool{}
	for _, w := range cfg.FallbackDistractors {
		fallback[w] = true
	}

	unit := units[0]
	if len(unit.Options) != cfg.OptionsPerQuestion {
		t.Fatalf("got %d options, want %d", len(unit.Options), cfg.OptionsPerQuestion)
	}
	sawAnswer := false
	for _, opt := range unit.Options {
		if opt == unit.Answer {
			sawAnswer = true
			continue
		}
		if !fallback[opt] {
			t.Errorf("distractor %q not from the fallback list", opt)
		}
	}
	if !sawAnswer {
		t.Errorf("options %v do not contain the answer %q", unit.Options, unit.Answer)
	}
}

func TestBuildSessionDistractorNeverEqualsAnswer(t *testing.T) {
	item := Item{
		ID:          uuid.NameSpaceDNS,
		Word:        "gato",
		Translation: "cat",
		Language:    "es",
	}
	// A pool entry whose translation differs from the answer only by case
	// and spacing must be rejected as a distractor.
	trap := Item{
		ID:          uuid.NameSpaceURL,
		Word:        "minino",
		Translation: "  CAT ",
		Language:    "es",
	}

	cfg := DefaultSessionConfig()
	cfg.FallbackDistractors = []string{"dog", "bird", "fish"}

	units := BuildSession([]Item{item}, []Item{trap}, 1, MixQuiz, cfg)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	answerCount := 0
	for _, opt := range units[0].Options {
		if foldAnswer(opt) == foldAnswer(units[0].Answer) {
			answerCount++
		}
	}
	if answerCount != 1 {
		t.Errorf("options %v contain the answer %d times, want exactly once", units[0].Options, answerCount)
	}
}

func TestBuildSessionDeterministic(t *testing.T) {
	due := makeItems(10, "es")
	pool := makeItems(10, "es")

	first := BuildSession(due, pool, 10, MixBlended, DefaultSessionConfig())
	second := BuildSession(due, pool, 10, MixBlended, DefaultSessionConfig())

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Kind != second[i].Kind || first[i].Prompt != second[i].Prompt || first[i].Answer != second[i].Answer {
			t.Errorf("unit %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
		for j := range first[i].Options {
			if first[i].Options[j] != second[i].Options[j] {
				t.Errorf("unit %d option %d differs: %q vs %q", i, j, first[i].Options[j], second[i].Options[j])
			}
		}
	}
}
