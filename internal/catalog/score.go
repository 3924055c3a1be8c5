package catalog

import (
	"math"
	"strings"

	"github.com/xrash/smetrics"
)

// Similarity scoring constants.
const (
	// neutralScore stands in for a signal that is unavailable or
	// unreliable (unknown duration, empty artist).
	neutralScore = 50

	// emptyTitleCeiling caps the confidence of any pairing where one side
	// has an empty normalized title. Title is the dominant signal; losing
	// it means the record is bad data.
	emptyTitleCeiling = 20

	// Duration agreement gets full credit within durationFullWindow
	// seconds and decays linearly to zero at durationZeroWindow.
	durationFullWindow = 3
	durationZeroWindow = 30

	// nearTokenThreshold is the Jaro-Winkler similarity above which two
	// tokens count as the same word ("remasterd" vs "remastered").
	nearTokenThreshold = 0.9
)

// ScoreMatch computes a 0-100 confidence that two cross-catalog records
// refer to the same recording. The combination weights are 0.5 title,
// 0.35 artist, 0.15 duration; when either duration is unknown the weights
// re-normalize to 0.6 title and 0.4 artist. An empty normalized artist on
// either side contributes the neutral value instead, since community
// uploader names are not reliable artist signals. Exact normalized title
// and artist equality short-circuits to 100 regardless of duration.
// ScoreMatch is symmetric: ScoreMatch(a, b) == ScoreMatch(b, a).
func ScoreMatch(a, b Record) int {
	titleA := NormalizeText(a.Title)
	titleB := NormalizeText(b.Title)
	artistA := NormalizeText(a.Artist)
	artistB := NormalizeText(b.Artist)

	if titleA != "" && titleA == titleB && artistA != "" && artistA == artistB {
		return 100
	}

	titleScore := tokenSetScore(titleA, titleB)

	artistScore := neutralScore
	if artistA != "" && artistB != "" {
		artistScore = tokenSetScore(artistA, artistB)
	}

	durA := NormalizeDuration(a.DurationSeconds)
	durB := NormalizeDuration(b.DurationSeconds)

	var confidence float64
	if durA != DurationUnknown && durB != DurationUnknown {
		confidence = 0.5*float64(titleScore) + 0.35*float64(artistScore) + 0.15*float64(durationScore(durA, durB))
	} else {
		confidence = 0.6*float64(titleScore) + 0.4*float64(artistScore)
	}

	score := int(math.Round(confidence))
	if titleA == "" || titleB == "" {
		score = min(score, emptyTitleCeiling)
	}
	return clampScore(score)
}

// tokenSetScore measures 0-100 similarity between two normalized strings
// by fuzzy token-set overlap. Identical token sets score 100. Full
// containment (one side is a subset of the other) scores near full credit,
// so a title carrying leftover annotation tokens still matches its clean
// counterpart; otherwise plain Jaccard overlap applies. Tokens within
// nearTokenThreshold Jaro-Winkler distance count as shared.
func tokenSetScore(a, b string) int {
	// Canonicalize argument order so greedy token pairing cannot make the
	// score asymmetric.
	if a > b {
		a, b = b, a
	}

	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 100
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	used := make([]bool, len(tb))
	shared := 0
	for _, wa := range ta {
		for j, wb := range tb {
			if used[j] {
				continue
			}
			if wa == wb || smetrics.JaroWinkler(wa, wb, 0.7, 4) >= nearTokenThreshold {
				used[j] = true
				shared++
				break
			}
		}
	}

	union := len(ta) + len(tb) - shared
	jaccard := float64(shared) / float64(union)
	containment := float64(shared) / float64(min(len(ta), len(tb)))

	return int(math.Round(100 * math.Max(jaccard, 0.95*containment)))
}

// durationScore converts the absolute difference between two known
// durations into a 0-100 agreement score.
func durationScore(a, b int) int {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= durationFullWindow:
		return 100
	case diff >= durationZeroWindow:
		return 0
	default:
		return 100 * (durationZeroWindow - diff) / (durationZeroWindow - durationFullWindow)
	}
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
