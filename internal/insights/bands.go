// Package insights derives CEFR difficulty-band suggestions from a
// learner's accumulated review statistics using k-means clustering.
package insights

import (
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/lyriclingo/lyriclingo/internal/db"
	"github.com/lyriclingo/lyriclingo/internal/srs"
)

// Config holds band-suggestion clustering parameters.
type Config struct {
	NumBands       int // Number of clusters to create (default: 3)
	MinClusterSize int // Minimum items per cluster (smaller clusters yield no suggestions)
	MinReviews     int // Items with fewer total reviews are excluded
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumBands:       3,
		MinClusterSize: 3,
		MinReviews:     3,
	}
}

// Suggestion proposes moving one item to a different difficulty band.
type Suggestion struct {
	ItemID         string   `json:"item_id"`
	Word           string   `json:"word"`
	CurrentBand    srs.Band `json:"current_band"`
	SuggestedBand  srs.Band `json:"suggested_band"`
	EasinessFactor float64  `json:"easiness_factor"`
	LapseRate      float64  `json:"lapse_rate"`
}

// itemObservation wraps ItemReviewStats to implement clusters.Observation.
type itemObservation struct {
	stats  *db.ItemReviewStats
	coords clusters.Coordinates
}

func (o itemObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o itemObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// Feature scaling bounds. Easiness lives in [1.3, ~2.8]; intervals beyond
// two months all count as "long".
const (
	easinessFloor   = 1.3
	easinessSpan    = 1.5
	intervalCapDays = 60
)

// SuggestBands clusters a learner's reviewed items by observed difficulty
// and proposes a CEFR band per cluster. Only items whose suggested band
// differs from their current band produce suggestions. Items with too few
// reviews are skipped; too little data overall yields no suggestions.
func SuggestBands(stats []db.ItemReviewStats, cfg Config) ([]Suggestion, error) {
	if cfg.NumBands <= 0 {
		cfg.NumBands = DefaultConfig().NumBands
	}

	var reviewed []*db.ItemReviewStats
	for i := range stats {
		if stats[i].TotalReviews >= cfg.MinReviews {
			reviewed = append(reviewed, &stats[i])
		}
	}
	if len(reviewed) < cfg.NumBands || len(reviewed) < cfg.MinClusterSize {
		return nil, nil
	}

	var obs clusters.Observations
	for _, s := range reviewed {
		obs = append(obs, itemObservation{
			stats:  s,
			coords: extractFeatures(s),
		})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumBands)
	if err != nil {
		return nil, fmt.Errorf("partitioning review stats: %w", err)
	}

	// Order clusters easiest first: high mean easiness means the learner
	// finds the cluster's items easy.
	type scoredCluster struct {
		members      []*db.ItemReviewStats
		meanEasiness float64
	}
	var scored []scoredCluster
	for _, cluster := range result {
		var members []*db.ItemReviewStats
		var sum float64
		for _, o := range cluster.Observations {
			if io, ok := o.(itemObservation); ok {
				members = append(members, io.stats)
				sum += io.stats.EasinessFactor
			}
		}
		if len(members) < cfg.MinClusterSize {
			continue
		}
		scored = append(scored, scoredCluster{
			members:      members,
			meanEasiness: sum / float64(len(members)),
		})
	}
	slices.SortFunc(scored, func(a, b scoredCluster) int {
		switch {
		case a.meanEasiness > b.meanEasiness:
			return -1
		case a.meanEasiness < b.meanEasiness:
			return 1
		default:
			return 0
		}
	})

	var suggestions []Suggestion
	for rank, cluster := range scored {
		band := bandForRank(rank, len(scored))
		for _, s := range cluster.members {
			if srs.Band(s.DifficultyBand) == band {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				ItemID:         s.ItemID.String(),
				Word:           s.Word,
				CurrentBand:    srs.Band(s.DifficultyBand),
				SuggestedBand:  band,
				EasinessFactor: s.EasinessFactor,
				LapseRate:      lapseRate(s),
			})
		}
	}
	return suggestions, nil
}

// extractFeatures maps an item's review history onto the clustering space.
// All three coordinates are scaled into [0, 1].
func extractFeatures(s *db.ItemReviewStats) clusters.Coordinates {
	easiness := (s.EasinessFactor - easinessFloor) / easinessSpan
	easiness = clamp01(easiness)

	interval := float64(s.IntervalDays) / intervalCapDays
	interval = clamp01(interval)

	return clusters.Coordinates{easiness, lapseRate(s), interval}
}

func lapseRate(s *db.ItemReviewStats) float64 {
	if s.TotalReviews == 0 {
		return 0
	}
	return float64(s.Lapses) / float64(s.TotalReviews)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// bandForRank spreads the cluster ranks across the six CEFR bands, the
// easiest cluster mapping to A1 and the hardest to C2.
func bandForRank(rank, total int) srs.Band {
	if total <= 1 {
		return srs.Bands[len(srs.Bands)/2]
	}
	idx := rank * (len(srs.Bands) - 1) / (total - 1)
	return srs.Bands[idx]
}
