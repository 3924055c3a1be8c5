package catalog

import "sort"

// MatchConfig holds cross-catalog matching parameters.
type MatchConfig struct {
	// AcceptThreshold is the minimum ScoreMatch confidence for pairing a
	// metadata record with a community record.
	AcceptThreshold int
}

// DefaultMatchConfig returns the recommended default configuration.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{AcceptThreshold: 50}
}

// MatchDetail is the full outcome of a matching run. UnmatchedCommunity
// records are not part of the emitted result set, since the searchable
// catalog is metadata-first and orphan community videos are treated as
// noise, but they are reported here for callers that want to surface them.
type MatchDetail struct {
	Results            []UnifiedResult
	UnmatchedCommunity []CommunityRecord
}

// pairing is one cell of the pairwise score matrix.
type pairing struct {
	metaIdx int
	commIdx int
	score   int
}

// Match reconciles the two catalogs into a ranked, deduplicated result
// set. Pairings are assigned greedily in descending score order, ties
// broken by original metadata position then original community position,
// so identical inputs always produce identical output. Metadata records
// left unpaired become single-source results with confidence 100.
// Empty inputs yield an empty (nil) result list.
func Match(meta []MetadataRecord, comm []CommunityRecord, cfg MatchConfig) []UnifiedResult {
	return MatchWithDetail(meta, comm, cfg).Results
}

// MatchWithDetail is Match plus the community records that found no home.
func MatchWithDetail(meta []MetadataRecord, comm []CommunityRecord, cfg MatchConfig) MatchDetail {
	pairs := make([]pairing, 0, len(meta)*len(comm))
	for i, m := range meta {
		for j, c := range comm {
			pairs = append(pairs, pairing{
				metaIdx: i,
				commIdx: j,
				score:   ScoreMatch(m.Record(), c.Record()),
			})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.metaIdx != b.metaIdx {
			return a.metaIdx < b.metaIdx
		}
		return a.commIdx < b.commIdx
	})

	metaTaken := make([]bool, len(meta))
	commTaken := make([]bool, len(comm))
	accepted := make([]pairing, 0, min(len(meta), len(comm)))

	for _, p := range pairs {
		if p.score < cfg.AcceptThreshold {
			break // sorted descending, nothing below passes either
		}
		if metaTaken[p.metaIdx] || commTaken[p.commIdx] {
			continue
		}
		metaTaken[p.metaIdx] = true
		commTaken[p.commIdx] = true
		accepted = append(accepted, p)
	}

	// Matched pairs first, ordered by descending confidence with original
	// metadata position as the secondary key.
	sort.Slice(accepted, func(i, j int) bool {
		if accepted[i].score != accepted[j].score {
			return accepted[i].score > accepted[j].score
		}
		return accepted[i].metaIdx < accepted[j].metaIdx
	})

	var results []UnifiedResult
	for _, p := range accepted {
		m := meta[p.metaIdx]
		c := comm[p.commIdx]
		cover := m.CoverImageURL
		if cover == "" {
			cover = c.CoverImageURL
		}
		results = append(results, UnifiedResult{
			Title:             m.Title,
			Artist:            m.PrimaryArtist,
			MetadataSourceID:  m.SourceID,
			CommunitySourceID: c.SourceID,
			CoverImageURL:     cover,
			Confidence:        p.score,
			PrimarySource:     SourceMetadata,
		})
	}

	// Unmatched metadata records are direct structured listings, trusted
	// at full confidence, emitted in their original order.
	for i, m := range meta {
		if metaTaken[i] {
			continue
		}
		results = append(results, UnifiedResult{
			Title:            m.Title,
			Artist:           m.PrimaryArtist,
			MetadataSourceID: m.SourceID,
			CoverImageURL:    m.CoverImageURL,
			Confidence:       100,
			PrimarySource:    SourceMetadata,
		})
	}

	var orphans []CommunityRecord
	for j, c := range comm {
		if !commTaken[j] {
			orphans = append(orphans, c)
		}
	}

	return MatchDetail{Results: results, UnmatchedCommunity: orphans}
}
