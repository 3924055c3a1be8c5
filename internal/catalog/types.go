// Package catalog reconciles song search results from the Spotify metadata
// catalog and the YouTube community video catalog into a single ranked,
// deduplicated result set with confidence scores.
package catalog

// Source identifies which catalog contributed a result's canonical fields.
type Source string

// Catalog sources.
const (
	SourceMetadata  Source = "metadata"
	SourceCommunity Source = "community"
)

// Record is the source-agnostic view of a catalog entry used for scoring.
// Titles and artists are free text as returned by the upstream API;
// DurationSeconds of zero means the duration is unknown.
type Record struct {
	Title           string
	Artist          string
	DurationSeconds int
}

// MetadataRecord is a track from the structured metadata catalog.
type MetadataRecord struct {
	SourceID        string
	Title           string
	PrimaryArtist   string
	DurationSeconds int
	CoverImageURL   string
}

// Record returns the scoring view of the metadata record.
func (m MetadataRecord) Record() Record {
	return Record{
		Title:           m.Title,
		Artist:          m.PrimaryArtist,
		DurationSeconds: m.DurationSeconds,
	}
}

// CommunityRecord is a video from the community catalog. The artist field
// carries the uploader channel name, which is an unreliable artist signal;
// the scorer treats it accordingly.
type CommunityRecord struct {
	SourceID        string
	Title           string
	PrimaryArtist   string
	DurationSeconds int
	CoverImageURL   string
}

// Record returns the scoring view of the community record.
func (c CommunityRecord) Record() Record {
	return Record{
		Title:           c.Title,
		Artist:          c.PrimaryArtist,
		DurationSeconds: c.DurationSeconds,
	}
}

// UnifiedResult is a single search result after cross-catalog matching.
// At least one of MetadataSourceID and CommunitySourceID is always set,
// and no two results in one result set reference the same metadata record.
type UnifiedResult struct {
	Title             string `json:"title"`
	Artist            string `json:"artist"`
	MetadataSourceID  string `json:"metadata_source_id,omitempty"`
	CommunitySourceID string `json:"community_source_id,omitempty"`
	CoverImageURL     string `json:"cover_image_url,omitempty"`
	Confidence        int    `json:"confidence"`
	PrimarySource     Source `json:"primary_source"`
}

// Matched reports whether the result was assembled from both catalogs.
func (u UnifiedResult) Matched() bool {
	return u.MetadataSourceID != "" && u.CommunitySourceID != ""
}
