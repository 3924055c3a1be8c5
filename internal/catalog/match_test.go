package catalog

import (
	"reflect"
	"testing"
)

func TestMatchPairsAboveThresholdOnly(t *testing.T) {
	metaA := MetadataRecord{SourceID: "sp:a", Title: "Despacito", PrimaryArtist: "Luis Fonsi", DurationSeconds: 227}
	metaB := MetadataRecord{SourceID: "sp:b", Title: "Shape of You", PrimaryArtist: "Ed Sheeran", DurationSeconds: 233}
	commX := CommunityRecord{SourceID: "yt:x", Title: "Despacito (Official Video)", PrimaryArtist: "LuisFonsiVEVO", DurationSeconds: 228}

	results := Match([]MetadataRecord{metaA, metaB}, []CommunityRecord{commX}, DefaultMatchConfig())

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	pair := results[0]
	if pair.MetadataSourceID != "sp:a" || pair.CommunitySourceID != "yt:x" {
		t.Errorf("first result = %+v, want metaA paired with commX", pair)
	}
	if !pair.Matched() {
		t.Errorf("first result not marked as matched: %+v", pair)
	}
	if pair.Confidence < 50 || pair.Confidence == 100 {
		t.Errorf("pair confidence = %d, want scorer output in [50, 100)", pair.Confidence)
	}

	// metaB must stay single-source even though commX was the only
	// community record left: its score is below threshold.
	single := results[1]
	if single.MetadataSourceID != "sp:b" || single.CommunitySourceID != "" {
		t.Errorf("second result = %+v, want unmatched metaB", single)
	}
	if single.Confidence != 100 {
		t.Errorf("single-source confidence = %d, want 100", single.Confidence)
	}
	if single.PrimarySource != SourceMetadata {
		t.Errorf("single-source primary = %q, want %q", single.PrimarySource, SourceMetadata)
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	tests := []struct {
		name string
		meta []MetadataRecord
		comm []CommunityRecord
		want int
	}{
		{name: "both empty", want: 0},
		{
			name: "community side failed upstream",
			meta: []MetadataRecord{{SourceID: "sp:a", Title: "Despacito", PrimaryArtist: "Luis Fonsi"}},
			want: 1,
		},
		{
			name: "metadata side failed upstream",
			comm: []CommunityRecord{{SourceID: "yt:x", Title: "Despacito", PrimaryArtist: "LuisFonsiVEVO"}},
			want: 0, // orphan community records are not emitted
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Match(tt.meta, tt.comm, DefaultMatchConfig())
			if len(results) != tt.want {
				t.Errorf("got %d results, want %d", len(results), tt.want)
			}
		})
	}
}

func TestMatchDeterminism(t *testing.T) {
	meta := []MetadataRecord{
		{SourceID: "sp:a", Title: "Despacito", PrimaryArtist: "Luis Fonsi", DurationSeconds: 227},
		{SourceID: "sp:b", Title: "Despacito Remix", PrimaryArtist: "Luis Fonsi", DurationSeconds: 229},
		{SourceID: "sp:c", Title: "Shape of You", PrimaryArtist: "Ed Sheeran", DurationSeconds: 233},
	}
	comm := []CommunityRecord{
		{SourceID: "yt:x", Title: "Despacito (Official Video)", PrimaryArtist: "Luis Fonsi", DurationSeconds: 228},
		{SourceID: "yt:y", Title: "Despacito (Lyric Video)", PrimaryArtist: "Luis Fonsi", DurationSeconds: 227},
	}

	first := Match(meta, comm, DefaultMatchConfig())
	second := Match(meta, comm, DefaultMatchConfig())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Match is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestMatchNoDoubleConsumption(t *testing.T) {
	meta := []MetadataRecord{
		{SourceID: "sp:a", Title: "Despacito", PrimaryArtist: "Luis Fonsi", DurationSeconds: 227},
		{SourceID: "sp:b", Title: "Despacito", PrimaryArtist: "Luis Fonsi", DurationSeconds: 227},
	}
	comm := []CommunityRecord{
		{SourceID: "yt:x", Title: "Despacito", PrimaryArtist: "Luis Fonsi", DurationSeconds: 228},
		{SourceID: "yt:y", Title: "Despacito", PrimaryArtist: "Luis Fonsi", DurationSeconds: 229},
	}

	results := Match(meta, comm, DefaultMatchConfig())

	seenMeta := map[string]bool{}
	seenComm := map[string]bool{}
	for _, r := range results {
		if r.MetadataSourceID == "" && r.CommunitySourceID == "" {
			t.Errorf("result with no source ids: %+v", r)
		}
		if r.MetadataSourceID != "" {
			if seenMeta[r.MetadataSourceID] {
				t.Errorf("metadata record %s consumed twice", r.MetadataSourceID)
			}
			seenMeta[r.MetadataSourceID] = true
		}
		if r.CommunitySourceID != "" {
			if seenComm[r.CommunitySourceID] {
				t.Errorf("community record %s consumed twice", r.CommunitySourceID)
			}
			seenComm[r.CommunitySourceID] = true
		}
	}
}

func TestMatchTieBreakPrefersEarlierPositions(t *testing.T) {
	// Both metadata records score identically against the single community
	// record; the earlier one must win the pairing.
	meta := []MetadataRecord{
		{SourceID: "sp:first", Title: "Uptown Funk", PrimaryArtist: "Mark Ronson", DurationSeconds: 270},
		{SourceID: "sp:second", Title: "Uptown Funk", PrimaryArtist: "Mark Ronson", DurationSeconds: 270},
	}
	comm := []CommunityRecord{
		{SourceID: "yt:x", Title: "Uptown Funk", PrimaryArtist: "Mark Ronson", DurationSeconds: 270},
	}

	results := Match(meta, comm, DefaultMatchConfig())
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].MetadataSourceID != "sp:first" || results[0].CommunitySourceID != "yt:x" {
		t.Errorf("pairing = %+v, want sp:first + yt:x", results[0])
	}
}

func TestMatchWithDetailReportsOrphans(t *testing.T) {
	comm := []CommunityRecord{
		{SourceID: "yt:x", Title: "Some Vlog", PrimaryArtist: "RandomChannel", DurationSeconds: 612},
	}

	detail := MatchWithDetail(nil, comm, DefaultMatchConfig())
	if len(detail.Results) != 0 {
		t.Errorf("got %d results, want 0", len(detail.Results))
	}
	if len(detail.UnmatchedCommunity) != 1 || detail.UnmatchedCommunity[0].SourceID != "yt:x" {
		t.Errorf("unmatched community = %+v, want the single orphan", detail.UnmatchedCommunity)
	}
}
