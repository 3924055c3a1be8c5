package search

import (
	"context"
	"errors"
	"testing"

	"github.com/lyriclingo/lyriclingo/internal/catalog"
)

type fakeMetadata struct {
	records []catalog.MetadataRecord
	err     error
	calls   int
}

func (f *fakeMetadata) SearchTracks(ctx context.Context, query string, limit int) ([]catalog.MetadataRecord, error) {
	f.calls++
	return f.records, f.err
}

type fakeCommunity struct {
	records []catalog.CommunityRecord
	err     error
	calls   int
}

func (f *fakeCommunity) SearchVideos(ctx context.Context, query string, limit int) ([]catalog.CommunityRecord, error) {
	f.calls++
	return f.records, f.err
}

func TestSearchMatchesAcrossCatalogs(t *testing.T) {
	meta := &fakeMetadata{records: []catalog.MetadataRecord{
		{SourceID: "sp1", Title: "Despacito", PrimaryArtist: "Luis Fonsi", DurationSeconds: 229},
	}}
	comm := &fakeCommunity{records: []catalog.CommunityRecord{
		{SourceID: "yt1", Title: "Despacito (Official Video)", PrimaryArtist: "LuisFonsiVEVO", DurationSeconds: 282},
	}}

	svc := New(meta, comm)
	results, err := svc.Search(context.Background(), "despacito")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if !results[0].Matched() {
		t.Errorf("result not matched: %+v", results[0])
	}
	if results[0].Title != "Despacito" {
		t.Errorf("Title = %q, want metadata title", results[0].Title)
	}
}

func TestSearchOneSideFailing(t *testing.T) {
	meta := &fakeMetadata{records: []catalog.MetadataRecord{
		{SourceID: "sp1", Title: "Vivir Mi Vida", PrimaryArtist: "Marc Anthony", DurationSeconds: 252},
	}}
	comm := &fakeCommunity{err: errors.New("quota exceeded")}

	svc := New(meta, comm)
	results, err := svc.Search(context.Background(), "vivir mi vida")
	if err != nil {
		t.Fatalf("Search() error = %v, want degraded success", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Matched() {
		t.Errorf("result should be metadata-only: %+v", results[0])
	}
	if results[0].Confidence != 100 {
		t.Errorf("Confidence = %d, want 100 for single-source record", results[0].Confidence)
	}
}

func TestSearchBothSidesFailing(t *testing.T) {
	meta := &fakeMetadata{err: errors.New("metadata down")}
	comm := &fakeCommunity{err: errors.New("community down")}

	svc := New(meta, comm)
	if _, err := svc.Search(context.Background(), "anything"); !errors.Is(err, ErrAllSourcesFailed) {
		t.Fatalf("Search() error = %v, want ErrAllSourcesFailed", err)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	meta := &fakeMetadata{}
	comm := &fakeCommunity{}

	svc := New(meta, comm)
	results, err := svc.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil for blank query", results)
	}
	if meta.calls != 0 || comm.calls != 0 {
		t.Errorf("blank query should not hit the catalogs: meta=%d comm=%d", meta.calls, comm.calls)
	}
}

func TestSearchEmptyResults(t *testing.T) {
	svc := New(&fakeMetadata{}, &fakeCommunity{})
	results, err := svc.Search(context.Background(), "no such song")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}
