// Package spotify provides the metadata-catalog search client, wrapping
// the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/lyriclingo/lyriclingo/internal/catalog"
)

// ErrMissingCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is
// not set.
var ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")

// DefaultSearchLimit caps how many tracks one search fetches.
const DefaultSearchLimit = 20

// Client wraps the Spotify API client with catalog-search methods.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// NewFromEnv builds a client authenticated with the client-credentials
// flow from SPOTIFY_ID and SPOTIFY_SECRET. Catalog search needs no user
// scope, so no browser round-trip is involved.
func NewFromEnv(ctx context.Context) (*Client, error) {
	clientID := os.Getenv("SPOTIFY_ID")
	clientSecret := os.Getenv("SPOTIFY_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("requesting client-credentials token: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	return New(spotify.New(httpClient)), nil
}

// SearchTracks runs a free-text track search against the metadata catalog
// and converts the hits into catalog records. An empty result set is not
// an error.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]catalog.MetadataRecord, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	results, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	if results.Tracks == nil {
		return nil, nil
	}

	records := make([]catalog.MetadataRecord, 0, len(results.Tracks.Tracks))
	for _, track := range results.Tracks.Tracks {
		records = append(records, convertTrack(track))
	}
	return records, nil
}

// convertTrack maps a Spotify track onto the catalog record shape: the
// first listed artist is the primary one, the duration is rounded down to
// whole seconds, and the smallest album image serves as the cover.
func convertTrack(track spotify.FullTrack) catalog.MetadataRecord {
	artist := ""
	if len(track.Artists) > 0 {
		artist = track.Artists[0].Name
	}

	return catalog.MetadataRecord{
		SourceID:        string(track.ID),
		Title:           track.Name,
		PrimaryArtist:   artist,
		DurationSeconds: int(track.Duration) / 1000,
		CoverImageURL:   smallestImageURL(track.Album.Images),
	}
}

// smallestImageURL picks the smallest non-empty image, which is enough
// for a search-result thumbnail. Images without dimensions rank behind
// every sized image and are used only when no sized image exists.
func smallestImageURL(images []spotify.Image) string {
	url := ""
	best := 0 // 0 while only unknown-size images have been seen
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		size := int(img.Height)
		switch {
		case url == "":
			url, best = img.URL, size
		case size > 0 && (best == 0 || size < best):
			url, best = img.URL, size
		}
	}
	return url
}
