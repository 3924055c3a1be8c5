package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lyriclingo/lyriclingo/internal/catalog"
)

const (
	baseURL   = "https://www.googleapis.com/youtube/v3"
	userAgent = "lyriclingo/1.0"

	// musicCategoryID restricts searches to YouTube's Music category.
	musicCategoryID = "10"
)

// Quota error reasons the API reports alongside HTTP 403.
const (
	reasonQuotaExceeded = "quotaExceeded"
	reasonRateLimited   = "rateLimitExceeded"
)

// Sentinel errors.
var (
	// ErrQuotaExceeded is returned when the API quota is exhausted after
	// retries.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrInvalidAPIKey is returned when the API key is rejected.
	ErrInvalidAPIKey = errors.New("invalid API key")
)

// DefaultSearchLimit caps how many videos one search fetches.
const DefaultSearchLimit = 10

// Client is a YouTube Data API client.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new YouTube API client from the provided
// configuration.
func NewClient(cfg *Config) *Client {
	return &Client{
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// SearchVideos runs a free-text music search and converts the hits into
// community catalog records. Durations come from a second request to the
// videos endpoint; a video whose duration cannot be fetched or parsed
// carries duration zero, which downstream scoring treats as unknown.
func (c *Client) SearchVideos(ctx context.Context, query string, limit int) ([]catalog.CommunityRecord, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{
		"part":            {"snippet"},
		"type":            {"video"},
		"videoCategoryId": {musicCategoryID},
		"q":               {query},
		"maxResults":      {strconv.Itoa(limit)},
		"key":             {c.apiKey},
	}

	body, err := c.doRequest(ctx, "/search", params)
	if err != nil {
		return nil, fmt.Errorf("searching videos: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	records := make([]catalog.CommunityRecord, 0, len(resp.Items))
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		cover := item.Snippet.Thumbnails.Medium.URL
		if cover == "" {
			cover = item.Snippet.Thumbnails.Default.URL
		}
		records = append(records, catalog.CommunityRecord{
			SourceID:      item.ID.VideoID,
			Title:         item.Snippet.Title,
			PrimaryArtist: item.Snippet.ChannelTitle,
			CoverImageURL: cover,
		})
		ids = append(ids, item.ID.VideoID)
	}

	durations, err := c.fetchDurations(ctx, ids)
	if err != nil {
		// Durations are an enhancement, not a requirement: the scorer
		// treats them as unknown.
		return records, nil
	}
	for i := range records {
		records[i].DurationSeconds = durations[records[i].SourceID]
	}
	return records, nil
}

// fetchDurations resolves video durations in a single batched call.
func (c *Client) fetchDurations(ctx context.Context, ids []string) (map[string]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{
		"part": {"contentDetails"},
		"id":   {strings.Join(ids, ",")},
		"key":  {c.apiKey},
	}

	body, err := c.doRequest(ctx, "/videos", params)
	if err != nil {
		return nil, fmt.Errorf("fetching durations: %w", err)
	}

	var resp videosResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing videos response: %w", err)
	}

	durations := make(map[string]int, len(resp.Items))
	for _, item := range resp.Items {
		durations[item.ID] = parseISODuration(item.ContentDetails.Duration)
	}
	return durations, nil
}

// doRequest performs an HTTP GET request with retry on quota errors.
// Retries up to 3 times with exponential backoff (1s, 2s, 4s).
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path + "?" + params.Encode()

	delays := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	var lastErr error

	for attempt := 0; attempt <= len(delays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delays[attempt-1]):
			}
		}

		body, err := c.doSingleRequest(ctx, reqURL)
		if err == nil {
			return body, nil
		}

		if errors.Is(err, ErrQuotaExceeded) {
			lastErr = err
			continue
		}

		return nil, err
	}

	return nil, lastErr
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Code != 0 {
		switch {
		case resp.StatusCode == http.StatusTooManyRequests, quotaReason(apiErr):
			return nil, ErrQuotaExceeded
		case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s", ErrInvalidAPIKey, apiErr.Error.Message)
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
	}
	return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
}

func quotaReason(apiErr apiError) bool {
	for _, e := range apiErr.Error.Errors {
		if e.Reason == reasonQuotaExceeded || e.Reason == reasonRateLimited {
			return true
		}
	}
	return false
}

// isoDurationPattern matches the ISO-8601 durations the API reports, e.g.
// "PT3M48S", "PT1H2M", "PT58S".
var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts an ISO-8601 video duration to whole seconds.
// Unparseable input yields 0, the unknown-duration sentinel.
func parseISODuration(s string) int {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*3600 + minutes*60 + seconds
}
