// Package youtube provides the community-catalog search client, backed by
// the YouTube Data API.
package youtube

import (
	"errors"
	"os"
)

// ErrMissingAPIKey is returned when YOUTUBE_API_KEY is not set.
var ErrMissingAPIKey = errors.New("missing YOUTUBE_API_KEY environment variable")

// Config holds YouTube Data API configuration.
type Config struct {
	APIKey string
}

// LoadConfig reads YouTube configuration from environment variables.
// Returns ErrMissingAPIKey if YOUTUBE_API_KEY is not set.
func LoadConfig() (*Config, error) {
	apiKey := os.Getenv("YOUTUBE_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Config{APIKey: apiKey}, nil
}
