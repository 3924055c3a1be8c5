// Package search orchestrates cross-catalog song search: it fetches raw
// results from both catalogs, runs the matcher, and caches the unified
// result sets.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/lyriclingo/lyriclingo/internal/catalog"
)

// ErrAllSourcesFailed is returned when neither catalog produced results
// because both fetches failed.
var ErrAllSourcesFailed = errors.New("all catalog sources failed")

// Defaults.
const (
	DefaultFetchLimit = 10
	DefaultCacheTTL   = 15 * time.Minute
)

// MetadataSearcher fetches raw metadata-catalog records for a query.
type MetadataSearcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]catalog.MetadataRecord, error)
}

// CommunitySearcher fetches raw community-catalog records for a query.
type CommunitySearcher interface {
	SearchVideos(ctx context.Context, query string, limit int) ([]catalog.CommunityRecord, error)
}

// Service handles unified song search.
type Service struct {
	metadata  MetadataSearcher
	community CommunitySearcher

	cache    *redis.Client // nil disables caching
	cacheTTL time.Duration

	fetchLimit int
	matchCfg   catalog.MatchConfig
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables Redis caching of unified result sets.
func WithCache(client *redis.Client, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = client
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithFetchLimit sets how many records are fetched from each catalog.
func WithFetchLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.fetchLimit = limit
		}
	}
}

// WithMatchConfig overrides the matcher configuration.
func WithMatchConfig(cfg catalog.MatchConfig) Option {
	return func(s *Service) {
		s.matchCfg = cfg
	}
}

// New creates a search service over the two catalog clients.
func New(metadata MetadataSearcher, community CommunitySearcher, opts ...Option) *Service {
	s := &Service{
		metadata:   metadata,
		community:  community,
		cacheTTL:   DefaultCacheTTL,
		fetchLimit: DefaultFetchLimit,
		matchCfg:   catalog.DefaultMatchConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search fetches both catalogs concurrently and reconciles the results.
// A failure on one side degrades to an empty list for that side rather
// than failing the search: a community failure still yields the metadata
// records as single-source results, while a metadata failure yields an
// empty set, since community records never appear without a metadata
// match. Only both sides failing is an error. An empty result set is a
// valid outcome, not an error.
func (s *Service) Search(ctx context.Context, query string) ([]catalog.UnifiedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if cached, ok := s.cacheGet(ctx, query); ok {
		return cached, nil
	}

	var (
		wg      sync.WaitGroup
		meta    []catalog.MetadataRecord
		comm    []catalog.CommunityRecord
		metaErr error
		commErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		meta, metaErr = s.metadata.SearchTracks(ctx, query, s.fetchLimit)
	}()
	go func() {
		defer wg.Done()
		comm, commErr = s.community.SearchVideos(ctx, query, s.fetchLimit)
	}()
	wg.Wait()

	if metaErr != nil && commErr != nil {
		return nil, fmt.Errorf("%w: metadata: %v; community: %v", ErrAllSourcesFailed, metaErr, commErr)
	}
	if metaErr != nil {
		log.Printf("search: metadata catalog failed, continuing community-only: %v", metaErr)
		meta = nil
	}
	if commErr != nil {
		log.Printf("search: community catalog failed, continuing metadata-only: %v", commErr)
		comm = nil
	}

	results := catalog.Match(meta, comm, s.matchCfg)

	// Only cache result sets assembled from both healthy sources.
	if metaErr == nil && commErr == nil {
		s.cacheSet(ctx, query, results)
	}
	return results, nil
}

func cacheKey(query string) string {
	return "search:" + strings.ToLower(query)
}

func (s *Service) cacheGet(ctx context.Context, query string) ([]catalog.UnifiedResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, cacheKey(query)).Result()
	if err != nil {
		return nil, false
	}
	var results []catalog.UnifiedResult
	if err := json.Unmarshal([]byte(payload), &results); err != nil {
		return nil, false
	}
	return results, true
}

func (s *Service) cacheSet(ctx context.Context, query string, results []catalog.UnifiedResult) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(query), payload, s.cacheTTL).Err(); err != nil {
		log.Printf("search: caching results for %q: %v", query, err)
	}
}
