// Command lyriclingo runs the LyricLingo API server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/lyriclingo/lyriclingo/internal/db"
	"github.com/lyriclingo/lyriclingo/internal/review"
	"github.com/lyriclingo/lyriclingo/internal/search"
	"github.com/lyriclingo/lyriclingo/internal/spotify"
	"github.com/lyriclingo/lyriclingo/internal/web"
	"github.com/lyriclingo/lyriclingo/internal/youtube"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Validate environment variables
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("please set the DATABASE_URL environment variable")
	}

	// Postgres
	database, err := db.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	// Catalog clients
	spotifyClient, err := spotify.NewFromEnv(ctx)
	if err != nil {
		return fmt.Errorf("creating Spotify client: %w", err)
	}

	youtubeCfg, err := youtube.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading YouTube config: %w", err)
	}
	youtubeClient := youtube.NewClient(youtubeCfg)

	// Redis is optional: without it the server runs uncached and unthrottled.
	searchOpts := []search.Option{}
	var limiter *web.RateLimiter
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis at %s unreachable, continuing without cache: %v", addr, err)
		} else {
			searchOpts = append(searchOpts, search.WithCache(redisClient, search.DefaultCacheTTL))
			limiter = web.NewRateLimiter(redisClient, web.DefaultRateLimit, web.DefaultRateWindow)
		}
	}

	// Services
	searchService := search.New(spotifyClient, youtubeClient, searchOpts...)
	reviewService := review.NewService(database.Vocabulary())

	// Expired auth sessions are reaped in the background.
	go reapSessions(ctx, database)

	sessions := web.NewDBSessionStore(database)
	handlers := web.NewHandlers(
		sessions,
		searchService,
		reviewService,
		database.Learners(),
		database.Songs(),
		database.Vocabulary(),
	)

	addr := os.Getenv("LYRICLINGO_ADDR")
	if addr == "" {
		addr = web.DefaultAddr
	}

	server := web.NewServer(web.ServerConfig{
		Addr:        addr,
		RateLimiter: limiter,
	}, handlers)

	return server.Run()
}

// reapSessions deletes expired auth sessions once an hour.
func reapSessions(ctx context.Context, database *db.DB) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		deleted, err := database.Sessions().DeleteExpired(ctx)
		if err != nil {
			log.Printf("reaping sessions: %v", err)
			continue
		}
		if deleted > 0 {
			log.Printf("reaped %d expired sessions", deleted)
		}
	}
}
