// Command fetchcache fetches each resource twice from one origin: the
// first fetch downloads and caches the body, the second must be answered
// with 304 Not Modified and served from the cache with an identical
// fingerprint. A mismatch or a failed fetch sets a non-zero exit code.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/rbaynes/fetchcache/pkg/cache"
	"github.com/rbaynes/fetchcache/pkg/fetcher"
	"github.com/rbaynes/fetchcache/pkg/logging"
)

const (
	defaultHost     = "static.rbxcdn.com"
	defaultMaxBytes = 200 * 1024
	userAgent       = "fetchcache/0.1.0"
)

var defaultResources = []string{
	"/images/landing/Rollercoaster/whatsroblox_12072017.jpg",
	"/images/landing/Rollercoaster/gameimage3_12072017.jpg",
	"/images/landing/Rollercoaster/devices_people_12072017.png",
}

type resourceList []string

func (r *resourceList) String() string {
	return fmt.Sprint(*r)
}

func (r *resourceList) Set(value string) error {
	*r = append(*r, value)
	return nil
}

func main() {
	host := flag.String("host", defaultHost, "origin host in hostname:port format")
	maxBytes := flag.Int64("max-bytes", defaultMaxBytes, "cache byte budget")
	verbose := flag.Bool("v", false, "enable verbose logging")
	var resources resourceList
	flag.Var(&resources, "url", "resource path to fetch, starting with / (repeatable)")
	flag.Parse()

	if len(resources) == 0 {
		resources = defaultResources
	}

	level := logging.LevelInfo
	if *verbose {
		level = logging.LevelDebug
	}
	logging.Setup(logging.Config{Level: level, Pretty: true})
	logger := logging.NewLogger("fetchcache")

	store, err := cache.New(*maxBytes)
	if err != nil {
		logger.Fatal().Err(err).Int64("max_bytes", *maxBytes).Msg("Invalid cache budget")
	}

	f, err := fetcher.New(fetcher.Config{
		Cache:     store,
		UserAgent: userAgent,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create fetcher")
	}

	failed := false
	for _, resource := range resources {
		if !fetchTwice(f, logger, *host, resource) {
			failed = true
		}
	}

	if *verbose {
		logger.Debug().
			Int("entries", store.Len()).
			Int64("current_bytes", store.CurrentBytes()).
			Int64("max_bytes", store.MaxBytes()).
			Msg("Cache summary")
	}

	if failed {
		os.Exit(1)
	}
}

// fetchTwice fetches resource two times and verifies the second fetch was
// served from the cache with the same fingerprint as the first.
func fetchTwice(f *fetcher.Fetcher, logger zerolog.Logger, host, resource string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	first, err := f.Get(ctx, host, resource)
	if err != nil {
		logger.Error().Err(err).Str("resource", resource).Msg("First fetch failed")
		return false
	}
	logger.Info().
		Str("resource", resource).
		Int("bytes", len(first.Body)).
		Str("digest", first.Digest.String()).
		Msg("Fetched and cached")

	second, err := f.Get(ctx, host, resource)
	if err != nil {
		logger.Error().Err(err).Str("resource", resource).Msg("Second fetch failed")
		return false
	}

	if !second.FromCache {
		logger.Warn().Str("resource", resource).Msg("Second fetch was not served from cache")
	} else {
		logger.Info().Str("resource", resource).Msg("Served from cache")
	}

	if !first.Digest.Equal(second.Digest) {
		logger.Error().
			Str("resource", resource).
			Str("fetched", first.Digest.String()).
			Str("cached", second.Digest.String()).
			Msg("Cached body does not match fetched body")
		return false
	}
	return true
}
