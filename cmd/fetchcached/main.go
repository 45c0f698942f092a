// Command fetchcached exposes the conditional fetcher over HTTP. Every
// request under /fetch/ is proxied to a single configured origin through
// the shared validator cache, so repeated requests for an unchanged
// resource cost one conditional round-trip instead of a re-download.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rbaynes/fetchcache/pkg/cache"
	"github.com/rbaynes/fetchcache/pkg/fetcher"
	"github.com/rbaynes/fetchcache/pkg/logging"
)

func main() {
	// Configuration from environment
	port := getEnv("PORT", "8080")
	originHost := getEnv("ORIGIN_HOST", "static.rbxcdn.com")
	userAgent := getEnv("USER_AGENT", "fetchcached/0.1.0")
	logLevel := getEnv("LOG_LEVEL", "info")
	maxBytes := getEnvInt64("CACHE_MAX_BYTES", 200*1024)

	logging.Setup(logging.Config{Level: logging.LogLevel(logLevel)})
	logger := logging.NewLogger("fetchcached")

	store, err := cache.New(maxBytes)
	if err != nil {
		logger.Fatal().Err(err).Int64("max_bytes", maxBytes).Msg("Invalid cache budget")
	}

	f, err := fetcher.New(fetcher.Config{
		Cache:     store,
		UserAgent: userAgent,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create fetcher")
	}

	srv := &server{
		fetcher:    f,
		cache:      store,
		originHost: originHost,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", srv.handleHealth)
	r.Get("/fetch/*", srv.handleFetch)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Str("origin", originHost).
		Int64("cache_max_bytes", maxBytes).
		Msg("Starting fetchcached")

	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// server holds the shared fetcher state. The cache performs no internal
// locking, so all access through the fetcher is serialized here.
type server struct {
	mu         sync.Mutex
	fetcher    *fetcher.Fetcher
	cache      *cache.Cache
	originHost string
}

func (s *server) handleFetch(w http.ResponseWriter, r *http.Request) {
	resource := "/" + chi.URLParam(r, "*")

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	s.mu.Lock()
	res, err := s.fetcher.Get(ctx, s.originHost, resource)
	s.mu.Unlock()

	if err != nil {
		var fetchErr *fetcher.FetchError
		switch {
		case errors.As(err, &fetchErr) && fetchErr.StatusCode != 0:
			http.Error(w, fetchErr.Error(), fetchErr.StatusCode)
		case errors.Is(err, fetcher.ErrCacheInconsistent):
			http.Error(w, err.Error(), http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	if res.FromCache {
		w.Header().Set("X-Fetchcache", "hit")
	} else {
		w.Header().Set("X-Fetchcache", "miss")
	}
	w.Header().Set("X-Fetchcache-Digest", res.Digest.String())
	w.WriteHeader(http.StatusOK)
	w.Write(res.Body)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	entries := s.cache.Len()
	current := s.cache.CurrentBytes()
	max := s.cache.MaxBytes()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","cache_entries":%d,"cache_bytes":%d,"cache_max_bytes":%d}`,
		entries, current, max)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
