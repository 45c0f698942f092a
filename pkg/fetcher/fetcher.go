// Package fetcher retrieves remote resources over HTTP(S) and avoids
// re-downloading them when the origin confirms they are unchanged. It pairs
// a byte-bounded validator cache with HTTP conditional requests: cached
// ETag/Last-Modified values are replayed as If-None-Match/If-Modified-Since,
// and a 304 Not Modified answer is served from the cached body.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rbaynes/fetchcache/pkg/cache"
	"github.com/rbaynes/fetchcache/pkg/digest"
)

// Result is the outcome of one successful Get: the resource body, its
// fingerprint, and whether the body came from the cache (304) or from a
// fresh 200 response.
type Result struct {
	Body      []byte
	Digest    digest.Digest
	FromCache bool
}

// Config holds the fetcher configuration.
type Config struct {
	// Cache holds validators and bodies between calls. Required.
	Cache *cache.Cache

	// UserAgent is sent with every request. Required.
	UserAgent string

	// Transport performs the origin round-trips.
	// Defaults to NewHTTPTransport().
	Transport Transport
}

// Fetcher performs conditional GETs against a single origin. It is
// stateless between calls except through the shared cache it references;
// construct one Cache and hand it to every Fetcher that should share it.
type Fetcher struct {
	cache     *cache.Cache
	transport Transport
	userAgent string
	logger    zerolog.Logger
}

// New creates a fetcher. The cache and user agent are required.
func New(cfg Config) (*Fetcher, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport()
	}

	return &Fetcher{
		cache:     cfg.Cache,
		transport: transport,
		userAgent: cfg.UserAgent,
		logger:    log.With().Str("component", "fetcher").Logger(),
	}, nil
}

// Get retrieves host+resource. When the cache holds both validators for
// the resource the request is made conditional; a 304 reply is then
// answered from the cached body. Fresh 200 bodies are stored back into
// the cache together with their fingerprint.
//
// Failures are never retried here; retry policy belongs to the caller.
func (f *Fetcher) Get(ctx context.Context, host, resource string) (*Result, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(resource).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: look up prior validators. Both must be present for a
	// conditional request; with only one the origin could answer 304
	// against a validator we never verified.
	header := make(http.Header)
	header.Set("User-Agent", f.userAgent)

	etag, etagOK := f.cache.Get(resource, cache.FieldETag)
	lastMod, lastModOK := f.cache.Get(resource, cache.FieldLastModified)
	if etagOK && lastModOK {
		header.Set("If-None-Match", string(etag))
		header.Set("If-Modified-Since", string(lastMod))
		conditionalRequestsSent.Inc()
		f.logger.Debug().
			Str("resource", resource).
			Str("etag", string(etag)).
			Msg("Making conditional request")
	}

	// Step 2: one round-trip. The transport owns timeout and connection
	// release.
	resp, err := f.transport.Send(ctx, host, resource, header)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(resource, "network_error").Inc()
		f.logger.Error().Err(err).Str("resource", resource).Msg("Request failed")
		return nil, &FetchError{
			Class:    ErrorClassNetwork,
			Resource: resource,
			Err:      err,
		}
	}

	// Step 3: store whatever validators the response carries, even on
	// 304. An absent header leaves the cached value untouched; a present
	// validator is never overwritten with an absent one.
	if v := resp.Header.Get("ETag"); v != "" {
		f.cache.Set(resource, cache.FieldETag, []byte(v))
	}
	if v := resp.Header.Get("Last-Modified"); v != "" {
		f.cache.Set(resource, cache.FieldLastModified, []byte(v))
	}

	requestsTotal.WithLabelValues(resource, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	// Step 4: branch on status.
	switch resp.StatusCode {
	case http.StatusOK:
		return f.storeFresh(resource, resp.Body)
	case http.StatusNotModified:
		return f.serveCached(resource)
	default:
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		f.logger.Warn().
			Str("resource", resource).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Unhandled response status")
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Resource:   resource,
		}
	}
}

// storeFresh caches a 200 body and its fingerprint and returns it.
func (f *Fetcher) storeFresh(resource string, body []byte) (*Result, error) {
	d := digest.Sum(body)
	f.cache.Set(resource, cache.FieldBody, body)
	f.cache.Set(resource, cache.FieldBodyDigest, d.Bytes())

	f.logger.Debug().
		Str("resource", resource).
		Int("bytes", len(body)).
		Str("digest", d.String()).
		Msg("Fetched and cached resource")

	return &Result{Body: body, Digest: d, FromCache: false}, nil
}

// serveCached answers a 304 from the cached body. A 304 for a resource
// with no cached body is a protocol inconsistency and is surfaced as
// ErrCacheInconsistent, distinct from an ordinary miss.
func (f *Fetcher) serveCached(resource string) (*Result, error) {
	notModifiedTotal.Inc()

	body, ok := f.cache.Get(resource, cache.FieldBody)
	if !ok {
		f.logger.Error().
			Str("resource", resource).
			Msg("304 received but no body cached")
		return nil, fmt.Errorf("%w: %s", ErrCacheInconsistent, resource)
	}

	var d digest.Digest
	if raw, ok := f.cache.Get(resource, cache.FieldBodyDigest); ok {
		if parsed, valid := digest.FromBytes(raw); valid {
			d = parsed
		}
	}
	if d == (digest.Digest{}) {
		// Digest evicted or never stored alongside the body; recompute.
		d = digest.Sum(body)
	}

	f.logger.Debug().
		Str("resource", resource).
		Str("digest", d.String()).
		Msg("304 Not Modified - serving from cache")

	return &Result{Body: body, Digest: d, FromCache: true}, nil
}
