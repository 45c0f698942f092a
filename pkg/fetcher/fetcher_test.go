package fetcher

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rbaynes/fetchcache/internal/testutil"
	"github.com/rbaynes/fetchcache/pkg/cache"
)

const (
	testETag    = `"stable-etag-123"`
	testLastMod = "Mon, 02 Jan 2006 15:04:05 GMT"
	testData    = "resource body bytes"
)

// newTestFetcher wires a fetcher to the mock origin over plain HTTP.
func newTestFetcher(t *testing.T, maxBytes int64) (*Fetcher, *cache.Cache) {
	t.Helper()

	c, err := cache.New(maxBytes)
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}

	f, err := New(Config{
		Cache:     c,
		UserAgent: "fetchcache-test/1.0",
		Transport: &HTTPTransport{
			Scheme: "http",
			Client: &http.Client{Timeout: 5 * time.Second},
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return f, c
}

func TestNew_Validation(t *testing.T) {
	c, _ := cache.New(1024)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing cache", Config{UserAgent: "test/1.0"}},
		{"missing user agent", Config{Cache: c}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New accepted an invalid config")
			}
		})
	}
}

func TestNew_DefaultTransport(t *testing.T) {
	c, _ := cache.New(1024)
	f, err := New(Config{Cache: c, UserAgent: "test/1.0"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if f.transport == nil {
		t.Error("transport not defaulted")
	}
}

func TestGet_FreshFetch(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()
	origin.SetHandler("/a", testutil.NewConditionalHandler(testETag, testLastMod, testData))

	f, c := newTestFetcher(t, 64*1024)

	res, err := f.Get(context.Background(), origin.Host(), "/a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if res.FromCache {
		t.Error("first fetch reported FromCache=true")
	}
	if string(res.Body) != testData {
		t.Errorf("Body = %q, want %q", res.Body, testData)
	}
	if origin.GetConditionalCount() != 0 {
		t.Error("first fetch sent conditional headers with an empty cache")
	}

	// Validators and body must now be cached.
	if etag, ok := c.Get("/a", cache.FieldETag); !ok || string(etag) != testETag {
		t.Errorf("cached ETag = %q (present=%v), want %q", etag, ok, testETag)
	}
	if lm, ok := c.Get("/a", cache.FieldLastModified); !ok || string(lm) != testLastMod {
		t.Errorf("cached Last-Modified = %q (present=%v), want %q", lm, ok, testLastMod)
	}
	if body, ok := c.Get("/a", cache.FieldBody); !ok || string(body) != testData {
		t.Errorf("cached Body = %q (present=%v), want %q", body, ok, testData)
	}
}

func TestGet_ConditionalRoundTrip(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()
	origin.SetHandler("/a", testutil.NewConditionalHandler(testETag, testLastMod, testData))

	f, _ := newTestFetcher(t, 64*1024)
	ctx := context.Background()

	first, err := f.Get(ctx, origin.Host(), "/a")
	if err != nil {
		t.Fatalf("first Get failed: %v", err)
	}

	second, err := f.Get(ctx, origin.Host(), "/a")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}

	if !second.FromCache {
		t.Error("second fetch of unchanged resource not served from cache")
	}
	if origin.GetConditionalCount() != 1 {
		t.Errorf("conditional requests = %d, want 1", origin.GetConditionalCount())
	}
	if origin.GetRequestCount() != 2 {
		t.Errorf("origin requests = %d, want 2", origin.GetRequestCount())
	}
	if !first.Digest.Equal(second.Digest) {
		t.Errorf("digests differ: %s vs %s", first.Digest, second.Digest)
	}
	if string(second.Body) != testData {
		t.Errorf("cached body = %q, want %q", second.Body, testData)
	}
}

func TestGet_SingleValidatorStaysUnconditional(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()

	// Origin supplies an ETag but no Last-Modified. With only one
	// validator cached, requests must stay unconditional.
	origin.SetHandler("/a", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", testETag)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(testData))
	})

	f, _ := newTestFetcher(t, 64*1024)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.Get(ctx, origin.Host(), "/a"); err != nil {
			t.Fatalf("Get %d failed: %v", i+1, err)
		}
	}

	if origin.GetConditionalCount() != 0 {
		t.Errorf("conditional requests = %d, want 0 with a single validator", origin.GetConditionalCount())
	}
}

func TestGet_304KeepsOmittedValidator(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()

	// First response carries both validators; the 304 omits
	// Last-Modified. The cached value must be retained, not cleared.
	first := true
	origin.SetHandler("/a", func(w http.ResponseWriter, r *http.Request) {
		if first {
			first = false
			w.Header().Set("ETag", testETag)
			w.Header().Set("Last-Modified", testLastMod)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(testData))
			return
		}
		w.Header().Set("ETag", testETag)
		w.WriteHeader(http.StatusNotModified)
	})

	f, c := newTestFetcher(t, 64*1024)
	ctx := context.Background()

	if _, err := f.Get(ctx, origin.Host(), "/a"); err != nil {
		t.Fatalf("first Get failed: %v", err)
	}
	res, err := f.Get(ctx, origin.Host(), "/a")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if !res.FromCache {
		t.Error("second Get not served from cache")
	}

	lm, ok := c.Get("/a", cache.FieldLastModified)
	if !ok {
		t.Fatal("cached Last-Modified cleared by a 304 that omitted it")
	}
	if string(lm) != testLastMod {
		t.Errorf("cached Last-Modified = %q, want %q", lm, testLastMod)
	}
}

func TestGet_CacheInconsistency(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()

	// The origin answers 304 although we never cached a body for /c.
	origin.SetResponse("/c", testutil.NewNotModifiedResponse(testETag, testLastMod))

	f, _ := newTestFetcher(t, 64*1024)

	_, err := f.Get(context.Background(), origin.Host(), "/c")
	if !errors.Is(err, ErrCacheInconsistent) {
		t.Errorf("error = %v, want ErrCacheInconsistent", err)
	}
}

func TestGet_EvictedBodyIsInconsistency(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()
	origin.SetHandler("/a", testutil.NewConditionalHandler(testETag, testLastMod, testData))

	f, c := newTestFetcher(t, 64*1024)
	ctx := context.Background()

	if _, err := f.Get(ctx, origin.Host(), "/a"); err != nil {
		t.Fatalf("first Get failed: %v", err)
	}

	// Drop the cached body behind the fetcher's back; validators stay,
	// so the next request is conditional and the origin answers 304.
	c.Clear()
	etag, _ := f.cache.Get("/a", cache.FieldETag) // gone after Clear
	if etag != nil {
		t.Fatal("Clear did not empty the cache")
	}
	c.Set("/a", cache.FieldETag, []byte(testETag))
	c.Set("/a", cache.FieldLastModified, []byte(testLastMod))

	_, err := f.Get(ctx, origin.Host(), "/a")
	if !errors.Is(err, ErrCacheInconsistent) {
		t.Errorf("error = %v, want ErrCacheInconsistent", err)
	}
}

func TestGet_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantClass ErrorClass
	}{
		{"not found", http.StatusNotFound, ErrorClassClient},
		{"forbidden", http.StatusForbidden, ErrorClassClient},
		{"server error", http.StatusInternalServerError, ErrorClassServer},
		{"bad gateway", http.StatusBadGateway, ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin := testutil.NewMockOrigin()
			defer origin.Close()
			origin.SetResponse("/x", testutil.MockResponse{StatusCode: tt.status})

			f, _ := newTestFetcher(t, 64*1024)

			_, err := f.Get(context.Background(), origin.Host(), "/x")
			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("error = %v, want *FetchError", err)
			}
			if fetchErr.Class != tt.wantClass {
				t.Errorf("Class = %s, want %s", fetchErr.Class, tt.wantClass)
			}
			if fetchErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, tt.status)
			}
		})
	}
}

func TestGet_NetworkError(t *testing.T) {
	origin := testutil.NewMockOrigin()
	host := origin.Host()
	origin.Close() // connection refused from here on

	f, _ := newTestFetcher(t, 64*1024)

	_, err := f.Get(context.Background(), host, "/a")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fetchErr.Class != ErrorClassNetwork {
		t.Errorf("Class = %s, want %s", fetchErr.Class, ErrorClassNetwork)
	}
}

func TestGet_SendsUserAgent(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()
	origin.SetHandler("/a", testutil.NewConditionalHandler(testETag, testLastMod, testData))

	f, _ := newTestFetcher(t, 64*1024)

	if _, err := f.Get(context.Background(), origin.Host(), "/a"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got := origin.LastRequestHeader.Get("User-Agent"); got != "fetchcache-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", got, "fetchcache-test/1.0")
	}
}
