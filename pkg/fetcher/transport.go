package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Response is the transport-level view of an origin reply: a status code,
// a header map, and the fully read body (nil when the origin sent none,
// as on 304).
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport sends a single GET request to an origin. Implementations must
// fully consume and release the underlying connection in every branch,
// including error paths, and are responsible for any request timeout.
type Transport interface {
	Send(ctx context.Context, host, path string, header http.Header) (*Response, error)
}

// DefaultTimeout bounds a single origin round-trip.
const DefaultTimeout = 30 * time.Second

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	// Scheme is "https" unless overridden (tests use "http").
	Scheme string

	// Client is the underlying HTTP client. Replaced by tests.
	Client *http.Client
}

// NewHTTPTransport returns an HTTPS transport with the default timeout.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		Scheme: "https",
		Client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Send issues a GET for scheme://host+path with the given headers and
// reads the body to completion before returning.
func (t *HTTPTransport) Send(ctx context.Context, host, path string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.Scheme+"://"+host+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if len(body) == 0 {
		body = nil
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}
