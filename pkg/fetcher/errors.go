package fetcher

import (
	"errors"
	"fmt"
)

// Common errors returned by the fetcher.
var (
	// ErrCacheInconsistent is returned when the origin answers
	// 304 Not Modified for a resource with no previously cached body.
	// This is a protocol/data inconsistency, not an ordinary miss.
	ErrCacheInconsistent = errors.New("not modified response without cached body")
)

// ErrorClass represents a classification of fetch failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// FetchError reports a failed retrieval: a transport-level failure or a
// status other than 200/304. The fetcher never retries; retry and backoff
// policy belong to the caller.
type FetchError struct {
	StatusCode int
	Class      ErrorClass
	Resource   string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s error for %s: %v", e.Class, e.Resource, e.Err)
	}
	return fmt.Sprintf("fetch %s error for %s (status %d)", e.Class, e.Resource, e.StatusCode)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// classifyStatus buckets a non-200/304 status code for metrics and logs.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		// 1xx/2xx/3xx statuses the fetcher does not handle are still
		// failures; treat them like client errors.
		return ErrorClassClient
	}
}
