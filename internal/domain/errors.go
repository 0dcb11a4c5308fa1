package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery signals a missing or blank query. Fatal for the request.
	ErrEmptyQuery = errors.New("empty query")
	// ErrNoDataFound signals that every retrieval strategy came back empty.
	// It is a low-confidence outcome, not a failure.
	ErrNoDataFound = errors.New("no data found")
	// ErrRateLimited signals a rate limit hit on an upstream provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrUpstreamTimeout signals a timed-out upstream call.
	ErrUpstreamTimeout = errors.New("upstream timeout")
	// ErrCompletionProviderError signals a completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrClassificationParse signals malformed structured classifier output.
	ErrClassificationParse = errors.New("classification parse error")
	// ErrDatastore signals a datastore failure. Recovered per-strategy.
	ErrDatastore = errors.New("datastore error")
	// ErrCacheRejected signals that a response did not qualify for caching.
	ErrCacheRejected = errors.New("cache admission rejected")
	// ErrSessionNotFound signals a missing session.
	ErrSessionNotFound = errors.New("session not found")
)

// UpstreamError wraps a provider failure with transport detail.
// Unwraps to ErrCompletionProviderError or ErrEmbeddingProviderError.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
	Kind       error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Kind }

// NewUpstreamError creates an upstream provider error.
func NewUpstreamError(provider string, status int, msg string, kind error) error {
	return &UpstreamError{Provider: provider, StatusCode: status, Message: msg, Kind: kind}
}
