package extractor

import (
	"fmt"
	"strconv"
	"time"
)

// ErrorKind classifies an extraction failure for logging and client messaging.
type ErrorKind string

const (
	// KindAPI covers network failures and non-2xx provider responses.
	KindAPI ErrorKind = "api_error"
	// KindBadJSON means the model reply could not be parsed as JSON.
	KindBadJSON ErrorKind = "invalid_json"
	// KindBadShape means the reply parsed as JSON but is missing the
	// required columns/rows shape.
	KindBadShape ErrorKind = "invalid_shape"
)

// ExtractionError is a classified failure of the AI normalization path.
// Failures are not retried automatically; a malformed reply is unlikely to
// self-correct on a blind retry and repeated model calls are expensive.
type ExtractionError struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates an ExtractionError.
func NewExtractionError(kind ErrorKind, provider string, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Provider: provider, Err: err}
}

// RateLimitError indicates a provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
