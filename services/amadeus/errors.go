package amadeus

import (
	"fmt"
	"math"
	"time"
)

// RateLimitError is the admission-control rejection raised before a
// request is sent when the current window is exhausted. It carries the
// time remaining until the window resets so the user can be told when to
// retry.
type RateLimitError struct {
	RetryIn time.Duration
}

func (e *RateLimitError) Error() string {
	secs := int(math.Ceil(e.RetryIn.Seconds()))
	return fmt.Sprintf("Rate limit reached. Please try again in %d seconds.", secs)
}

// APIError is a non-2xx response from the travel provider that survived
// the retry policy (or was not retryable to begin with).
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amadeus error (%d) on %s: %s", e.StatusCode, e.Endpoint, e.Body)
}

// AuthError wraps a failed OAuth token exchange.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("amadeus auth failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ValidationError reports malformed or missing required arguments,
// detected before any request is issued. Never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
