package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned 429.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers every other transport failure: non-2xx
// statuses, network errors, and an exhausted mock queue. StatusCode is 0
// when no HTTP response was received.
type ErrProviderUnavailable struct {
	StatusCode int
	Err        error
}

func (e *ErrProviderUnavailable) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("LLM provider unavailable (HTTP %d): %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	default:
		return "LLM provider unavailable"
	}
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates a reply that does not match what was asked
// for: no choices, no text, or a schema violation.
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the reply was cut off at MaxTokens.
type ErrMaxTokensExceeded struct {
	Content string
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// StatusCode returns the HTTP status carried by a provider error, or 0.
func StatusCode(err error) int {
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return 429
	}
	var unavail *ErrProviderUnavailable
	if errors.As(err, &unavail) {
		return unavail.StatusCode
	}
	return 0
}

// IsTransport reports whether err came from talking to the provider, as
// opposed to interpreting its reply.
func IsTransport(err error) bool {
	var rl *ErrRateLimit
	var unavail *ErrProviderUnavailable
	return errors.As(err, &rl) || errors.As(err, &unavail)
}

func mapStatusError(status int, err error) error {
	switch {
	case status == 429:
		return &ErrRateLimit{Err: err}
	default:
		return &ErrProviderUnavailable{StatusCode: status, Err: err}
	}
}
