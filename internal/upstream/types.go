// Package upstream provides a client for the queue bridge API that fronts
// the BullMQ workers. This package centralizes all queue bridge interactions
// for the application.
package upstream

import (
	"fmt"
	"time"
)

// APIError represents an error response from the queue bridge.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("queue bridge error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsNotFound reports whether the bridge answered 404 (unknown queue or job).
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// RateLimitError represents a rate limit error.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("queue bridge rate limit exceeded, retry after %v", e.RetryAfter)
}
