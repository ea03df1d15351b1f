// Package marketdata provides a spot price client for a CoinGecko-compatible
// price API, with a small in-memory TTL cache in front of it.
package marketdata

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoPrice is returned when the price API has no quote for an asset.
var ErrNoPrice = errors.New("no price for asset")

// APIError represents an error response from the price API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("marketdata API error (status %d) on %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// RateLimitError indicates the price API rate limit was exceeded.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("marketdata rate limit exceeded, retry after %v", e.RetryAfter)
}
