// -----------------------------------------------------------------------
// Last Modified: Wednesday, 12th August 2026 8:47:10 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL of the queue bridge.
	DefaultBaseURL = "http://localhost:3001"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultRateInterval is the default minimum spacing between requests.
	DefaultRateInterval = 100 * time.Millisecond
)

// Client is a queue bridge API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the minimum spacing between requests. Zero disables
// pacing.
func WithRateLimit(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// NewClient creates a new queue bridge client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultRateInterval), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// do performs a request against the bridge and decodes the response into
// result when result is non-nil.
func (c *Client) do(ctx context.Context, method, path string, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{RetryAfter: time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Trace().
			Str("method", method).
			Str("url", c.baseURL+path).
			Msg("Queue bridge request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Second
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if result == nil {
		// Commands only need the status; drain so the connection is reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Stats retrieves current per-queue counters.
func (c *Client) Stats(ctx context.Context) ([]models.QueueStats, error) {
	var stats []models.QueueStats
	if err := c.do(ctx, http.MethodGet, "/api/queue/stats", &stats); err != nil {
		return nil, err
	}

	for i := range stats {
		stats[i].Normalize()
	}
	return stats, nil
}

// Jobs retrieves a queue's jobs in one state. An empty status defaults to
// waiting on the bridge side; callers validate before calling.
func (c *Client) Jobs(ctx context.Context, queue string, status string) ([]models.Job, error) {
	path := "/api/queue/jobs/" + url.PathEscape(queue)
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var jobs []models.Job
	if err := c.do(ctx, http.MethodGet, path, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// HistoricalStats retrieves the bridge's accumulated stat history. Used to
// seed the local snapshot store on first start.
func (c *Client) HistoricalStats(ctx context.Context) ([]models.HistoricalPoint, error) {
	var points []models.HistoricalPoint
	if err := c.do(ctx, http.MethodGet, "/api/queue/historical-stats", &points); err != nil {
		return nil, err
	}
	return points, nil
}

// RetryJob re-enqueues a failed job.
func (c *Client) RetryJob(ctx context.Context, queue, id string) error {
	path := fmt.Sprintf("/api/queue/jobs/%s/%s/retry", url.PathEscape(queue), url.PathEscape(id))
	return c.do(ctx, http.MethodPost, path, nil)
}

// RemoveJob deletes a job from its queue.
func (c *Client) RemoveJob(ctx context.Context, queue, id string) error {
	path := fmt.Sprintf("/api/queue/jobs/%s/%s", url.PathEscape(queue), url.PathEscape(id))
	return c.do(ctx, http.MethodDelete, path, nil)
}

// PauseQueue stops a queue from picking up new jobs.
func (c *Client) PauseQueue(ctx context.Context, queue string) error {
	return c.do(ctx, http.MethodPost, "/api/queue/"+url.PathEscape(queue)+"/pause", nil)
}

// ResumeQueue restarts a paused queue.
func (c *Client) ResumeQueue(ctx context.Context, queue string) error {
	return c.do(ctx, http.MethodPost, "/api/queue/"+url.PathEscape(queue)+"/resume", nil)
}

// CleanQueue removes completed and failed jobs from a queue.
func (c *Client) CleanQueue(ctx context.Context, queue string) error {
	return c.do(ctx, http.MethodPost, "/api/queue/"+url.PathEscape(queue)+"/clean", nil)
}
