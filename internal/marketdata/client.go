// -----------------------------------------------------------------------
// Last Modified: Wednesday, 12th August 2026 11:23:52 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the CoinGecko public API base URL.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateInterval keeps the client inside the free-tier allowance.
	DefaultRateInterval = 1200 * time.Millisecond

	// DefaultCacheTTL is how long a fetched quote stays fresh.
	DefaultCacheTTL = 60 * time.Second
)

// symbolToID maps common ticker symbols to CoinGecko coin IDs. Assets not
// listed here are passed through lowercased, so callers may also supply the
// coin ID directly.
var symbolToID = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"sol":   "solana",
	"usdt":  "tether",
	"usdc":  "usd-coin",
	"bnb":   "binancecoin",
	"xrp":   "ripple",
	"ada":   "cardano",
	"doge":  "dogecoin",
	"dot":   "polkadot",
	"matic": "matic-network",
	"link":  "chainlink",
	"ltc":   "litecoin",
	"avax":  "avalanche-2",
	"atom":  "cosmos",
	"uni":   "uniswap",
}

type cachedQuote struct {
	price     float64
	fetchedAt time.Time
}

// Client fetches spot prices from a CoinGecko-compatible API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	cacheTTL   time.Duration

	mu    sync.RWMutex
	cache map[string]cachedQuote // key: coinID:vs
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

// WithCacheTTL sets how long fetched quotes stay fresh. Zero disables the
// cache.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// NewClient creates a new spot price client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:  rate.NewLimiter(rate.Every(DefaultRateInterval), 1),
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cachedQuote),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// coinID resolves a ticker symbol to its CoinGecko coin ID.
func coinID(asset string) string {
	key := strings.ToLower(strings.TrimSpace(asset))
	if id, ok := symbolToID[key]; ok {
		return id
	}
	return key
}

// Spot returns the spot price of a single asset in the given quote currency.
// Returns ErrNoPrice when the API has no quote for the asset.
func (c *Client) Spot(ctx context.Context, asset, vs string) (float64, error) {
	prices, err := c.Spots(ctx, []string{asset}, vs)
	if err != nil {
		return 0, err
	}

	price, ok := prices[asset]
	if !ok {
		return 0, fmt.Errorf("%s/%s: %w", asset, vs, ErrNoPrice)
	}
	return price, nil
}

// Spots returns spot prices for multiple assets in one request, keyed by the
// asset names as passed in. Assets the API has no quote for are absent from
// the result. Fresh cached quotes are served without a request; only stale or
// unknown assets are fetched.
func (c *Client) Spots(ctx context.Context, assets []string, vs string) (map[string]float64, error) {
	vs = strings.ToLower(strings.TrimSpace(vs))
	if vs == "" {
		vs = "usd"
	}

	prices := make(map[string]float64, len(assets))
	missing := make(map[string]string) // coinID -> asset as passed in

	now := time.Now()
	c.mu.RLock()
	for _, asset := range assets {
		id := coinID(asset)
		if cached, ok := c.cache[id+":"+vs]; ok && now.Sub(cached.fetchedAt) < c.cacheTTL {
			prices[asset] = cached.price
			continue
		}
		missing[id] = asset
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return prices, nil
	}

	ids := make([]string, 0, len(missing))
	for id := range missing {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", vs)

	// CoinGecko shape: {"bitcoin": {"usd": 45000.12}}
	var result map[string]map[string]float64
	if err := c.get(ctx, "/simple/price?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	fetchedAt := time.Now()
	c.mu.Lock()
	for id, asset := range missing {
		quote, ok := result[id]
		if !ok {
			continue
		}
		price, ok := quote[vs]
		if !ok {
			continue
		}
		prices[asset] = price
		c.cache[id+":"+vs] = cachedQuote{price: price, fetchedAt: fetchedAt}
	}
	c.mu.Unlock()

	return prices, nil
}

// get performs a GET request against the price API and decodes the response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{RetryAfter: time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Trace().
			Str("url", c.baseURL+path).
			Msg("Market data request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Minute
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
