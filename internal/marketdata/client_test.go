package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	base := []ClientOption{WithBaseURL(server.URL), WithRateLimit(0)}
	return NewClient(append(base, opts...)...)
}

func TestClientSpot(t *testing.T) {
	var gotIDs, gotVs string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			t.Errorf("path: got %s, want /simple/price", r.URL.Path)
		}
		gotIDs = r.URL.Query().Get("ids")
		gotVs = r.URL.Query().Get("vs_currencies")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":45123.45}}`)
	})

	price, err := client.Spot(context.Background(), "BTC", "usd")
	if err != nil {
		t.Fatalf("Spot failed: %v", err)
	}
	if price != 45123.45 {
		t.Errorf("price: got %v, want 45123.45", price)
	}
	if gotIDs != "bitcoin" {
		t.Errorf("ids param: got %q, want %q", gotIDs, "bitcoin")
	}
	if gotVs != "usd" {
		t.Errorf("vs_currencies param: got %q, want %q", gotVs, "usd")
	}
}

func TestClientSpotsBatch(t *testing.T) {
	var gotIDs string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("ids")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":45000},"ethereum":{"usd":2500},"solana":{"usd":150}}`)
	})

	prices, err := client.Spots(context.Background(), []string{"BTC", "ETH", "SOL"}, "usd")
	if err != nil {
		t.Fatalf("Spots failed: %v", err)
	}

	// Missing coin IDs are sorted for a deterministic request.
	if gotIDs != "bitcoin,ethereum,solana" {
		t.Errorf("ids param: got %q, want %q", gotIDs, "bitcoin,ethereum,solana")
	}

	want := map[string]float64{"BTC": 45000, "ETH": 2500, "SOL": 150}
	for asset, wantPrice := range want {
		if prices[asset] != wantPrice {
			t.Errorf("%s: got %v, want %v", asset, prices[asset], wantPrice)
		}
	}
}

func TestClientCacheServesFreshQuotes(t *testing.T) {
	var requests atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":45000}}`)
	}, WithCacheTTL(time.Hour))

	for i := 0; i < 3; i++ {
		price, err := client.Spot(context.Background(), "BTC", "usd")
		if err != nil {
			t.Fatalf("Spot %d failed: %v", i, err)
		}
		if price != 45000 {
			t.Errorf("Spot %d: got %v, want 45000", i, price)
		}
	}

	if got := requests.Load(); got != 1 {
		t.Errorf("requests: got %d, want 1", got)
	}
}

func TestClientCacheDisabled(t *testing.T) {
	var requests atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":45000}}`)
	}, WithCacheTTL(0))

	for i := 0; i < 2; i++ {
		if _, err := client.Spot(context.Background(), "BTC", "usd"); err != nil {
			t.Fatalf("Spot %d failed: %v", i, err)
		}
	}

	if got := requests.Load(); got != 2 {
		t.Errorf("requests: got %d, want 2", got)
	}
}

func TestClientCachePartialHit(t *testing.T) {
	var requests atomic.Int64
	var lastIDs string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		lastIDs = r.URL.Query().Get("ids")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":45000},"ethereum":{"usd":2500}}`)
	}, WithCacheTTL(time.Hour))

	if _, err := client.Spot(context.Background(), "BTC", "usd"); err != nil {
		t.Fatalf("warm-up Spot failed: %v", err)
	}

	prices, err := client.Spots(context.Background(), []string{"BTC", "ETH"}, "usd")
	if err != nil {
		t.Fatalf("Spots failed: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("prices: got %d entries, want 2", len(prices))
	}

	// Second request should only fetch the asset missing from the cache.
	if got := requests.Load(); got != 2 {
		t.Errorf("requests: got %d, want 2", got)
	}
	if lastIDs != "ethereum" {
		t.Errorf("second request ids: got %q, want %q", lastIDs, "ethereum")
	}
}

func TestClientSpotNoPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	})

	_, err := client.Spot(context.Background(), "OBSCURECOIN", "usd")
	if !errors.Is(err, ErrNoPrice) {
		t.Errorf("error: got %v, want ErrNoPrice", err)
	}
}

func TestClientUnknownSymbolPassthrough(t *testing.T) {
	var gotIDs string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("ids")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"pepe":{"usd":0.0000012}}`)
	})

	price, err := client.Spot(context.Background(), "PEPE", "usd")
	if err != nil {
		t.Fatalf("Spot failed: %v", err)
	}
	if gotIDs != "pepe" {
		t.Errorf("ids param: got %q, want %q", gotIDs, "pepe")
	}
	if price != 0.0000012 {
		t.Errorf("price: got %v, want 0.0000012", price)
	}
}

func TestClientAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := client.Spot(context.Background(), "BTC", "usd")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type: got %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", apiErr.StatusCode, http.StatusInternalServerError)
	}
}

func TestClientRateLimitResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Spot(context.Background(), "BTC", "usd")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("error type: got %T, want *RateLimitError", err)
	}
	if rateErr.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter: got %v, want 30s", rateErr.RetryAfter)
	}
}

func TestClientDefaultVsCurrency(t *testing.T) {
	var gotVs string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotVs = r.URL.Query().Get("vs_currencies")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":45000}}`)
	})

	if _, err := client.Spot(context.Background(), "BTC", ""); err != nil {
		t.Fatalf("Spot failed: %v", err)
	}
	if gotVs != "usd" {
		t.Errorf("vs_currencies param: got %q, want %q", gotVs, "usd")
	}
}
