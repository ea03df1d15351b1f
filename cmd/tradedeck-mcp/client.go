package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
)

// apiClient talks to the dashboard's REST API
type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *apiClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dashboard returned %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
	}

	return json.Unmarshal(body, out)
}

func (c *apiClient) QueueStats(ctx context.Context) ([]models.QueueStats, error) {
	var stats []models.QueueStats
	if err := c.get(ctx, "/api/queue/stats", &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *apiClient) QueueHealth(ctx context.Context) ([]models.QueueHealthStatus, error) {
	var health []models.QueueHealthStatus
	if err := c.get(ctx, "/api/queue/health", &health); err != nil {
		return nil, err
	}
	return health, nil
}

func (c *apiClient) QueueJobs(ctx context.Context, queue, status string) ([]models.Job, error) {
	path := "/api/queue/jobs/" + url.PathEscape(queue)
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var jobs []models.Job
	if err := c.get(ctx, path, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *apiClient) Wallets(ctx context.Context) ([]*models.Wallet, error) {
	var wallets []*models.Wallet
	if err := c.get(ctx, "/api/wallets", &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (c *apiClient) WalletValue(ctx context.Context, id string) (*interfaces.WalletValue, error) {
	var value interfaces.WalletValue
	if err := c.get(ctx, "/api/wallets/"+url.PathEscape(id)+"/value", &value); err != nil {
		return nil, err
	}
	return &value, nil
}

func (c *apiClient) Layouts(ctx context.Context) ([]*models.DashboardLayout, error) {
	var layouts []*models.DashboardLayout
	if err := c.get(ctx, "/api/layouts", &layouts); err != nil {
		return nil, err
	}
	return layouts, nil
}
