package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/ternarybob/tradedeck/internal/upstream"
)

// mockMonitorService implements interfaces.MonitorService for testing
type mockMonitorService struct {
	snapshot       interfaces.QueueSnapshot
	lastError      string
	jobsFunc       func(ctx context.Context, queue, status string) ([]models.Job, error)
	historicalFunc func(ctx context.Context, queue string) ([]models.HistoricalPoint, error)
	retryFunc      func(ctx context.Context, queue, id string) error
	removeFunc     func(ctx context.Context, queue, id string) error
	pauseFunc      func(ctx context.Context, queue string) error
	resumeFunc     func(ctx context.Context, queue string) error
	cleanFunc      func(ctx context.Context, queue string) error
}

func (m *mockMonitorService) Start(ctx context.Context) error { return nil }
func (m *mockMonitorService) Stop()                           {}
func (m *mockMonitorService) Snapshot() interfaces.QueueSnapshot {
	return m.snapshot
}
func (m *mockMonitorService) LastError() string { return m.lastError }

func (m *mockMonitorService) Jobs(ctx context.Context, queue, status string) ([]models.Job, error) {
	if m.jobsFunc != nil {
		return m.jobsFunc(ctx, queue, status)
	}
	return nil, nil
}

func (m *mockMonitorService) HistoricalStats(ctx context.Context, queue string) ([]models.HistoricalPoint, error) {
	if m.historicalFunc != nil {
		return m.historicalFunc(ctx, queue)
	}
	return nil, nil
}

func (m *mockMonitorService) RetryJob(ctx context.Context, queue, id string) error {
	if m.retryFunc != nil {
		return m.retryFunc(ctx, queue, id)
	}
	return nil
}

func (m *mockMonitorService) RemoveJob(ctx context.Context, queue, id string) error {
	if m.removeFunc != nil {
		return m.removeFunc(ctx, queue, id)
	}
	return nil
}

func (m *mockMonitorService) PauseQueue(ctx context.Context, queue string) error {
	if m.pauseFunc != nil {
		return m.pauseFunc(ctx, queue)
	}
	return nil
}

func (m *mockMonitorService) ResumeQueue(ctx context.Context, queue string) error {
	if m.resumeFunc != nil {
		return m.resumeFunc(ctx, queue)
	}
	return nil
}

func (m *mockMonitorService) CleanQueue(ctx context.Context, queue string) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, queue)
	}
	return nil
}

func (m *mockMonitorService) PruneHistory(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func newQueueHandler(m *mockMonitorService) *QueueHandler {
	return NewQueueHandler(m, arbor.NewLogger())
}

func TestGetStatsHandler(t *testing.T) {
	mock := &mockMonitorService{
		snapshot: interfaces.QueueSnapshot{
			Stats: []models.QueueStats{
				{Name: "crawl", Waiting: 3, Active: 1, Completed: 40},
			},
			FetchedAt: time.Now(),
		},
	}
	handler := newQueueHandler(mock)

	req := httptest.NewRequest("GET", "/api/queue/stats", nil)
	rec := httptest.NewRecorder()
	handler.GetStatsHandler(rec, req)

	require.Equal(t, 200, rec.Code)

	var stats []models.QueueStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, "crawl", stats[0].Name)
	assert.Equal(t, int64(3), stats[0].Waiting)
}

func TestGetStatsHandlerEmptySnapshot(t *testing.T) {
	handler := newQueueHandler(&mockMonitorService{})

	req := httptest.NewRequest("GET", "/api/queue/stats", nil)
	rec := httptest.NewRecorder()
	handler.GetStatsHandler(rec, req)

	require.Equal(t, 200, rec.Code)
	// Empty snapshot serves [] rather than null
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestGetStatsHandlerMethodNotAllowed(t *testing.T) {
	handler := newQueueHandler(&mockMonitorService{})

	req := httptest.NewRequest("POST", "/api/queue/stats", nil)
	rec := httptest.NewRecorder()
	handler.GetStatsHandler(rec, req)

	assert.Equal(t, 405, rec.Code)
}

func TestGetHealthHandler(t *testing.T) {
	mock := &mockMonitorService{
		snapshot: interfaces.QueueSnapshot{
			Health: []models.QueueHealthStatus{
				{Queue: "crawl", Health: models.QueueHealthy},
				{Queue: "index", Health: models.QueueAtRisk},
			},
		},
	}
	handler := newQueueHandler(mock)

	req := httptest.NewRequest("GET", "/api/queue/health", nil)
	rec := httptest.NewRecorder()
	handler.GetHealthHandler(rec, req)

	require.Equal(t, 200, rec.Code)

	var health []models.QueueHealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Len(t, health, 2)
	assert.Equal(t, models.QueueAtRisk, health[1].Health)
}

func TestJobsHandlerList(t *testing.T) {
	var gotQueue, gotStatus string
	mock := &mockMonitorService{
		jobsFunc: func(ctx context.Context, queue, status string) ([]models.Job, error) {
			gotQueue, gotStatus = queue, status
			return []models.Job{{ID: "101", Name: "crawl-page"}}, nil
		},
	}
	handler := newQueueHandler(mock)

	req := httptest.NewRequest("GET", "/api/queue/jobs/crawl?status=failed", nil)
	rec := httptest.NewRecorder()
	handler.JobsHandler(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "crawl", gotQueue)
	assert.Equal(t, "failed", gotStatus)

	var jobs []models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "101", jobs[0].ID)
}

func TestJobsHandlerRetry(t *testing.T) {
	var gotQueue, gotID string
	mock := &mockMonitorService{
		retryFunc: func(ctx context.Context, queue, id string) error {
			gotQueue, gotID = queue, id
			return nil
		},
	}
	handler := newQueueHandler(mock)

	req := httptest.NewRequest("POST", "/api/queue/jobs/crawl/101/retry", nil)
	rec := httptest.NewRecorder()
	handler.JobsHandler(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "crawl", gotQueue)
	assert.Equal(t, "101", gotID)
}

func TestJobsHandlerRemoveUnknownJob(t *testing.T) {
	mock := &mockMonitorService{
		removeFunc: func(ctx context.Context, queue, id string) error {
			return &upstream.APIError{StatusCode: 404, Message: "job not found", Endpoint: "/jobs"}
		},
	}
	handler := newQueueHandler(mock)

	req := httptest.NewRequest("DELETE", "/api/queue/jobs/crawl/999", nil)
	rec := httptest.NewRecorder()
	handler.JobsHandler(rec, req)

	assert.Equal(t, 404, rec.Code)
}

func TestJobsHandlerRateLimited(t *testing.T) {
	mock := &mockMonitorService{
		jobsFunc: func(ctx context.Context, queue, status string) ([]models.Job, error) {
			return nil, &upstream.RateLimitError{RetryAfter: time.Second}
		},
	}
	handler := newQueueHandler(mock)

	req := httptest.NewRequest("GET", "/api/queue/jobs/crawl", nil)
	rec := httptest.NewRecorder()
	handler.JobsHandler(rec, req)

	assert.Equal(t, 503, rec.Code)
}

func TestJobsHandlerBridgeDown(t *testing.T) {
	mock := &mockMonitorService{
		jobsFunc: func(ctx context.Context, queue, status string) ([]models.Job, error) {
			return nil, &upstream.APIError{StatusCode: 500, Message: "bridge exploded", Endpoint: "/jobs"}
		},
	}
	handler := newQueueHandler(mock)

	req := httptest.NewRequest("GET", "/api/queue/jobs/crawl", nil)
	rec := httptest.NewRecorder()
	handler.JobsHandler(rec, req)

	assert.Equal(t, 502, rec.Code)
}

func TestActionHandler(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"pause", "/api/queue/crawl/pause", 200},
		{"resume", "/api/queue/crawl/resume", 200},
		{"clean", "/api/queue/crawl/clean", 200},
		{"unknown action", "/api/queue/crawl/explode", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newQueueHandler(&mockMonitorService{})

			req := httptest.NewRequest("POST", tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ActionHandler(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestActionHandlerRequiresPost(t *testing.T) {
	handler := newQueueHandler(&mockMonitorService{})

	req := httptest.NewRequest("GET", "/api/queue/crawl/pause", nil)
	rec := httptest.NewRecorder()
	handler.ActionHandler(rec, req)

	assert.Equal(t, 405, rec.Code)
}

func TestGetHistoricalStatsHandler(t *testing.T) {
	now := time.Now().UTC()
	mock := &mockMonitorService{
		historicalFunc: func(ctx context.Context, queue string) ([]models.HistoricalPoint, error) {
			return []models.HistoricalPoint{
				{Queue: queue, Timestamp: now.Add(-time.Hour), Completed: 10},
				{Queue: queue, Timestamp: now, Completed: 25},
			}, nil
		},
	}
	handler := newQueueHandler(mock)

	req := httptest.NewRequest("GET", "/api/queue/historical-stats?queue=crawl", nil)
	rec := httptest.NewRecorder()
	handler.GetHistoricalStatsHandler(rec, req)

	require.Equal(t, 200, rec.Code)

	var points []models.HistoricalPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 2)
	assert.Equal(t, int64(25), points[1].Completed)
}
