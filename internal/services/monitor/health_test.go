package monitor

import (
	"testing"

	"github.com/ternarybob/tradedeck/internal/models"
)

func TestClassifyQueue(t *testing.T) {
	tests := []struct {
		name  string
		stats models.QueueStats
		want  models.QueueHealth
	}{
		{
			name:  "failure ratio above threshold",
			stats: models.QueueStats{Name: "crawler", Completed: 100, Failed: 11},
			want:  models.QueueAtRisk,
		},
		{
			name:  "delayed backlog above threshold",
			stats: models.QueueStats{Name: "crawler", Completed: 100, Failed: 9, Waiting: 10, Delayed: 6},
			want:  models.QueueWarning,
		},
		{
			name:  "within thresholds",
			stats: models.QueueStats{Name: "crawler", Completed: 100, Failed: 0, Waiting: 10, Delayed: 2},
			want:  models.QueueHealthy,
		},
		{
			name:  "all zero counts",
			stats: models.QueueStats{Name: "idle"},
			want:  models.QueueHealthy,
		},
		{
			name:  "failed with no completions",
			stats: models.QueueStats{Name: "broken", Failed: 1},
			want:  models.QueueAtRisk,
		},
		{
			name:  "delayed with no waiting",
			stats: models.QueueStats{Name: "stuck", Completed: 50, Delayed: 1},
			want:  models.QueueWarning,
		},
		{
			name:  "failure ratio exactly at threshold",
			stats: models.QueueStats{Name: "edge", Completed: 100, Failed: 10},
			want:  models.QueueHealthy,
		},
		{
			name:  "delayed exactly at threshold",
			stats: models.QueueStats{Name: "edge", Completed: 100, Waiting: 10, Delayed: 5},
			want:  models.QueueHealthy,
		},
		{
			name:  "at risk wins over warning",
			stats: models.QueueStats{Name: "both", Completed: 100, Failed: 20, Waiting: 10, Delayed: 9},
			want:  models.QueueAtRisk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyQueue(tt.stats); got != tt.want {
				t.Errorf("ClassifyQueue(%+v): got %q, want %q", tt.stats, got, tt.want)
			}
		})
	}
}

func TestHealthFor(t *testing.T) {
	stats := []models.QueueStats{
		{Name: "crawler", Completed: 100, Failed: 11},
		{Name: "mailer", Completed: 100, Failed: 9, Waiting: 10, Delayed: 6},
		{Name: "reports", Completed: 100, Waiting: 10, Delayed: 2},
	}

	health := HealthFor(stats)
	if len(health) != 3 {
		t.Fatalf("health entries: got %d, want 3", len(health))
	}

	want := map[string]models.QueueHealth{
		"crawler": models.QueueAtRisk,
		"mailer":  models.QueueWarning,
		"reports": models.QueueHealthy,
	}
	for _, h := range health {
		if h.Health != want[h.Queue] {
			t.Errorf("%s: got %q, want %q", h.Queue, h.Health, want[h.Queue])
		}
	}
}

func TestHealthForEmptyStats(t *testing.T) {
	health := HealthFor(nil)
	if len(health) != 0 {
		t.Errorf("health entries: got %d, want 0", len(health))
	}
}
