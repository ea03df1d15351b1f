package monitor

import (
	"github.com/ternarybob/tradedeck/internal/models"
)

// ClassifyQueue grades a queue from its counts alone. Thresholds: more than
// 10% of completed jobs failed → "At Risk"; more than half the waiting
// backlog delayed → "Warning"; otherwise "Healthy".
func ClassifyQueue(stats models.QueueStats) models.QueueHealth {
	if float64(stats.Failed) > float64(stats.Completed)*0.1 {
		return models.QueueAtRisk
	}
	if float64(stats.Delayed) > float64(stats.Waiting)*0.5 {
		return models.QueueWarning
	}
	return models.QueueHealthy
}

// HealthFor classifies every queue in a stats set.
func HealthFor(stats []models.QueueStats) []models.QueueHealthStatus {
	health := make([]models.QueueHealthStatus, 0, len(stats))
	for _, q := range stats {
		health = append(health, models.QueueHealthStatus{
			Queue:  q.Name,
			Health: ClassifyQueue(q),
		})
	}
	return health
}
