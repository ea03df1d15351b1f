package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/tradedeck/internal/models"
)

// QueueSnapshot is the monitor's latest view of the upstream queues.
// FetchedAt orders snapshots so a slow poll can never overwrite a newer one.
type QueueSnapshot struct {
	Stats     []models.QueueStats        `json:"stats"`
	Health    []models.QueueHealthStatus `json:"health"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// MonitorService polls the upstream queue bridge and re-serves its state
type MonitorService interface {
	// Start launches the poll loop. Stops when ctx is cancelled.
	Start(ctx context.Context) error

	// Stop halts the poll loop and waits for the in-flight poll
	Stop()

	// Snapshot returns a copy of the current snapshot. Stats is empty
	// until the first successful poll.
	Snapshot() QueueSnapshot

	// LastError reports the most recent poll failure, if the latest poll
	// failed. Cleared on success.
	LastError() string

	// Jobs fetches a queue's jobs in one state straight from upstream
	Jobs(ctx context.Context, queue string, status string) ([]models.Job, error)

	// HistoricalStats returns the locally accumulated series inside the
	// configured window. An empty queue name matches all queues.
	HistoricalStats(ctx context.Context, queue string) ([]models.HistoricalPoint, error)

	// Commands proxy to upstream; success triggers an immediate refresh poll
	RetryJob(ctx context.Context, queue, id string) error
	RemoveJob(ctx context.Context, queue, id string) error
	PauseQueue(ctx context.Context, queue string) error
	ResumeQueue(ctx context.Context, queue string) error
	CleanQueue(ctx context.Context, queue string) error

	// PruneHistory drops stored points older than cutoff, returning the
	// number removed. Driven by the scheduler's cleanup job.
	PruneHistory(ctx context.Context, cutoff time.Time) (int, error)
}
