// -----------------------------------------------------------------------
// Last Modified: Thursday, 13th August 2026 9:18:27 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/ternarybob/tradedeck/internal/upstream"
)

const (
	// DefaultPollInterval is used when config omits queue.poll_interval.
	DefaultPollInterval = 10 * time.Second

	// DefaultSampleEvery appends one historical point per N successful polls.
	DefaultSampleEvery = 5

	// DefaultHistoryWindow bounds the series served by HistoricalStats.
	DefaultHistoryWindow = 24 * time.Hour
)

// ErrInvalidStatus is returned when a job listing asks for an unknown status.
var ErrInvalidStatus = errors.New("invalid job status")

var _ interfaces.MonitorService = (*Service)(nil)

// Service implements MonitorService. A single goroutine polls the upstream
// bridge on a fixed interval; commands proxy through and force a refresh.
type Service struct {
	client *upstream.Client
	store  interfaces.SnapshotStorage
	events interfaces.EventService
	logger arbor.ILogger

	pollInterval  time.Duration
	sampleEvery   int
	historyWindow time.Duration
	defaultStatus string

	mu        sync.RWMutex
	snapshot  interfaces.QueueSnapshot
	lastError string
	pollCount uint64 // successful polls, drives every-Nth sampling
	running   bool

	pollMu sync.Mutex // one in-flight poll at a time
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewService creates a queue monitor. Interval strings that fail to parse
// fall back to defaults.
func NewService(client *upstream.Client, store interfaces.SnapshotStorage, events interfaces.EventService, logger arbor.ILogger, cfg *common.QueueConfig) *Service {
	s := &Service{
		client:        client,
		store:         store,
		events:        events,
		logger:        logger,
		pollInterval:  DefaultPollInterval,
		sampleEvery:   DefaultSampleEvery,
		historyWindow: DefaultHistoryWindow,
		defaultStatus: models.JobStatusWaiting,
		stopCh:        make(chan struct{}),
	}

	if cfg != nil {
		if d, err := time.ParseDuration(cfg.PollInterval); err == nil && d > 0 {
			s.pollInterval = d
		}
		if cfg.SampleEvery > 0 {
			s.sampleEvery = cfg.SampleEvery
		}
		if d, err := time.ParseDuration(cfg.HistoryWindow); err == nil && d > 0 {
			s.historyWindow = d
		}
		if cfg.DefaultStatus != "" && models.IsValidJobStatus(cfg.DefaultStatus) {
			s.defaultStatus = cfg.DefaultStatus
		}
	}

	return s
}

// Start launches the poll loop. The first poll runs immediately; the store
// is seeded from upstream history when empty.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("queue monitor already running")
	}
	s.running = true
	s.mu.Unlock()

	s.seedHistory(ctx)

	s.wg.Add(1)
	common.SafeGoWithContext(ctx, s.logger, "queueMonitorPoll", func() {
		defer s.wg.Done()
		s.loop(ctx)
	})

	s.logger.Info().
		Str("poll_interval", s.pollInterval.String()).
		Int("sample_every", s.sampleEvery).
		Msg("Queue monitor started")

	return nil
}

// Stop halts the poll loop and waits for any in-flight poll to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	s.logger.Info().Msg("Queue monitor stopped")
}

func (s *Service) loop(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// poll fetches stats once. Failures keep the prior snapshot; the next tick
// is the retry.
func (s *Service) poll(ctx context.Context) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	fetchedAt := time.Now()
	stats, err := s.client.Stats(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()

		s.logger.Warn().
			Err(err).
			Msg("Queue stats poll failed, keeping prior snapshot")
		return
	}

	s.apply(ctx, stats, fetchedAt)
}

// apply installs a poll result. Results older than the current snapshot are
// discarded so a slow response cannot overwrite a newer one.
func (s *Service) apply(ctx context.Context, stats []models.QueueStats, fetchedAt time.Time) {
	snap := interfaces.QueueSnapshot{
		Stats:     stats,
		Health:    HealthFor(stats),
		FetchedAt: fetchedAt,
	}

	s.mu.Lock()
	if fetchedAt.Before(s.snapshot.FetchedAt) {
		s.mu.Unlock()
		s.logger.Debug().
			Str("fetched_at", fetchedAt.Format(time.RFC3339Nano)).
			Msg("Discarding stale poll result")
		return
	}
	s.snapshot = snap
	s.lastError = ""
	s.pollCount++
	count := s.pollCount
	s.mu.Unlock()

	if s.sampleEvery > 0 && count%uint64(s.sampleEvery) == 0 {
		s.sample(ctx, snap)
	}

	if s.events != nil {
		s.events.Publish(ctx, interfaces.Event{
			Type:      interfaces.EventQueueStats,
			Timestamp: fetchedAt,
			Payload:   snap,
		})
	}
}

// sample appends one historical point per queue to the snapshot store.
func (s *Service) sample(ctx context.Context, snap interfaces.QueueSnapshot) {
	if s.store == nil || len(snap.Stats) == 0 {
		return
	}

	points := make([]models.HistoricalPoint, 0, len(snap.Stats))
	for _, q := range snap.Stats {
		points = append(points, models.HistoricalPoint{
			Timestamp: snap.FetchedAt,
			Queue:     q.Name,
			Waiting:   q.Waiting,
			Active:    q.Active,
			Completed: q.Completed,
			Failed:    q.Failed,
			Delayed:   q.Delayed,
		})
	}

	if err := s.store.SaveSnapshots(ctx, points); err != nil {
		s.logger.Warn().
			Err(err).
			Int("points", len(points)).
			Msg("Failed to store historical sample")
	}
}

// seedHistory backfills the snapshot store from upstream once, when empty.
func (s *Service) seedHistory(ctx context.Context) {
	if s.store == nil {
		return
	}

	count, err := s.store.CountSnapshots(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to count stored history, skipping seed")
		return
	}
	if count > 0 {
		return
	}

	points, err := s.client.HistoricalStats(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to seed history from upstream")
		return
	}
	if len(points) == 0 {
		return
	}

	if err := s.store.SaveSnapshots(ctx, points); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to store seeded history")
		return
	}

	s.logger.Info().
		Int("points", len(points)).
		Msg("Seeded queue history from upstream")
}

// Snapshot returns a copy of the current snapshot.
func (s *Service) Snapshot() interfaces.QueueSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return interfaces.QueueSnapshot{
		Stats:     append([]models.QueueStats(nil), s.snapshot.Stats...),
		Health:    append([]models.QueueHealthStatus(nil), s.snapshot.Health...),
		FetchedAt: s.snapshot.FetchedAt,
	}
}

// LastError reports the most recent poll failure, empty after a success.
func (s *Service) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Jobs fetches a queue's jobs in one state straight from upstream. Status
// defaults to the configured listing status; unknown statuses are rejected.
func (s *Service) Jobs(ctx context.Context, queue string, status string) ([]models.Job, error) {
	if status == "" {
		status = s.defaultStatus
	}
	if !models.IsValidJobStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	return s.client.Jobs(ctx, queue, status)
}

// HistoricalStats serves the locally accumulated series inside the window.
func (s *Service) HistoricalStats(ctx context.Context, queue string) ([]models.HistoricalPoint, error) {
	if s.store == nil {
		return []models.HistoricalPoint{}, nil
	}

	now := time.Now()
	return s.store.ListSnapshots(ctx, queue, now.Add(-s.historyWindow), now)
}

// RetryJob re-queues a failed job.
func (s *Service) RetryJob(ctx context.Context, queue, id string) error {
	if err := s.client.RetryJob(ctx, queue, id); err != nil {
		return err
	}
	s.afterCommand(ctx, "retry", queue, id)
	return nil
}

// RemoveJob deletes a job from its queue.
func (s *Service) RemoveJob(ctx context.Context, queue, id string) error {
	if err := s.client.RemoveJob(ctx, queue, id); err != nil {
		return err
	}
	s.afterCommand(ctx, "remove", queue, id)
	return nil
}

// PauseQueue pauses job processing on a queue.
func (s *Service) PauseQueue(ctx context.Context, queue string) error {
	if err := s.client.PauseQueue(ctx, queue); err != nil {
		return err
	}
	s.afterCommand(ctx, "pause", queue, "")
	return nil
}

// ResumeQueue resumes job processing on a queue.
func (s *Service) ResumeQueue(ctx context.Context, queue string) error {
	if err := s.client.ResumeQueue(ctx, queue); err != nil {
		return err
	}
	s.afterCommand(ctx, "resume", queue, "")
	return nil
}

// CleanQueue removes completed and failed jobs from a queue.
func (s *Service) CleanQueue(ctx context.Context, queue string) error {
	if err := s.client.CleanQueue(ctx, queue); err != nil {
		return err
	}
	s.afterCommand(ctx, "clean", queue, "")
	return nil
}

// afterCommand refreshes the snapshot so the dashboard sees the command's
// effect without waiting for the next tick, then announces the command.
func (s *Service) afterCommand(ctx context.Context, action, queue, id string) {
	s.poll(ctx)

	if s.events == nil {
		return
	}

	payload := map[string]interface{}{
		"action": action,
		"queue":  queue,
	}
	if id != "" {
		payload["job_id"] = id
	}

	s.events.Publish(ctx, interfaces.Event{
		Type:      interfaces.EventQueueJob,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// PruneHistory drops stored points older than the cutoff. Wired to the
// scheduler's hourly cleanup job.
func (s *Service) PruneHistory(ctx context.Context, cutoff time.Time) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	return s.store.PruneSnapshots(ctx, cutoff)
}
