package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// shutdownTimeout bounds how long Stop waits for in-flight jobs.
const shutdownTimeout = 30 * time.Second

// jobEntry tracks a registered job and its execution state
type jobEntry struct {
	name      string
	schedule  string
	handler   func() error
	cronID    cron.EntryID
	lastRun   *time.Time
	isRunning bool
	lastError string
}

var _ interfaces.SchedulerService = (*Service)(nil)

// Service implements SchedulerService on top of robfig/cron. Jobs are
// plain func() error handlers; each run is tracked with last-run,
// next-run and last-error so the status endpoint can report them.
type Service struct {
	cron    *cron.Cron
	logger  arbor.ILogger
	jobMu   sync.Mutex // Protects jobs map and running flag
	jobs    map[string]*jobEntry
	running bool
}

// NewService creates a scheduler. Schedules accept standard 5-field cron
// expressions and descriptors, including "@every <duration>".
func NewService(logger arbor.ILogger) *Service {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Service{
		cron:   cron.New(cron.WithParser(parser)),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
	}
}

// RegisterJob adds a named job under a cron schedule. Names must be unique.
func (s *Service) RegisterJob(name string, schedule string, handler func() error) error {
	if name == "" {
		return fmt.Errorf("job name is required")
	}
	if handler == nil {
		return fmt.Errorf("job %s has no handler", name)
	}
	if err := common.ValidateSchedule(schedule); err != nil {
		return fmt.Errorf("invalid schedule for job %s: %w", name, err)
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	cronID, err := s.cron.AddFunc(schedule, func() {
		s.executeJob(name)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s to cron: %w", name, err)
	}

	s.jobs[name] = &jobEntry{
		name:     name,
		schedule: schedule,
		handler:  handler,
		cronID:   cronID,
	}

	s.logger.Info().
		Str("job_name", name).
		Str("schedule", schedule).
		Msg("Job registered")
	return nil
}

// Start begins executing registered jobs on their schedules.
func (s *Service) Start() error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Int("jobs", len(s.jobs)).
		Msg("Scheduler started")
	return nil
}

// Stop halts scheduling and waits up to 30 seconds for in-flight jobs.
func (s *Service) Stop() error {
	s.jobMu.Lock()
	if !s.running {
		s.jobMu.Unlock()
		return nil
	}
	s.running = false
	s.jobMu.Unlock()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(shutdownTimeout):
		s.logger.Warn().Msg("Jobs still running at shutdown timeout")
	}

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// IsRunning reports whether the scheduler is active
func (s *Service) IsRunning() bool {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	return s.running
}

// GetAllJobStatuses returns the status of every registered job. NextRun is
// only known while the scheduler is running.
func (s *Service) GetAllJobStatuses() map[string]*interfaces.ScheduledJobStatus {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	var entries []cron.Entry
	if s.running {
		entries = s.cron.Entries()
	}

	statuses := make(map[string]*interfaces.ScheduledJobStatus, len(s.jobs))
	for name, entry := range s.jobs {
		status := &interfaces.ScheduledJobStatus{
			Name:      entry.name,
			Schedule:  entry.schedule,
			LastRun:   entry.lastRun,
			IsRunning: entry.isRunning,
			LastError: entry.lastError,
		}
		for _, cronEntry := range entries {
			if cronEntry.ID == entry.cronID && !cronEntry.Next.IsZero() {
				next := cronEntry.Next
				status.NextRun = &next
				break
			}
		}
		statuses[name] = status
	}
	return statuses
}

// executeJob wraps a handler run with overlap protection, panic recovery
// and status tracking. Ticks that land while the previous run is still in
// flight are skipped rather than queued.
func (s *Service) executeJob(name string) {
	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists {
		s.jobMu.Unlock()
		return
	}
	if entry.isRunning {
		s.jobMu.Unlock()
		s.logger.Warn().
			Str("job_name", name).
			Msg("Previous run still in progress, skipping this tick")
		return
	}
	entry.isRunning = true
	handler := entry.handler
	s.jobMu.Unlock()

	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("job_name", name).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Panic recovered in job execution")
			s.finishJob(name, fmt.Errorf("panic: %v", r), started)
		}
	}()

	err := handler()
	s.finishJob(name, err, started)
}

func (s *Service) finishJob(name string, err error, started time.Time) {
	completed := time.Now()

	s.jobMu.Lock()
	if entry, exists := s.jobs[name]; exists {
		entry.isRunning = false
		entry.lastRun = &completed
		if err != nil {
			entry.lastError = err.Error()
		} else {
			entry.lastError = ""
		}
	}
	s.jobMu.Unlock()

	if err != nil {
		s.logger.Error().
			Str("job_name", name).
			Err(err).
			Int64("elapsed_ms", completed.Sub(started).Milliseconds()).
			Msg("Job execution failed")
		return
	}

	s.logger.Debug().
		Str("job_name", name).
		Int64("elapsed_ms", completed.Sub(started).Milliseconds()).
		Msg("Job execution completed")
}
