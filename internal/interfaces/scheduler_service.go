package interfaces

import "time"

// ScheduledJobStatus reports the state of a registered cron job
type ScheduledJobStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	IsRunning bool       `json:"is_running"`
	LastError string     `json:"last_error,omitempty"`
}

// SchedulerService manages cron-based background jobs
type SchedulerService interface {
	// Start begins executing registered jobs
	Start() error

	// Stop halts the scheduler and waits for running jobs
	Stop() error

	// RegisterJob adds a job under a cron schedule. Must be called
	// before Start.
	RegisterJob(name string, schedule string, handler func() error) error

	// GetAllJobStatuses returns every registered job's status
	GetAllJobStatuses() map[string]*ScheduledJobStatus

	// IsRunning reports whether the scheduler is active
	IsRunning() bool
}
