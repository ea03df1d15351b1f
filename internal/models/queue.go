package models

import (
	"fmt"
	"time"
)

// Job status constants as reported by the upstream queue engine
const (
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusDelayed   = "delayed"
	JobStatusActive    = "active"
	JobStatusWaiting   = "waiting"
	JobStatusPaused    = "paused"
)

// ValidJobStatuses lists every job state the upstream engine reports
var ValidJobStatuses = []string{
	JobStatusCompleted,
	JobStatusFailed,
	JobStatusDelayed,
	JobStatusActive,
	JobStatusWaiting,
	JobStatusPaused,
}

// IsValidJobStatus reports whether s is a known job status
func IsValidJobStatus(s string) bool {
	for _, v := range ValidJobStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// QueueStats is a point-in-time snapshot of one queue's aggregate counters.
// Refreshed wholesale on each poll; never mutated in place.
type QueueStats struct {
	Name      string `json:"name"`
	Waiting   int64  `json:"waiting"`
	Active    int64  `json:"active"`
	Completed int64  `json:"completed"`
	Failed    int64  `json:"failed"`
	Delayed   int64  `json:"delayed"`
	Paused    int64  `json:"paused"`
	TotalJobs int64  `json:"totalJobs"`
}

// Normalize recomputes TotalJobs from the six state counters when the
// upstream omits it (some bridge versions send zero).
func (s *QueueStats) Normalize() {
	if s.TotalJobs == 0 {
		s.TotalJobs = s.Waiting + s.Active + s.Completed + s.Failed + s.Delayed + s.Paused
	}
}

// Job is one job record as reported by the upstream queue engine.
// Field names follow the upstream wire contract (epoch-millisecond
// timestamps, lowercase "returnvalue") so the dashboard consumes the
// same shape it would get from the bridge directly.
type Job struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Data         map[string]interface{} `json:"data"`
	Queue        string                 `json:"queue"`
	Timestamp    int64                  `json:"timestamp"`             // creation time, epoch ms
	ProcessedOn  *int64                 `json:"processedOn,omitempty"` // epoch ms
	FinishedOn   *int64                 `json:"finishedOn,omitempty"`  // epoch ms
	Status       string                 `json:"status"`
	Progress     int                    `json:"progress"` // 0-100
	ReturnValue  interface{}            `json:"returnvalue,omitempty"`
	Stacktrace   []string               `json:"stacktrace,omitempty"`
	AttemptsMade int                    `json:"attemptsMade"`
}

// Validate checks the job record for obvious contract violations
func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if j.Queue == "" {
		return fmt.Errorf("job queue is required")
	}
	if j.Status != "" && !IsValidJobStatus(j.Status) {
		return fmt.Errorf("invalid job status: %s", j.Status)
	}
	return nil
}

// HistoricalPoint is one sampled observation of a queue's counters,
// accumulated by the monitor and served to the dashboard charts.
type HistoricalPoint struct {
	Timestamp time.Time `json:"timestamp" badgerhold:"index"`
	Queue     string    `json:"queue" badgerhold:"index"`
	Waiting   int64     `json:"waiting"`
	Active    int64     `json:"active"`
	Completed int64     `json:"completed"`
	Failed    int64     `json:"failed"`
	Delayed   int64     `json:"delayed"`
}

// QueueHealth is the dashboard's traffic-light classification of a queue
type QueueHealth string

const (
	// QueueHealthy means failure and backlog ratios are inside thresholds
	QueueHealthy QueueHealth = "Healthy"
	// QueueWarning means the delayed backlog is outgrowing the waiting set
	QueueWarning QueueHealth = "Warning"
	// QueueAtRisk means the failure ratio has crossed the threshold
	QueueAtRisk QueueHealth = "At Risk"
)

// QueueHealthStatus pairs a queue name with its classification for the API
type QueueHealthStatus struct {
	Queue  string      `json:"queue"`
	Health QueueHealth `json:"health"`
}
