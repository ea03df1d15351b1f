package scheduler

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
)

func newTestScheduler() *Service {
	return NewService(arbor.NewLogger())
}

func TestRegisterJobValidation(t *testing.T) {
	svc := newTestScheduler()

	noop := func() error { return nil }

	cases := []struct {
		name     string
		jobName  string
		schedule string
		handler  func() error
	}{
		{"empty name", "", "@every 30s", noop},
		{"nil handler", "alerts", "@every 30s", nil},
		{"garbage schedule", "alerts", "whenever", noop},
		{"sub-minimum interval", "alerts", "@every 1s", noop},
		{"too few fields", "alerts", "* *", noop},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.RegisterJob(tc.jobName, tc.schedule, tc.handler); err == nil {
				t.Errorf("RegisterJob(%q, %q) accepted", tc.jobName, tc.schedule)
			}
		})
	}

	if err := svc.RegisterJob("alerts", "@every 30s", noop); err != nil {
		t.Fatalf("valid job rejected: %v", err)
	}
	if err := svc.RegisterJob("alerts", "@every 30s", noop); err == nil {
		t.Error("duplicate job name accepted")
	}
	if err := svc.RegisterJob("reports", "0 7 * * *", noop); err != nil {
		t.Errorf("standard cron expression rejected: %v", err)
	}
}

func TestExecuteJobTracksStatus(t *testing.T) {
	svc := newTestScheduler()

	var runs atomic.Int64
	fail := atomic.Bool{}
	if err := svc.RegisterJob("alerts", "@every 30s", func() error {
		runs.Add(1)
		if fail.Load() {
			return errors.New("price api unreachable")
		}
		return nil
	}); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	before := svc.GetAllJobStatuses()["alerts"]
	if before == nil {
		t.Fatal("registered job missing from statuses")
	}
	if before.LastRun != nil || before.IsRunning || before.LastError != "" {
		t.Errorf("fresh job has stale status: %+v", before)
	}
	if before.Schedule != "@every 30s" {
		t.Errorf("schedule: got %q", before.Schedule)
	}

	svc.executeJob("alerts")
	status := svc.GetAllJobStatuses()["alerts"]
	if runs.Load() != 1 {
		t.Fatalf("runs: got %d, want 1", runs.Load())
	}
	if status.LastRun == nil {
		t.Error("last run not stamped")
	}
	if status.LastError != "" {
		t.Errorf("last error: got %q, want empty", status.LastError)
	}

	fail.Store(true)
	svc.executeJob("alerts")
	status = svc.GetAllJobStatuses()["alerts"]
	if status.LastError != "price api unreachable" {
		t.Errorf("last error: got %q", status.LastError)
	}

	// A later successful run clears the error.
	fail.Store(false)
	svc.executeJob("alerts")
	status = svc.GetAllJobStatuses()["alerts"]
	if status.LastError != "" {
		t.Errorf("error not cleared after success: %q", status.LastError)
	}
	if runs.Load() != 3 {
		t.Errorf("runs: got %d, want 3", runs.Load())
	}
}

func TestExecuteJobRecoversPanic(t *testing.T) {
	svc := newTestScheduler()

	if err := svc.RegisterJob("pruning", "@every 1h", func() error {
		panic("snapshot store corrupted")
	}); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	svc.executeJob("pruning") // Must not crash the test binary

	status := svc.GetAllJobStatuses()["pruning"]
	if status.IsRunning {
		t.Error("panicked job still marked running")
	}
	if !strings.Contains(status.LastError, "panic") || !strings.Contains(status.LastError, "snapshot store corrupted") {
		t.Errorf("last error: got %q", status.LastError)
	}
	if status.LastRun == nil {
		t.Error("last run not stamped after panic")
	}
}

func TestExecuteJobSkipsOverlappingRuns(t *testing.T) {
	svc := newTestScheduler()

	var runs atomic.Int64
	release := make(chan struct{})
	started := make(chan struct{})
	if err := svc.RegisterJob("alerts", "@every 30s", func() error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	}); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		svc.executeJob("alerts")
		close(done)
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first run never started")
	}
	if !svc.GetAllJobStatuses()["alerts"].IsRunning {
		t.Error("in-flight job not marked running")
	}

	// Second tick lands while the first is still in flight.
	svc.executeJob("alerts")
	if runs.Load() != 1 {
		t.Fatalf("overlapping tick ran the handler: %d runs", runs.Load())
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first run never finished")
	}
	if svc.GetAllJobStatuses()["alerts"].IsRunning {
		t.Error("finished job still marked running")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	svc := newTestScheduler()

	if err := svc.RegisterJob("alerts", "@every 1h", func() error { return nil }); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	if svc.IsRunning() {
		t.Error("scheduler running before Start")
	}
	if status := svc.GetAllJobStatuses()["alerts"]; status.NextRun != nil {
		t.Error("next run known before Start")
	}

	if err := svc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !svc.IsRunning() {
		t.Error("scheduler not running after Start")
	}
	if err := svc.Start(); err == nil {
		t.Error("double Start accepted")
	}

	status := svc.GetAllJobStatuses()["alerts"]
	if status.NextRun == nil {
		t.Fatal("next run unknown while running")
	}
	if !status.NextRun.After(time.Now()) {
		t.Errorf("next run in the past: %v", status.NextRun)
	}

	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if svc.IsRunning() {
		t.Error("scheduler running after Stop")
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("second Stop errored: %v", err)
	}
}
