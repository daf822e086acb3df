// Package schedule re-runs a job on a cron schedule until its context is
// canceled. Watch mode uses it to regenerate calendars from roster files
// that are edited in place.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	appLog "shiftcal/internal/log"
)

// Job is one scheduled run. Errors are logged; they never stop the loop.
type Job func(ctx context.Context) error

// Runner wraps a cron instance with a single job.
type Runner struct {
	cron *cron.Cron
	spec string
	job  Job

	mu      sync.Mutex
	running bool
	runs    int
}

// New validates spec (standard 5-field cron or @every/@hourly descriptors).
func New(spec string, job Job) (*Runner, error) {
	if spec == "" {
		return nil, errors.New("schedule: empty cron spec")
	}
	if job == nil {
		return nil, errors.New("schedule: nil job")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("schedule: invalid cron spec %q: %w", spec, err)
	}
	return &Runner{
		cron: cron.New(),
		spec: spec,
		job:  job,
	}, nil
}

// Runs reports how many times the job has completed.
func (r *Runner) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

// RunOnce executes the job immediately. Overlapping invocations are skipped.
func (r *Runner) RunOnce(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		appLog.Info("scheduled run still in progress; skipping", "spec", r.spec)
		return
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.runs++
		r.mu.Unlock()
	}()

	if err := r.job(ctx); err != nil {
		appLog.Error("scheduled run failed", err, "spec", r.spec)
	}
}

// Run executes the job once, then on every tick of the schedule until ctx
// is canceled. It waits for an in-flight job before returning.
func (r *Runner) Run(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.spec, func() { r.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule: add job: %w", err)
	}

	appLog.Info("scheduler started", "spec", r.spec)
	r.RunOnce(ctx)
	r.cron.Start()

	<-ctx.Done()
	stopped := r.cron.Stop()
	<-stopped.Done()
	appLog.Info("scheduler stopped", "runs", r.Runs())
	return nil
}
