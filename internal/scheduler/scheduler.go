// Package scheduler runs registered jobs on cron schedules in a fixed time zone.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc is the body of a scheduled job
type JobFunc func(ctx context.Context) error

// Recorder observes finished job runs
type Recorder interface {
	JobFinished(job string, err error, d time.Duration)
}

// Scheduler wraps a cron runner with the worker lifecycle. A job still
// running when its next tick fires is skipped for that tick.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	recorder Recorder
	logger   *zap.Logger

	mu        sync.Mutex
	ctx       context.Context
	entries   map[string]cron.EntryID
	isRunning bool
}

// New creates a scheduler evaluating schedules in loc
func New(loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cronLogger := NewCronLogger(logger)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		location: loc,
		logger:   logger,
		ctx:      context.Background(),
		entries:  make(map[string]cron.EntryID),
	}
}

// SetRecorder installs r to observe job runs. Call it before Start.
func (s *Scheduler) SetRecorder(r Recorder) {
	s.recorder = r
}

// Register adds job under name with a standard five-field cron spec
func (s *Scheduler) Register(name, spec string, job JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.entries[name] = id

	s.logger.Info("Job scheduled",
		zap.String("job", name),
		zap.String("spec", spec),
		zap.String("timezone", s.location.String()))
	return nil
}

// Next returns the next activation time of the named job, zero before Start
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

func (s *Scheduler) run(name string, job JobFunc) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	started := time.Now()
	s.logger.Info("Job started", zap.String("job", name))

	err := job(ctx)
	elapsed := time.Since(started)
	if s.recorder != nil {
		s.recorder.JobFinished(name, err, elapsed)
	}

	if err != nil {
		s.logger.Error("Job failed",
			zap.String("job", name),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return
	}

	s.logger.Info("Job completed",
		zap.String("job", name),
		zap.Duration("duration", elapsed))
}

// Start begins firing jobs. Jobs receive ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler already running")
	}
	s.ctx = ctx
	s.isRunning = true
	s.cron.Start()

	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.entries)))
	return nil
}

// Stop halts the schedule and waits for running jobs to return
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
	return nil
}

// Name returns the worker name for identification
func (s *Scheduler) Name() string {
	return "Scheduler"
}
