package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs registered jobs on their cron schedules. A job never runs
// in parallel with itself: a tick that finds the previous run still active
// is skipped.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   []Job
	byName map[string]Job
	locks  map[string]*sync.Mutex
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		byName: make(map[string]Job),
		locks:  make(map[string]*sync.Mutex),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterJob adds a job to the scheduler. Must be called before Start().
// Returns an error if a job with the same name is already registered.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}

	s.byName[name] = j
	s.locks[name] = &sync.Mutex{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Start validates every schedule and begins executing registered jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := cron.New(cron.WithParser(parser))

	for _, job := range s.jobs {
		name := job.Name()
		if _, err := c.AddFunc(job.Schedule(), func() { s.run(name) }); err != nil {
			return fmt.Errorf("cron: invalid schedule for job %q: %w", name, err)
		}
	}

	s.cron = c
	s.cron.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.jobs))
	return nil
}

// RunNow executes the named job once, outside its schedule. It reports
// false when the job is unknown or already running.
func (s *Scheduler) RunNow(name string) bool {
	s.mu.Lock()
	_, ok := s.byName[name]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return s.run(name)
}

func (s *Scheduler) run(name string) bool {
	s.mu.Lock()
	job, lock := s.byName[name], s.locks[name]
	s.mu.Unlock()

	if !lock.TryLock() {
		s.logger.Warn("cron: job still running, skipping tick", "job", name)
		return false
	}
	defer lock.Unlock()

	s.logger.Debug("cron: job started", "job", name)
	if err := job.Run(s.ctx); err != nil {
		s.logger.Error("cron: job failed", "job", name, "error", err)
	} else {
		s.logger.Debug("cron: job completed", "job", name)
	}
	return true
}

// Stop cancels the jobs' context and waits for in-flight runs.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.mu.Unlock()

	s.cancel()
	if c != nil {
		<-c.Stop().Done()
		s.logger.Info("cron: scheduler stopped")
	}
	return nil
}
