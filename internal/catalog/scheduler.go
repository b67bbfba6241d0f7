package catalog

import (
	"context"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"

	. "github.com/roelfdiedericks/modelmeta/internal/logging"
)

// refresher is the slice of Engine the scheduler drives.
type refresher interface {
	Refresh(ctx context.Context) *ModelsConfig
}

// Scheduler fires a forced catalog refresh on a fixed interval. Refresh
// failures are already absorbed by the engine, so ticks never error.
// Start and Stop are idempotent.
type Scheduler struct {
	target   refresher
	interval time.Duration

	mu   sync.Mutex
	cron *cronlib.Cron
}

// NewScheduler creates a stopped scheduler; call Start to begin ticking.
func NewScheduler(target refresher, interval time.Duration) *Scheduler {
	return &Scheduler{target: target, interval: interval}
}

// Start begins periodic refreshes. Calling Start on a running scheduler is
// a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return
	}

	c := cronlib.New()
	c.Schedule(cronlib.Every(s.interval), cronlib.FuncJob(func() {
		L_debug("catalog: scheduled refresh", "interval", s.interval.String())
		s.target.Refresh(context.Background())
	}))
	c.Start()
	s.cron = c

	L_debug("catalog: auto-refresh started", "interval", s.interval.String())
}

// Stop halts periodic refreshes and releases the timer. Calling Stop on a
// stopped (or never started) scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}

	s.cron.Stop()
	s.cron = nil

	L_debug("catalog: auto-refresh stopped")
}

// Running reports whether the scheduler is currently ticking.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}
