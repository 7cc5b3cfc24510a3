package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultUpdateInterval is used when the scheduler is built without one.
const DefaultUpdateInterval = 30 * time.Minute

// Refresher is the work a Scheduler triggers.
type Refresher interface {
	Refresh(ctx context.Context) Outcome
}

// Scheduler refreshes the feed once at start and then on every tick.
// Ticks and on-demand refreshes share the refresher, which serializes them.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	logger    *slog.Logger

	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	nextRun   time.Time
	mu        sync.Mutex
	inflight  sync.WaitGroup
	now       func() time.Time
}

// NewScheduler creates a scheduler for refresher.
func NewScheduler(refresher Refresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
		stopCh:    make(chan struct{}),
		now:       time.Now,
	}
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start runs an initial refresh in the background and begins ticking.
// Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.interval)
	s.nextRun = s.now().Add(s.interval)
	s.mu.Unlock()

	s.logger.Info("scheduler started", "interval", s.interval)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.runRefresh("startup")
	}()
	go s.run()
}

func (s *Scheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.mu.Lock()
			if !s.isRunning {
				s.mu.Unlock()
				return
			}
			s.nextRun = s.now().Add(s.interval)
			s.inflight.Add(1)
			s.mu.Unlock()
			s.runRefresh("tick")
			s.inflight.Done()
		case <-s.stopCh:
			s.logger.Info("scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) runRefresh(trigger string) {
	out := s.refresher.Refresh(context.Background())
	if !out.Success {
		// Details were logged by the refresher; the served document is unchanged.
		s.logger.Warn("scheduled refresh did not update the feed", "trigger", trigger, "run_id", out.RunID)
	}
}

// NextRunAt returns when the next tick is due, zero if not running.
func (s *Scheduler) NextRunAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.nextRun
}

// Stop stops ticking. A refresh already in progress runs to completion;
// use Wait to block until it has.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
		s.mu.Unlock()
	})
}

// Wait blocks until every refresh the scheduler started has returned, or
// until ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
