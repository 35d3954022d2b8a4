package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/log"
)

// Resyncer is the part of SyncWorker the scheduler drives.
type Resyncer interface {
	Resync(ctx context.Context) (ResyncResult, error)
}

// Scheduler runs a full resync at start and then every interval.
type Scheduler struct {
	target   Resyncer
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduler(target Resyncer, interval time.Duration, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		target:   target,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the resync loop. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("resync interval must be positive, got %v", s.interval)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("resync scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.runLoop(ctx, stop, done)

	s.logger.InfoContext(ctx, "Resync scheduler started", "interval", s.interval)
	return nil
}

// Stop signals the loop and waits for the current resync to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	select {
	case <-done:
		s.logger.InfoContext(ctx, "Resync scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Resync scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.target.Resync(ctx); err != nil && ctx.Err() == nil {
		s.logger.ErrorContext(ctx, "Resync failed", log.FieldError, err.Error())
	}
}
