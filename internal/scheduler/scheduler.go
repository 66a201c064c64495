// Package scheduler runs the periodic booking maintenance job.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// BookingExpirer is implemented by services.BookingService.
type BookingExpirer interface {
	ExpireStale(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	expirer BookingExpirer
	logger  *slog.Logger
	spec    string

	// running guards against overlapping sweeps when one outlasts the interval.
	running sync.Mutex
}

// New creates a Scheduler that expires stale bookings every intervalMinutes.
func New(expirer BookingExpirer, intervalMinutes int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.DefaultLogger)),
		expirer: expirer,
		logger:  logger,
		spec:    fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the expiry job and starts the cron loop. One sweep also runs
// immediately so bookings that went stale while the server was down are
// expired without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec)

	go s.RunOnce(ctx)
	return nil
}

// Stop stops the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunOnce performs a single expiry sweep. It is skipped when another sweep is
// still in progress.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if !s.running.TryLock() {
		s.logger.Warn("booking expiry sweep skipped, previous sweep still running")
		return
	}
	defer s.running.Unlock()

	if ctx.Err() != nil {
		return
	}

	expired, err := s.expirer.ExpireStale(ctx)
	if err != nil {
		s.logger.Error("booking expiry sweep failed", "err", err)
		return
	}
	if expired > 0 {
		s.logger.Info("expired stale bookings", "count", expired)
	}
}
