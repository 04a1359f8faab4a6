// Package scheduler triggers recurring scans from a cron expression.
package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/movers/internal/models"
	"github.com/ternarybob/movers/internal/pipeline"
)

// Runner executes one scan.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// ResultHandler receives the outcome of each scheduled scan.
type ResultHandler func(result *pipeline.Result, err error)

// Scheduler runs scans on a cron schedule, at most one at a time.
type Scheduler struct {
	runner   Runner
	count    int
	cron     *cron.Cron
	now      func() time.Time
	onResult ResultHandler
	logger   arbor.ILogger

	ctx     context.Context
	running atomic.Bool
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithResultHandler sets the callback invoked after each scan.
func WithResultHandler(fn ResultHandler) Option {
	return func(s *Scheduler) {
		s.onResult = fn
	}
}

// WithNow overrides the time source used to pick the target date.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// New creates a scheduler that requests count stocks per scan.
func New(runner Runner, count int, logger arbor.ILogger, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner: runner,
		count:  count,
		cron:   cron.New(cron.WithSeconds()),
		now:    time.Now,
		logger: logger,
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the schedule and starts the cron loop. Scans receive ctx,
// so cancelling it interrupts an in-flight scan.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	s.ctx = ctx

	if _, err := s.cron.AddFunc(schedule, func() { s.Trigger() }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Int("count", s.count).
		Msg("Scan scheduler started")

	return nil
}

// Stop stops the cron loop and waits for an in-flight scan to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scan scheduler stopped")
}

// Next returns the next activation time, zero if nothing is scheduled.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Trigger runs a scan for today's date on the calling goroutine. It returns
// false without running when a scan is already in flight.
func (s *Scheduler) Trigger() bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("Previous scan still running, skipping trigger")
		return false
	}
	defer s.running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(buf[:n])).
				Msg("Recovered from panic in scheduled scan")
		}
	}()

	req := pipeline.Request{Date: models.DateOf(s.now()), Count: s.count}
	s.logger.Info().Str("date", req.Date.String()).Msg("Starting scheduled scan")

	result, err := s.runner.Run(s.ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled scan failed")
	} else {
		s.logger.Info().
			Int("ranked", len(result.Stocks)).
			Dur("duration", result.Duration).
			Msg("Scheduled scan completed")
	}

	if s.onResult != nil {
		s.onResult(result, err)
	}
	return true
}
