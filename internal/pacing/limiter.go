package pacing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultInterval is the free-tier budget: one call every 12 seconds, five per minute.
	DefaultInterval = 12 * time.Second
)

// Limiter gates outbound calls. Wait blocks until the next call may be issued.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Gate is a fixed-interval token bucket with a burst of one: the first call
// passes immediately and every later call starts at least one interval after
// the previous one. A paid tier only needs a shorter interval.
type Gate struct {
	limiter  *rate.Limiter
	clock    Clock
	interval time.Duration
}

// NewGate creates a Gate allowing one call per interval. A nil clock uses the wall clock.
func NewGate(interval time.Duration, clock Clock) *Gate {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Gate{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		clock:    clock,
		interval: interval,
	}
}

// Wait reserves the next slot and sleeps until it opens.
func (g *Gate) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := g.clock.Now()
	reservation := g.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return fmt.Errorf("pacing gate cannot grant a call (interval %v)", g.interval)
	}

	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	// Round up so float drift in the token bucket never shortens the interval.
	if rem := delay % time.Millisecond; rem != 0 {
		delay += time.Millisecond - rem
	}

	if err := g.clock.Sleep(ctx, delay); err != nil {
		reservation.CancelAt(g.clock.Now())
		return err
	}
	return nil
}

// Interval returns the minimum spacing between calls.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Estimate returns the minimum wall time needed to issue calls requests.
func (g *Gate) Estimate(calls int) time.Duration {
	if calls <= 0 {
		return 0
	}
	return time.Duration(calls) * g.interval
}
