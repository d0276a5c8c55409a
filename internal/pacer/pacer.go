// Package pacer spaces outbound requests to respect a provider rate limit.
package pacer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum interval between successive request starts. A
// single Pacer is shared by every worker talking to the same API.
type Pacer struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// New returns a Pacer allowing one request per interval. The first Wait
// returns immediately. A non-positive interval disables pacing.
func New(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the next request may start or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Interval reports the configured spacing.
func (p *Pacer) Interval() time.Duration { return p.interval }
