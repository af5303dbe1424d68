// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle enforces a minimum pause between the end of one request and the
// start of the next. Callers Wait before each request and call Done when it
// finishes. The first Wait returns immediately. A Throttle belongs to one
// batch and is not safe for concurrent use.
type Throttle struct {
	delay   time.Duration
	limiter *rate.Limiter
}

// NewThrottle returns a Throttle that keeps requests delay apart.
// A non-positive delay disables throttling.
func NewThrottle(delay time.Duration) *Throttle {
	if delay <= 0 {
		return &Throttle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Throttle{delay: delay, limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next request is allowed or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Done restarts the interval: the next Wait is released delay after now.
func (t *Throttle) Done() {
	if t.delay <= 0 {
		return
	}
	t.limiter = rate.NewLimiter(rate.Every(t.delay), 1)
	t.limiter.Allow()
}
