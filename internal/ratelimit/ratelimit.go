// Package ratelimit implements fixed-window request admission per client key.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the time left until the current window closes.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.ResetAt.After(now) {
		return d.ResetAt.Sub(now)
	}
	return 0
}

// Limiter admits or rejects a request for key at now.
// A rejected check leaves the window count unchanged.
type Limiter interface {
	Admit(ctx context.Context, key string, now time.Time) (Decision, error)
}
