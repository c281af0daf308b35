package ratelimit

import (
	"context"
	"sync"
	"time"
)

const defaultCleanupEvery = time.Minute

// FixedWindow keeps one counter per key in process memory.
type FixedWindow struct {
	mu           sync.Mutex
	windows      map[string]*window
	size         time.Duration
	max          int
	cleanupEvery time.Duration
}

type window struct {
	count int
	start time.Time
}

type Option func(*FixedWindow)

// WithCleanupEvery sets the janitor interval; zero disables it.
func WithCleanupEvery(d time.Duration) Option {
	return func(l *FixedWindow) { l.cleanupEvery = d }
}

func NewFixedWindow(size time.Duration, max int, opts ...Option) *FixedWindow {
	l := &FixedWindow{
		windows:      make(map[string]*window),
		size:         size,
		max:          max,
		cleanupEvery: defaultCleanupEvery,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *FixedWindow) Admit(_ context.Context, key string, now time.Time) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.size)) {
		w = &window{start: now}
		l.windows[key] = w
	}

	dec := Decision{Limit: l.max, ResetAt: w.start.Add(l.size)}
	if w.count >= l.max {
		return dec, nil
	}

	w.count++
	dec.Allowed = true
	dec.Remaining = l.max - w.count
	return dec, nil
}

// Cleanup drops windows that have closed by now.
func (l *FixedWindow) Cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, w := range l.windows {
		if !now.Before(w.start.Add(l.size)) {
			delete(l.windows, k)
		}
	}
}

// Len returns the number of tracked keys.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// StartJanitor runs Cleanup periodically until ctx is cancelled.
func (l *FixedWindow) StartJanitor(ctx context.Context) {
	if l.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(l.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				l.Cleanup(now)
			}
		}
	}()
}
