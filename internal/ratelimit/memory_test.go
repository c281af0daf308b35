package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestFixedWindow_RejectsAfterMax(t *testing.T) {
	const max = 3
	l := NewFixedWindow(time.Minute, max, WithCleanupEvery(0))
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= max; i++ {
		dec, err := l.Admit(ctx, "client", now.Add(time.Duration(i)*time.Second))
		assert.NilError(t, err)
		assert.Assert(t, dec.Allowed, "request %d should be admitted", i)
		assert.Equal(t, dec.Remaining, max-i)
		assert.Equal(t, dec.Limit, max)
	}

	dec, err := l.Admit(ctx, "client", now.Add(10*time.Second))
	assert.NilError(t, err)
	assert.Assert(t, !dec.Allowed)
	assert.Equal(t, dec.Remaining, 0)
	// The window opened at the first admit, one second past now.
	assert.Equal(t, dec.ResetAt, now.Add(time.Second+time.Minute))
	assert.Equal(t, dec.RetryAfter(now.Add(10*time.Second)), 51*time.Second)
}

func TestFixedWindow_ResetsAfterWindow(t *testing.T) {
	l := NewFixedWindow(time.Minute, 1, WithCleanupEvery(0))
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	dec, _ := l.Admit(ctx, "client", now)
	assert.Assert(t, dec.Allowed)

	dec, _ = l.Admit(ctx, "client", now.Add(59*time.Second))
	assert.Assert(t, !dec.Allowed)

	later := now.Add(time.Minute)
	dec, _ = l.Admit(ctx, "client", later)
	assert.Assert(t, dec.Allowed)
	assert.Equal(t, dec.ResetAt, later.Add(time.Minute))
}

func TestFixedWindow_RejectionDoesNotExtendWindow(t *testing.T) {
	l := NewFixedWindow(time.Minute, 1, WithCleanupEvery(0))
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	_, _ = l.Admit(ctx, "client", now)
	for i := 0; i < 5; i++ {
		dec, _ := l.Admit(ctx, "client", now.Add(time.Duration(i)*time.Second))
		assert.Assert(t, !dec.Allowed)
	}

	dec, _ := l.Admit(ctx, "client", now.Add(time.Minute))
	assert.Assert(t, dec.Allowed)
}

func TestFixedWindow_KeysAreIndependent(t *testing.T) {
	l := NewFixedWindow(time.Minute, 1, WithCleanupEvery(0))
	ctx := context.Background()
	now := time.Now()

	a, _ := l.Admit(ctx, "a", now)
	b, _ := l.Admit(ctx, "b", now)
	assert.Assert(t, a.Allowed)
	assert.Assert(t, b.Allowed)
}

func TestFixedWindow_Cleanup(t *testing.T) {
	l := NewFixedWindow(time.Minute, 5, WithCleanupEvery(0))
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	_, _ = l.Admit(ctx, "old", now)
	_, _ = l.Admit(ctx, "fresh", now.Add(30*time.Second))
	assert.Equal(t, l.Len(), 2)

	l.Cleanup(now.Add(time.Minute))
	assert.Equal(t, l.Len(), 1)
}

func TestFixedWindow_ConcurrentAdmitsNeverExceedMax(t *testing.T) {
	const max = 50
	l := NewFixedWindow(time.Hour, max, WithCleanupEvery(0))
	ctx := context.Background()
	now := time.Now()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dec, err := l.Admit(ctx, "shared", now)
			if err != nil {
				panic(fmt.Sprintf("admit: %v", err))
			}
			if dec.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, allowed, max)
}
