package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for pacing outbound requests
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// record tracks one client's requests within the current window
type record struct {
	count   int
	resetAt time.Time
}

// Window is a per-identifier fixed-window rate limiter. It gates how
// often each client may invoke an operation: the first request in a
// window starts a fresh count, requests beyond the limit are denied
// without mutating state, and an expired window is replaced in place.
//
// Records are never evicted, so the map grows with the number of
// distinct identifiers seen over the life of the process. That is an
// accepted limitation, not a feature.
type Window struct {
	limit   int
	window  time.Duration
	records map[string]*record
	mu      sync.Mutex
	now     func() time.Time
}

// NewWindow creates a per-identifier fixed-window limiter
func NewWindow(limit int, window time.Duration) *Window {
	return &Window{
		limit:   limit,
		window:  window,
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Allow reports whether the identifier may proceed, counting the request
// against its current window when it may
func (w *Window) Allow(identifier string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	rec, ok := w.records[identifier]

	if !ok || now.After(rec.resetAt) {
		w.records[identifier] = &record{count: 1, resetAt: now.Add(w.window)}
		return true
	}

	if rec.count >= w.limit {
		return false
	}

	rec.count++
	return true
}

// Reset clears all recorded windows
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.records = make(map[string]*record)
}

// Len returns the number of tracked identifiers
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.records)
}

// TokenBucket implements a token bucket rate limiter. The scanner uses
// it to pace bulk-hydration batches against the upstream API's own
// limits.
type TokenBucket struct {
	capacity     int           // Maximum number of tokens
	tokens       int           // Current number of tokens
	refillPeriod time.Duration // Period after which bucket is refilled
	lastRefill   time.Time     // Last time the bucket was refilled
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait() {
	for !tb.Allow() {
		tb.mu.Lock()
		timeUntilRefill := tb.refillPeriod - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if timeUntilRefill > 0 {
			time.Sleep(timeUntilRefill)
		} else {
			// Small sleep to prevent busy waiting
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refill adds tokens based on elapsed time
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	if elapsed >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}
