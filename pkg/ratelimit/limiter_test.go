package ratelimit

import (
	"testing"
	"time"
)

func TestWindowAllowsUpToLimit(t *testing.T) {
	w := NewWindow(5, time.Minute)

	for i := 0; i < 5; i++ {
		if !w.Allow("client-a") {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// 6th call within the same window must be denied
	if w.Allow("client-a") {
		t.Error("Expected request over the limit to be denied")
	}
}

func TestWindowDenialDoesNotMutate(t *testing.T) {
	w := NewWindow(2, time.Minute)

	w.Allow("client-a")
	w.Allow("client-a")

	// Denied calls must not advance the count or the reset time
	for i := 0; i < 10; i++ {
		if w.Allow("client-a") {
			t.Fatal("Expected denial while the window is saturated")
		}
	}

	rec := w.records["client-a"]
	if rec.count != 2 {
		t.Errorf("Expected count to stay at 2, got %d", rec.count)
	}
}

func TestWindowIdentifiersAreIndependent(t *testing.T) {
	w := NewWindow(1, time.Minute)

	if !w.Allow("client-a") {
		t.Error("Expected first request from client-a to be allowed")
	}
	if w.Allow("client-a") {
		t.Error("Expected second request from client-a to be denied")
	}
	if !w.Allow("client-b") {
		t.Error("Expected client-b to have its own budget")
	}
}

func TestWindowResetsAfterExpiry(t *testing.T) {
	current := time.Now()
	w := NewWindow(5, time.Minute)
	w.now = func() time.Time { return current }

	for i := 0; i < 5; i++ {
		w.Allow("client-a")
	}
	if w.Allow("client-a") {
		t.Fatal("Expected denial at the limit")
	}

	// Roll past the window boundary
	current = current.Add(time.Minute + time.Millisecond)

	if !w.Allow("client-a") {
		t.Error("Expected request to be allowed in a fresh window")
	}
	if rec := w.records["client-a"]; rec.count != 1 {
		t.Errorf("Expected fresh window to start at count 1, got %d", rec.count)
	}
}

func TestWindowReset(t *testing.T) {
	w := NewWindow(1, time.Minute)

	w.Allow("client-a")
	w.Allow("client-b")
	if w.Len() != 2 {
		t.Errorf("Expected 2 tracked identifiers, got %d", w.Len())
	}

	w.Reset()
	if w.Len() != 0 {
		t.Errorf("Expected no tracked identifiers after reset, got %d", w.Len())
	}
	if !w.Allow("client-a") {
		t.Error("Expected request to be allowed after reset")
	}
}

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(5, time.Second)

	// Test initial capacity
	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("Expected token %d to be available", i+1)
		}
	}

	// Test exhaustion
	if tb.Allow() {
		t.Error("Expected no more tokens to be available")
	}

	// Test refill after waiting
	time.Sleep(time.Second + 100*time.Millisecond)
	if !tb.Allow() {
		t.Error("Expected tokens to be refilled after waiting")
	}

	// Test reset
	tb.tokens = 0
	tb.Reset()
	if tb.tokens != tb.capacity {
		t.Error("Expected tokens to be reset to capacity")
	}
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(1, 50*time.Millisecond)

	if !tb.Allow() {
		t.Fatal("Expected first token to be available")
	}

	start := time.Now()
	tb.Wait()
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Expected Wait to block until refill, returned after %v", elapsed)
	}
}
