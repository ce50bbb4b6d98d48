// Package ratelimit provides the two rate limiters used by the service.
//
// Window is a per-identifier fixed-window limiter gating the scan
// endpoint: each client identifier gets a request counter that resets
// when its window rolls over. It is an injectable service object, not a
// package-level singleton, so tests and handlers can hold isolated
// instances.
//
//	limiter := ratelimit.NewWindow(5, time.Minute)
//	if !limiter.Allow(clientID) {
//	    // reject with 429
//	}
//
// TokenBucket paces outbound calls against the upstream API's own
// limits:
//
//	bucket := ratelimit.NewTokenBucket(1, 100*time.Millisecond)
//	bucket.Wait() // blocks until the next batch may be sent
package ratelimit
