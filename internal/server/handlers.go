package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fcunfollow/pkg/config"
	"fcunfollow/pkg/logger"
	"fcunfollow/pkg/models"
	"fcunfollow/pkg/neynar"
	"fcunfollow/pkg/ratelimit"
)

// Scanner runs a full follow analysis for a FID.
type Scanner interface {
	Scan(ctx context.Context, fid int64) (*models.Analysis, error)
}

// Upstream covers the Neynar operations the handlers proxy directly.
type Upstream interface {
	FetchUserWithRetry(ctx context.Context, fid int64, maxAttempts int) (*neynar.User, error)
	Unfollow(ctx context.Context, targetFid int64) (*neynar.UnfollowResult, error)
	HasAPIKey() bool
	HasSigner() bool
}

// Handlers holds all HTTP handlers and their dependencies
type Handlers struct {
	scanner  Scanner
	upstream Upstream
	limiter  *ratelimit.Window
	cfg      *config.Config
	logger   logger.Logger

	// sleep is replaceable in tests to skip the simulated unfollow delay
	sleep func(time.Duration)
}

// NewHandlers creates a new Handlers instance
func NewHandlers(scanner Scanner, upstream Upstream, limiter *ratelimit.Window, cfg *config.Config, log logger.Logger) *Handlers {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Handlers{
		scanner:  scanner,
		upstream: upstream,
		limiter:  limiter,
		cfg:      cfg,
		logger:   log,
		sleep:    time.Sleep,
	}
}

// HealthCheck returns basic service health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "fcunfollow",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// fid accepts both JSON numbers and numeric strings, since clients
// send FIDs either way.
type fid int64

func (f *fid) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}

	*f = fid(n)
	return nil
}

// clientIdentifier extracts the rate limit key for a request
func clientIdentifier(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	return "unknown"
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
