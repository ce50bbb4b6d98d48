package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fcunfollow/internal/server"
	"fcunfollow/pkg/config"
	"fcunfollow/pkg/logger"
	"fcunfollow/pkg/models"
	"fcunfollow/pkg/neynar"
	"fcunfollow/pkg/ratelimit"
	"fcunfollow/pkg/scanner"
)

const dayMillis = int64(24 * 60 * 60 * 1000)

// newTestStack wires the full pipeline against a mock Neynar server
func newTestStack(t *testing.T, mock *MockNeynar) http.Handler {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Neynar.APIKey = "test-key"
	cfg.Neynar.SignerUUID = "test-signer"
	cfg.Neynar.BaseURL = mock.URL()
	cfg.RateLimit.BatchPause = time.Millisecond

	log := logger.NewNopLogger()
	client := neynar.NewClient(cfg.Neynar, cfg.RateLimit, log)
	limiter := ratelimit.NewWindow(cfg.RateLimit.ScanRequests, cfg.RateLimit.ScanWindow)
	scan := scanner.New(client, log)
	handlers := server.NewHandlers(scan, client, limiter, cfg, log)

	return server.SetupRoutes(handlers)
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestScanEndToEnd(t *testing.T) {
	mock := NewMockNeynar()
	defer mock.Close()

	now := time.Now().UnixMilli()

	mock.AddUser(1, "caller", 100, now)
	mock.AddUser(10, "active", 50, now-2*dayMillis)
	mock.AddUser(11, "dormant", 50, now-45*dayMillis)
	mock.AddUser(12, "ghost", 50, now-70*dayMillis)
	mock.AddUser(13, "megaphone", 5000, now-10*dayMillis)
	mock.SetFollowing(1, []int64{10, 11, 12, 13})

	router := newTestStack(t, mock)

	rec := postJSON(t, router, "/api/scan", `{"fid": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var analysis models.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))

	assert.Equal(t, 4, analysis.TotalFollows)
	assert.Equal(t, 2, analysis.InactiveUsers)
	assert.Equal(t, 1, analysis.VeryInactiveUsers)
	assert.Equal(t, 1, analysis.SpamAccounts)
	require.Len(t, analysis.Recommendations, 3)

	// Sorted by days inactive, most stale first
	assert.Equal(t, "ghost", analysis.Recommendations[0].Username)
	assert.Equal(t, 70, analysis.Recommendations[0].DaysInactive)
	assert.Contains(t, analysis.Recommendations[0].Reason, "Haven't casted in 70 days")

	assert.Equal(t, "dormant", analysis.Recommendations[1].Username)
	assert.Equal(t, "megaphone", analysis.Recommendations[2].Username)
	assert.Equal(t, "Potential spam account (high followers, low activity)", analysis.Recommendations[2].Reason)

	for _, rec := range analysis.Recommendations {
		assert.False(t, rec.FollowsBack)
	}
}

func TestScanUnknownUser(t *testing.T) {
	mock := NewMockNeynar()
	defer mock.Close()

	router := newTestStack(t, mock)

	rec := postJSON(t, router, "/api/scan", `{"fid": 404}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestScanEmptyFollowing(t *testing.T) {
	mock := NewMockNeynar()
	defer mock.Close()

	mock.AddUser(1, "loner", 10, time.Now().UnixMilli())
	mock.SetFollowing(1, nil)

	router := newTestStack(t, mock)

	rec := postJSON(t, router, "/api/scan", `{"fid": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis models.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, 0, analysis.TotalFollows)
	assert.Empty(t, analysis.Recommendations)
	assert.Equal(t, "No following data found. You may not be following anyone yet.", analysis.Message)
}

func TestScanUpstreamFailurePropagates(t *testing.T) {
	mock := NewMockNeynar()
	defer mock.Close()

	mock.AddUser(1, "caller", 10, time.Now().UnixMilli())
	mock.FailFollowing = http.StatusBadGateway

	router := newTestStack(t, mock)

	rec := postJSON(t, router, "/api/scan", `{"fid": 1}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unable to connect to Farcaster data")
}

func TestUnfollowEndToEnd(t *testing.T) {
	mock := NewMockNeynar()
	defer mock.Close()

	router := newTestStack(t, mock)

	rec := postJSON(t, router, "/api/unfollow", `{"targetFid": 12}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Successfully unfollowed user 12", body["message"])
	assert.NotContains(t, body, "simulated")

	assert.Equal(t, []int64{12}, mock.Unfollowed())
}

func TestUnfollowDegradesWhenUpstreamFails(t *testing.T) {
	mock := NewMockNeynar()
	defer mock.Close()
	mock.FailUnfollow = http.StatusForbidden

	router := newTestStack(t, mock)

	start := time.Now()
	rec := postJSON(t, router, "/api/unfollow", `{"targetFid": 12}`)
	elapsed := time.Since(start)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Successfully unfollowed user 12 (simulated)", body["message"])
	assert.Equal(t, true, body["simulated"])

	// The simulated path mimics real API latency
	assert.GreaterOrEqual(t, elapsed, time.Second)
}

func TestUserInfoEndToEnd(t *testing.T) {
	mock := NewMockNeynar()
	defer mock.Close()

	mock.AddUser(3621, "vitalik", 250000, time.Now().UnixMilli())

	router := newTestStack(t, mock)

	rec := postJSON(t, router, "/api/user-info", `{"fid": 3621}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var user neynar.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, int64(3621), user.FID)
	assert.Equal(t, "vitalik", user.Username)
}

func TestScanRateLimitAcrossRequests(t *testing.T) {
	mock := NewMockNeynar()
	defer mock.Close()

	mock.AddUser(1, "caller", 10, time.Now().UnixMilli())
	mock.SetFollowing(1, nil)

	router := newTestStack(t, mock)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{"fid": 1}`))
		req.Header.Set("X-Forwarded-For", "198.51.100.1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{"fid": 1}`))
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
