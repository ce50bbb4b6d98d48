package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fcunfollow/pkg/config"
	apierrors "fcunfollow/pkg/errors"
	"fcunfollow/pkg/logger"
	"fcunfollow/pkg/models"
	"fcunfollow/pkg/neynar"
	"fcunfollow/pkg/ratelimit"
)

type fakeScanner struct {
	analysis *models.Analysis
	err      error
	lastFID  int64
}

func (f *fakeScanner) Scan(ctx context.Context, fid int64) (*models.Analysis, error) {
	f.lastFID = fid
	if f.err != nil {
		return nil, f.err
	}
	return f.analysis, nil
}

type fakeUpstream struct {
	user        *neynar.User
	userErr     error
	result      *neynar.UnfollowResult
	unfollowErr error
	hasKey      bool
	hasSigner   bool

	unfollowedFID int64
}

func (f *fakeUpstream) FetchUserWithRetry(ctx context.Context, fid int64, maxAttempts int) (*neynar.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *fakeUpstream) Unfollow(ctx context.Context, targetFid int64) (*neynar.UnfollowResult, error) {
	f.unfollowedFID = targetFid
	if f.unfollowErr != nil {
		return nil, f.unfollowErr
	}
	return f.result, nil
}

func (f *fakeUpstream) HasAPIKey() bool { return f.hasKey }
func (f *fakeUpstream) HasSigner() bool { return f.hasSigner }

func newTestHandlers(scanner Scanner, upstream Upstream) *Handlers {
	h := NewHandlers(scanner, upstream, ratelimit.NewWindow(5, time.Minute), config.DefaultConfig(), logger.NewNopLogger())
	h.sleep = func(time.Duration) {}
	return h
}

func doRequest(t *testing.T, h *Handlers, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	SetupRoutes(h).ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleScanMissingFID(t *testing.T) {
	h := newTestHandlers(&fakeScanner{}, &fakeUpstream{hasKey: true})

	for _, body := range []string{"", "{}", `{"fid": 0}`, `{"fid": "abc"}`} {
		rec := doRequest(t, h, http.MethodPost, "/api/scan", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, "FID is required", decodeBody(t, rec)["error"])
	}
}

func TestHandleScanAcceptsStringFID(t *testing.T) {
	scanner := &fakeScanner{analysis: &models.Analysis{TotalFollows: 1, Recommendations: []models.Recommendation{}}}
	h := newTestHandlers(scanner, &fakeUpstream{hasKey: true})

	rec := doRequest(t, h, http.MethodPost, "/api/scan", `{"fid": "3621"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3621), scanner.lastFID)
}

func TestHandleScanRateLimit(t *testing.T) {
	scanner := &fakeScanner{analysis: &models.Analysis{Recommendations: []models.Recommendation{}}}
	h := newTestHandlers(scanner, &fakeUpstream{hasKey: true})
	router := SetupRoutes(h)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{"fid": 1}`))
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{"fid": 1}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Rate limit exceeded. Please try again in a minute.", decodeBody(t, rec)["error"])

	// A different client is unaffected
	req = httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{"fid": 1}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.8")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleScanMissingAPIKey(t *testing.T) {
	h := newTestHandlers(&fakeScanner{}, &fakeUpstream{hasKey: false})

	rec := doRequest(t, h, http.MethodPost, "/api/scan", `{"fid": 1}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Neynar API key not configured. Please check your environment variables.", decodeBody(t, rec)["error"])
}

func TestHandleScanErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "not found",
			err:        &apierrors.Error{Type: apierrors.ErrorTypeNotFound, Message: "no user", Code: 404},
			wantStatus: http.StatusNotFound,
			wantError:  "User not found. Please check the FID and try again.",
		},
		{
			name:       "upstream rate limit",
			err:        &apierrors.Error{Type: apierrors.ErrorTypeRateLimit, Message: "slow down", Code: 429},
			wantStatus: http.StatusTooManyRequests,
			wantError:  "Neynar API rate limit exceeded. Please try again later.",
		},
		{
			name:       "timeout",
			err:        &apierrors.Error{Type: apierrors.ErrorTypeTimeout, Message: "deadline exceeded"},
			wantStatus: http.StatusRequestTimeout,
			wantError:  "Network timeout. Please check your connection and try again.",
		},
		{
			name:       "upstream failure",
			err:        &apierrors.Error{Type: apierrors.ErrorTypeServerError, Message: "boom", Code: 502},
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "Unable to connect to Farcaster data. Please try again later.",
		},
		{
			name:       "untyped error",
			err:        context.Canceled,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to scan follows. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandlers(&fakeScanner{err: tt.err}, &fakeUpstream{hasKey: true})

			rec := doRequest(t, h, http.MethodPost, "/api/scan", `{"fid": 1}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeBody(t, rec)["error"])
		})
	}
}

func TestHandleScanSuccess(t *testing.T) {
	analysis := &models.Analysis{
		TotalFollows:      42,
		InactiveUsers:     3,
		VeryInactiveUsers: 1,
		Recommendations: []models.Recommendation{
			{FID: 99, Username: "ghost", Reason: "Inactive for 45 days", DaysInactive: 45},
		},
	}
	h := newTestHandlers(&fakeScanner{analysis: analysis}, &fakeUpstream{hasKey: true})

	rec := doRequest(t, h, http.MethodPost, "/api/scan", `{"fid": 3621}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(42), body["totalFollows"])
	assert.Equal(t, float64(3), body["inactiveUsers"])
	recs := body["recommendations"].([]interface{})
	require.Len(t, recs, 1)
	assert.Equal(t, "ghost", recs[0].(map[string]interface{})["username"])
}

func TestHandleUnfollowMissingTarget(t *testing.T) {
	h := newTestHandlers(&fakeScanner{}, &fakeUpstream{hasKey: true, hasSigner: true})

	rec := doRequest(t, h, http.MethodPost, "/api/unfollow", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Target FID is required", decodeBody(t, rec)["error"])
}

func TestHandleUnfollowMissingCredentials(t *testing.T) {
	for _, upstream := range []*fakeUpstream{
		{hasKey: false, hasSigner: true},
		{hasKey: true, hasSigner: false},
	} {
		h := newTestHandlers(&fakeScanner{}, upstream)

		rec := doRequest(t, h, http.MethodPost, "/api/unfollow", `{"targetFid": 99}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Neynar credentials not configured", decodeBody(t, rec)["error"])
	}
}

func TestHandleUnfollowSuccess(t *testing.T) {
	upstream := &fakeUpstream{
		hasKey:    true,
		hasSigner: true,
		result:    &neynar.UnfollowResult{Success: true},
	}
	h := newTestHandlers(&fakeScanner{}, upstream)

	rec := doRequest(t, h, http.MethodPost, "/api/unfollow", `{"targetFid": 99}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Successfully unfollowed user 99", body["message"])
	assert.Equal(t, float64(99), body["unfollowedFid"])
	assert.NotContains(t, body, "simulated")
	assert.Equal(t, int64(99), upstream.unfollowedFID)
}

func TestHandleUnfollowDegradesToSimulated(t *testing.T) {
	upstream := &fakeUpstream{
		hasKey:      true,
		hasSigner:   true,
		unfollowErr: &apierrors.Error{Type: apierrors.ErrorTypeServerError, Message: "signer rejected", Code: 500},
	}
	h := newTestHandlers(&fakeScanner{}, upstream)

	rec := doRequest(t, h, http.MethodPost, "/api/unfollow", `{"targetFid": 99}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Successfully unfollowed user 99 (simulated)", body["message"])
	assert.Equal(t, true, body["simulated"])
}

func TestHandleUnfollowMalformedBody(t *testing.T) {
	h := newTestHandlers(&fakeScanner{}, &fakeUpstream{hasKey: true, hasSigner: true})

	rec := doRequest(t, h, http.MethodPost, "/api/unfollow", `{not json`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Successfully unfollowed user unknown (simulated due to error)", body["message"])
	assert.Equal(t, true, body["simulated"])
}

func TestHandleUserInfo(t *testing.T) {
	t.Run("missing fid", func(t *testing.T) {
		h := newTestHandlers(&fakeScanner{}, &fakeUpstream{hasKey: true})
		rec := doRequest(t, h, http.MethodPost, "/api/user-info", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "FID is required", decodeBody(t, rec)["error"])
	})

	t.Run("missing api key", func(t *testing.T) {
		h := newTestHandlers(&fakeScanner{}, &fakeUpstream{hasKey: false})
		rec := doRequest(t, h, http.MethodPost, "/api/user-info", `{"fid": 1}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Neynar API key not configured", decodeBody(t, rec)["error"])
	})

	t.Run("not found", func(t *testing.T) {
		upstream := &fakeUpstream{
			hasKey:  true,
			userErr: &apierrors.Error{Type: apierrors.ErrorTypeNotFound, Message: "no user", Code: 404},
		}
		h := newTestHandlers(&fakeScanner{}, upstream)
		rec := doRequest(t, h, http.MethodPost, "/api/user-info", `{"fid": 1}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", decodeBody(t, rec)["error"])
	})

	t.Run("upstream failure", func(t *testing.T) {
		upstream := &fakeUpstream{
			hasKey:  true,
			userErr: &apierrors.Error{Type: apierrors.ErrorTypeServerError, Message: "boom", Code: 500},
		}
		h := newTestHandlers(&fakeScanner{}, upstream)
		rec := doRequest(t, h, http.MethodPost, "/api/user-info", `{"fid": 1}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to fetch user info", decodeBody(t, rec)["error"])
	})

	t.Run("success", func(t *testing.T) {
		upstream := &fakeUpstream{
			hasKey: true,
			user:   &neynar.User{FID: 3621, Username: "vitalik"},
		}
		h := newTestHandlers(&fakeScanner{}, upstream)
		rec := doRequest(t, h, http.MethodPost, "/api/user-info", `{"fid": 3621}`)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, float64(3621), body["fid"])
		assert.Equal(t, "vitalik", body["username"])
	})
}

func TestHandleDebug(t *testing.T) {
	h := newTestHandlers(&fakeScanner{}, &fakeUpstream{hasKey: true})
	router := SetupRoutes(h)

	req := httptest.NewRequest(http.MethodGet, "/api/debug", nil)
	req.Header.Set("User-Agent", "Warpcast/1.0")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["isFarcaster"])
	assert.Equal(t, "Configured", body["neynarApiKey"])

	req = httptest.NewRequest(http.MethodGet, "/api/debug", nil)
	req.Header.Set("User-Agent", "curl/8.0")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, false, decodeBody(t, rec)["isFarcaster"])
}

func TestHandleFrame(t *testing.T) {
	h := newTestHandlers(&fakeScanner{}, &fakeUpstream{})

	rec := doRequest(t, h, http.MethodGet, "/api/frame", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `property="fc:frame" content="vNext"`)
	assert.Contains(t, rec.Body.String(), h.cfg.Server.PublicURL+"/embed")
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandlers(&fakeScanner{}, &fakeUpstream{})

	rec := doRequest(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}
