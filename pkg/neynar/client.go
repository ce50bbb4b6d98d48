package neynar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fcunfollow/pkg/config"
	apierrors "fcunfollow/pkg/errors"
	"fcunfollow/pkg/logger"
	"fcunfollow/pkg/models"
	"fcunfollow/pkg/ratelimit"
	"fcunfollow/pkg/retry"
)

// Client is a Neynar API client
type Client struct {
	httpClient *http.Client
	cfg        config.NeynarConfig
	batchSize  int
	pacer      ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a new Neynar API client. The pacer gates bulk
// hydration batches; pass nil to use the default 100ms spacing.
func NewClient(cfg config.NeynarConfig, rl config.RateLimitConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserTimeout <= 0 {
		cfg.UserTimeout = 10 * time.Second
	}
	if cfg.FollowingTimeout <= 0 {
		cfg.FollowingTimeout = 15 * time.Second
	}
	if cfg.FollowingLimit <= 0 {
		cfg.FollowingLimit = DefaultFollowingLimit
	}

	batchSize := rl.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	pause := rl.BatchPause
	if pause <= 0 {
		pause = 100 * time.Millisecond
	}

	return &Client{
		// Timeouts are applied per call via context deadlines
		httpClient: &http.Client{},
		cfg:        cfg,
		batchSize:  batchSize,
		pacer:      ratelimit.NewTokenBucket(1, pause),
		logger:     log,
	}
}

// HasAPIKey reports whether the client carries an API key
func (c *Client) HasAPIKey() bool {
	return c.cfg.APIKey != ""
}

// HasSigner reports whether the client carries a signer credential
func (c *Client) HasSigner() bool {
	return c.cfg.SignerUUID != ""
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	req.Header.Set("accept", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		errType := apierrors.ErrorTypeNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			errType = apierrors.ErrorTypeTimeout
		}
		return nil, &apierrors.Error{
			Type:    errType,
			Message: fmt.Sprintf("upstream request failed: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, timeout time.Duration, url string, target interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &apierrors.Error{
			Type:    apierrors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apierrors.Error{
			Type:    apierrors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &apierrors.Error{
			Type:    apierrors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// checkResponseStatus checks the HTTP response status and returns appropriate errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &apierrors.Error{
			Type:    apierrors.ErrorTypeAuth,
			Message: "upstream rejected credentials",
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &apierrors.Error{
			Type:    apierrors.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &apierrors.Error{
			Type:    apierrors.ErrorTypeRateLimit,
			Message: "upstream rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		c.logger.ErrorWithFields("upstream server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &apierrors.Error{
			Type:    apierrors.ErrorTypeServerError,
			Message: "upstream server error",
			Code:    resp.StatusCode,
		}
	default:
		if resp.StatusCode >= 400 {
			c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    resp.Request.URL.String(),
			})
			return &apierrors.Error{
				Type:    apierrors.ErrorTypeUnknown,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
		}
		return nil
	}
}

// FetchUser resolves a single FID into a user profile
func (c *Client) FetchUser(ctx context.Context, fid int64) (*User, error) {
	url := UserBulkURL(c.cfg.BaseURL, []int64{fid})

	c.logger.DebugWithFields("fetching user profile", map[string]interface{}{
		"fid": fid,
		"url": url,
	})

	var response BulkUsersResponse
	if err := c.getJSON(ctx, c.cfg.UserTimeout, url, &response); err != nil {
		c.logger.ErrorWithFields("failed to fetch user profile", map[string]interface{}{
			"fid":   fid,
			"error": err.Error(),
		})
		return nil, err
	}

	if len(response.Users) == 0 {
		return nil, &apierrors.Error{
			Type:    apierrors.ErrorTypeNotFound,
			Message: "user not found",
			Code:    http.StatusNotFound,
		}
	}

	return &response.Users[0], nil
}

// FetchUserWithRetry resolves a single FID, retrying transient upstream
// failures. Only the user-info path uses this; scan calls are never
// retried.
func (c *Client) FetchUserWithRetry(ctx context.Context, fid int64, maxAttempts int) (*User, error) {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = maxAttempts
	cfg.Context = ctx
	cfg.Logger = c.logger

	return retry.DoWithResult(func() (*User, error) {
		return c.FetchUser(ctx, fid)
	}, cfg)
}

// FetchFollowing fetches the accounts a FID follows
func (c *Client) FetchFollowing(ctx context.Context, fid int64) ([]User, error) {
	url := FollowingURL(c.cfg.BaseURL, fid, c.cfg.FollowingLimit)

	c.logger.DebugWithFields("fetching following list", map[string]interface{}{
		"fid": fid,
		"url": url,
	})

	var response FollowingResponse
	if err := c.getJSON(ctx, c.cfg.FollowingTimeout, url, &response); err != nil {
		c.logger.ErrorWithFields("failed to fetch following list", map[string]interface{}{
			"fid":   fid,
			"error": err.Error(),
		})
		return nil, err
	}

	users := make([]User, 0, len(response.Users))
	for i := range response.Users {
		users = append(users, response.Users[i].Account())
	}

	return users, nil
}

// FetchUsersBulk resolves up to MaxBulkFIDs FIDs into full profiles
func (c *Client) FetchUsersBulk(ctx context.Context, fids []int64) ([]User, error) {
	url := UserBulkURL(c.cfg.BaseURL, fids)

	var response BulkUsersResponse
	if err := c.getJSON(ctx, c.cfg.UserTimeout, url, &response); err != nil {
		return nil, err
	}

	return response.Users, nil
}

// HydrateFollowing resolves a following list into detailed profiles in
// paced batches. A failed batch is logged and skipped, never retried,
// so the result may be shorter than the input.
func (c *Client) HydrateFollowing(ctx context.Context, fid int64, following []User) []models.FollowedAccount {
	accounts := make([]models.FollowedAccount, 0, len(following))

	totalBatches := (len(following) + c.batchSize - 1) / c.batchSize

	for i := 0; i < len(following); i += c.batchSize {
		end := i + c.batchSize
		if end > len(following) {
			end = len(following)
		}
		batch := following[i:end]
		batchNum := i/c.batchSize + 1

		fids := make([]int64, len(batch))
		for j, u := range batch {
			fids[j] = u.FID
		}

		// Pace batches against the upstream's own rate limits
		if batchNum > 1 {
			c.pacer.Wait()
		}

		detailed, err := c.FetchUsersBulk(ctx, fids)
		if err != nil {
			c.logger.WarnWithFields("hydration batch failed, skipping", map[string]interface{}{
				"fid":   fid,
				"batch": batchNum,
				"total": totalBatches,
				"error": err.Error(),
			})
			continue
		}

		for j := range detailed {
			accounts = append(accounts, detailed[j].ToFollowedAccount())
		}

		logger.LogBatchProgress(fmt.Sprintf("%d", fid), batchNum, totalBatches)
	}

	return accounts
}

// Unfollow removes a follow relationship on behalf of the configured signer
func (c *Client) Unfollow(ctx context.Context, targetFid int64) (*UnfollowResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.UserTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]interface{}{
		"signer_uuid": c.cfg.SignerUUID,
		"target_fid":  targetFid,
	})
	if err != nil {
		return nil, &apierrors.Error{
			Type:    apierrors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to encode request: %v", err),
			Code:    0,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, FollowsURL(c.cfg.BaseURL), bytes.NewReader(payload))
	if err != nil {
		return nil, &apierrors.Error{
			Type:    apierrors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}
	req.Header.Set("content-type", "application/json")

	c.logger.InfoWithFields("unfollowing user", map[string]interface{}{
		"target_fid": targetFid,
	})

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	var result UnfollowResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &apierrors.Error{
			Type:    apierrors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return &result, nil
}
