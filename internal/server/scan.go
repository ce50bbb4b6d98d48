package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "fcunfollow/pkg/errors"
	"fcunfollow/pkg/logger"
)

type scanRequest struct {
	FID fid `json:"fid"`
}

// HandleScan analyzes a user's following list and returns unfollow
// recommendations
func (h *Handlers) HandleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FID == 0 {
		respondError(w, http.StatusBadRequest, "FID is required")
		return
	}

	clientID := clientIdentifier(r)
	if !h.limiter.Allow(clientID) {
		logger.LogRateLimit(clientID, h.cfg.RateLimit.ScanRequests)
		respondError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a minute.")
		return
	}

	if !h.upstream.HasAPIKey() {
		h.logger.Error("Neynar API key not configured")
		respondError(w, http.StatusInternalServerError, "Neynar API key not configured. Please check your environment variables.")
		return
	}

	analysis, err := h.scanner.Scan(r.Context(), int64(req.FID))
	if err != nil {
		h.logger.WithError(err).WithField("fid", int64(req.FID)).Error("Scan failed")
		status, message := scanErrorResponse(err)
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

// scanErrorResponse maps a typed upstream error to the status and
// user-facing message for the scan endpoint. Scan failures are always
// reported as real errors, never papered over with placeholder data.
func scanErrorResponse(err error) (int, string) {
	var apiErr *apierrors.Error
	if errors.As(err, &apiErr) {
		status := apierrors.HTTPStatus(apiErr.Type)
		switch status {
		case http.StatusNotFound:
			return status, "User not found. Please check the FID and try again."
		case http.StatusTooManyRequests:
			return status, "Neynar API rate limit exceeded. Please try again later."
		case http.StatusRequestTimeout:
			return status, "Network timeout. Please check your connection and try again."
		case http.StatusServiceUnavailable:
			return status, "Unable to connect to Farcaster data. Please try again later."
		}
	}

	return http.StatusInternalServerError, "Failed to scan follows. Please try again."
}
