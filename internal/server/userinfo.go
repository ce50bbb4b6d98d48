package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "fcunfollow/pkg/errors"
)

type userInfoRequest struct {
	FID fid `json:"fid"`
}

// HandleUserInfo returns the raw Neynar profile for a FID
func (h *Handlers) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	var req userInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FID == 0 {
		respondError(w, http.StatusBadRequest, "FID is required")
		return
	}

	if !h.upstream.HasAPIKey() {
		respondError(w, http.StatusInternalServerError, "Neynar API key not configured")
		return
	}

	user, err := h.upstream.FetchUserWithRetry(r.Context(), int64(req.FID), h.cfg.RateLimit.MaxRetries)
	if err != nil {
		h.logger.WithError(err).WithField("fid", int64(req.FID)).Error("User info fetch failed")

		var apiErr *apierrors.Error
		if errors.As(err, &apiErr) && apiErr.Type == apierrors.ErrorTypeNotFound {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}

		respondError(w, http.StatusInternalServerError, "Failed to fetch user info")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
