package server

import (
	"net/http"
	"os"
	"strings"
	"time"
)

// HandleDebug returns request and environment diagnostics, including
// whether the request came from a Farcaster client embed.
func (h *Handlers) HandleDebug(w http.ResponseWriter, r *http.Request) {
	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}

	userAgent := r.Header.Get("User-Agent")
	referer := r.Header.Get("Referer")

	apiKeyStatus := "Not configured"
	if h.upstream.HasAPIKey() {
		apiKeyStatus = "Configured"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"url":          r.URL.String(),
		"headers":      headers,
		"userAgent":    userAgent,
		"referer":      referer,
		"host":         r.Host,
		"isFarcaster":  isFarcasterRequest(userAgent, referer),
		"environment":  os.Getenv("ENVIRONMENT"),
		"neynarApiKey": apiKeyStatus,
	})
}

// isFarcasterRequest detects Farcaster/Warpcast clients by user agent
// or referer
func isFarcasterRequest(userAgent, referer string) bool {
	return strings.Contains(userAgent, "Farcaster") ||
		strings.Contains(userAgent, "Warpcast") ||
		strings.Contains(strings.ToLower(referer), "farcaster") ||
		strings.Contains(strings.ToLower(referer), "warpcast")
}
