// Package handlers holds the role-area HTTP surface: login flows, the four
// dashboards, and the plan-gated clinic-admin pages. Handlers shape JSON and
// delegate everything else to the services behind them.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/upstream"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pageParam reads ?page=N, defaulting to 0 (upstream's own default page).
func pageParam(r *http.Request) int {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// safeNext validates a post-login redirect target: same-site paths only, so
// the preserved "came from" location can't become an open redirect.
func safeNext(next string, fallback identity.Role) string {
	if next != "" && strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return fallback.DashboardPath()
}

// writeUpstreamError surfaces an upstream failure at the call site that
// issued it: client-class statuses pass through with their message, server
// trouble and unreachability collapse to a generic 502 banner.
func writeUpstreamError(w http.ResponseWriter, logger interface {
	Error(msg string, args ...any)
}, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		writeError(w, apiErr.Status, apiErr.Message)
		return
	}
	logger.Error("upstream call failed", "error", err)
	writeError(w, http.StatusBadGateway, "the clinic service is temporarily unavailable")
}
