package api

import (
	"net/http"
)

// StatsProvider reports console counters for /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves /stats.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a StatsHandler over provider.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats answers GET with a snapshot of the session counters. Other
// methods get 405 with an Allow header.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	// Counters move with every submit; never serve a cached copy.
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
