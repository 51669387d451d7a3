package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/segview/pkg/metrics"
)

// HealthHandler serves /healthz. The console has no dependency it must reach
// to stay useful, so answering a scrape of its registry is the liveness
// signal; backend health shows up in the page banner instead.
type HealthHandler struct {
	exposition http.Handler
}

// NewHealthHandler builds the exposition handler over the console registry.
// Collector errors are reported in the scrape rather than failing it.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		exposition: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		}),
	}
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.exposition.ServeHTTP(w, r)
}
