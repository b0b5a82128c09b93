package handler

import (
	"fmt"
	"net/http"

	"github.com/cozysnippet/api/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
	userCount   func() int
}

// NewMetricsHandler creates a new MetricsHandler. userCount may be nil.
func NewMetricsHandler(snapshotter metrics.Snapshotter, userCount func() int) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter, userCount: userCount}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "cozysnippet_http_request_duration_seconds_count %d\n", snap.RequestDurationCount)
	writeMetric(w, "cozysnippet_http_request_duration_seconds_sum %.6f\n", float64(snap.RequestDurationTotalNs)/1e9)

	writeMetric(w, "cozysnippet_users_created_total %d\n", snap.UsersCreated)
	writeMetric(w, "cozysnippet_users_updated_total %d\n", snap.UsersUpdated)
	writeMetric(w, "cozysnippet_users_deleted_total %d\n", snap.UsersDeleted)
	writeMetric(w, "cozysnippet_users_seeded_total %d\n", snap.UsersSeeded)
	if h.userCount != nil {
		writeMetric(w, "cozysnippet_users %d\n", h.userCount())
	}

	writeMetric(w, "cozysnippet_auth_failures_total{realm=\"api\"} %d\n", snap.AuthFailuresAPI)
	writeMetric(w, "cozysnippet_auth_failures_total{realm=\"admin\"} %d\n", snap.AuthFailuresAdmin)
	writeMetric(w, "cozysnippet_rate_limit_rejected_total %d\n", snap.RateLimitRejected)

	writeMetric(w, "cozysnippet_api_keys_generated_total %d\n", snap.KeysGenerated)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
