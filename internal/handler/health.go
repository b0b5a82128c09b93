package handler

import (
	"net/http"
	"time"

	"github.com/cozysnippet/api/internal/handler/dto"
	"github.com/cozysnippet/api/internal/response"
)

// HealthHandler serves the public liveness endpoint.
type HealthHandler struct {
	version string
	started time.Time
	now     func() time.Time
}

// NewHealthHandler creates a new HealthHandler. Uptime is measured from
// the moment it is created.
func NewHealthHandler(version string) *HealthHandler {
	now := func() time.Time { return time.Now().UTC() }
	return &HealthHandler{
		version: version,
		started: now(),
		now:     now,
	}
}

// Health reports that the process is serving requests.
// No credential is required.
//
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	response.Success(w, http.StatusOK, dto.HealthResponse{
		Status:        "healthy",
		Timestamp:     now,
		Version:       h.version,
		UptimeSeconds: now.Sub(h.started).Seconds(),
	}, "")
}
