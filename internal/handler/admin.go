package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cozysnippet/api/internal/handler/dto"
	"github.com/cozysnippet/api/internal/middleware"
	"github.com/cozysnippet/api/internal/response"
	"github.com/cozysnippet/api/internal/service"
)

// Admin features reported by the admin health check.
var adminFeatures = []string{"key_generation", "key_info"}

// AdminHandler provides the admin key-management endpoints.
type AdminHandler struct {
	keys   *service.KeyService
	logger *slog.Logger
	now    func() time.Time
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(keys *service.KeyService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		keys:   keys,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GenerateKeys handles POST /admin/keys/generate.
// The keys are returned once and never stored.
func (h *AdminHandler) GenerateKeys(w http.ResponseWriter, r *http.Request) {
	var req service.GenerateKeysRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	keys, err := h.keys.GenerateAPIKeys(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("api_keys_generated",
		"count", len(keys),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	response.Success(w, http.StatusOK, dto.GeneratedKeysResponse{
		Keys:  keys,
		Count: len(keys),
		Instructions: dto.KeyInstructions{
			Setup: "export API_KEYS=<value>",
			Value: strings.Join(keys, ","),
			Usage: "Include one of these keys in X-API-Key header or Authorization: Bearer header",
		},
	}, "API keys generated successfully")
}

// KeysInfo handles GET /admin/keys/info.
func (h *AdminHandler) KeysInfo(w http.ResponseWriter, r *http.Request) {
	info := h.keys.Info(r.Context())
	response.Success(w, http.StatusOK, dto.KeyInfoResponse{
		TotalKeys:   info.TotalKeys,
		KeyPrefixes: info.KeyPrefixes,
		Configured:  info.Configured,
		LastUpdated: h.now(),
	}, "")
}

// Health handles GET /admin/health.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, dto.AdminHealthResponse{
		Status:    "admin_healthy",
		Timestamp: h.now(),
		Features:  adminFeatures,
	}, "")
}

// handleServiceError maps service errors to HTTP responses.
func (h *AdminHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *service.ValidationError
		apiErr *response.Error
	)

	switch {
	case errors.As(err, &verr):
		response.Fail(w, validationFailure(verr))
	case errors.As(err, &apiErr):
		response.Fail(w, apiErr)
	default:
		h.logger.Error("internal_error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		response.Fail(w, response.Internal())
	}
}
