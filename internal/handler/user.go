package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cozysnippet/api/internal/auth"
	"github.com/cozysnippet/api/internal/handler/dto"
	"github.com/cozysnippet/api/internal/middleware"
	"github.com/cozysnippet/api/internal/response"
	"github.com/cozysnippet/api/internal/service"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users := h.svc.ListUsers(r.Context())
	response.Success(w, http.StatusOK, users, "Fetched users successfully")
}

// Get handles GET /api/v1/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	response.Success(w, http.StatusOK, user, "Fetched user successfully")
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	user, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_created",
		"user_id", user.ID,
		"key_prefix", auth.KeyPrefixFromContext(r.Context()),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	response.Success(w, http.StatusCreated, user, "User created successfully")
}

// Update handles PUT /api/v1/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req service.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_updated",
		"user_id", user.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	response.Success(w, http.StatusOK, user, "User updated successfully")
}

// Delete handles DELETE /api/v1/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_deleted",
		"user_id", id,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	response.Success(w, http.StatusOK, dto.DeletedUserResponse{ID: id}, "User deleted successfully")
}

// Seed handles POST /api/v1/users/seed.
func (h *UserHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var req service.SeedUsersRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	users, err := h.svc.SeedUsers(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("users_seeded",
		"count", len(users),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	response.Success(w, http.StatusCreated, users, fmt.Sprintf("Seeded %d users successfully", len(users)))
}

// userID returns the {id} path parameter, writing a 400 if it is not a
// version 4 UUID.
func (h *UserHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !service.IsUserID(id) {
		response.Fail(w, response.New(response.CodeInvalidUserID, "Invalid user ID format", nil))
		return "", false
	}
	return id, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *service.ValidationError
		apiErr *response.Error
	)

	switch {
	case errors.As(err, &verr):
		response.Fail(w, validationFailure(verr))
	case errors.As(err, &apiErr):
		response.Fail(w, apiErr)
	case errors.Is(err, service.ErrUserNotFound):
		response.Fail(w, response.NotFound(response.CodeUserNotFound,
			fmt.Sprintf("User %s not found", chi.URLParam(r, "id"))))
	case errors.Is(err, service.ErrEmailExists):
		response.Fail(w, response.Conflict("A user with this email already exists"))
	default:
		h.logger.Error("internal_error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		response.Fail(w, response.Internal())
	}
}
