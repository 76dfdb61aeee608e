package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, auth.AuthUser, error)
}

type Handler struct {
	Auth Authenticator
}

func NewHandler(authenticator Authenticator) *Handler {
	return &Handler{Auth: authenticator}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	Role     string `json:"role"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	validator := shared.NewValidator()
	validator.Required("email", payload.Email, "is required")
	validator.Required("password", payload.Password, "is required")
	if validator.Reject(w, requestID) {
		return
	}

	token, user, err := h.Auth.Login(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "login failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "login_error", "login failed", requestID)
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"user":  userResponse{ID: user.ID, TenantID: user.TenantID, Role: user.RoleName},
	}, requestID)
}

// HandleMe echoes the principal carried by the bearer token.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, userResponse{ID: user.UserID, TenantID: user.TenantID, Role: user.RoleName}, middleware.GetRequestID(r.Context()))
}
